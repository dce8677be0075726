package main

import (
	"os"

	"github.com/wonny/riskwatch/cmd/riskwatch/commands"
)

// main is the entry point for the riskwatch CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/riskwatch [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
