package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	indicatorFile string
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "riskwatch",
	Short: "riskwatch - 시스템 리스크 조기경보 엔진",
	Long: `riskwatch Unified CLI

시장 전반 리스크 지표를 매일 수집해 롤링 z-score로 정규화하고,
가중 합성 점수와 4단계 위험 등급을 산출하는 조기경보 시스템.

Usage:
  go run ./cmd/riskwatch [command]

Examples:
  go run ./cmd/riskwatch run
  go run ./cmd/riskwatch backfill --from 2020-01-01 --to 2020-06-30
  go run ./cmd/riskwatch scheduler start
  go run ./cmd/riskwatch api
  go run ./cmd/riskwatch status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&indicatorFile, "indicators", "", "indicator config file (default is config/indicators.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
