package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/riskwatch/internal/contracts"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "현재 리스크 상태 조회",
	Long: `최신 합성 점수와 지표별 기여도를 출력합니다.

Example:
  go run ./cmd/riskwatch status
  go run ./cmd/riskwatch status --days 30`,
	RunE: showRiskStatus,
}

var statusDays int

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().IntVar(&statusDays, "days", 0, "최근 N일 점수 이력도 함께 출력")
}

func showRiskStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	d, err := initDeps(ctx)
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer d.Close()

	latest, err := d.scores.GetLatest(ctx)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			fmt.Println("No composite score computed yet. Run 'riskwatch run' first.")
			return nil
		}
		return fmt.Errorf("load latest score: %w", err)
	}

	fmt.Printf("=== riskwatch status: %s ===\n\n", latest.Date.Format("2006-01-02"))
	fmt.Printf("%s Level: %s  Score: %.3f\n\n", levelIcon(latest.Level), latest.Level, latest.Score)

	fmt.Println("Contributions:")
	for _, c := range latest.Contributions {
		fmt.Printf("  %-20s z=%+.2f  weight=%.2f  weighted=%+.3f\n",
			c.Code, c.Z, c.Weight, c.Weighted)
	}

	if statusDays > 0 {
		to := latest.Date
		from := to.AddDate(0, 0, -statusDays)
		history, err := d.scores.GetByDateRange(ctx, from, to)
		if err != nil {
			return fmt.Errorf("load score history: %w", err)
		}

		fmt.Printf("\nHistory (last %d days):\n", statusDays)
		for _, s := range history {
			fmt.Printf("  %s  %-6s  %.3f\n", s.Date.Format("2006-01-02"), s.Level, s.Score)
		}
	}

	return nil
}

func levelIcon(level contracts.Severity) string {
	switch level {
	case contracts.SeverityGreen:
		return "🟢"
	case contracts.SeverityYellow:
		return "🟡"
	case contracts.SeverityOrange:
		return "🟠"
	case contracts.SeverityRed:
		return "🔴"
	default:
		return "⚪"
	}
}
