package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "오늘 날짜의 리스크 평가 실행",
	Long: `오늘 날짜의 리스크 평가를 한 번 실행합니다.

이 명령어는:
- 지표별 관측값 수집 (라이브 또는 synthetic)
- 롤링 z-score 정규화 및 합성 점수 산출
- 위험 단계 전환 시 경보 발송

Example:
  go run ./cmd/riskwatch run`,
	RunE: runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	fmt.Println("=== riskwatch: daily evaluation ===")

	ctx := cmd.Context()
	d, err := initDeps(ctx)
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer d.Close()

	summary, err := d.engine.RunNow(ctx)
	if err != nil {
		return fmt.Errorf("run evaluation: %w", err)
	}

	printSummary(summary)
	return nil
}
