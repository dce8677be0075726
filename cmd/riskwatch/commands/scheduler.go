package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/riskwatch/internal/scheduler"
	"github.com/wonny/riskwatch/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업 상태를 조회합니다.

등록되는 작업:
- risk_update: 매일 설정 시각 (기본 09:30, 지표 설정의 타임존 기준)

Subcommands:
  start   - 스케줄러 시작
  status  - 작업 실행 상태 조회

Example:
  go run ./cmd/riskwatch scheduler start`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		Long: `스케줄러를 시작하고 일일 리스크 평가를 스케줄합니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
		RunE: runScheduler,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "작업 실행 상태 조회",
		RunE:  showJobStats,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func initScheduler(cmd *cobra.Command) (*scheduler.Scheduler, *deps, error) {
	d, err := initDeps(cmd.Context())
	if err != nil {
		return nil, nil, fmt.Errorf("init dependencies: %w", err)
	}

	// 스케줄은 지표 설정의 시장 타임존을 따름
	loc, err := time.LoadLocation(d.engineCfg.Meta.Timezone)
	if err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("load timezone %q: %w", d.engineCfg.Meta.Timezone, err)
	}

	sched := scheduler.New(d.log, loc)
	if err := sched.AddJob(jobs.NewRiskUpdateJob(d.engine, d.engineCfg, d.log)); err != nil {
		d.Close()
		return nil, nil, fmt.Errorf("register job: %w", err)
	}

	return sched, d, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== riskwatch Scheduler ===")

	sched, d, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	sched.Start()

	fmt.Println("\n✅ Scheduler started successfully")
	fmt.Printf("\nDaily evaluation at %s (%s)\n", d.engineCfg.Meta.DailyTime, d.engineCfg.Meta.Timezone)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func showJobStats(cmd *cobra.Command, args []string) error {
	sched, d, err := initScheduler(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for jobName, stat := range stats {
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}

		fmt.Println()
	}

	return nil
}
