package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/riskwatch/internal/api"
	"github.com/wonny/riskwatch/internal/api/handlers"
	"github.com/wonny/riskwatch/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                - Health check
  GET  /api/risk/latest       - 최신 합성 점수 조회
  GET  /api/risk/history      - 점수 이력 조회 (?days=90)
  GET  /api/risk/indicators   - 지표 관측값 조회 (?date=YYYY-MM-DD)
  GET  /api/risk/config       - 지표 설정 조회
  POST /api/risk/run          - 수동 평가 트리거

Example:
  go run ./cmd/riskwatch api
  go run ./cmd/riskwatch api --port 8090`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (기본: PORT 환경변수)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== riskwatch API Server ===")

	d, err := initDeps(cmd.Context())
	if err != nil {
		return fmt.Errorf("init dependencies: %w", err)
	}
	defer d.Close()

	if apiPort != "" {
		d.cfg.Port = apiPort
	}

	// Create handler and router
	cache := redis.NewCache(d.redis, "riskwatch")
	riskHandler := handlers.NewRiskHandler(
		d.values, d.scores, d.engine, d.engineCfg,
		cache, d.cfg.Engine.CacheTTL, d.log,
	)
	router := api.NewRouter(riskHandler, d.log)
	server := api.New(d.cfg, d.log, router)

	// Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			d.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", d.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	d.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	d.log.Info("Server stopped")
	return nil
}
