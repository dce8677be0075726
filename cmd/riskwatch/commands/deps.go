package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/riskwatch/internal/contracts"
	"github.com/wonny/riskwatch/internal/engine"
	"github.com/wonny/riskwatch/internal/indicator"
	"github.com/wonny/riskwatch/internal/notify"
	"github.com/wonny/riskwatch/internal/source"
	"github.com/wonny/riskwatch/internal/store"
	"github.com/wonny/riskwatch/pkg/config"
	"github.com/wonny/riskwatch/pkg/database"
	"github.com/wonny/riskwatch/pkg/httputil"
	"github.com/wonny/riskwatch/pkg/logger"
	"github.com/wonny/riskwatch/pkg/redis"
)

// deps bundles the wired collaborators every command starts from
// ⭐ SSOT: 의존성 조립은 이 파일에서만
type deps struct {
	cfg        *config.Config
	engineCfg  *indicator.Config
	configHash string
	log        *logger.Logger
	db         *database.DB
	redis      *redis.Client
	values     *store.IndicatorRepository
	scores     *store.ScoreRepository
	engine     *engine.Engine
}

// initDeps loads configuration and wires the full dependency graph
func initDeps(ctx context.Context) (*deps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load indicator configuration
	configPath := cfg.Engine.ConfigPath
	if indicatorFile != "" {
		configPath = indicatorFile
	}
	engineCfg, err := indicator.LoadOrDefault(configPath)
	if err != nil {
		return nil, fmt.Errorf("load indicator config: %w", err)
	}
	configHash, err := indicator.Hash(engineCfg)
	if err != nil {
		return nil, fmt.Errorf("hash indicator config: %w", err)
	}

	// 4. Connect to database and ensure schema
	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := store.InitSchema(ctx, db.Pool); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	// 5. Connect to Redis (비활성화 시 no-op)
	redisClient, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 6. Create HTTP client and source adapters
	// 무료 티어 API(FRED 등) 호출 제한을 넘지 않도록 토큰 버킷 적용
	httpClient := httputil.NewWithTimeout(log, cfg.Engine.FetchTimeout).WithRateLimit(5, 5)
	resolver := source.NewResolver(cfg, engineCfg, httpClient, log)

	// 7. Create notifiers (자격 정보가 설정된 채널만)
	var notifiers []contracts.Notifier
	if cfg.Telegram.BotToken != "" {
		notifiers = append(notifiers, notify.NewTelegramNotifier(cfg.Telegram, httpClient))
	}
	if cfg.Discord.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewDiscordNotifier(cfg.Discord, httpClient))
	}

	// 8. Create repositories
	values := store.NewIndicatorRepository(db.Pool, log)
	scores := store.NewScoreRepository(db.Pool)

	// 9. Create engine
	eng := engine.New(engine.Options{
		Config:       engineCfg,
		ConfigHash:   configHash,
		Values:       values,
		Scores:       scores,
		Resolver:     resolver,
		Notifiers:    notifiers,
		FetchTimeout: cfg.Engine.FetchTimeout,
		Logger:       log,
	})

	return &deps{
		cfg:        cfg,
		engineCfg:  engineCfg,
		configHash: configHash,
		log:        log,
		db:         db,
		redis:      redisClient,
		values:     values,
		scores:     scores,
		engine:     eng,
	}, nil
}

// Close releases held connections
func (d *deps) Close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}

// printSummary prints a run summary in the CLI's plain format
func printSummary(summary *contracts.RunSummary) {
	fmt.Printf("\nProcessed: %d dates  Skipped: %d dates  Duration: %s\n",
		summary.DatesProcessed, summary.DatesSkipped, summary.Duration.Round(time.Millisecond))

	if len(summary.FetchFailures) > 0 {
		fmt.Println("\nFetch failures:")
		for code, count := range summary.FetchFailures {
			fmt.Printf("  - %s: %d\n", code, count)
		}
	}

	if len(summary.Fallbacks) > 0 {
		fmt.Println("\nSynthetic fallbacks:")
		for code, count := range summary.Fallbacks {
			fmt.Printf("  - %s: %d\n", code, count)
		}
	}

	if len(summary.AlertsFired) > 0 {
		fmt.Printf("\nAlerts fired (%d):\n", len(summary.AlertsFired))
		for _, event := range summary.AlertsFired {
			fmt.Printf("  %s  %s → %s  (score %.2f)\n",
				event.Date.Format("2006-01-02"), event.PrevLevel, event.NewLevel, event.Score)
		}
	} else {
		fmt.Println("\nNo alerts fired")
	}
}
