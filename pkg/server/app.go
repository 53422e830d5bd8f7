package server

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	config "smartcommerce-api/configs"
	"smartcommerce-api/pkg/handlers"
	"smartcommerce-api/pkg/platforms"
	"smartcommerce-api/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// App 組み立て済みのアプリケーション
type App struct {
	Router *gin.Engine
	Store  *services.DataStore
	Alerts *services.AlertService
	Sync   *services.SyncService
	Config *config.Config
	Logger *zap.Logger
}

// New 設定からデータストア・プラットフォーム連携・ルーターを組み立てる
func New(cfg *config.Config, logger *zap.Logger, now services.Clock) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	store := services.NewDataStore(logger)
	if err := loadInitialData(cfg, store, now, logger); err != nil {
		return nil, err
	}

	platform, err := newPlatform(cfg, logger)
	if err != nil {
		return nil, err
	}

	alerts := services.NewAlertService(now, logger)
	defaults := services.ReorderDefaults{
		ReorderPoint:    cfg.DefaultReorderPoint,
		ReorderQuantity: cfg.DefaultReorderQuantity,
		LeadTimeDays:    cfg.DefaultLeadTimeDays,
	}
	syncService := services.NewSyncService(platform, store, defaults, now, logger)

	var assistant services.AIAssistant
	if cfg.OpenAIAPIKey != "" {
		assistant = services.NewStubAIAssistant(cfg.OpenAIAPIKey, logger)
	}

	router := handlers.NewRouter(handlers.Dependencies{
		Config:     cfg,
		Store:      store,
		Alerts:     alerts,
		Sync:       syncService,
		Monitoring: services.NewMonitoringService(now),
		Assistant:  assistant,
		Now:        now,
		Rand:       rand.New(rand.NewSource(now().UnixNano())),
		Logger:     logger,
	})

	return &App{
		Router: router,
		Store:  store,
		Alerts: alerts,
		Sync:   syncService,
		Config: cfg,
		Logger: logger,
	}, nil
}

// StartAutoSync プラットフォームが設定されていれば定期同期をバックグラウンドで開始する
func (a *App) StartAutoSync(ctx context.Context) {
	if !a.Sync.Configured() || a.Config.SyncInterval() <= 0 {
		return
	}
	go a.Sync.Run(ctx, a.Config.SyncInterval())
}

// loadInitialData DATA_DIR があればそこから、なければデモデータを読み込む
func loadInitialData(cfg *config.Config, store *services.DataStore, now services.Clock, logger *zap.Logger) error {
	if cfg.DataDir != "" {
		data, err := services.NewImportService(logger).LoadDir(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("データディレクトリの読み込みに失敗: %w", err)
		}
		store.ReplaceAll(data)
		logger.Info("📂 データディレクトリを読み込みました", zap.String("dir", cfg.DataDir))
		return nil
	}
	if cfg.SeedDemoData {
		store.ReplaceAll(services.GenerateDemoData(cfg.DemoSeed, now()))
		logger.Info("🧪 デモデータを生成しました", zap.Int64("seed", cfg.DemoSeed))
	}
	return nil
}

func newPlatform(cfg *config.Config, logger *zap.Logger) (platforms.Platform, error) {
	if cfg.Platform == "" {
		logger.Info("プラットフォーム連携は無効です (PLATFORM 未設定)")
		return nil, nil
	}
	kind, err := platforms.ParseKind(cfg.Platform)
	if err != nil {
		return nil, err
	}
	platform, err := platforms.New(kind, cfg.PlatformCredentials())
	if err != nil {
		return nil, fmt.Errorf("プラットフォームクライアントの作成に失敗: %w", err)
	}
	logger.Info("🔌 プラットフォーム連携を設定しました", zap.String("platform", kind.DisplayName()))
	return platform, nil
}
