package handlers

import (
	"math/rand"
	"time"

	config "smartcommerce-api/configs"
	"smartcommerce-api/pkg/logger"
	"smartcommerce-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies ルーターが使うサービス群
type Dependencies struct {
	Config     *config.Config
	Store      *services.DataStore
	Alerts     *services.AlertService
	Sync       *services.SyncService
	Monitoring *services.MonitoringService
	Assistant  services.AIAssistant
	Now        services.Clock
	Rand       *rand.Rand
	Logger     *zap.Logger
}

// NewRouter 全エンドポイントを登録したGinエンジンを作成
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Monitoring == nil {
		deps.Monitoring = services.NewMonitoringService(deps.Now)
	}
	if deps.Alerts == nil {
		deps.Alerts = services.NewAlertService(deps.Now, deps.Logger)
	}
	if deps.Sync == nil {
		deps.Sync = services.NewSyncService(nil, deps.Store, services.DefaultReorderDefaults, deps.Now, deps.Logger)
	}

	// ハンドラーの初期化
	adminHandler := NewAdminHandler(deps.Config, deps.Store, deps.Logger)
	monitoringHandler := NewMonitoringHandler(deps.Monitoring)
	pricingHandler := NewPricingHandler(deps.Store, deps.Now)
	inventoryHandler := NewInventoryHandler(deps.Store, deps.Alerts, deps.Now)
	supportHandler := NewSupportHandler(deps.Store, deps.Assistant, deps.Now, deps.Rand, deps.Logger)
	dataHandler := NewDataHandler(deps.Store, services.NewImportService(deps.Logger), services.NewExportService(deps.Logger), deps.Now)
	webhookHandler := NewWebhookHandler(services.NewWebhookService(deps.Store, deps.Alerts, deps.Now, deps.Logger))
	integrationHandler := NewIntegrationHandler(deps.Sync)

	r := gin.New()

	// ミドルウェアの登録
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(gin.Recovery())
	r.Use(deps.Monitoring.LoggingMiddleware())
	r.Use(cors.Default())

	// ヘルスチェックエンドポイント
	r.GET("/health", adminHandler.HealthCheck)

	// APIバージョン1のルートグループ
	v1 := r.Group("/api/v1")
	v1.Use(AuthMiddleware(deps.Config.APIKey))
	{
		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}

		// 価格提案API
		pricing := v1.Group("/pricing")
		{
			pricing.GET("/suggestions", pricingHandler.GetSuggestions)
			pricing.GET("/suggestions/:productId", pricingHandler.GetSuggestion)
		}

		// 在庫予測API
		inventory := v1.Group("/inventory")
		{
			inventory.GET("/predictions", inventoryHandler.GetPredictions)
			inventory.GET("/predictions/:productId", inventoryHandler.GetPrediction)
			inventory.GET("/trend/:productId", inventoryHandler.GetTrend)
		}

		// アラートAPI
		v1.GET("/alerts", inventoryHandler.GetAlerts)
		v1.DELETE("/alerts", inventoryHandler.ClearAlerts)

		// サポート返信API
		support := v1.Group("/support")
		{
			support.POST("/reply", supportHandler.GenerateReply)
			support.GET("/categories", supportHandler.GetCategories)
		}

		// データ管理API
		data := v1.Group("/data")
		{
			data.POST("/import/:kind", dataHandler.Import)
			data.GET("/export/:kind", dataHandler.Export)
			data.POST("/generate", dataHandler.Generate)
			data.GET("/summary", dataHandler.Summary)
		}

		// プラットフォーム連携API
		integrations := v1.Group("/integrations")
		{
			integrations.GET("/status", integrationHandler.Status)
			integrations.POST("/sync", integrationHandler.Sync)
			integrations.POST("/test", integrationHandler.TestConnection)
			integrations.POST("/price", integrationHandler.ApplyPrice)
			integrations.GET("/guide", integrationHandler.GetGuide)
		}

		// webhook受信
		v1.POST("/webhooks/:platform", webhookHandler.Receive)
	}

	return r
}
