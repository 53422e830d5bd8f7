package handler

import (
	"log"
	"net/http"
	"sync"
	"time"

	config "smartcommerce-api/configs"
	"smartcommerce-api/pkg/logger"
	"smartcommerce-api/pkg/server"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
// 定期同期はサーバーレスでは動かせないため、/integrations/sync を外部スケジューラから呼び出します。
func setupApp() *gin.Engine {
	once.Do(func() {
		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()

		zl, err := logger.NewForEnvironment(cfg.Environment, cfg.LogLevel, "json")
		if err != nil {
			log.Printf("ロガーの初期化に失敗したため標準出力なしで続行します: %v", err)
			zl = zap.NewNop()
		}
		zl.Info("🟢 [setupApp] Initializing Gin application")

		a, err := server.New(cfg, zl, time.Now)
		if err != nil {
			zl.Error("アプリケーションの初期化に失敗", zap.Error(err))
			app = unavailableRouter(err)
			return
		}
		app = a.Router
	})
	return app
}

// unavailableRouter 初期化に失敗した場合はすべてのリクエストに503を返す
func unavailableRouter(cause error) *gin.Engine {
	r := gin.New()
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "初期化に失敗しました: " + cause.Error()})
	})
	return r
}

// Handler はVercelからのすべてのリクエストを処理するエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
