package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	config "smartcommerce-api/configs"
	"smartcommerce-api/pkg/server"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// テスト環境の設定
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestApplicationSetup(t *testing.T) {
	t.Setenv("PLATFORM", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("API_KEY", "")

	// 設定の読み込みテスト
	cfg := config.LoadConfig()
	require.NotNil(t, cfg, "Config should not be nil")

	app, err := server.New(cfg, nil, time.Now)
	require.NoError(t, err)
	assert.False(t, app.Sync.Configured())

	// ヘルスチェックのテスト
	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// デモデータで価格提案が返る
	req, _ = http.NewRequest("GET", "/api/v1/pricing/suggestions", nil)
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
}
