package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	config "smartcommerce-api/configs"
	"smartcommerce-api/pkg/platforms"
	"smartcommerce-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

func baseConfig() *config.Config {
	gin.SetMode(gin.TestMode)
	return &config.Config{
		Environment:            "test",
		SeedDemoData:           true,
		DemoSeed:               42,
		SyncIntervalHours:      6,
		DefaultReorderPoint:    20,
		DefaultReorderQuantity: 50,
		DefaultLeadTimeDays:    7,
	}
}

func TestNewSeedsDemoData(t *testing.T) {
	app, err := New(baseConfig(), nil, clock)
	require.NoError(t, err)

	summary := app.Store.Summary()
	assert.Equal(t, len(services.DemoProducts), summary["inventory"])
	assert.Positive(t, summary["tickets"])
	assert.False(t, app.Sync.Configured())
}

func TestNewWithoutDemoData(t *testing.T) {
	cfg := baseConfig()
	cfg.SeedDemoData = false
	app, err := New(cfg, nil, clock)
	require.NoError(t, err)
	assert.Zero(t, app.Store.Summary()["sales"])
}

func TestNewLoadsDataDir(t *testing.T) {
	dir := t.TempDir()
	data := services.GenerateDemoData(3, testNow)
	exporter := services.NewExportService(nil)
	for _, kind := range services.DataKinds {
		f, err := os.Create(filepath.Join(dir, services.DataFileNames[kind]+".csv"))
		require.NoError(t, err)
		require.NoError(t, exporter.Write(data, kind, services.FormatCSV, f))
		require.NoError(t, f.Close())
	}

	cfg := baseConfig()
	cfg.DataDir = dir
	app, err := New(cfg, nil, clock)
	require.NoError(t, err)
	got := app.Store.Snapshot()
	assert.Len(t, got.Sales, len(data.Sales))
	assert.Len(t, got.Inventory, len(data.Inventory))
	assert.Len(t, got.PriceHistory, len(data.PriceHistory))
	assert.Len(t, got.Tickets, len(data.Tickets))
}

func TestNewPlatformConfiguration(t *testing.T) {
	cfg := baseConfig()
	cfg.Platform = "shopify"
	cfg.ShopifyShopDomain = "demo.myshopify.com"
	cfg.ShopifyAccessToken = "shpat_test"
	app, err := New(cfg, nil, clock)
	require.NoError(t, err)
	assert.True(t, app.Sync.Configured())
	assert.Equal(t, "shopify", app.Sync.PlatformName())

	cfg = baseConfig()
	cfg.Platform = "shopify"
	_, err = New(cfg, nil, clock)
	assert.ErrorIs(t, err, platforms.ErrNotConfigured)

	cfg = baseConfig()
	cfg.Platform = "ebay"
	_, err = New(cfg, nil, clock)
	assert.ErrorIs(t, err, platforms.ErrUnsupportedPlatform)
}

func TestRouterRequiresAPIKey(t *testing.T) {
	cfg := baseConfig()
	cfg.APIKey = "k"
	app, err := New(cfg, nil, clock)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/inventory/predictions", nil)
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req.Header.Set("X-API-KEY", "k")
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartAutoSyncWithoutPlatform(t *testing.T) {
	app, err := New(baseConfig(), nil, clock)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// プラットフォーム未設定なら何もしない
	app.StartAutoSync(ctx)
	assert.Nil(t, app.Sync.LastResult())
}
