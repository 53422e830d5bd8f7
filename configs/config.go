package config

import (
	"strings"
	"time"

	"smartcommerce-api/pkg/platforms"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Port          string
	Environment   string
	APIKey        string
	AdminUsername string
	AdminPassword string
	LogLevel      string
	LogFormat     string

	DataDir      string
	SeedDemoData bool
	DemoSeed     int64

	Platform                  string
	ShopifyShopDomain         string
	ShopifyAccessToken        string
	WooCommerceSiteURL        string
	WooCommerceConsumerKey    string
	WooCommerceConsumerSecret string
	AmazonRefreshToken        string
	AmazonClientID            string
	AmazonClientSecret        string
	AmazonRegion              string
	SyncIntervalHours         int

	DefaultReorderPoint    int
	DefaultReorderQuantity int
	DefaultLeadTimeDays    int

	OpenAIAPIKey string
}

var defaults = map[string]interface{}{
	"PORT":                        "8080",
	"ENVIRONMENT":                 "development",
	"API_KEY":                     "",
	"ADMIN_USERNAME":              "admin",
	"ADMIN_PASSWORD":              "",
	"LOG_LEVEL":                   "",
	"LOG_FORMAT":                  "",
	"DATA_DIR":                    "",
	"SEED_DEMO_DATA":              true,
	"DEMO_SEED":                   42,
	"PLATFORM":                    "",
	"SHOPIFY_SHOP_DOMAIN":         "",
	"SHOPIFY_ACCESS_TOKEN":        "",
	"WOOCOMMERCE_SITE_URL":        "",
	"WOOCOMMERCE_CONSUMER_KEY":    "",
	"WOOCOMMERCE_CONSUMER_SECRET": "",
	"AMAZON_REFRESH_TOKEN":        "",
	"AMAZON_CLIENT_ID":            "",
	"AMAZON_CLIENT_SECRET":        "",
	"AMAZON_REGION":               "us-east-1",
	"SYNC_INTERVAL_HOURS":         6,
	"DEFAULT_REORDER_POINT":       20,
	"DEFAULT_REORDER_QUANTITY":    50,
	"DEFAULT_LEAD_TIME_DAYS":      7,
	"OPENAI_API_KEY":              "",
}

// LoadConfig loads configuration from environment variables
// .env は呼び出し側で godotenv により読み込まれている前提。
func LoadConfig() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	return &Config{
		Port:          v.GetString("PORT"),
		Environment:   v.GetString("ENVIRONMENT"),
		APIKey:        v.GetString("API_KEY"),
		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		LogLevel:      v.GetString("LOG_LEVEL"),
		LogFormat:     v.GetString("LOG_FORMAT"),

		DataDir:      v.GetString("DATA_DIR"),
		SeedDemoData: v.GetBool("SEED_DEMO_DATA"),
		DemoSeed:     v.GetInt64("DEMO_SEED"),

		Platform:                  strings.ToLower(strings.TrimSpace(v.GetString("PLATFORM"))),
		ShopifyShopDomain:         v.GetString("SHOPIFY_SHOP_DOMAIN"),
		ShopifyAccessToken:        v.GetString("SHOPIFY_ACCESS_TOKEN"),
		WooCommerceSiteURL:        v.GetString("WOOCOMMERCE_SITE_URL"),
		WooCommerceConsumerKey:    v.GetString("WOOCOMMERCE_CONSUMER_KEY"),
		WooCommerceConsumerSecret: v.GetString("WOOCOMMERCE_CONSUMER_SECRET"),
		AmazonRefreshToken:        v.GetString("AMAZON_REFRESH_TOKEN"),
		AmazonClientID:            v.GetString("AMAZON_CLIENT_ID"),
		AmazonClientSecret:        v.GetString("AMAZON_CLIENT_SECRET"),
		AmazonRegion:              v.GetString("AMAZON_REGION"),
		SyncIntervalHours:         v.GetInt("SYNC_INTERVAL_HOURS"),

		DefaultReorderPoint:    v.GetInt("DEFAULT_REORDER_POINT"),
		DefaultReorderQuantity: v.GetInt("DEFAULT_REORDER_QUANTITY"),
		DefaultLeadTimeDays:    v.GetInt("DEFAULT_LEAD_TIME_DAYS"),

		OpenAIAPIKey: v.GetString("OPENAI_API_KEY"),
	}
}

// PlatformCredentials builds the credentials for the configured platform.
func (c *Config) PlatformCredentials() platforms.Credentials {
	return platforms.Credentials{
		ShopDomain:     c.ShopifyShopDomain,
		AccessToken:    c.ShopifyAccessToken,
		SiteURL:        c.WooCommerceSiteURL,
		ConsumerKey:    c.WooCommerceConsumerKey,
		ConsumerSecret: c.WooCommerceConsumerSecret,
		RefreshToken:   c.AmazonRefreshToken,
		ClientID:       c.AmazonClientID,
		ClientSecret:   c.AmazonClientSecret,
		Region:         c.AmazonRegion,
	}
}

// SyncInterval 自動同期の間隔 (0以下なら無効)
func (c *Config) SyncInterval() time.Duration {
	if c.SyncIntervalHours <= 0 {
		return 0
	}
	return time.Duration(c.SyncIntervalHours) * time.Hour
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
