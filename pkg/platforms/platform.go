package platforms

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"smartcommerce-api/pkg/models"
)

var (
	// ErrUnsupportedPlatform 未対応のプラットフォーム種別
	ErrUnsupportedPlatform = errors.New("platforms: unsupported platform")
	// ErrNotConfigured 認証情報が不足している
	ErrNotConfigured = errors.New("platforms: platform not configured")
	// ErrRequestFailed プラットフォームAPIがエラーを返した
	ErrRequestFailed = errors.New("platforms: platform request failed")
	// ErrInvalidResponse レスポンスを解析できない
	ErrInvalidResponse = errors.New("platforms: invalid platform response")
	// ErrAuthFailed トークン取得に失敗
	ErrAuthFailed = errors.New("platforms: platform authentication failed")
	// ErrPriceUpdateUnsupported 価格更新APIが使えない（Amazonはセラーセントラル側の設定が必要）
	ErrPriceUpdateUnsupported = errors.New("platforms: price updates require seller central setup")
)

// Kind identifies a commerce platform.
type Kind string

const (
	KindShopify     Kind = "shopify"
	KindWooCommerce Kind = "woocommerce"
	KindAmazon      Kind = "amazon"
)

// Kinds lists the supported platforms.
var Kinds = []Kind{KindShopify, KindWooCommerce, KindAmazon}

// ParseKind normalises a platform name.
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(name)))
	switch k {
	case KindShopify, KindWooCommerce, KindAmazon:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlatform, name)
	}
}

// DisplayName returns a human-readable name for the platform
func (k Kind) DisplayName() string {
	switch k {
	case KindShopify:
		return "Shopify"
	case KindWooCommerce:
		return "WooCommerce"
	case KindAmazon:
		return "Amazon"
	default:
		return string(k)
	}
}

// Platform 外部ECプラットフォームへの共通インターフェース
type Platform interface {
	Name() Kind
	GetProducts(ctx context.Context) ([]models.PlatformProduct, error)
	// GetOrders since 以降の注文を明細単位の販売レコードとして返す
	GetOrders(ctx context.Context, since time.Time) ([]models.SaleRecord, error)
	UpdatePrice(ctx context.Context, productID string, price float64) error
}

// Credentials プラットフォーム接続情報
// BaseURL / TokenURL は空なら各プラットフォームの本番URLを使う。
type Credentials struct {
	ShopDomain  string `json:"shopDomain,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`

	SiteURL        string `json:"siteUrl,omitempty"`
	ConsumerKey    string `json:"consumerKey,omitempty"`
	ConsumerSecret string `json:"consumerSecret,omitempty"`

	RefreshToken string `json:"refreshToken,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Region       string `json:"region,omitempty"`

	BaseURL  string        `json:"-"`
	TokenURL string        `json:"-"`
	Timeout  time.Duration `json:"-"`
}

// New 種別に応じたプラットフォームクライアントを作成
func New(kind Kind, creds Credentials) (Platform, error) {
	var (
		p   Platform
		err error
	)
	switch kind {
	case KindShopify:
		p, err = NewShopifyClient(creds)
	case KindWooCommerce:
		p, err = NewWooCommerceClient(creds)
	case KindAmazon:
		p, err = NewAmazonClient(creds)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, kind)
	}
	if err != nil {
		// 型付き nil を返さない
		return nil, err
	}
	return p, nil
}

func requireFields(kind Kind, fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%w: %s requires %s", ErrNotConfigured, kind.DisplayName(), strings.Join(missing, ", "))
}
