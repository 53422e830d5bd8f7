package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"smartcommerce-api/pkg/models"

	"github.com/shopspring/decimal"
)

const (
	amazonTokenURL = "https://api.amazon.com/auth/o2/token"
	// 米国マーケットプレイス
	defaultMarketplaceID = "ATVPDKIKX0DER"
	// 有効期限ぎりぎりのトークンは使わない
	tokenExpiryMargin = time.Minute
)

// AWSリージョン → SP-API エンドポイントのリージョン
var spapiRegions = map[string]string{
	"us-east-1": "na",
	"eu-west-1": "eu",
	"us-west-2": "fe",
}

// AmazonClient Amazon Selling Partner API クライアント
// LWA (Login with Amazon) のリフレッシュトークンでアクセストークンを取得する。
type AmazonClient struct {
	rest          restClient
	baseURL       string
	tokenURL      string
	refreshToken  string
	clientID      string
	clientSecret  string
	marketplaceID string

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

// NewAmazonClient 新しいAmazonクライアントを作成
func NewAmazonClient(creds Credentials) (*AmazonClient, error) {
	if err := requireFields(KindAmazon, map[string]string{
		"refreshToken": creds.RefreshToken,
		"clientId":     creds.ClientID,
		"clientSecret": creds.ClientSecret,
	}); err != nil {
		return nil, err
	}

	baseURL := creds.BaseURL
	if baseURL == "" {
		region := creds.Region
		if region == "" {
			region = "us-east-1"
		}
		if short, ok := spapiRegions[region]; ok {
			region = short
		}
		baseURL = fmt.Sprintf("https://sellingpartnerapi-%s.amazon.com", region)
	}
	tokenURL := creds.TokenURL
	if tokenURL == "" {
		tokenURL = amazonTokenURL
	}

	return &AmazonClient{
		rest:          newRESTClient(KindAmazon, creds.Timeout),
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		tokenURL:      tokenURL,
		refreshToken:  creds.RefreshToken,
		clientID:      creds.ClientID,
		clientSecret:  creds.ClientSecret,
		marketplaceID: defaultMarketplaceID,
	}, nil
}

// Name implements Platform.
func (c *AmazonClient) Name() Kind { return KindAmazon }

// authenticate アクセストークンを取得（有効なものがあれば再利用）
func (c *AmazonClient) authenticate(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.refreshToken)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("トークンリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.rest.do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &token); err != nil || token.AccessToken == "" {
		return "", fmt.Errorf("%w: access_token がレスポンスに含まれていません", ErrAuthFailed)
	}

	c.accessToken = token.AccessToken
	c.expiresAt = time.Now().Add(time.Duration(token.ExpiresIn)*time.Second - tokenExpiryMargin)
	return c.accessToken, nil
}

func (c *AmazonClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	token, err := c.authenticate(ctx)
	if err != nil {
		return err
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return c.rest.doJSON(ctx, http.MethodGet, endpoint, map[string]string{"x-amz-access-token": token}, nil, out)
}

type amazonInventorySummary struct {
	ASIN          string `json:"asin"`
	SellerSKU     string `json:"sellerSku"`
	ProductName   string `json:"productName"`
	TotalQuantity int    `json:"totalQuantity"`
}

type amazonMoney struct {
	Amount       FlexString `json:"Amount"`
	CurrencyCode string     `json:"CurrencyCode"`
}

type amazonOrderItem struct {
	ASIN            string      `json:"ASIN"`
	SellerSKU       string      `json:"SellerSKU"`
	Title           string      `json:"Title"`
	QuantityOrdered int         `json:"QuantityOrdered"`
	ItemPrice       amazonMoney `json:"ItemPrice"`
}

// GetProducts FBA在庫サマリーを商品一覧として取得
func (c *AmazonClient) GetProducts(ctx context.Context) ([]models.PlatformProduct, error) {
	q := url.Values{}
	q.Set("details", "true")
	q.Set("granularityType", "Marketplace")
	q.Set("granularityId", c.marketplaceID)
	q.Set("marketplaceIds", c.marketplaceID)

	var resp struct {
		Payload struct {
			InventorySummaries []amazonInventorySummary `json:"inventorySummaries"`
		} `json:"payload"`
	}
	if err := c.get(ctx, "/fba/inventory/v1/summaries", q, &resp); err != nil {
		return nil, err
	}

	products := make([]models.PlatformProduct, 0, len(resp.Payload.InventorySummaries))
	for _, item := range resp.Payload.InventorySummaries {
		products = append(products, models.PlatformProduct{
			ID:        item.ASIN,
			Name:      item.ProductName,
			Inventory: item.TotalQuantity,
			SKU:       item.SellerSKU,
		})
	}
	return products, nil
}

// GetPricing ASIN の出品価格を取得
func (c *AmazonClient) GetPricing(ctx context.Context, asin string) (float64, error) {
	q := url.Values{}
	q.Set("MarketplaceId", c.marketplaceID)
	q.Set("ItemType", "Asin")
	q.Set("Asins", asin)

	var resp struct {
		Payload []struct {
			ASIN    string `json:"ASIN"`
			Product struct {
				Offers []struct {
					BuyingPrice struct {
						ListingPrice amazonMoney `json:"ListingPrice"`
					} `json:"BuyingPrice"`
				} `json:"Offers"`
			} `json:"Product"`
		} `json:"payload"`
	}
	if err := c.get(ctx, "/products/pricing/v0/price", q, &resp); err != nil {
		return 0, err
	}
	for _, p := range resp.Payload {
		if p.ASIN == asin && len(p.Product.Offers) > 0 {
			return p.Product.Offers[0].BuyingPrice.ListingPrice.Amount.Float(), nil
		}
	}
	return 0, fmt.Errorf("%w: ASIN %s の価格が見つかりません", ErrInvalidResponse, asin)
}

// GetOrders since 以降の注文と明細を取得
func (c *AmazonClient) GetOrders(ctx context.Context, since time.Time) ([]models.SaleRecord, error) {
	q := url.Values{}
	q.Set("MarketplaceIds", c.marketplaceID)
	q.Set("CreatedAfter", since.UTC().Format(time.RFC3339))

	var resp struct {
		Payload struct {
			Orders []struct {
				AmazonOrderID string `json:"AmazonOrderId"`
				PurchaseDate  string `json:"PurchaseDate"`
			} `json:"Orders"`
		} `json:"payload"`
	}
	if err := c.get(ctx, "/orders/v0/orders", q, &resp); err != nil {
		return nil, err
	}

	var sales []models.SaleRecord
	for _, order := range resp.Payload.Orders {
		var items struct {
			Payload struct {
				OrderItems []amazonOrderItem `json:"OrderItems"`
			} `json:"payload"`
		}
		path := fmt.Sprintf("/orders/v0/orders/%s/orderItems", url.PathEscape(order.AmazonOrderID))
		if err := c.get(ctx, path, nil, &items); err != nil {
			return nil, fmt.Errorf("注文 %s の明細取得に失敗: %w", order.AmazonOrderID, err)
		}
		for _, item := range items.Payload.OrderItems {
			// ItemPrice は明細合計額
			revenue := item.ItemPrice.Amount.Float()
			var unit float64
			if item.QuantityOrdered > 0 {
				unit, _ = decimal.NewFromFloat(revenue).Div(decimal.NewFromInt(int64(item.QuantityOrdered))).Round(2).Float64()
			}
			sales = append(sales, models.SaleRecord{
				Date:        orderDate(order.PurchaseDate),
				ProductID:   item.ASIN,
				ProductName: item.Title,
				Quantity:    item.QuantityOrdered,
				Price:       unit,
				Revenue:     revenue,
			})
		}
	}
	return sales, nil
}

// UpdatePrice AmazonはListings APIの追加承認が必要なため未対応
func (c *AmazonClient) UpdatePrice(_ context.Context, productID string, _ float64) error {
	return fmt.Errorf("%w (product %s)", ErrPriceUpdateUnsupported, productID)
}
