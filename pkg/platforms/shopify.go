package platforms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smartcommerce-api/pkg/models"

	"github.com/shopspring/decimal"
)

const shopifyAPIVersion = "2024-01"

// ShopifyClient Shopify Admin REST API クライアント
type ShopifyClient struct {
	rest    restClient
	baseURL string
	token   string
}

// NewShopifyClient 新しいShopifyクライアントを作成
func NewShopifyClient(creds Credentials) (*ShopifyClient, error) {
	if err := requireFields(KindShopify, map[string]string{
		"shopDomain":  firstNonEmpty(creds.BaseURL, creds.ShopDomain),
		"accessToken": creds.AccessToken,
	}); err != nil {
		return nil, err
	}
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s/admin/api/%s", creds.ShopDomain, shopifyAPIVersion)
	}
	return &ShopifyClient{
		rest:    newRESTClient(KindShopify, creds.Timeout),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   creds.AccessToken,
	}, nil
}

// Name implements Platform.
func (c *ShopifyClient) Name() Kind { return KindShopify }

type shopifyVariant struct {
	ID                FlexString `json:"id"`
	Price             FlexString `json:"price"`
	InventoryQuantity int        `json:"inventory_quantity"`
	SKU               string     `json:"sku"`
}

type shopifyProduct struct {
	ID       FlexString       `json:"id"`
	Title    string           `json:"title"`
	Variants []shopifyVariant `json:"variants"`
}

type shopifyLineItem struct {
	ProductID FlexString `json:"product_id"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
	Price     FlexString `json:"price"`
}

type shopifyOrder struct {
	CreatedAt string            `json:"created_at"`
	LineItems []shopifyLineItem `json:"line_items"`
}

func (c *ShopifyClient) headers() map[string]string {
	return map[string]string{"X-Shopify-Access-Token": c.token}
}

// GetProducts 商品一覧を取得（先頭バリアントの価格・在庫を使う）
func (c *ShopifyClient) GetProducts(ctx context.Context) ([]models.PlatformProduct, error) {
	var resp struct {
		Products []shopifyProduct `json:"products"`
	}
	if err := c.rest.doJSON(ctx, http.MethodGet, c.baseURL+"/products.json", c.headers(), nil, &resp); err != nil {
		return nil, err
	}

	products := make([]models.PlatformProduct, 0, len(resp.Products))
	for _, p := range resp.Products {
		product := models.PlatformProduct{ID: p.ID.String(), Name: p.Title}
		if len(p.Variants) > 0 {
			v := p.Variants[0]
			product.Price = v.Price.Float()
			product.Inventory = v.InventoryQuantity
			product.SKU = v.SKU
		}
		products = append(products, product)
	}
	return products, nil
}

// GetOrders since 以降に作成された注文を取得
func (c *ShopifyClient) GetOrders(ctx context.Context, since time.Time) ([]models.SaleRecord, error) {
	q := url.Values{}
	q.Set("created_at_min", since.UTC().Format(time.RFC3339))
	q.Set("status", "any")

	var resp struct {
		Orders []shopifyOrder `json:"orders"`
	}
	if err := c.rest.doJSON(ctx, http.MethodGet, c.baseURL+"/orders.json?"+q.Encode(), c.headers(), nil, &resp); err != nil {
		return nil, err
	}

	var sales []models.SaleRecord
	for _, order := range resp.Orders {
		for _, item := range order.LineItems {
			price := item.Price.Float()
			sales = append(sales, models.SaleRecord{
				Date:        orderDate(order.CreatedAt),
				ProductID:   item.ProductID.String(),
				ProductName: item.Name,
				Quantity:    item.Quantity,
				Price:       price,
				Revenue:     lineRevenue(item.Quantity, price),
			})
		}
	}
	return sales, nil
}

// UpdatePrice バリアント価格を更新
// Shopifyはバリアント単位で価格を持つため productID をバリアントIDとして扱う。
func (c *ShopifyClient) UpdatePrice(ctx context.Context, productID string, price float64) error {
	body := map[string]interface{}{
		"variant": map[string]string{
			"id":    productID,
			"price": decimal.NewFromFloat(price).StringFixed(2),
		},
	}
	endpoint := fmt.Sprintf("%s/variants/%s.json", c.baseURL, url.PathEscape(productID))
	return c.rest.doJSON(ctx, http.MethodPut, endpoint, c.headers(), body, nil)
}

func lineRevenue(quantity int, price float64) float64 {
	f, _ := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2).Float64()
	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
