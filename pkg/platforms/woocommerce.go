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

// WooCommerceClient WooCommerce REST API (wc/v3) クライアント
type WooCommerceClient struct {
	rest           restClient
	baseURL        string
	consumerKey    string
	consumerSecret string
}

// NewWooCommerceClient 新しいWooCommerceクライアントを作成
func NewWooCommerceClient(creds Credentials) (*WooCommerceClient, error) {
	if err := requireFields(KindWooCommerce, map[string]string{
		"siteUrl":        firstNonEmpty(creds.BaseURL, creds.SiteURL),
		"consumerKey":    creds.ConsumerKey,
		"consumerSecret": creds.ConsumerSecret,
	}); err != nil {
		return nil, err
	}
	baseURL := creds.BaseURL
	if baseURL == "" {
		baseURL = strings.TrimSuffix(creds.SiteURL, "/") + "/wp-json/wc/v3"
	}
	return &WooCommerceClient{
		rest:           newRESTClient(KindWooCommerce, creds.Timeout),
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		consumerKey:    creds.ConsumerKey,
		consumerSecret: creds.ConsumerSecret,
	}, nil
}

// Name implements Platform.
func (c *WooCommerceClient) Name() Kind { return KindWooCommerce }

type wooProduct struct {
	ID            FlexString `json:"id"`
	Name          string     `json:"name"`
	Price         FlexString `json:"price"`
	StockQuantity *int       `json:"stock_quantity"`
	SKU           string     `json:"sku"`
}

type wooLineItem struct {
	ProductID FlexString `json:"product_id"`
	Name      string     `json:"name"`
	Quantity  int        `json:"quantity"`
	Price     FlexString `json:"price"`
	Total     FlexString `json:"total"`
}

type wooOrder struct {
	ID          FlexString    `json:"id"`
	DateCreated string        `json:"date_created"`
	LineItems   []wooLineItem `json:"line_items"`
}

// do は consumer key / secret の Basic 認証を付けてリクエストする
func (c *WooCommerceClient) do(ctx context.Context, method, endpoint string, requestData, responseData interface{}) error {
	headers := map[string]string{"Authorization": basicAuth(c.consumerKey, c.consumerSecret)}
	return c.rest.doJSON(ctx, method, endpoint, headers, requestData, responseData)
}

// GetProducts 商品一覧を取得
func (c *WooCommerceClient) GetProducts(ctx context.Context) ([]models.PlatformProduct, error) {
	var resp []wooProduct
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/products?per_page=100", nil, &resp); err != nil {
		return nil, err
	}

	products := make([]models.PlatformProduct, 0, len(resp))
	for _, p := range resp {
		product := models.PlatformProduct{
			ID:    p.ID.String(),
			Name:  p.Name,
			Price: p.Price.Float(),
			SKU:   p.SKU,
		}
		// 在庫管理していない商品は null が返る
		if p.StockQuantity != nil {
			product.Inventory = *p.StockQuantity
		}
		products = append(products, product)
	}
	return products, nil
}

// GetOrders since 以降の注文を取得
func (c *WooCommerceClient) GetOrders(ctx context.Context, since time.Time) ([]models.SaleRecord, error) {
	q := url.Values{}
	q.Set("after", since.UTC().Format(time.RFC3339))
	q.Set("per_page", "100")

	var resp []wooOrder
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/orders?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	var sales []models.SaleRecord
	for _, order := range resp {
		for _, item := range order.LineItems {
			price := item.Price.Float()
			revenue := item.Total.Float()
			if item.Total == "" {
				revenue = lineRevenue(item.Quantity, price)
			}
			sales = append(sales, models.SaleRecord{
				Date:        orderDate(order.DateCreated),
				ProductID:   item.ProductID.String(),
				ProductName: item.Name,
				Quantity:    item.Quantity,
				Price:       price,
				Revenue:     revenue,
			})
		}
	}
	return sales, nil
}

// UpdatePrice 通常価格 (regular_price) を更新
func (c *WooCommerceClient) UpdatePrice(ctx context.Context, productID string, price float64) error {
	body := map[string]string{"regular_price": decimal.NewFromFloat(price).StringFixed(2)}
	endpoint := fmt.Sprintf("%s/products/%s", c.baseURL, url.PathEscape(productID))
	return c.do(ctx, http.MethodPut, endpoint, body, nil)
}

// CreateSupportTicket WooCommerceにはチケット機能が無いため注文メモとして登録する
func (c *WooCommerceClient) CreateSupportTicket(ctx context.Context, orderID, customerEmail, subject, message string) error {
	if strings.TrimSpace(orderID) == "" {
		return fmt.Errorf("%w: order id is required for a support note", ErrNotConfigured)
	}
	body := map[string]interface{}{
		"note":          fmt.Sprintf("Support Ticket - %s\n\nFrom: %s\n\nMessage: %s", subject, customerEmail, message),
		"customer_note": false,
	}
	endpoint := fmt.Sprintf("%s/orders/%s/notes", c.baseURL, url.PathEscape(orderID))
	return c.do(ctx, http.MethodPost, endpoint, body, nil)
}
