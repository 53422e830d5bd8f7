package services

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"smartcommerce-api/pkg/models"
	"smartcommerce-api/pkg/platforms"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 正規化後のwebhookイベント
const (
	EventOrderCreated   = "order.created"
	EventProductUpdated = "product.updated"
	EventInventoryLow   = "inventory.low"
)

// プラットフォーム固有のトピック名 → 正規化イベント
var eventAliases = map[string]string{
	"orders/create":               EventOrderCreated,
	"products/update":             EventProductUpdated,
	"inventory_levels/update":     EventInventoryLow,
	"woocommerce_new_order":       EventOrderCreated,
	"woocommerce_product_updated": EventProductUpdated,
	"woocommerce_low_stock":       EventInventoryLow,
	"order.created":               EventOrderCreated,
	"product.updated":             EventProductUpdated,
	"inventory.low":               EventInventoryLow,
}

// NormalizeEvent トピック名を正規化イベントに変換
func NormalizeEvent(event string) (string, bool) {
	normalized, ok := eventAliases[strings.ToLower(strings.TrimSpace(event))]
	return normalized, ok
}

// webhookLineItem プラットフォームの注文明細 (Shopify / WooCommerce 共通項目)
type webhookLineItem struct {
	ProductID platforms.FlexString `json:"product_id"`
	Name      string               `json:"name"`
	Quantity  int                  `json:"quantity"`
	Price     platforms.FlexString `json:"price"`
}

// webhookPayload は各イベントのペイロードで使われる項目をまとめたもの
type webhookPayload struct {
	ID          platforms.FlexString `json:"id"`
	ProductID   platforms.FlexString `json:"productId"`
	ProductName string               `json:"productName"`
	Quantity    *int                 `json:"quantity"`
	Price       platforms.FlexString `json:"price"`
	Available   *int                 `json:"available"`
	LineItems   []webhookLineItem    `json:"line_items"`
}

func (p webhookPayload) productID() string {
	if p.ProductID != "" {
		return p.ProductID.String()
	}
	return p.ID.String()
}

// WebhookService プラットフォームからのwebhookを処理するサービス
type WebhookService struct {
	store  *DataStore
	alerts *AlertService
	now    Clock
	logger *zap.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewWebhookService 新しいwebhookサービスを作成
func NewWebhookService(store *DataStore, alerts *AlertService, now Clock, logger *zap.Logger) *WebhookService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		store:   store,
		alerts:  alerts,
		now:     now,
		logger:  logger,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(now().UnixNano())), 0),
	}
}

func (s *WebhookService) newEventID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// Process webhookを処理する
// 未対応のイベントは ErrUnknownEvent を返す。
func (s *WebhookService) Process(platform, event string, payload []byte) (*models.WebhookResult, error) {
	normalized, ok := NormalizeEvent(event)
	if !ok {
		s.logger.Info("対応していないwebhookイベント", zap.String("platform", platform), zap.String("event", event))
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, event)
	}

	var body webhookPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &body); err != nil {
			return nil, fmt.Errorf("%w: webhookペイロードの解析に失敗: %v", ErrInvalidPayload, err)
		}
	}

	now := s.now()
	result := &models.WebhookResult{
		EventID:  s.newEventID(now),
		Platform: platform,
		Event:    normalized,
	}
	s.logger.Info("📨 webhookを処理します",
		zap.String("event_id", result.EventID),
		zap.String("platform", platform),
		zap.String("event", normalized),
	)

	var err error
	switch normalized {
	case EventOrderCreated:
		err = s.handleNewOrder(body, now, result)
	case EventProductUpdated:
		err = s.handleProductUpdate(body, now, result)
	case EventInventoryLow:
		err = s.handleLowInventory(body, result)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// handleNewOrder 販売記録を追加し、在庫予測を確認する
func (s *WebhookService) handleNewOrder(body webhookPayload, now time.Time, result *models.WebhookResult) error {
	today := now.Format("2006-01-02")

	var sales []models.SaleRecord
	if len(body.LineItems) > 0 {
		for _, item := range body.LineItems {
			if item.Quantity < 0 {
				return fmt.Errorf("%w: 数量が負の値です (product %s: %d)", ErrInvalidPayload, item.ProductID.String(), item.Quantity)
			}
			sales = append(sales, newSale(today, item.ProductID.String(), item.Name, item.Quantity, item.Price.Float()))
		}
	} else {
		if body.productID() == "" || body.Quantity == nil {
			return fmt.Errorf("%w: order.created には productId と quantity が必要です", ErrInvalidPayload)
		}
		if *body.Quantity < 0 {
			return fmt.Errorf("%w: 数量が負の値です (product %s: %d)", ErrInvalidPayload, body.productID(), *body.Quantity)
		}
		sales = append(sales, newSale(today, body.productID(), body.ProductName, *body.Quantity, body.Price.Float()))
	}

	s.store.AppendSales(sales...)
	result.Sale = &sales[0]

	snapshot := s.store.Snapshot()
	predictor := NewReorderService(snapshot, now, s.logger)
	for _, sale := range sales {
		prediction, err := predictor.PredictReorder(sale.ProductID)
		if err != nil {
			// 在庫管理対象外の商品は予測しない
			s.logger.Debug("在庫情報が無いため発注予測をスキップ", zap.String("product_id", sale.ProductID), zap.Error(err))
			continue
		}
		if result.Prediction == nil {
			result.Prediction = prediction
		}
		if prediction.Urgent && s.alerts != nil {
			alert := s.alerts.LowStock(prediction.ProductID, prediction.ProductName, prediction.CurrentStock)
			if result.Alert == nil {
				result.Alert = &alert
			}
		}
	}
	return nil
}

// handleProductUpdate 最新の価格提案を返す
func (s *WebhookService) handleProductUpdate(body webhookPayload, now time.Time, result *models.WebhookResult) error {
	productID := body.productID()
	if productID == "" {
		return fmt.Errorf("%w: product.updated には id が必要です", ErrInvalidPayload)
	}
	suggestion, err := NewPricingService(s.store.Snapshot(), now, s.logger).SuggestPrice(productID)
	if err != nil {
		s.logger.Debug("価格履歴が無いため価格提案をスキップ", zap.String("product_id", productID), zap.Error(err))
		return nil
	}
	result.Suggestion = suggestion
	return nil
}

// handleLowInventory 高優先度の在庫アラートを記録する
func (s *WebhookService) handleLowInventory(body webhookPayload, result *models.WebhookResult) error {
	quantity := 0
	switch {
	case body.Quantity != nil:
		quantity = *body.Quantity
	case body.Available != nil:
		quantity = *body.Available
	}
	if s.alerts == nil {
		return nil
	}
	alert := s.alerts.LowStock(body.productID(), body.ProductName, quantity)
	result.Alert = &alert
	return nil
}

func newSale(date, productID, productName string, quantity int, price float64) models.SaleRecord {
	revenue, _ := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity))).Round(2).Float64()
	return models.SaleRecord{
		Date:        date,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		Price:       price,
		Revenue:     revenue,
	}
}
