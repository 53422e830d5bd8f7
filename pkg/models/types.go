package models

// SaleRecord represents a single sales record.
// 日付は YYYY-MM-DD 形式（プラットフォーム同期・CSV取り込み共通）
type SaleRecord struct {
	Date        string  `json:"date"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	Revenue     float64 `json:"revenue"`
}

// PriceHistoryEntry 週次の価格観測（自社価格と競合平均）
type PriceHistoryEntry struct {
	Date               string  `json:"date"`
	ProductID          string  `json:"productId"`
	ProductName        string  `json:"productName,omitempty"`
	OurPrice           float64 `json:"ourPrice"`
	CompetitorAvgPrice float64 `json:"competitorAvgPrice"`
	PricePosition      string  `json:"pricePosition"` // "above" or "below"
	Margin             float64 `json:"margin"`        // % of our price
}

// InventorySnapshot 在庫スナップショット
type InventorySnapshot struct {
	ProductID       string `json:"productId"`
	ProductName     string `json:"productName"`
	CurrentStock    int    `json:"currentStock"`
	ReorderPoint    int    `json:"reorderPoint"`
	ReorderQuantity int    `json:"reorderQuantity"`
	LeadTimeDays    int    `json:"leadTimeDays"`
	LastRestockDate string `json:"lastRestockDate,omitempty"`
}

// SupportTicket 過去のサポート問い合わせ（テンプレート学習用）
type SupportTicket struct {
	TicketID          string `json:"ticketId"`
	Date              string `json:"date"`
	CustomerEmail     string `json:"customerEmail,omitempty"`
	Category          string `json:"category"`
	Subject           string `json:"subject"`
	Message           string `json:"message"`
	SuggestedResponse string `json:"suggestedResponse"`
	Status            string `json:"status"` // "resolved", "pending"
}

// Product is the catalog entry used by the demo data generator.
type Product struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	BasePrice float64 `json:"basePrice"`
	Cost      float64 `json:"cost"`
}

// PriceSuggestion 価格提案
type PriceSuggestion struct {
	ProductID        string  `json:"productId"`
	CurrentPrice     float64 `json:"currentPrice"`
	SuggestedPrice   float64 `json:"suggestedPrice"`
	Reason           string  `json:"reason"`
	ExpectedImpact   string  `json:"expectedImpact"`
	Velocity         float64 `json:"velocity"`         // units/day over the last 7 days
	MarketDifference float64 `json:"marketDifference"` // % vs competitor average
	Stock            int     `json:"stock"`
}

// Trend directions
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// TrendResult 販売トレンド（直近7日 vs 28日平均）
type TrendResult struct {
	Trend      string  `json:"trend"`
	Percentage float64 `json:"percentage"`
}

// ReorderPrediction 発注予測
// DaysUntilStockout / ReorderIn are nil when there were no sales to project from.
type ReorderPrediction struct {
	ProductID         string  `json:"productId"`
	ProductName       string  `json:"productName"`
	CurrentStock      int     `json:"currentStock"`
	DailySales        float64 `json:"dailySales"`
	Trend             string  `json:"trend"`
	DaysUntilStockout *int    `json:"daysUntilStockout"`
	ReorderIn         *int    `json:"reorderIn"`
	Urgent            bool    `json:"urgent"`
	NoSalesData       bool    `json:"noSalesData,omitempty"`
	Recommendation    string  `json:"recommendation"`
}

// SupportReplyRequest サポート返信生成リクエスト
type SupportReplyRequest struct {
	Subject  string `json:"subject" binding:"required"`
	Message  string `json:"message"`
	Category string `json:"category" binding:"required"`
}

// SupportReply 生成された返信
type SupportReply struct {
	Response string `json:"response"`
	Source   string `json:"source"` // "ai", "template", "fallback"
	Score    int    `json:"score"`
}

// Alert types and priorities
const (
	AlertTypeInventory = "inventory"
	PriorityHigh       = "high"
	PriorityMedium     = "medium"
)

// Alert 在庫アラートなどの通知
type Alert struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Priority  string `json:"priority"`
	ProductID string `json:"productId,omitempty"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// PlatformProduct is a product as reported by a commerce platform.
type PlatformProduct struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Inventory int     `json:"inventory"`
	SKU       string  `json:"sku"`
}

// SyncResult プラットフォーム同期結果
type SyncResult struct {
	SyncID    string            `json:"syncId"`
	Platform  string            `json:"platform"`
	SyncDate  string            `json:"syncDate"`
	Products  []PlatformProduct `json:"products"`
	Orders    []SaleRecord      `json:"orders"`
	NewSales  int               `json:"newSales"`
	Inventory int               `json:"inventory"`
}

// WebhookResult webhook処理結果
type WebhookResult struct {
	EventID    string             `json:"eventId"`
	Platform   string             `json:"platform"`
	Event      string             `json:"event"`
	Sale       *SaleRecord        `json:"sale,omitempty"`
	Prediction *ReorderPrediction `json:"prediction,omitempty"`
	Suggestion *PriceSuggestion   `json:"suggestion,omitempty"`
	Alert      *Alert             `json:"alert,omitempty"`
}

// ConnectionTestResult プラットフォーム接続テスト結果
type ConnectionTestResult struct {
	Success       bool             `json:"success"`
	Message       string           `json:"message"`
	SampleProduct *PlatformProduct `json:"sampleProduct,omitempty"`
}
