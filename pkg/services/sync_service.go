package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"smartcommerce-api/pkg/models"
	"smartcommerce-api/pkg/platforms"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 同期時に取得する注文の期間
const syncLookbackDays = 30

// ReorderDefaults プラットフォームから取り込んだ新商品に設定する発注パラメータ
type ReorderDefaults struct {
	ReorderPoint    int
	ReorderQuantity int
	LeadTimeDays    int
}

// DefaultReorderDefaults デモデータと同じ発注パラメータ
var DefaultReorderDefaults = ReorderDefaults{ReorderPoint: 20, ReorderQuantity: 50, LeadTimeDays: 7}

// SyncService 外部ECプラットフォームとデータストアを同期するサービス
type SyncService struct {
	platform platforms.Platform
	store    *DataStore
	defaults ReorderDefaults
	now      Clock
	logger   *zap.Logger

	mu   sync.RWMutex
	last *models.SyncResult
}

// NewSyncService 新しい同期サービスを作成
// platform が nil の場合、同期系の操作は platforms.ErrNotConfigured を返す。
func NewSyncService(platform platforms.Platform, store *DataStore, defaults ReorderDefaults, now Clock, logger *zap.Logger) *SyncService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		platform: platform,
		store:    store,
		defaults: defaults,
		now:      now,
		logger:   logger,
	}
}

// Configured プラットフォームが設定されているか
func (s *SyncService) Configured() bool {
	return s.platform != nil
}

// PlatformName 接続中のプラットフォーム名
func (s *SyncService) PlatformName() string {
	if s.platform == nil {
		return ""
	}
	return string(s.platform.Name())
}

// LastResult 直近の同期結果 (未実行なら nil)
func (s *SyncService) LastResult() *models.SyncResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Sync 商品を在庫スナップショットに、直近30日の注文を販売記録に取り込む
func (s *SyncService) Sync(ctx context.Context) (*models.SyncResult, error) {
	if s.platform == nil {
		return nil, platforms.ErrNotConfigured
	}

	now := s.now()
	name := string(s.platform.Name())
	s.logger.Info("🔄 プラットフォーム同期を開始", zap.String("platform", name))

	products, err := s.platform.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s の商品取得に失敗: %w", name, err)
	}
	s.logger.Info("商品を取得しました", zap.String("platform", name), zap.Int("products", len(products)))

	cutoff, _ := time.Parse("2006-01-02", now.AddDate(0, 0, -syncLookbackDays).Format("2006-01-02"))
	orders, err := s.platform.GetOrders(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("%s の注文取得に失敗: %w", name, err)
	}
	s.logger.Info("注文明細を取得しました", zap.String("platform", name), zap.Int("orders", len(orders)))

	s.store.UpsertInventory(s.toInventory(products, now)...)
	replaced := s.store.MergeSalesSince(cutoff, orders)

	newSales := len(orders) - replaced
	if newSales < 0 {
		newSales = 0
	}
	result := &models.SyncResult{
		SyncID:    uuid.New().String(),
		Platform:  name,
		SyncDate:  now.UTC().Format(time.RFC3339),
		Products:  products,
		Orders:    orders,
		NewSales:  newSales,
		Inventory: len(products),
	}

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	s.logger.Info("✅ プラットフォーム同期が完了しました",
		zap.String("sync_id", result.SyncID),
		zap.String("platform", name),
		zap.Int("new_sales", newSales),
	)
	return result, nil
}

// toInventory 既存商品の発注パラメータは維持し、新商品にはデフォルトを設定する
func (s *SyncService) toInventory(products []models.PlatformProduct, now time.Time) []models.InventorySnapshot {
	current := s.store.Snapshot()
	items := make([]models.InventorySnapshot, 0, len(products))
	for _, p := range products {
		item, ok := current.FindInventory(p.ID)
		if !ok {
			item = models.InventorySnapshot{
				ProductID:       p.ID,
				ReorderPoint:    s.defaults.ReorderPoint,
				ReorderQuantity: s.defaults.ReorderQuantity,
				LeadTimeDays:    s.defaults.LeadTimeDays,
				LastRestockDate: now.Format("2006-01-02"),
			}
		}
		item.ProductName = p.Name
		item.CurrentStock = p.Inventory
		if item.CurrentStock < 0 {
			// 売り越しでプラットフォーム在庫が負になることがある
			s.logger.Warn("⚠️ 負の在庫数を0に補正しました", zap.String("product_id", p.ID), zap.Int("stock", p.Inventory))
			item.CurrentStock = 0
		}
		items = append(items, item)
	}
	return items
}

// Run 初回同期の後、interval ごとに同期を繰り返す。ctx がキャンセルされるまで戻らない。
func (s *SyncService) Run(ctx context.Context, interval time.Duration) {
	if s.platform == nil || interval <= 0 {
		return
	}
	s.logger.Info("⏰ 自動同期をスケジュールしました", zap.String("platform", s.PlatformName()), zap.Duration("interval", interval))

	s.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("自動同期を停止しました")
			return
		case <-ticker.C:
			s.logger.Info("定期同期を実行中...")
			s.runOnce(ctx)
		}
	}
}

func (s *SyncService) runOnce(ctx context.Context) {
	if _, err := s.Sync(ctx); err != nil {
		s.logger.Error("❌ 同期に失敗しました", zap.Error(err))
	}
}

// ApplyPriceChange プラットフォーム上の価格を更新し、当日の価格履歴として記録する
func (s *SyncService) ApplyPriceChange(ctx context.Context, productID string, price float64) error {
	if s.platform == nil {
		return platforms.ErrNotConfigured
	}
	if price <= 0 {
		return fmt.Errorf("価格は0より大きい必要があります: %v", price)
	}
	s.logger.Info("💲 価格を更新します", zap.String("product_id", productID), zap.Float64("price", price))

	if err := s.platform.UpdatePrice(ctx, productID, price); err != nil {
		return err
	}

	entry := models.PriceHistoryEntry{
		Date:      s.now().Format("2006-01-02"),
		ProductID: productID,
		OurPrice:  round2(price),
	}
	if latest, ok := s.store.Snapshot().LatestPrice(productID); ok {
		entry.ProductName = latest.ProductName
		entry.CompetitorAvgPrice = latest.CompetitorAvgPrice
		entry.PricePosition = pricePosition(entry.OurPrice, latest.CompetitorAvgPrice)
	}
	s.store.RecordPrice(entry)
	return nil
}

// TestConnection 商品取得を試して接続を確認
func (s *SyncService) TestConnection(ctx context.Context) models.ConnectionTestResult {
	if s.platform == nil {
		return models.ConnectionTestResult{Success: false, Message: "No platform configured."}
	}
	name := s.platform.Name().DisplayName()
	products, err := s.platform.GetProducts(ctx)
	if err != nil {
		return models.ConnectionTestResult{Success: false, Message: fmt.Sprintf("Connection failed: %v", err)}
	}
	if len(products) == 0 {
		return models.ConnectionTestResult{Success: false, Message: "Connection successful but no products found."}
	}
	sample := products[0]
	return models.ConnectionTestResult{
		Success:       true,
		Message:       fmt.Sprintf("Successfully connected to %s. Found %d products.", name, len(products)),
		SampleProduct: &sample,
	}
}
