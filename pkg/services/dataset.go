package services

import (
	"sync"
	"time"

	"smartcommerce-api/pkg/models"

	"go.uber.org/zap"
)

// Clock 現在時刻を返す関数（エンジンは実時計を直接読まない）
type Clock func() time.Time

// dateLayouts 受け付ける日付フォーマット
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
}

// parseDate 日付文字列を解析（複数フォーマット対応）
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Dataset エンジンが参照する全レコードの不変スナップショット
type Dataset struct {
	Sales        []models.SaleRecord        `json:"sales"`
	PriceHistory []models.PriceHistoryEntry `json:"priceHistory"`
	Inventory    []models.InventorySnapshot `json:"inventory"`
	Tickets      []models.SupportTicket     `json:"tickets"`
}

// FindInventory 商品IDの在庫スナップショットを返す
func (d Dataset) FindInventory(productID string) (models.InventorySnapshot, bool) {
	for _, item := range d.Inventory {
		if item.ProductID == productID {
			return item, true
		}
	}
	return models.InventorySnapshot{}, false
}

// LatestPrice 商品IDの最新の価格履歴を返す
// 最新日付が同じ場合は入力順で先のものを使う。
func (d Dataset) LatestPrice(productID string) (models.PriceHistoryEntry, bool) {
	var (
		latest     models.PriceHistoryEntry
		latestDate time.Time
		found      bool
	)
	for _, entry := range d.PriceHistory {
		if entry.ProductID != productID {
			continue
		}
		date, _ := parseDate(entry.Date)
		if !found || date.After(latestDate) {
			latest = entry
			latestDate = date
			found = true
		}
	}
	return latest, found
}

// clone 全コレクションのディープコピー
func (d Dataset) clone() Dataset {
	return Dataset{
		Sales:        append([]models.SaleRecord(nil), d.Sales...),
		PriceHistory: append([]models.PriceHistoryEntry(nil), d.PriceHistory...),
		Inventory:    append([]models.InventorySnapshot(nil), d.Inventory...),
		Tickets:      append([]models.SupportTicket(nil), d.Tickets...),
	}
}

// DataStore はプラットフォーム同期やwebhookから更新されるデータセットを保持します。
// 読み取り側は常に Snapshot() のコピーを使うため、書き込みと競合しません。
type DataStore struct {
	mu            sync.RWMutex
	data          Dataset
	ticketVersion uint64
	logger        *zap.Logger
}

// NewDataStore 新しいデータストアを作成
func NewDataStore(logger *zap.Logger) *DataStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataStore{logger: logger}
}

// Snapshot 現在のデータセットのコピーを返す
func (s *DataStore) Snapshot() Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone()
}

// TicketVersion サポート履歴が置換・追加されるたびに変わる版番号
func (s *DataStore) TicketVersion() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticketVersion
}

// ReplaceAll データセット全体を置き換える
func (s *DataStore) ReplaceAll(data Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data.clone()
	s.data.Inventory = nil
	s.upsertInventoryLocked(data.Inventory)
	s.ticketVersion++
	s.logger.Info("📦 データセットを置き換えました",
		zap.Int("sales", len(data.Sales)),
		zap.Int("price_history", len(data.PriceHistory)),
		zap.Int("inventory", len(data.Inventory)),
		zap.Int("tickets", len(data.Tickets)),
	)
}

// ReplaceSales 販売データを置き換える
func (s *DataStore) ReplaceSales(records []models.SaleRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Sales = append([]models.SaleRecord(nil), records...)
}

// ReplacePriceHistory 価格履歴を置き換える
func (s *DataStore) ReplacePriceHistory(entries []models.PriceHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.PriceHistory = append([]models.PriceHistoryEntry(nil), entries...)
}

// ReplaceInventory 在庫を置き換える（商品IDの重複は後勝ちでまとめる）
func (s *DataStore) ReplaceInventory(items []models.InventorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Inventory = nil
	s.upsertInventoryLocked(items)
}

// ReplaceTickets サポート履歴を置き換える
func (s *DataStore) ReplaceTickets(tickets []models.SupportTicket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Tickets = append([]models.SupportTicket(nil), tickets...)
	s.ticketVersion++
}

// AppendSales 販売記録を追加
func (s *DataStore) AppendSales(records ...models.SaleRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Sales = append(s.data.Sales, records...)
}

// MergeSalesSince cutoff 以降の販売記録を records で置き換え、置き換えた件数を返す
// 日付を解析できない既存レコードは残す。
func (s *DataStore) MergeSalesSince(cutoff time.Time, records []models.SaleRecord) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := make([]models.SaleRecord, 0, len(s.data.Sales)+len(records))
	replaced := 0
	for _, r := range s.data.Sales {
		if date, ok := parseDate(r.Date); ok && !date.Before(cutoff) {
			replaced++
			continue
		}
		kept = append(kept, r)
	}
	s.data.Sales = append(kept, records...)
	return replaced
}

// RecordPrice 同じ商品・同じ日付の観測があれば置き換え、なければ追加する
func (s *DataStore) RecordPrice(entry models.PriceHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.data.PriceHistory {
		if existing.ProductID == entry.ProductID && existing.Date == entry.Date {
			s.data.PriceHistory[i] = entry
			return
		}
	}
	s.data.PriceHistory = append(s.data.PriceHistory, entry)
}

// UpsertInventory 在庫スナップショットを商品ID単位で追加・更新
func (s *DataStore) UpsertInventory(items ...models.InventorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertInventoryLocked(items)
}

func (s *DataStore) upsertInventoryLocked(items []models.InventorySnapshot) {
	for _, item := range items {
		replaced := false
		for i := range s.data.Inventory {
			if s.data.Inventory[i].ProductID == item.ProductID {
				s.data.Inventory[i] = item
				replaced = true
				break
			}
		}
		if !replaced {
			s.data.Inventory = append(s.data.Inventory, item)
		}
	}
}

// Summary コレクションごとの件数
func (s *DataStore) Summary() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return map[string]int{
		"sales":        len(s.data.Sales),
		"priceHistory": len(s.data.PriceHistory),
		"inventory":    len(s.data.Inventory),
		"tickets":      len(s.data.Tickets),
	}
}
