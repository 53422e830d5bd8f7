package services

import (
	"sync"
	"testing"
	"time"

	"smartcommerce-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataStoreSnapshotIsCopy(t *testing.T) {
	store := NewDataStore(nil)
	store.ReplaceAll(Dataset{Sales: dailySales("P1", 1, 3, testNow)})

	snap := store.Snapshot()
	snap.Sales[0].Quantity = 999
	snap.Sales = append(snap.Sales, models.SaleRecord{ProductID: "X"})

	again := store.Snapshot()
	assert.Len(t, again.Sales, 3)
	assert.Equal(t, 1, again.Sales[0].Quantity)
}

func TestDataStoreUpsertInventory(t *testing.T) {
	store := NewDataStore(nil)
	store.ReplaceInventory([]models.InventorySnapshot{inventory("P1", 10), inventory("P2", 20), inventory("P1", 30)})

	snap := store.Snapshot()
	require.Len(t, snap.Inventory, 2)
	// 重複は後勝ち
	assert.Equal(t, 30, snap.Inventory[0].CurrentStock)

	store.UpsertInventory(inventory("P3", 5), inventory("P2", 1))
	snap = store.Snapshot()
	require.Len(t, snap.Inventory, 3)
	assert.Equal(t, 1, snap.Inventory[1].CurrentStock)
	assert.Equal(t, "P3", snap.Inventory[2].ProductID)
}

func TestDataStoreTicketVersion(t *testing.T) {
	store := NewDataStore(nil)
	v0 := store.TicketVersion()

	store.AppendSales(models.SaleRecord{ProductID: "P1"})
	assert.Equal(t, v0, store.TicketVersion())

	store.ReplaceTickets(nil)
	v1 := store.TicketVersion()
	assert.Greater(t, v1, v0)

	store.ReplaceAll(Dataset{})
	assert.Greater(t, store.TicketVersion(), v1)
}

func TestMergeSalesSince(t *testing.T) {
	store := NewDataStore(nil)
	store.ReplaceSales([]models.SaleRecord{
		{Date: "2024-05-01", ProductID: "old", Quantity: 1},
		{Date: "2024-06-10", ProductID: "recent", Quantity: 1},
		{Date: "garbage", ProductID: "keep", Quantity: 1},
	})

	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	incoming := []models.SaleRecord{
		{Date: "2024-06-10", ProductID: "recent", Quantity: 2},
		{Date: "2024-06-12", ProductID: "new", Quantity: 1},
	}
	replaced := store.MergeSalesSince(cutoff, incoming)
	assert.Equal(t, 1, replaced)

	// 同じ注文を再取り込みしても件数は増えない
	replaced = store.MergeSalesSince(cutoff, incoming)
	assert.Equal(t, 2, replaced)

	ids := []string{}
	for _, s := range store.Snapshot().Sales {
		ids = append(ids, s.ProductID)
	}
	assert.Equal(t, []string{"old", "keep", "recent", "new"}, ids)
}

func TestDatasetLatestPriceTieKeepsFirst(t *testing.T) {
	data := Dataset{PriceHistory: []models.PriceHistoryEntry{
		priceEntry("P1", "2024-06-01", 10, 10),
		priceEntry("P1", "2024-06-01", 20, 20),
	}}
	latest, ok := data.LatestPrice("P1")
	require.True(t, ok)
	assert.Equal(t, 10.0, latest.OurPrice)

	_, ok = data.LatestPrice("P2")
	assert.False(t, ok)
}

func TestDataStoreConcurrentAccess(t *testing.T) {
	store := NewDataStore(nil)
	store.ReplaceAll(GenerateDemoData(1, testNow))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.AppendSales(models.SaleRecord{Date: "2024-06-15", ProductID: "P001", Quantity: 1})
		}()
		go func() {
			defer wg.Done()
			_, _ = NewReorderService(store.Snapshot(), testNow, nil).GetAllPredictions()
		}()
	}
	wg.Wait()
	assert.Equal(t, 90*len(DemoProducts)+8, store.Summary()["sales"])
}

func TestDataStoreRecordPrice(t *testing.T) {
	store := NewDataStore(nil)
	store.ReplacePriceHistory([]models.PriceHistoryEntry{
		priceEntry("P1", "2024-06-15", 10, 10),
		priceEntry("P2", "2024-06-15", 20, 20),
	})

	store.RecordPrice(priceEntry("P1", "2024-06-15", 12, 10))
	store.RecordPrice(priceEntry("P1", "2024-06-16", 13, 10))

	history := store.Snapshot().PriceHistory
	require.Len(t, history, 3)
	assert.Equal(t, 12.0, history[0].OurPrice)
	assert.Equal(t, "2024-06-16", history[2].Date)
}
