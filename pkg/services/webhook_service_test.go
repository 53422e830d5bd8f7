package services

import (
	"testing"
	"time"

	"smartcommerce-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookFixture(t *testing.T) (*WebhookService, *DataStore, *AlertService) {
	t.Helper()
	clock := func() time.Time { return testNow }
	store := NewDataStore(nil)
	store.ReplaceAll(Dataset{
		Sales: dailySales("P1", 2, 30, testNow),
		Inventory: []models.InventorySnapshot{
			inventory("P1", 10),
			inventory("P2", 500),
		},
		PriceHistory: []models.PriceHistoryEntry{priceEntry("P1", "2024-06-10", 100, 80)},
	})
	alerts := NewAlertService(clock, nil)
	return NewWebhookService(store, alerts, clock, nil), store, alerts
}

func TestNormalizeEvent(t *testing.T) {
	testCases := map[string]string{
		"orders/create":               EventOrderCreated,
		"Products/Update":             EventProductUpdated,
		"inventory_levels/update":     EventInventoryLow,
		"woocommerce_new_order":       EventOrderCreated,
		"woocommerce_product_updated": EventProductUpdated,
		" inventory.low ":             EventInventoryLow,
	}
	for in, want := range testCases {
		got, ok := NormalizeEvent(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := NormalizeEvent("customers/create")
	assert.False(t, ok)
}

func TestWebhookOrderCreatedRaisesUrgentAlert(t *testing.T) {
	svc, store, alerts := newWebhookFixture(t)

	result, err := svc.Process("custom", "order.created", []byte(`{"productId":"P1","productName":"Yoga Mat","quantity":3,"price":"9.99"}`))
	require.NoError(t, err)

	assert.NotEmpty(t, result.EventID)
	assert.Equal(t, EventOrderCreated, result.Event)
	require.NotNil(t, result.Sale)
	assert.Equal(t, "2024-06-15", result.Sale.Date)
	assert.Equal(t, 29.97, result.Sale.Revenue)

	require.NotNil(t, result.Prediction)
	assert.True(t, result.Prediction.Urgent)
	require.NotNil(t, result.Alert)
	assert.Equal(t, models.PriorityHigh, result.Alert.Priority)
	assert.Len(t, alerts.List(), 1)

	assert.Len(t, store.Snapshot().Sales, 31)
}

func TestWebhookShopifyOrderLineItems(t *testing.T) {
	svc, store, alerts := newWebhookFixture(t)

	payload := `{"id":1001,"line_items":[
		{"product_id":"P2","name":"Backpack","quantity":2,"price":"49.99"},
		{"product_id":987654,"name":"Unknown","quantity":1,"price":"5.00"}
	]}`
	result, err := svc.Process("shopify", "orders/create", []byte(payload))
	require.NoError(t, err)

	require.NotNil(t, result.Prediction)
	assert.Equal(t, "P2", result.Prediction.ProductID)
	assert.False(t, result.Prediction.Urgent)
	assert.Nil(t, result.Alert)
	assert.Empty(t, alerts.List())

	sales := store.Snapshot().Sales
	assert.Equal(t, "987654", sales[len(sales)-1].ProductID)
}

func TestWebhookOrderCreatedRequiresFields(t *testing.T) {
	svc, _, _ := newWebhookFixture(t)
	_, err := svc.Process("custom", "order.created", []byte(`{"productId":"P1"}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = svc.Process("shopify", "products/update", []byte(`{}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestWebhookOrderCreatedRejectsNegativeQuantity(t *testing.T) {
	svc, store, alerts := newWebhookFixture(t)

	_, err := svc.Process("custom", "order.created", []byte(`{"productId":"P1","quantity":-40}`))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	payload := `{"line_items":[
		{"product_id":"P2","quantity":2,"price":"49.99"},
		{"product_id":"P1","quantity":-1,"price":"9.99"}
	]}`
	_, err = svc.Process("shopify", "orders/create", []byte(payload))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	// 一部でも不正なら何も記録しない
	assert.Len(t, store.Snapshot().Sales, 30)
	assert.Empty(t, alerts.List())
}

func TestWebhookProductUpdated(t *testing.T) {
	svc, _, _ := newWebhookFixture(t)

	result, err := svc.Process("shopify", "products/update", []byte(`{"id":"P1"}`))
	require.NoError(t, err)
	require.NotNil(t, result.Suggestion)
	assert.Equal(t, "P1", result.Suggestion.ProductID)

	// 価格履歴が無い商品は提案なし
	result, err = svc.Process("shopify", "products/update", []byte(`{"id":"P2"}`))
	require.NoError(t, err)
	assert.Nil(t, result.Suggestion)
}

func TestWebhookInventoryLow(t *testing.T) {
	svc, _, alerts := newWebhookFixture(t)

	result, err := svc.Process("shopify", "inventory_levels/update", []byte(`{"productId":"P2","productName":"Backpack","available":3}`))
	require.NoError(t, err)
	require.NotNil(t, result.Alert)
	assert.Equal(t, "Low stock alert: Backpack has only 3 units left", result.Alert.Message)
	assert.Len(t, alerts.List(), 1)
}

func TestWebhookUnknownEventAndBadPayload(t *testing.T) {
	svc, _, _ := newWebhookFixture(t)

	_, err := svc.Process("shopify", "customers/create", nil)
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = svc.Process("shopify", "orders/create", []byte(`{not json`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestWebhookEventIDsAreUnique(t *testing.T) {
	svc, _, _ := newWebhookFixture(t)
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		result, err := svc.Process("custom", "inventory.low", []byte(`{"productId":"P1","quantity":1}`))
		require.NoError(t, err)
		assert.False(t, seen[result.EventID])
		seen[result.EventID] = true
	}
}
