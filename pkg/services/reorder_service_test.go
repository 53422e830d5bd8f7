package services

import (
	"math"
	"testing"

	"smartcommerce-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectTrend(t *testing.T) {
	testCases := []struct {
		name    string
		sales   []models.SaleRecord
		want    string
		percent float64
	}{
		{"一定", dailySales("P1", 2, 30, testNow), models.TrendStable, 0},
		// 直近7日だけ販売: week1=7, week4=1.75
		{"増加", dailySales("P1", 7, 7, testNow), models.TrendIncreasing, 300},
		// 直近7日は販売なし
		{"減少", append(dailySales("P1", 0, 7, testNow), salesBetween("P1", 4, 7, 28)...), models.TrendDecreasing, -100},
		{"販売なし", nil, models.TrendStable, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewReorderService(Dataset{Sales: tc.sales}, testNow, nil)
			got, err := svc.DetectTrend("P1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Trend)
			assert.Equal(t, tc.percent, got.Percentage)
			assert.False(t, math.IsNaN(got.Percentage) || math.IsInf(got.Percentage, 0))
		})
	}
}

// salesBetween は from 日前から to-1 日前まで毎日 perDay 個売れた記録を作る
func salesBetween(productID string, perDay, from, to int) []models.SaleRecord {
	var sales []models.SaleRecord
	for i := from; i < to; i++ {
		sales = append(sales, models.SaleRecord{
			Date:      testNow.AddDate(0, 0, -i).Format("2006-01-02"),
			ProductID: productID,
			Quantity:  perDay,
		})
	}
	return sales
}

func TestPredictReorder(t *testing.T) {
	data := Dataset{
		Sales:     dailySales("P1", 2, 30, testNow),
		Inventory: []models.InventorySnapshot{inventory("P1", 50)},
	}

	got, err := NewReorderService(data, testNow, nil).PredictReorder("P1")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.DailySales)
	assert.Equal(t, models.TrendStable, got.Trend)
	require.NotNil(t, got.DaysUntilStockout)
	require.NotNil(t, got.ReorderIn)
	assert.Equal(t, 25, *got.DaysUntilStockout)
	// (50-20)/2 - 7 = 8
	assert.Equal(t, 8, *got.ReorderIn)
	assert.False(t, got.Urgent)
	assert.Equal(t, "Order in 8 days to maintain stock levels.", got.Recommendation)
}

func TestPredictReorderIncreasingBuffer(t *testing.T) {
	data := Dataset{
		Sales:     dailySales("P1", 7, 7, testNow),
		Inventory: []models.InventorySnapshot{inventory("P1", 100)},
	}

	got, err := NewReorderService(data, testNow, nil).PredictReorder("P1")
	require.NoError(t, err)
	assert.Equal(t, models.TrendIncreasing, got.Trend)
	// 49/30 = 1.633.. (バッファ前の値を報告)
	assert.Equal(t, 1.63, got.DailySales)
	// 100 / (49/30*1.2) = 51.02
	require.NotNil(t, got.DaysUntilStockout)
	assert.Equal(t, 51, *got.DaysUntilStockout)
}

func TestPredictReorderUrgent(t *testing.T) {
	data := Dataset{
		Sales:     dailySales("P1", 2, 30, testNow),
		Inventory: []models.InventorySnapshot{inventory("P1", 10)},
	}

	got, err := NewReorderService(data, testNow, nil).PredictReorder("P1")
	require.NoError(t, err)
	assert.True(t, got.Urgent)
	assert.Equal(t, -12, *got.ReorderIn)
	assert.Contains(t, got.Recommendation, "ORDER NOW")
}

func TestPredictReorderNoSales(t *testing.T) {
	data := Dataset{Inventory: []models.InventorySnapshot{inventory("P1", 10)}}

	got, err := NewReorderService(data, testNow, nil).PredictReorder("P1")
	require.NoError(t, err)
	assert.True(t, got.NoSalesData)
	assert.Nil(t, got.DaysUntilStockout)
	assert.Nil(t, got.ReorderIn)
	assert.False(t, got.Urgent)
}

func TestPredictReorderNotFound(t *testing.T) {
	_, err := NewReorderService(Dataset{}, testNow, nil).PredictReorder("P1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAllPredictionsOrder(t *testing.T) {
	var sales []models.SaleRecord
	for _, id := range []string{"B", "C", "D"} {
		sales = append(sales, dailySales(id, 2, 30, testNow)...)
	}
	data := Dataset{
		Sales: sales,
		Inventory: []models.InventorySnapshot{
			inventory("A", 80), // 販売なし
			inventory("B", 50), // reorderIn 8
			inventory("C", 10), // reorderIn -12
			inventory("D", 50), // reorderIn 8 (B と同値)
		},
	}

	got, err := NewReorderService(data, testNow, nil).GetAllPredictions()
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ProductID)
	}
	assert.Equal(t, []string{"C", "B", "D", "A"}, ids)
}

func TestGetAllPredictionsWorkers(t *testing.T) {
	data := GenerateDemoData(1, testNow)
	svc := NewReorderService(data, testNow, nil)
	svc.workers = 1
	sequential, err := svc.GetAllPredictions()
	require.NoError(t, err)

	svc.workers = 8
	parallel, err := svc.GetAllPredictions()
	require.NoError(t, err)
	assert.Equal(t, sequential, parallel)
}
