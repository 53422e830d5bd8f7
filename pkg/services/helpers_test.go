package services

import (
	"time"

	"smartcommerce-api/pkg/models"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// dailySales は now から遡って days 日分、毎日 perDay 個売れた記録を作る
func dailySales(productID string, perDay, days int, now time.Time) []models.SaleRecord {
	sales := make([]models.SaleRecord, 0, days)
	for i := 0; i < days; i++ {
		sales = append(sales, models.SaleRecord{
			Date:      now.AddDate(0, 0, -i).Format("2006-01-02"),
			ProductID: productID,
			Quantity:  perDay,
			Price:     10,
			Revenue:   float64(perDay) * 10,
		})
	}
	return sales
}

func inventory(productID string, stock int) models.InventorySnapshot {
	return models.InventorySnapshot{
		ProductID:       productID,
		ProductName:     "Product " + productID,
		CurrentStock:    stock,
		ReorderPoint:    20,
		ReorderQuantity: 50,
		LeadTimeDays:    7,
	}
}

func priceEntry(productID, date string, ours, competitor float64) models.PriceHistoryEntry {
	return models.PriceHistoryEntry{
		Date:               date,
		ProductID:          productID,
		OurPrice:           ours,
		CompetitorAvgPrice: competitor,
		PricePosition:      pricePosition(ours, competitor),
	}
}
