package services

import (
	"fmt"
	"time"

	"smartcommerce-api/pkg/models"

	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// DailyAverage 指定商品の直近windowDays日間の1日あたり平均販売数を計算
// 分母は販売のあった日数ではなく windowDays 固定（販売ゼロの日も0として数える）。
// 未来日付の記録も含む。日付を解析できない記録は無視する。
func DailyAverage(sales []models.SaleRecord, productID string, windowDays int, now time.Time) (float64, error) {
	if windowDays <= 0 {
		return 0, fmt.Errorf("%w (got %d)", ErrInvalidWindow, windowDays)
	}

	window := time.Duration(windowDays) * day
	total := 0
	for _, sale := range sales {
		if sale.ProductID != productID || sale.Quantity <= 0 {
			continue
		}
		date, ok := parseDate(sale.Date)
		if !ok {
			continue
		}
		if now.Sub(date) <= window {
			total += sale.Quantity
		}
	}

	return float64(total) / float64(windowDays), nil
}

// round2 小数点以下2桁に丸める（0.5は0から遠い方向へ）
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
