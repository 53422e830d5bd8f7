package services

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"smartcommerce-api/pkg/models"

	"go.uber.org/zap"
)

const (
	salesWindowDays  = 30
	recentWindowDays = 7
	trendWindowDays  = 28

	trendThreshold = 10.0
	// 増加傾向の商品は販売数に20%のバッファを乗せる
	increasingBuffer = 1.2
)

// ReorderService 在庫の発注タイミング予測サービス
type ReorderService struct {
	data    Dataset
	now     time.Time
	workers int
	logger  *zap.Logger
}

// NewReorderService 新しい発注予測サービスを作成
func NewReorderService(data Dataset, now time.Time, logger *zap.Logger) *ReorderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReorderService{
		data:    data,
		now:     now,
		workers: runtime.GOMAXPROCS(0),
		logger:  logger,
	}
}

// DetectTrend 直近7日平均と28日平均を比較して販売トレンドを判定
// 28日平均が0の場合は比較できないため {stable, 0} を返す。
func (s *ReorderService) DetectTrend(productID string) (models.TrendResult, error) {
	week1, err := DailyAverage(s.data.Sales, productID, recentWindowDays, s.now)
	if err != nil {
		return models.TrendResult{}, err
	}
	week4, err := DailyAverage(s.data.Sales, productID, trendWindowDays, s.now)
	if err != nil {
		return models.TrendResult{}, err
	}

	if week4 == 0 {
		return models.TrendResult{Trend: models.TrendStable, Percentage: 0}, nil
	}

	percent := (week1 - week4) / week4 * 100
	trend := models.TrendStable
	if percent > trendThreshold {
		trend = models.TrendIncreasing
	} else if percent < -trendThreshold {
		trend = models.TrendDecreasing
	}

	return models.TrendResult{Trend: trend, Percentage: round2(percent)}, nil
}

// PredictReorder 商品の在庫切れまでの日数と発注すべき時期を予測
func (s *ReorderService) PredictReorder(productID string) (*models.ReorderPrediction, error) {
	product, ok := s.data.FindInventory(productID)
	if !ok {
		return nil, notFound("inventory", productID)
	}

	avgDailySales, err := DailyAverage(s.data.Sales, productID, salesWindowDays, s.now)
	if err != nil {
		return nil, err
	}
	trend, err := s.DetectTrend(productID)
	if err != nil {
		return nil, err
	}

	adjustedDailySales := avgDailySales
	if trend.Trend == models.TrendIncreasing {
		adjustedDailySales *= increasingBuffer
	}

	prediction := &models.ReorderPrediction{
		ProductID:    productID,
		ProductName:  product.ProductName,
		CurrentStock: product.CurrentStock,
		DailySales:   round2(avgDailySales),
		Trend:        trend.Trend,
	}

	// 販売実績が無い場合は在庫が減らないため発注不要とする
	if adjustedDailySales <= 0 {
		prediction.NoSalesData = true
		prediction.Recommendation = fmt.Sprintf("No sales in the last %d days. No reorder needed.", salesWindowDays)
		return prediction, nil
	}

	daysUntilReorderPoint := float64(product.CurrentStock-product.ReorderPoint) / adjustedDailySales
	reorderIn := daysUntilReorderPoint - float64(product.LeadTimeDays)
	stockout := int(math.Round(float64(product.CurrentStock) / adjustedDailySales))
	reorderDays := int(math.Round(reorderIn))

	prediction.DaysUntilStockout = &stockout
	prediction.ReorderIn = &reorderDays
	prediction.Urgent = reorderIn <= 0
	if prediction.Urgent {
		prediction.Recommendation = "ORDER NOW! Stock will run out before new inventory arrives."
	} else {
		prediction.Recommendation = fmt.Sprintf("Order in %d days to maintain stock levels.", reorderDays)
	}

	return prediction, nil
}

// GetAllPredictions 全在庫商品の予測を緊急度順（reorderInの昇順）で返す
// 同値は入力順を保持し、販売実績の無い商品は末尾に並ぶ。
func (s *ReorderService) GetAllPredictions() ([]models.ReorderPrediction, error) {
	items := s.data.Inventory
	results := make([]models.ReorderPrediction, len(items))
	errs := make([]error, len(items))

	workers := s.workers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, productID string) {
			defer wg.Done()
			defer func() { <-sem }()
			prediction, err := s.PredictReorder(productID)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = *prediction
		}(i, item.ProductID)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i].ReorderIn, results[j].ReorderIn
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a < *b
	})

	urgent := 0
	for _, p := range results {
		if p.Urgent {
			urgent++
		}
	}
	s.logger.Debug("発注予測を生成", zap.Int("products", len(results)), zap.Int("urgent", urgent))

	return results, nil
}
