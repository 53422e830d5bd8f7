package services

import (
	"errors"
	"time"

	"smartcommerce-api/pkg/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// 価格ルールのしきい値
const (
	velocityWindowDays = 7

	highVelocity     = 5.0
	lowVelocity      = 2.0
	marketVelocity   = 4.0
	lowStock         = 30
	excessStock      = 50
	aboveMarketLimit = 10.0
)

var (
	raiseFactor  = decimal.RequireFromString("1.10")
	lowerFactor  = decimal.RequireFromString("0.92")
	marketFactor = decimal.RequireFromString("1.02")
)

// PricingService 価格提案サービス
type PricingService struct {
	data   Dataset
	now    time.Time
	logger *zap.Logger
}

// NewPricingService 新しい価格提案サービスを作成
func NewPricingService(data Dataset, now time.Time, logger *zap.Logger) *PricingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingService{
		data:   data,
		now:    now,
		logger: logger,
	}
}

// SuggestPrice 販売速度・在庫・競合価格から価格提案を生成
// 最初に一致したルールのみ適用する（組み合わせない）。
func (s *PricingService) SuggestPrice(productID string) (*models.PriceSuggestion, error) {
	velocity, err := DailyAverage(s.data.Sales, productID, velocityWindowDays, s.now)
	if err != nil {
		return nil, err
	}

	position, ok := s.data.LatestPrice(productID)
	if !ok {
		return nil, notFound("price history", productID)
	}
	stock, ok := s.data.FindInventory(productID)
	if !ok {
		return nil, notFound("inventory", productID)
	}

	difference := percentDifference(position.OurPrice, position.CompetitorAvgPrice)

	suggestion := &models.PriceSuggestion{
		ProductID:        productID,
		CurrentPrice:     position.OurPrice,
		SuggestedPrice:   position.OurPrice,
		Velocity:         round2(velocity),
		MarketDifference: round2(difference),
		Stock:            stock.CurrentStock,
	}

	ourPrice := decimal.NewFromFloat(position.OurPrice)
	switch {
	case velocity > highVelocity && stock.CurrentStock < lowStock:
		suggestion.SuggestedPrice = roundPrice(ourPrice.Mul(raiseFactor))
		suggestion.Reason = "High demand with low stock"
		suggestion.ExpectedImpact = "Maximize profit margins while stock lasts"
	case velocity < lowVelocity && stock.CurrentStock > excessStock:
		suggestion.SuggestedPrice = roundPrice(ourPrice.Mul(lowerFactor))
		suggestion.Reason = "Slow sales with excess inventory"
		suggestion.ExpectedImpact = "Increase sales velocity by 30-50%"
	case difference > aboveMarketLimit && velocity < marketVelocity:
		suggestion.SuggestedPrice = roundPrice(decimal.NewFromFloat(position.CompetitorAvgPrice).Mul(marketFactor))
		suggestion.Reason = "Price significantly above market average"
		suggestion.ExpectedImpact = "Improve competitiveness while maintaining margin"
	}

	s.logger.Debug("価格提案を生成",
		zap.String("product_id", productID),
		zap.Float64("velocity", velocity),
		zap.Float64("market_difference", difference),
		zap.Int("stock", stock.CurrentStock),
		zap.Float64("suggested_price", suggestion.SuggestedPrice),
	)

	return suggestion, nil
}

// SuggestAll 在庫の全商品について価格提案を生成
// 価格履歴が無いなどで提案できなかった商品IDは skipped に入る。
func (s *PricingService) SuggestAll() (suggestions []models.PriceSuggestion, skipped []string, err error) {
	suggestions = make([]models.PriceSuggestion, 0, len(s.data.Inventory))
	for _, item := range s.data.Inventory {
		suggestion, err := s.SuggestPrice(item.ProductID)
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("⚠️ 価格提案をスキップ", zap.String("product_id", item.ProductID), zap.Error(err))
			skipped = append(skipped, item.ProductID)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		suggestions = append(suggestions, *suggestion)
	}
	return suggestions, skipped, nil
}

// percentDifference 競合平均に対する自社価格の乖離率（%）
// 競合価格が0以下の場合は比較できないため0とする。
func percentDifference(ourPrice, competitorPrice float64) float64 {
	if competitorPrice <= 0 {
		return 0
	}
	return (ourPrice - competitorPrice) / competitorPrice * 100
}

func roundPrice(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
