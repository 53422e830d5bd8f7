package handlers

import (
	"net/http"
	"time"

	"smartcommerce-api/pkg/logger"
	"smartcommerce-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// PricingHandler 価格提案ハンドラー
type PricingHandler struct {
	store *services.DataStore
	now   services.Clock
}

// NewPricingHandler 新しい価格提案ハンドラーを作成
func NewPricingHandler(store *services.DataStore, now services.Clock) *PricingHandler {
	if now == nil {
		now = time.Now
	}
	return &PricingHandler{store: store, now: now}
}

func (h *PricingHandler) service(c *gin.Context) *services.PricingService {
	return services.NewPricingService(h.store.Snapshot(), h.now(), logger.FromContext(c))
}

// GetSuggestions 全商品の価格提案
func (h *PricingHandler) GetSuggestions(c *gin.Context) {
	suggestions, skipped, err := h.service(c).SuggestAll()
	if err != nil {
		respondError(c, err, "価格提案の生成に失敗しました")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    suggestions,
		"skipped": skipped,
	})
}

// GetSuggestion 指定商品の価格提案
func (h *PricingHandler) GetSuggestion(c *gin.Context) {
	suggestion, err := h.service(c).SuggestPrice(c.Param("productId"))
	if err != nil {
		respondError(c, err, "価格提案の生成に失敗しました")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    suggestion,
	})
}
