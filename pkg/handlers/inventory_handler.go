package handlers

import (
	"net/http"
	"time"

	"smartcommerce-api/pkg/logger"
	"smartcommerce-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// InventoryHandler 在庫予測・アラートのハンドラー
type InventoryHandler struct {
	store  *services.DataStore
	alerts *services.AlertService
	now    services.Clock
}

// NewInventoryHandler 新しい在庫ハンドラーを作成
func NewInventoryHandler(store *services.DataStore, alerts *services.AlertService, now services.Clock) *InventoryHandler {
	if now == nil {
		now = time.Now
	}
	return &InventoryHandler{store: store, alerts: alerts, now: now}
}

func (h *InventoryHandler) service(c *gin.Context) *services.ReorderService {
	return services.NewReorderService(h.store.Snapshot(), h.now(), logger.FromContext(c))
}

// GetPredictions 全商品の発注予測（緊急度順）
func (h *InventoryHandler) GetPredictions(c *gin.Context) {
	predictions, err := h.service(c).GetAllPredictions()
	if err != nil {
		respondError(c, err, "発注予測の生成に失敗しました")
		return
	}
	urgent := 0
	for _, p := range predictions {
		if p.Urgent {
			urgent++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    predictions,
		"urgent":  urgent,
	})
}

// GetPrediction 指定商品の発注予測
func (h *InventoryHandler) GetPrediction(c *gin.Context) {
	prediction, err := h.service(c).PredictReorder(c.Param("productId"))
	if err != nil {
		respondError(c, err, "発注予測の生成に失敗しました")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    prediction,
	})
}

// GetTrend 指定商品の販売トレンド
func (h *InventoryHandler) GetTrend(c *gin.Context) {
	trend, err := h.service(c).DetectTrend(c.Param("productId"))
	if err != nil {
		respondError(c, err, "トレンドの判定に失敗しました")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    trend,
	})
}

// GetAlerts 記録済みアラート一覧
func (h *InventoryHandler) GetAlerts(c *gin.Context) {
	alerts := h.alerts.List()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    alerts,
		"count":   len(alerts),
	})
}

// ClearAlerts アラートを全削除
func (h *InventoryHandler) ClearAlerts(c *gin.Context) {
	n := h.alerts.Clear()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cleared": n,
	})
}
