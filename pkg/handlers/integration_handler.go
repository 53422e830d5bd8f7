package handlers

import (
	"net/http"

	"smartcommerce-api/pkg/platforms"
	"smartcommerce-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// IntegrationHandler ECプラットフォーム連携ハンドラー
type IntegrationHandler struct {
	sync *services.SyncService
}

// NewIntegrationHandler 新しい連携ハンドラーを作成
func NewIntegrationHandler(sync *services.SyncService) *IntegrationHandler {
	return &IntegrationHandler{sync: sync}
}

// Sync プラットフォームと即時同期
func (h *IntegrationHandler) Sync(c *gin.Context) {
	result, err := h.sync.Sync(c.Request.Context())
	if err != nil {
		respondError(c, err, "同期に失敗しました")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// Status 接続先と直近の同期結果
func (h *IntegrationHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"configured": h.sync.Configured(),
		"platform":   h.sync.PlatformName(),
		"lastSync":   h.sync.LastResult(),
	})
}

// TestConnection 接続テスト
func (h *IntegrationHandler) TestConnection(c *gin.Context) {
	result := h.sync.TestConnection(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success": result.Success,
		"data":    result,
	})
}

// PriceChangeRequest 価格変更リクエスト
type PriceChangeRequest struct {
	ProductID string  `json:"productId" binding:"required"`
	Price     float64 `json:"price" binding:"required,gt=0"`
}

// ApplyPrice プラットフォーム上の価格を変更
func (h *IntegrationHandler) ApplyPrice(c *gin.Context) {
	var req PriceChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "リクエストの解析に失敗しました: " + err.Error()})
		return
	}
	if err := h.sync.ApplyPriceChange(c.Request.Context(), req.ProductID, req.Price); err != nil {
		respondError(c, err, "価格の更新に失敗しました")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"productId": req.ProductID,
		"price":     req.Price,
	})
}

// GetGuide 連携手順 (?platform= 指定なしなら全プラットフォーム)
func (h *IntegrationHandler) GetGuide(c *gin.Context) {
	if name := c.Query("platform"); name != "" {
		kind, err := platforms.ParseKind(name)
		if err != nil {
			respondError(c, err, "連携手順の取得に失敗しました")
			return
		}
		guide, _ := platforms.SetupGuide(kind)
		c.JSON(http.StatusOK, gin.H{"success": true, "data": guide})
		return
	}

	guides := make([]platforms.Guide, 0, len(platforms.Kinds))
	for _, kind := range platforms.Kinds {
		if guide, ok := platforms.SetupGuide(kind); ok {
			guides = append(guides, guide)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": guides})
}
