package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"smartcommerce-api/pkg/platforms"
	"smartcommerce-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// webhookの上限サイズ (1MB)
const maxWebhookBody = 1 << 20

// WebhookHandler プラットフォームwebhookの受信ハンドラー
type WebhookHandler struct {
	service *services.WebhookService
}

// NewWebhookHandler 新しいwebhookハンドラーを作成
func NewWebhookHandler(service *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// webhookEnvelope WooCommerce形式 {"event": ..., "data": {...}}
type webhookEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Receive webhookを受け取って処理する
// イベント名は X-Shopify-Topic / X-WC-Webhook-Topic ヘッダー、なければ本文の event フィールドから取る。
func (h *WebhookHandler) Receive(c *gin.Context) {
	kind, err := platforms.ParseKind(c.Param("platform"))
	if err != nil {
		respondError(c, err, "webhookの受信に失敗しました")
		return
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "リクエストの読み取りに失敗しました: " + err.Error()})
		return
	}

	event := c.GetHeader("X-Shopify-Topic")
	if event == "" {
		event = c.GetHeader("X-WC-Webhook-Topic")
	}
	payload := body
	if event == "" {
		var envelope webhookEnvelope
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Event != "" {
			event = envelope.Event
			payload = envelope.Data
		}
	}
	if event == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "webhookイベントが指定されていません"})
		return
	}

	result, err := h.service.Process(string(kind), event, payload)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": "webhookの処理に失敗しました: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
