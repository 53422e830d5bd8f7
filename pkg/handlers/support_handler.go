package handlers

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"smartcommerce-api/pkg/models"
	"smartcommerce-api/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SupportHandler サポート返信ハンドラー
// 返信テンプレート表はチケット履歴が更新されたときだけ作り直す。
type SupportHandler struct {
	store     *services.DataStore
	assistant services.AIAssistant
	now       services.Clock
	rng       *rand.Rand
	logger    *zap.Logger

	mu      sync.Mutex
	version uint64
	service *services.SupportService
}

// NewSupportHandler 新しいサポート返信ハンドラーを作成
// rng は返信の注文番号生成に使う（nil なら時刻シード）。
func NewSupportHandler(store *services.DataStore, assistant services.AIAssistant, now services.Clock, rng *rand.Rand, logger *zap.Logger) *SupportHandler {
	if now == nil {
		now = time.Now
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupportHandler{store: store, assistant: assistant, now: now, rng: rng, logger: logger}
}

func (h *SupportHandler) current() *services.SupportService {
	h.mu.Lock()
	defer h.mu.Unlock()

	version := h.store.TicketVersion()
	if h.service == nil || version != h.version {
		tickets := h.store.Snapshot().Tickets
		// *rand.Rand は並行利用できないため、再構築ごとに派生させる
		rng := rand.New(rand.NewSource(h.rng.Int63()))
		h.service = services.NewSupportService(tickets, h.now, rng, h.assistant, h.logger)
		h.version = version
		h.logger.Info("💬 返信テンプレートを再構築しました", zap.Int("tickets", len(tickets)), zap.Uint64("version", version))
	}
	return h.service
}

// GenerateReply 問い合わせへの返信を生成
func (h *SupportHandler) GenerateReply(c *gin.Context) {
	var req models.SupportReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "リクエストの解析に失敗しました: " + err.Error(),
		})
		return
	}

	reply := h.current().GenerateResponse(c.Request.Context(), req.Subject, req.Message, req.Category)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    reply,
	})
}

// GetCategories 学習済みカテゴリ一覧
func (h *SupportHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.current().Categories(),
	})
}
