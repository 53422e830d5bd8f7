package services

import (
	"fmt"
	"sync"
	"time"

	"smartcommerce-api/pkg/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// 保持するアラートの上限（古いものから捨てる）
const maxAlerts = 500

// AlertService 在庫アラートをメモリ上で管理するサービス
type AlertService struct {
	mu     sync.RWMutex
	alerts []models.Alert
	now    Clock
	logger *zap.Logger
}

// NewAlertService 新しいアラートサービスを作成
func NewAlertService(now Clock, logger *zap.Logger) *AlertService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{now: now, logger: logger}
}

// LowStock 在庫不足アラートを記録
func (s *AlertService) LowStock(productID, productName string, quantity int) models.Alert {
	name := productName
	if name == "" {
		name = productID
	}
	return s.Add(models.Alert{
		Type:      models.AlertTypeInventory,
		Priority:  models.PriorityHigh,
		ProductID: productID,
		Message:   fmt.Sprintf("Low stock alert: %s has only %d units left", name, quantity),
	})
}

// Add IDとタイムスタンプを付与してアラートを記録
func (s *AlertService) Add(alert models.Alert) models.Alert {
	alert.ID = uuid.New().String()
	alert.Timestamp = s.now().UTC().Format(time.RFC3339)
	if alert.Priority == "" {
		alert.Priority = models.PriorityMedium
	}

	s.mu.Lock()
	s.alerts = append(s.alerts, alert)
	if len(s.alerts) > maxAlerts {
		s.alerts = append([]models.Alert(nil), s.alerts[len(s.alerts)-maxAlerts:]...)
	}
	s.mu.Unlock()

	s.logger.Warn("🚨 アラートを記録しました",
		zap.String("alert_id", alert.ID),
		zap.String("priority", alert.Priority),
		zap.String("product_id", alert.ProductID),
		zap.String("message", alert.Message),
	)
	return alert
}

// List 記録順のアラート一覧
func (s *AlertService) List() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Alert{}, s.alerts...)
}

// Clear 全アラートを削除し、削除件数を返す
func (s *AlertService) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.alerts)
	s.alerts = nil
	return n
}
