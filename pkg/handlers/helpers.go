package handlers

import (
	"errors"
	"net/http"

	"smartcommerce-api/pkg/logger"
	"smartcommerce-api/pkg/platforms"
	"smartcommerce-api/pkg/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor エラーをHTTPステータスに変換
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidWindow),
		errors.Is(err, services.ErrUnknownEvent),
		errors.Is(err, services.ErrUnknownDataKind),
		errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, services.ErrInvalidPayload),
		errors.Is(err, platforms.ErrUnsupportedPlatform):
		return http.StatusBadRequest
	case errors.Is(err, platforms.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, platforms.ErrPriceUpdateUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, platforms.ErrRequestFailed),
		errors.Is(err, platforms.ErrAuthFailed),
		errors.Is(err, platforms.ErrInvalidResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError 共通のエラーレスポンス
func respondError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status >= 500 {
		logger.FromContext(c).Error(message, zap.Error(err))
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   message + ": " + err.Error(),
	})
}

// AuthMiddleware X-API-KEY ヘッダーによる認証
// apiKey が未設定の場合は認証しない。
func AuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" || apiKey == "default_secret_key" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
