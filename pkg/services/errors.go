package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 商品IDが在庫または価格履歴に存在しない
	ErrNotFound = errors.New("not found")
	// ErrInvalidWindow 集計期間（日数）が正でない
	ErrInvalidWindow = errors.New("invalid window: window days must be positive")
	// ErrAIUnavailable AIアシスタントが利用できない（テンプレート照合にフォールバック）
	ErrAIUnavailable = errors.New("ai assistant unavailable")
	// ErrUnknownEvent 未対応のwebhookイベント
	ErrUnknownEvent = errors.New("unknown webhook event")
	// ErrUnknownDataKind 未対応のデータ種別
	ErrUnknownDataKind = errors.New("unknown data kind")
	// ErrUnsupportedFormat 未対応のファイル形式
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrInvalidPayload webhookペイロードの必須項目の欠落や不正な値
	ErrInvalidPayload = errors.New("invalid webhook payload")
)

// NotFoundError どの商品のどの情報が見つからなかったか
type NotFoundError struct {
	Kind      string // "inventory" or "price history"
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s entry for product %q not found", e.Kind, e.ProductID)
}

// Unwrap errors.Is(err, ErrNotFound) で判定できるようにする
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func notFound(kind, productID string) error {
	return &NotFoundError{Kind: kind, ProductID: productID}
}
