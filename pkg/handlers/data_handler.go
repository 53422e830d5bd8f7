package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"smartcommerce-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// アップロードファイルの上限 (20MB)
const maxUploadSize = 20 << 20

// DataHandler データの取り込み・書き出し・生成ハンドラー
type DataHandler struct {
	store    *services.DataStore
	importer *services.ImportService
	exporter *services.ExportService
	now      services.Clock
}

// NewDataHandler 新しいデータハンドラーを作成
func NewDataHandler(store *services.DataStore, importer *services.ImportService, exporter *services.ExportService, now services.Clock) *DataHandler {
	if now == nil {
		now = time.Now
	}
	return &DataHandler{store: store, importer: importer, exporter: exporter, now: now}
}

// Import multipart の file フィールドで受け取ったCSV/Excelを取り込む
func (h *DataHandler) Import(c *gin.Context) {
	kind := c.Param("kind")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "ファイルのアップロードに失敗しました: " + err.Error()})
		return
	}
	if fileHeader.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "ファイルサイズが大きすぎます"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "ファイルを開けませんでした: " + err.Error()})
		return
	}
	defer file.Close()

	n, err := h.importer.ImportInto(h.store, kind, fileHeader.Filename, file)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			// 列不足・数値不正などの入力エラー
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": "データの取り込みに失敗しました: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"kind":     kind,
		"imported": n,
		"summary":  h.store.Summary(),
	})
}

// Export 指定種別を csv / json / xlsx で書き出す
func (h *DataHandler) Export(c *gin.Context) {
	kind := c.Param("kind")
	format := strings.ToLower(c.DefaultQuery("format", services.FormatCSV))

	var buf bytes.Buffer
	if err := h.exporter.Write(h.store.Snapshot(), kind, format, &buf); err != nil {
		respondError(c, err, "データの書き出しに失敗しました")
		return
	}

	fileName := fmt.Sprintf("%s.%s", services.DataFileNames[kind], format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, services.ContentTypes[format], buf.Bytes())
}

// GenerateRequest デモデータ生成リクエスト
type GenerateRequest struct {
	Seed *int64 `json:"seed"`
}

// Generate デモデータを生成してデータセット全体を置き換える
func (h *DataHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "リクエストの解析に失敗しました: " + err.Error()})
			return
		}
	}
	now := h.now()
	seed := now.UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	h.store.ReplaceAll(services.GenerateDemoData(seed, now))
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"seed":    seed,
		"summary": h.store.Summary(),
	})
}

// Summary データセットの件数
func (h *DataHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    h.store.Summary(),
	})
}
