package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"smartcommerce-api/pkg/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// データ種別
const (
	KindSales     = "sales"
	KindInventory = "inventory"
	KindPrices    = "prices"
	KindTickets   = "tickets"
)

// DataKinds 取り込み・出力できるデータ種別
var DataKinds = []string{KindSales, KindInventory, KindPrices, KindTickets}

// DataFileNames データディレクトリ内の種別ごとのファイル名（拡張子なし）
var DataFileNames = map[string]string{
	KindSales:     "sales_data",
	KindInventory: "inventory_data",
	KindPrices:    "price_history",
	KindTickets:   "support_tickets",
}

// ImportService CSV/Excelファイルからレコードを取り込むサービス
type ImportService struct {
	logger *zap.Logger
}

// NewImportService 新しい取り込みサービスを作成
func NewImportService(logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{logger: logger}
}

// ReadRows ファイル名の拡張子に応じて .csv / .xlsx を行データとして読み込む
func (s *ImportService) ReadRows(fileName string, r io.Reader) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("Excelファイルの読み込みに失敗: %w", err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("Excelシートの行取得に失敗: %w", err)
		}
		return rows, nil
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("CSVファイルの解析に失敗: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, fileName)
	}
}

// table はヘッダー名で列を引けるようにした行データ
type table struct {
	columns map[string]int
	rows    [][]string
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(name)
}

func newTable(rows [][]string, required ...string) (*table, error) {
	if len(rows) == 0 {
		return nil, errors.New("ファイルにヘッダー行がありません")
	}
	t := &table{columns: make(map[string]int), rows: rows[1:]}
	for i, h := range rows[0] {
		key := normalizeHeader(h)
		if _, dup := t.columns[key]; !dup {
			t.columns[key] = i
		}
	}
	var missing []string
	for _, name := range required {
		if _, ok := t.columns[normalizeHeader(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("必要な列が見つかりませんでした: %s", strings.Join(missing, ", "))
	}
	return t, nil
}

func (t *table) get(row []string, name string) string {
	idx, ok := t.columns[normalizeHeader(name)]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (t *table) float(row []string, name string, line int) (float64, error) {
	v := t.get(row, name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%d行目: %s の値が数値ではありません: %q", line, name, v)
	}
	return f, nil
}

// count は非負整数の列を読む
func (t *table) count(row []string, name string, line int) (int, error) {
	f, err := t.float(row, name, line)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("%d行目: %s は0以上である必要があります: %v", line, name, f)
	}
	return int(f), nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParseSales 販売データを解析
func (s *ImportService) ParseSales(rows [][]string) ([]models.SaleRecord, error) {
	t, err := newTable(rows, "date", "productId", "quantity")
	if err != nil {
		return nil, err
	}
	records := make([]models.SaleRecord, 0, len(t.rows))
	for i, row := range t.rows {
		if isBlank(row) {
			continue
		}
		line := i + 2
		qty, err := t.count(row, "quantity", line)
		if err != nil {
			return nil, err
		}
		price, err := t.float(row, "price", line)
		if err != nil {
			return nil, err
		}
		revenue, err := t.float(row, "revenue", line)
		if err != nil {
			return nil, err
		}
		if revenue == 0 && price != 0 {
			revenue = round2(float64(qty) * price)
		}
		records = append(records, models.SaleRecord{
			Date:        t.get(row, "date"),
			ProductID:   t.get(row, "productId"),
			ProductName: t.get(row, "productName"),
			Quantity:    qty,
			Price:       price,
			Revenue:     revenue,
		})
	}
	return records, nil
}

// ParseInventory 在庫データを解析
func (s *ImportService) ParseInventory(rows [][]string) ([]models.InventorySnapshot, error) {
	t, err := newTable(rows, "productId", "currentStock", "reorderPoint", "leadTimeDays")
	if err != nil {
		return nil, err
	}
	items := make([]models.InventorySnapshot, 0, len(t.rows))
	for i, row := range t.rows {
		if isBlank(row) {
			continue
		}
		line := i + 2
		item := models.InventorySnapshot{
			ProductID:       t.get(row, "productId"),
			ProductName:     t.get(row, "productName"),
			LastRestockDate: t.get(row, "lastRestockDate"),
		}
		if item.CurrentStock, err = t.count(row, "currentStock", line); err != nil {
			return nil, err
		}
		if item.ReorderPoint, err = t.count(row, "reorderPoint", line); err != nil {
			return nil, err
		}
		if item.ReorderQuantity, err = t.count(row, "reorderQuantity", line); err != nil {
			return nil, err
		}
		if item.LeadTimeDays, err = t.count(row, "leadTimeDays", line); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// ParsePriceHistory 価格履歴を解析
func (s *ImportService) ParsePriceHistory(rows [][]string) ([]models.PriceHistoryEntry, error) {
	t, err := newTable(rows, "date", "productId", "ourPrice", "competitorAvgPrice")
	if err != nil {
		return nil, err
	}
	entries := make([]models.PriceHistoryEntry, 0, len(t.rows))
	for i, row := range t.rows {
		if isBlank(row) {
			continue
		}
		line := i + 2
		entry := models.PriceHistoryEntry{
			Date:          t.get(row, "date"),
			ProductID:     t.get(row, "productId"),
			ProductName:   t.get(row, "productName"),
			PricePosition: t.get(row, "pricePosition"),
		}
		if entry.OurPrice, err = t.float(row, "ourPrice", line); err != nil {
			return nil, err
		}
		if entry.CompetitorAvgPrice, err = t.float(row, "competitorAvgPrice", line); err != nil {
			return nil, err
		}
		if entry.Margin, err = t.float(row, "margin", line); err != nil {
			return nil, err
		}
		if entry.PricePosition == "" {
			entry.PricePosition = pricePosition(entry.OurPrice, entry.CompetitorAvgPrice)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// ParseTickets サポート履歴を解析
func (s *ImportService) ParseTickets(rows [][]string) ([]models.SupportTicket, error) {
	t, err := newTable(rows, "category", "subject", "suggestedResponse")
	if err != nil {
		return nil, err
	}
	tickets := make([]models.SupportTicket, 0, len(t.rows))
	for _, row := range t.rows {
		if isBlank(row) {
			continue
		}
		tickets = append(tickets, models.SupportTicket{
			TicketID:          t.get(row, "ticketId"),
			Date:              t.get(row, "date"),
			CustomerEmail:     t.get(row, "customerEmail"),
			Category:          t.get(row, "category"),
			Subject:           t.get(row, "subject"),
			Message:           t.get(row, "message"),
			SuggestedResponse: t.get(row, "suggestedResponse"),
			Status:            t.get(row, "status"),
		})
	}
	return tickets, nil
}

// ImportInto ファイルを解析してデータストアの該当コレクションを置き換える
func (s *ImportService) ImportInto(store *DataStore, kind, fileName string, r io.Reader) (int, error) {
	rows, err := s.ReadRows(fileName, r)
	if err != nil {
		return 0, err
	}

	var n int
	switch kind {
	case KindSales:
		records, err := s.ParseSales(rows)
		if err != nil {
			return 0, err
		}
		store.ReplaceSales(records)
		n = len(records)
	case KindInventory:
		items, err := s.ParseInventory(rows)
		if err != nil {
			return 0, err
		}
		store.ReplaceInventory(items)
		n = len(items)
	case KindPrices:
		entries, err := s.ParsePriceHistory(rows)
		if err != nil {
			return 0, err
		}
		store.ReplacePriceHistory(entries)
		n = len(entries)
	case KindTickets:
		tickets, err := s.ParseTickets(rows)
		if err != nil {
			return 0, err
		}
		store.ReplaceTickets(tickets)
		n = len(tickets)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownDataKind, kind)
	}

	s.logger.Info("📥 データを取り込みました", zap.String("kind", kind), zap.String("file", fileName), zap.Int("records", n))
	return n, nil
}

// LoadDir ディレクトリ内の sales_data / inventory_data / price_history / support_tickets
// (.csv または .xlsx) を読み込む。存在しないファイルは空として扱う。
func (s *ImportService) LoadDir(dir string) (Dataset, error) {
	var data Dataset
	for _, kind := range DataKinds {
		path, ok := findDataFile(dir, DataFileNames[kind])
		if !ok {
			s.logger.Debug("データファイルが見つかりません", zap.String("dir", dir), zap.String("kind", kind))
			continue
		}
		rows, err := s.readFile(path)
		if err != nil {
			return Dataset{}, fmt.Errorf("%s の読み込みに失敗: %w", path, err)
		}
		switch kind {
		case KindSales:
			data.Sales, err = s.ParseSales(rows)
		case KindInventory:
			data.Inventory, err = s.ParseInventory(rows)
		case KindPrices:
			data.PriceHistory, err = s.ParsePriceHistory(rows)
		case KindTickets:
			data.Tickets, err = s.ParseTickets(rows)
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("%s の解析に失敗: %w", path, err)
		}
	}
	return data, nil
}

func (s *ImportService) readFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return s.ReadRows(path, f)
}

func findDataFile(dir, base string) (string, bool) {
	for _, ext := range []string{".csv", ".xlsx"} {
		path := filepath.Join(dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func pricePosition(ourPrice, competitorPrice float64) string {
	if ourPrice > competitorPrice {
		return "above"
	}
	return "below"
}
