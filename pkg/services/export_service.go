package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// エクスポート形式
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// ContentTypes 出力形式ごとのMIMEタイプ
var ContentTypes = map[string]string{
	FormatCSV:  "text/csv",
	FormatJSON: "application/json",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ExportService データセットをCSV/JSON/Excelに書き出すサービス
type ExportService struct {
	logger *zap.Logger
}

// NewExportService 新しい書き出しサービスを作成
func NewExportService(logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{logger: logger}
}

// Write 指定種別のレコードを指定形式で w に書き出す
func (s *ExportService) Write(data Dataset, kind, format string, w io.Writer) error {
	header, rows, records, err := tabulate(data, kind)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		if err := cw.WriteAll(rows); err != nil {
			return fmt.Errorf("CSVの書き出しに失敗: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("JSONの書き出しに失敗: %w", err)
		}
	case FormatXLSX:
		if err := writeWorkbook(kind, header, rows, w); err != nil {
			return fmt.Errorf("Excelの書き出しに失敗: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	s.logger.Debug("📤 データを書き出しました", zap.String("kind", kind), zap.String("format", format), zap.Int("records", len(rows)))
	return nil
}

func writeWorkbook(sheet string, header []string, rows [][]string, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	all := append([][]string{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	_, err := f.WriteTo(w)
	return err
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// tabulate は種別ごとのヘッダー・行・元レコードを返す
// 列名は取り込み側 (ImportService) がそのまま読めるものにする。
func tabulate(data Dataset, kind string) ([]string, [][]string, interface{}, error) {
	switch kind {
	case KindSales:
		header := []string{"date", "productId", "productName", "quantity", "price", "revenue"}
		rows := make([][]string, 0, len(data.Sales))
		for _, r := range data.Sales {
			rows = append(rows, []string{r.Date, r.ProductID, r.ProductName, strconv.Itoa(r.Quantity), ftoa(r.Price), ftoa(r.Revenue)})
		}
		return header, rows, data.Sales, nil
	case KindInventory:
		header := []string{"productId", "productName", "currentStock", "reorderPoint", "reorderQuantity", "leadTimeDays", "lastRestockDate"}
		rows := make([][]string, 0, len(data.Inventory))
		for _, r := range data.Inventory {
			rows = append(rows, []string{r.ProductID, r.ProductName, strconv.Itoa(r.CurrentStock), strconv.Itoa(r.ReorderPoint),
				strconv.Itoa(r.ReorderQuantity), strconv.Itoa(r.LeadTimeDays), r.LastRestockDate})
		}
		return header, rows, data.Inventory, nil
	case KindPrices:
		header := []string{"date", "productId", "productName", "ourPrice", "competitorAvgPrice", "pricePosition", "margin"}
		rows := make([][]string, 0, len(data.PriceHistory))
		for _, r := range data.PriceHistory {
			rows = append(rows, []string{r.Date, r.ProductID, r.ProductName, ftoa(r.OurPrice), ftoa(r.CompetitorAvgPrice), r.PricePosition, ftoa(r.Margin)})
		}
		return header, rows, data.PriceHistory, nil
	case KindTickets:
		header := []string{"ticketId", "date", "customerEmail", "category", "subject", "message", "suggestedResponse", "status"}
		rows := make([][]string, 0, len(data.Tickets))
		for _, r := range data.Tickets {
			rows = append(rows, []string{r.TicketID, r.Date, r.CustomerEmail, r.Category, r.Subject, r.Message, r.SuggestedResponse, r.Status})
		}
		return header, rows, data.Tickets, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: %s", ErrUnknownDataKind, kind)
	}
}
