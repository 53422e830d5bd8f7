package services

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smartcommerce-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	data := GenerateDemoData(3, testNow)
	exporter := NewExportService(nil)
	importer := NewImportService(nil)

	for _, format := range []string{FormatCSV, FormatXLSX} {
		t.Run(format, func(t *testing.T) {
			store := NewDataStore(nil)
			for _, kind := range DataKinds {
				var buf bytes.Buffer
				require.NoError(t, exporter.Write(data, kind, format, &buf))

				n, err := importer.ImportInto(store, kind, DataFileNames[kind]+"."+format, &buf)
				require.NoError(t, err)
				assert.Positive(t, n)
			}

			got := store.Snapshot()
			assert.Equal(t, data.Sales, got.Sales)
			assert.Equal(t, data.Inventory, got.Inventory)
			assert.Equal(t, data.PriceHistory, got.PriceHistory)
			assert.Equal(t, data.Tickets, got.Tickets)
		})
	}
}

func TestExportCSVHeader(t *testing.T) {
	data := Dataset{Inventory: []models.InventorySnapshot{inventory("P1", 12)}}
	var buf bytes.Buffer
	require.NoError(t, NewExportService(nil).Write(data, KindInventory, FormatCSV, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "productId,productName,currentStock,reorderPoint,reorderQuantity,leadTimeDays,lastRestockDate", lines[0])
	assert.Equal(t, "P1,Product P1,12,20,50,7,", lines[1])
}

func TestExportJSON(t *testing.T) {
	data := Dataset{Sales: dailySales("P1", 3, 2, testNow)}
	var buf bytes.Buffer
	require.NoError(t, NewExportService(nil).Write(data, KindSales, FormatJSON, &buf))

	var got []models.SaleRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, data.Sales, got)
}

func TestExportErrors(t *testing.T) {
	exporter := NewExportService(nil)
	var buf bytes.Buffer
	assert.ErrorIs(t, exporter.Write(Dataset{}, "orders", FormatCSV, &buf), ErrUnknownDataKind)
	assert.ErrorIs(t, exporter.Write(Dataset{}, KindSales, "pdf", &buf), ErrUnsupportedFormat)
}

func TestParseSalesFlexibleHeaders(t *testing.T) {
	rows := [][]string{
		{"\ufeffDate", "Product_ID", "Quantity", "Price"},
		{"2024-06-01", "P1", "3", "9.99"},
		{"", "", "", ""},
		{"2024-06-02", "P1", "2", ""},
	}
	sales, err := NewImportService(nil).ParseSales(rows)
	require.NoError(t, err)
	require.Len(t, sales, 2)
	// revenue が無ければ数量×価格で補完
	assert.Equal(t, 29.97, sales[0].Revenue)
	assert.Zero(t, sales[1].Price)
}

func TestParseErrors(t *testing.T) {
	importer := NewImportService(nil)

	_, err := importer.ParseSales(nil)
	assert.Error(t, err)

	_, err = importer.ParseSales([][]string{{"date", "quantity"}})
	assert.ErrorContains(t, err, "productId")

	_, err = importer.ParseSales([][]string{{"date", "productId", "quantity"}, {"2024-06-01", "P1", "many"}})
	assert.ErrorContains(t, err, "2行目")

	_, err = importer.ParseInventory([][]string{{"productId", "currentStock", "reorderPoint", "leadTimeDays"}, {"P1", "-3", "20", "7"}})
	assert.ErrorContains(t, err, "currentStock")
}

func TestParsePriceHistoryDerivesPosition(t *testing.T) {
	rows := [][]string{
		{"date", "productId", "ourPrice", "competitorAvgPrice"},
		{"2024-06-01", "P1", "12", "10"},
		{"2024-06-08", "P1", "9", "10"},
	}
	entries, err := NewImportService(nil).ParsePriceHistory(rows)
	require.NoError(t, err)
	assert.Equal(t, "above", entries[0].PricePosition)
	assert.Equal(t, "below", entries[1].PricePosition)
}

func TestReadRowsUnsupported(t *testing.T) {
	_, err := NewImportService(nil).ReadRows("data.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestImportIntoUnknownKind(t *testing.T) {
	_, err := NewImportService(nil).ImportInto(NewDataStore(nil), "orders", "orders.csv", strings.NewReader("a\n1\n"))
	assert.ErrorIs(t, err, ErrUnknownDataKind)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	data := GenerateDemoData(5, testNow)
	exporter := NewExportService(nil)

	// 在庫はExcel、それ以外はCSVで置く
	for _, kind := range DataKinds {
		format := FormatCSV
		if kind == KindInventory {
			format = FormatXLSX
		}
		f, err := os.Create(filepath.Join(dir, DataFileNames[kind]+"."+format))
		require.NoError(t, err)
		require.NoError(t, exporter.Write(data, kind, format, f))
		require.NoError(t, f.Close())
	}

	got, err := NewImportService(nil).LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestLoadDirMissingFiles(t *testing.T) {
	got, err := NewImportService(nil).LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, got.Sales)
	assert.Empty(t, got.Inventory)
}
