package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"smartcommerce-api/pkg/models"
	"smartcommerce-api/pkg/services"

	"github.com/stretchr/testify/assert"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// run はグローバルなフラグ状態を初期化してからコマンドを実行する
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dataDir, demoSeed, formatFlag, logLevel = "", 42, "json", "error"
	now = func() time.Time { return fixedNow }
	t.Cleanup(func() { now = time.Now })
	for _, c := range RootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func TestPricingAllProductsJSON(t *testing.T) {
	out, err := run(t, "pricing")
	require.NoError(t, err)

	var got struct {
		Suggestions []models.PriceSuggestion `json:"suggestions"`
		Skipped     []string                 `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got.Suggestions, len(services.DemoProducts))
	assert.Empty(t, got.Skipped)
}

func TestPricingSingleProductText(t *testing.T) {
	out, err := run(t, "pricing", "P001", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "P001:")
}

func TestPricingUnknownProduct(t *testing.T) {
	_, err := run(t, "pricing", "NOPE")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestReorderJSON(t *testing.T) {
	out, err := run(t, "reorder")
	require.NoError(t, err)

	var got []models.ReorderPrediction
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, len(services.DemoProducts))
}

func TestReorderSingleText(t *testing.T) {
	out, err := run(t, "reorder", "P002", "-f", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "P002")
	assert.Contains(t, out, "stock=")
}

func TestReplyMatchesTemplate(t *testing.T) {
	out, err := run(t, "reply", "--category", "Shipping", "--subject", "Where is my order?", "--message", "My package has not arrived")
	require.NoError(t, err)

	var got models.SupportReply
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, services.SourceTemplate, got.Source)
	assert.Positive(t, got.Score)
	assert.NotEmpty(t, got.Response)
}

func TestReplyFallback(t *testing.T) {
	out, err := run(t, "reply", "-c", "Unknown", "-s", "zzz", "-m", "qqq", "-f", "text")
	require.NoError(t, err)
	assert.Contains(t, out, `Thank you for contacting us about "zzz"`)
}

func TestInvalidOutputFormat(t *testing.T) {
	_, err := run(t, "reorder", "--format", "yaml")
	assert.Error(t, err)
}

func TestGenerateThenLoad(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "generate", "--out", dir, "--seed", "7", "-f", "text")
	require.NoError(t, err)

	for _, kind := range services.DataKinds {
		path := filepath.Join(dir, services.DataFileNames[kind]+".csv")
		assert.FileExists(t, path)
		assert.Contains(t, out, path)
	}

	// 書き出したCSVを --data で読み戻せる
	out, err = run(t, "reorder", "--data", dir)
	require.NoError(t, err)
	var got []models.ReorderPrediction
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Len(t, got, len(services.DemoProducts))
}

func TestGenerateXLSX(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "generate", "--out", dir, "--file-format", "xlsx")
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "sales_data.xlsx"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestGenerateUnsupportedFormat(t *testing.T) {
	_, err := run(t, "generate", "--out", t.TempDir(), "--file-format", "parquet")
	assert.ErrorIs(t, err, services.ErrUnsupportedFormat)
}

func TestMissingDataDir(t *testing.T) {
	_, err := run(t, "pricing", "--data", filepath.Join(t.TempDir(), "missing"))
	// 存在しないディレクトリは空データとして扱われる
	require.NoError(t, err)
}
