package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"smartcommerce-api/pkg/logger"
	"smartcommerce-api/pkg/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	demoSeed   int64
	formatFlag string
	logLevel   string

	// now is swapped out in tests.
	now services.Clock = time.Now
)

// RootCmd smartcommerce コマンドのルート
var RootCmd = &cobra.Command{
	Use:   "smartcommerce",
	Short: "Heuristic pricing, reorder and support-reply assistant for small shops",
	Long: `smartcommerce runs the pricing advisor, reorder predictor and support
reply matcher against a directory of CSV/Excel exports, or against
deterministic demo data when no directory is given.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Directory with sales_data/inventory_data/price_history/support_tickets (.csv or .xlsx); demo data when empty")
	RootCmd.PersistentFlags().Int64Var(&demoSeed, "seed", 42, "Seed for demo data")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
}

// newLogger ログは標準エラーに出し、標準出力は結果専用にする
func newLogger() *zap.Logger {
	zl, err := logger.New(logger.Config{Level: logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return zap.NewNop()
	}
	return zl
}

// loadDataset --data が指定されていればディレクトリから、なければデモデータを生成
func loadDataset(zl *zap.Logger) (services.Dataset, error) {
	if dataDir == "" {
		zl.Debug("デモデータを生成します", zap.Int64("seed", demoSeed))
		return services.GenerateDemoData(demoSeed, now()), nil
	}
	data, err := services.NewImportService(zl).LoadDir(dataDir)
	if err != nil {
		return services.Dataset{}, fmt.Errorf("データの読み込みに失敗: %w", err)
	}
	return data, nil
}

func printJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func textOutput() bool {
	return formatFlag == "text"
}

func validateOutputFormat() error {
	switch formatFlag {
	case "json", "text":
		return nil
	default:
		return fmt.Errorf("未対応の出力形式です: %q (json または text)", formatFlag)
	}
}
