package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"smartcommerce-api/pkg/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a deterministic demo dataset to a directory",
		RunE:  runGenerate,
	}

	cmd.Flags().StringP("out", "o", "", "Output directory (required)")
	cmd.Flags().String("file-format", services.FormatCSV, "File format: csv, json or xlsx")

	cmd.MarkFlagRequired("out")

	RootCmd.AddCommand(cmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out")
	fileFormat, _ := cmd.Flags().GetString("file-format")
	if _, ok := services.ContentTypes[fileFormat]; !ok {
		return fmt.Errorf("%w: %s", services.ErrUnsupportedFormat, fileFormat)
	}

	zl := newLogger()
	defer zl.Sync()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("出力ディレクトリの作成に失敗: %w", err)
	}

	data := services.GenerateDemoData(demoSeed, now())
	exporter := services.NewExportService(zl)

	written := make([]string, 0, len(services.DataKinds))
	for _, kind := range services.DataKinds {
		path := filepath.Join(outDir, services.DataFileNames[kind]+"."+fileFormat)
		if err := writeKind(exporter, data, kind, fileFormat, path); err != nil {
			return err
		}
		zl.Info("📝 デモデータを書き出しました", zap.String("kind", kind), zap.String("path", path))
		written = append(written, path)
	}

	out := cmd.OutOrStdout()
	if textOutput() {
		for _, path := range written {
			fmt.Fprintln(out, path)
		}
		return nil
	}
	return printJSON(out, map[string]interface{}{"seed": demoSeed, "files": written, "summary": map[string]int{
		services.KindSales:     len(data.Sales),
		services.KindInventory: len(data.Inventory),
		services.KindPrices:    len(data.PriceHistory),
		services.KindTickets:   len(data.Tickets),
	}})
}

func writeKind(exporter *services.ExportService, data services.Dataset, kind, format, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s の作成に失敗: %w", path, err)
	}
	if err := exporter.Write(data, kind, format, f); err != nil {
		f.Close()
		return fmt.Errorf("%s の書き出しに失敗: %w", path, err)
	}
	return f.Close()
}
