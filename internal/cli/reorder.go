package cli

import (
	"fmt"
	"io"

	"smartcommerce-api/pkg/models"
	"smartcommerce-api/pkg/services"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reorder [PRODUCT_ID]",
		Short: "Predict stockout and reorder timing",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReorder,
	}
	RootCmd.AddCommand(cmd)
}

func runReorder(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(); err != nil {
		return err
	}
	zl := newLogger()
	defer zl.Sync()

	data, err := loadDataset(zl)
	if err != nil {
		return err
	}
	svc := services.NewReorderService(data, now(), zl)
	out := cmd.OutOrStdout()

	var predictions []models.ReorderPrediction
	if len(args) == 1 {
		p, err := svc.PredictReorder(args[0])
		if err != nil {
			return err
		}
		if !textOutput() {
			return printJSON(out, p)
		}
		predictions = []models.ReorderPrediction{*p}
	} else {
		predictions, err = svc.GetAllPredictions()
		if err != nil {
			return err
		}
		if !textOutput() {
			return printJSON(out, predictions)
		}
	}

	for _, p := range predictions {
		writePrediction(out, p)
	}
	return nil
}

func writePrediction(w io.Writer, p models.ReorderPrediction) {
	marker := " "
	if p.Urgent {
		marker = "!"
	}
	stockout := "n/a"
	if p.DaysUntilStockout != nil {
		stockout = fmt.Sprintf("%dd", *p.DaysUntilStockout)
	}
	fmt.Fprintf(w, "%s %s %s stock=%d daily=%.2f trend=%s stockout=%s: %s\n",
		marker, p.ProductID, p.ProductName, p.CurrentStock, p.DailySales, p.Trend, stockout, p.Recommendation)
}
