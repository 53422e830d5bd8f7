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
		Use:   "pricing [PRODUCT_ID]",
		Short: "Suggest prices for one product or every product with price history",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPricing,
	}
	RootCmd.AddCommand(cmd)
}

func runPricing(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(); err != nil {
		return err
	}
	zl := newLogger()
	defer zl.Sync()

	data, err := loadDataset(zl)
	if err != nil {
		return err
	}
	svc := services.NewPricingService(data, now(), zl)
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		suggestion, err := svc.SuggestPrice(args[0])
		if err != nil {
			return err
		}
		if textOutput() {
			writeSuggestion(out, *suggestion)
			return nil
		}
		return printJSON(out, suggestion)
	}

	suggestions, skipped, err := svc.SuggestAll()
	if err != nil {
		return err
	}
	if !textOutput() {
		return printJSON(out, map[string]interface{}{"suggestions": suggestions, "skipped": skipped})
	}
	for _, s := range suggestions {
		writeSuggestion(out, s)
	}
	for _, id := range skipped {
		fmt.Fprintf(out, "%s: no inventory data, skipped\n", id)
	}
	return nil
}

func writeSuggestion(w io.Writer, s models.PriceSuggestion) {
	fmt.Fprintf(w, "%s: %.2f -> %.2f (%s) %s\n", s.ProductID, s.CurrentPrice, s.SuggestedPrice, s.Reason, s.ExpectedImpact)
}
