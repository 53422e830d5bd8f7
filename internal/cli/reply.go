package cli

import (
	"fmt"

	"smartcommerce-api/pkg/services"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Draft a support reply from past ticket templates",
		RunE:  runReply,
	}

	cmd.Flags().StringP("category", "c", "", "Ticket category (required)")
	cmd.Flags().StringP("subject", "s", "", "Ticket subject (required)")
	cmd.Flags().StringP("message", "m", "", "Customer message")

	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("subject")

	RootCmd.AddCommand(cmd)
}

func runReply(cmd *cobra.Command, args []string) error {
	if err := validateOutputFormat(); err != nil {
		return err
	}
	category, _ := cmd.Flags().GetString("category")
	subject, _ := cmd.Flags().GetString("subject")
	message, _ := cmd.Flags().GetString("message")

	zl := newLogger()
	defer zl.Sync()

	data, err := loadDataset(zl)
	if err != nil {
		return err
	}
	svc := services.NewSupportService(data.Tickets, now, nil, nil, zl)
	reply := svc.GenerateResponse(cmd.Context(), subject, message, category)

	out := cmd.OutOrStdout()
	if textOutput() {
		_, err := fmt.Fprintln(out, reply.Response)
		return err
	}
	return printJSON(out, reply)
}
