package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently sent facts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newServices(ctx, rootOpts, false)
			if err != nil {
				return err
			}
			defer svc.Close()

			sent, err := svc.ledger.ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sent) == 0 {
				fmt.Fprintln(out, "nothing sent yet")
				return nil
			}
			for _, sf := range sent {
				fmt.Fprintf(out, "%s\tfact %d\tcycle %d\n", sf.SendDate, sf.FactID, sf.Cycle)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 14, "number of rows to show")
	return cmd
}
