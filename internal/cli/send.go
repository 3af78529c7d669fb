package cli

import (
	"errors"
	"fmt"
	"time"

	"daily_fact_bot/internal/domain/ledger"

	"github.com/spf13/cobra"
)

// ErrForceInProduction is returned when --force is used in production.
var ErrForceInProduction = errors.New("--force is not allowed in production")

// SendOptions holds flags for the send command.
type SendOptions struct {
	*RootOptions
	Date  string
	Force bool
}

// NewSendCommand creates the send command.
func NewSendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Run the daily send once",
		Long: `Select today's fact (or reuse the one already recorded) and deliver it
to every active subscriber. Running it twice on the same day is a no-op
unless --force is given.

Example:
  factbot send
  factbot send --date 2024-05-01 --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Date, "date", "", "send date as YYYY-MM-DD (default: today in UTC)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "re-deliver even if a fact was already sent for the date")

	return cmd
}

func runSend(cmd *cobra.Command, opts *SendOptions) error {
	if opts.Force && opts.Config.IsProduction() {
		return ErrForceInProduction
	}
	date := opts.Date
	if date == "" {
		date = ledger.Today(time.Now())
	}

	ctx := cmd.Context()
	svc, err := newServices(ctx, opts.RootOptions, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	outcome, err := svc.dailySend.RunDailySend(ctx, date, opts.Force)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", date, outcome.Summary())
	return nil
}
