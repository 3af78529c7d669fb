package cli

import (
	"fmt"

	"daily_fact_bot/internal/domain/subscriber"

	"github.com/spf13/cobra"
)

// NewSubscribeCommand creates the subscribe command.
func NewSubscribeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe <email|sms|telegram> <address>",
		Short: "Add a subscriber",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			channel, err := subscriber.ParseChannel(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := newServices(ctx, rootOpts, false)
			if err != nil {
				return err
			}
			defer svc.Close()

			sub, err := svc.subscriptions.Subscribe(ctx, channel, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "subscribed %s %s (unsubscribe token %s)\n", sub.Channel, sub.Address, sub.UnsubscribeToken)
			return nil
		},
	}
}

// NewUnsubscribeCommand creates the unsubscribe command.
func NewUnsubscribeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe <token>",
		Short: "Deactivate the subscriber owning an unsubscribe token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := newServices(ctx, rootOpts, false)
			if err != nil {
				return err
			}
			defer svc.Close()

			sub, err := svc.subscriptions.Unsubscribe(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unsubscribed %s %s\n", sub.Channel, sub.Address)
			return nil
		},
	}
}
