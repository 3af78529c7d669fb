package cli

import (
	"daily_fact_bot/internal/infra/config"
	"daily_fact_bot/internal/infra/logger"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootOptions holds state shared by all commands.
type RootOptions struct {
	Config *config.AppConfig
	Logger *logrus.Logger
}

// NewRootCommand creates the root command for the factbot CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "factbot",
		Short:         "Sends one fact a day to every subscriber",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.Config = cfg
			logger.Configure(logger.Log, cmd.ErrOrStderr(), cfg)
			opts.Logger = logger.Log
			return nil
		},
	}

	cmd.AddCommand(NewSendCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewFactsCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewSubscribeCommand(opts))
	cmd.AddCommand(NewUnsubscribeCommand(opts))

	return cmd
}
