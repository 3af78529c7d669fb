package cli

import (
	"fmt"

	"daily_fact_bot/internal/infra/factsource"

	"github.com/spf13/cobra"
)

// NewFactsCommand creates the facts command group.
func NewFactsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Manage the fact catalog",
	}
	cmd.AddCommand(newFactsImportCommand(rootOpts))
	cmd.AddCommand(newFactsImageCommand(rootOpts))
	return cmd
}

func newFactsImportCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Insert or update facts from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := factsource.LoadYAMLFile(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			svc, err := newServices(ctx, opts, false)
			if err != nil {
				return err
			}
			defer svc.Close()

			n, err := factsource.Import(ctx, svc.facts, entries)
			if err != nil {
				return fmt.Errorf("import stopped after %d facts: %w", n, err)
			}
			total, err := svc.facts.Count(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d facts, catalog has %d\n", n, total)
			return nil
		},
	}
}

func newFactsImageCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-image <fact-id> <path>",
		Short: "Attach an image to a fact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int64
			if _, err := fmt.Sscan(args[0], &id); err != nil {
				return fmt.Errorf("invalid fact id %q: %w", args[0], err)
			}
			ctx := cmd.Context()
			svc, err := newServices(ctx, opts, false)
			if err != nil {
				return err
			}
			defer svc.Close()
			if err := svc.facts.SetImagePath(ctx, id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fact %d image set to %s\n", id, args[1])
			return nil
		},
	}
}
