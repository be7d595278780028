package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"model-gateway/internal/credentials"
	"model-gateway/internal/registry"
)

func newModelsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List configured models and whether their API keys are set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}
			creds, err := newCredentialStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("credential store: %w", err)
			}
			return printModels(ctx, cmd.OutOrStdout(), cfg.Registry(), creds)
		},
	}
}

// printModels reports only whether a key is present, never its value.
func printModels(ctx context.Context, out io.Writer, reg *registry.Registry, creds credentials.Store) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tPROVIDER\tADAPTER\tCREDENTIAL\tSET")
	for _, m := range reg.Models() {
		state := "yes"
		if _, err := creds.Lookup(ctx, m.CredentialVariable); err != nil {
			state = "no"
			if !errors.Is(err, credentials.ErrNotFound) {
				state = "error"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ModelID, m.Provider, m.Kind, m.CredentialVariable, state)
	}
	return tw.Flush()
}
