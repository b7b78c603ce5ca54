package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"studentdesk/internal/app"
	"studentdesk/internal/config"
	"studentdesk/internal/sheets"
)

func main() {
	var envFile string
	cmd := &cobra.Command{
		Use:   "verify_schema",
		Short: "Compare the live worksheet headers with the expected columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadFrom(envFile)
			store, closeStore, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			if err := store.Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Verifying %s\n", store.BackendName(cmd.Context()))
			if failed := verify(cmd.Context(), store, cmd.OutOrStdout()); failed > 0 {
				return fmt.Errorf("%d table(s) do not match", failed)
			}
			return nil
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("%v", err))
		os.Exit(1)
	}
}

// verify checks every table and returns how many failed.
func verify(ctx context.Context, store *sheets.Store, out io.Writer) int {
	failed := 0
	for _, table := range sheets.TableNames() {
		schema, _ := sheets.Lookup(table)
		if err := store.VerifySchema(ctx, table); err != nil {
			failed++
			fmt.Fprintf(out, "%s %-10s %v\n", color.RedString("FAIL"), table, err)
			fmt.Fprintf(out, "     expected: %v\n", schema.Columns)
			continue
		}
		fmt.Fprintf(out, "%s %-10s %d columns\n", color.GreenString("OK  "), table, len(schema.Columns))
	}
	return failed
}
