package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	coreconfig "github.com/m3rciful/vedbot/core/config"
	"github.com/m3rciful/vedbot/internal/rates"
)

func newRatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Inspect or reset the tariff file",
	}
	cmd.PersistentFlags().String("file", "", "Tariff file (default $RATES_FILE or "+coreconfig.DefaultRatesFile+").")

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current tariffs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rates.NewFile(ratesFile(cmd))
			t, err := f.Load(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:       %s\n", f.Path())
			fmt.Fprintf(out, "rate_to:    %g USD/m3\n", t.RateTo)
			fmt.Fprintf(out, "rate_from:  %g USD/m3\n", t.RateFrom)
			fmt.Fprintf(out, "kg_per_m3:  %g\n", t.KgPerCubicMeter)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Overwrite the tariff file with the default tariffs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rates.NewFile(ratesFile(cmd))
			if err := f.Seed(false); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote defaults to %s\n", f.Path())
			return nil
		},
	})
	return cmd
}

func ratesFile(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("file"); strings.TrimSpace(path) != "" {
		return path
	}
	if path := strings.TrimSpace(os.Getenv("RATES_FILE")); path != "" {
		return path
	}
	return coreconfig.DefaultRatesFile
}
