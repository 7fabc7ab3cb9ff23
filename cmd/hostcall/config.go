package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/hostcall/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if a.cfgPath != "" {
				fmt.Fprintf(out, "// loaded from %s\n", a.cfgPath)
			}
			fmt.Fprint(out, config.GenerateCUE(a.cfg))
			return nil
		},
	})
	return cmd
}
