package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newNSCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ns",
		Short: "Inspect namespaces",
	}
	cmd.AddCommand(newNSListCmd(a), newNSPublicsCmd(a))
	return cmd
}

func newNSListCmd(a *app) *cobra.Command {
	var available bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loaded namespaces in load order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inv, err := a.invoker(cmd.Context())
			if err != nil {
				return err
			}
			defer inv.Close()

			names := inv.Namespaces()
			if available {
				names = inv.Runtime().Available()
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&available, "available", false, "list built-in libraries instead, loaded or not")
	return cmd
}

func newNSPublicsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publics NAMESPACE",
		Short: "List the public symbols of a namespace, loading it if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inv, err := a.invoker(ctx)
			if err != nil {
				return err
			}
			defer inv.Close()

			if err := inv.Load(ctx, args[0]); err != nil {
				return err
			}
			syms, err := inv.ListSymbols(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, sym := range syms {
				if sym.Namespace != args[0] {
					continue
				}
				line := symbolStyle.Render(sym.Name)
				if len(sym.Arglists) > 0 {
					line += " " + subtitleStyle.Render(formatArglists(sym.Arglists))
				}
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}
