package main

import (
	"github.com/spf13/cobra"
)

func newCallCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "call NAME [ARG...]",
		Short: "Call a symbol by identifier",
		Long: `Call a symbol by a Go-style identifier. Aliases are consulted first,
then the name as written, then its demunged form (upper_case -> upper-case).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.invoker(cmd.Context())
			if err != nil {
				return err
			}
			defer inv.Close()

			v, err := inv.Call(cmd.Context(), args[0], parseArgs(args[1:], raw)...)
			if err != nil {
				return err
			}
			printValue(cmd, v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "pass arguments as strings")
	return cmd
}

func newInvokeCmd(a *app) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "invoke SYMBOL [ARG...]",
		Short: "Call a symbol by its hosted name",
		Long: `Call a symbol by any name, including names that are not identifiers
and qualified names such as clojure.core/+ or clojure.core//.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.invoker(cmd.Context())
			if err != nil {
				return err
			}
			defer inv.Close()

			v, err := inv.Invoke(cmd.Context(), args[0], parseArgs(args[1:], raw)...)
			if err != nil {
				return err
			}
			printValue(cmd, v)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "pass arguments as strings")
	return cmd
}
