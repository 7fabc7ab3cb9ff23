package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/hostcall/mcpserver"
)

func newServeCmd(a *app) *cobra.Command {
	var noEval bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve loaded symbols as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			inv, err := a.invoker(ctx)
			if err != nil {
				return err
			}
			defer inv.Close()

			opts := mcpserver.Options{Version: Version, Logger: a.logger}
			if !noEval {
				if opts.Executor, err = a.executor(inv.Runtime()); err != nil {
					return err
				}
			}
			srv, err := mcpserver.New(ctx, inv, opts)
			if err != nil {
				return err
			}
			a.logger.Info("serving over stdio", "tools", len(srv.Tools()))
			return srv.Run(ctx, &mcp.StdioTransport{})
		},
	}
	cmd.Flags().BoolVar(&noEval, "no-eval", false, "do not serve the eval tool")
	return cmd
}
