package main

import (
	"fmt"

	"github.com/jonwraymond/tooldiscovery/tooldoc"
	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search loaded symbols by name and docstring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.invoker(cmd.Context())
			if err != nil {
				return err
			}
			defer inv.Close()

			hits, err := inv.Search(args[0], limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, hit := range hits {
				fmt.Fprintf(out, "%s  %s\n", symbolStyle.Render(hit.Symbol), subtitleStyle.Render(hit.Summary))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	return cmd
}

func newDocCmd(a *app) *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "doc NAME",
		Short: "Show the documentation of a symbol",
		Long:  `Show the documentation of the symbol NAME resolves to, using the same resolution as invoke.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := a.invoker(cmd.Context())
			if err != nil {
				return err
			}
			defer inv.Close()

			level := tooldoc.DetailFull
			if short {
				level = tooldoc.DetailSummary
			}
			doc, err := inv.Describe(args[0], level)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if doc.Tool != nil {
				fmt.Fprintln(out, titleStyle.Render(doc.Tool.Title))
			}
			fmt.Fprintln(out, doc.Summary)
			if !short && doc.Tool != nil && doc.Tool.Description != doc.Summary {
				fmt.Fprintln(out)
				fmt.Fprintln(out, doc.Tool.Description)
			}
			if doc.Notes != "" {
				fmt.Fprintln(out, subtitleStyle.Render(doc.Notes))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "show the summary only")
	return cmd
}
