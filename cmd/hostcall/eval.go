package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/hostcall/code"
)

func newEvalCmd(a *app) *cobra.Command {
	var (
		file  string
		ns    string
		trace bool
	)
	cmd := &cobra.Command{
		Use:   "eval [CODE]",
		Short: "Evaluate a snippet",
		Long: `Evaluate hosted source and print the value of the last form. Source is
taken from the argument, from --file, or from stdin when neither is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args, file)
			if err != nil {
				return err
			}

			inv, err := a.invoker(cmd.Context())
			if err != nil {
				return err
			}
			defer inv.Close()

			exec, err := a.executor(inv.Runtime())
			if err != nil {
				return err
			}
			result, err := exec.ExecuteCode(cmd.Context(), code.ExecuteParams{Code: src, Namespace: ns})
			out := cmd.OutOrStdout()
			if result.Stdout != "" {
				fmt.Fprint(out, result.Stdout)
			}
			if trace {
				printTrace(cmd.ErrOrStderr(), result.Calls)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(out, result.Printed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read source from file")
	cmd.Flags().StringVar(&ns, "ns", "", "namespace to evaluate in (default user)")
	cmd.Flags().BoolVar(&trace, "trace", false, "print the call trace to stderr")
	return cmd
}

func readSource(cmd *cobra.Command, args []string, file string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", errors.New("give either CODE or --file, not both")
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func printTrace(w io.Writer, calls []code.CallRecord) {
	for _, c := range calls {
		line := fmt.Sprintf("%s(%s %s) %dms", strings.Repeat("  ", c.Depth),
			symbolStyle.Render(c.Symbol), strings.Join(c.Args, " "), c.DurationMs)
		if c.Error != "" {
			line += " " + errorStyle.Render(c.Error)
		} else {
			line += " => " + c.Result
		}
		fmt.Fprintln(w, line)
	}
}
