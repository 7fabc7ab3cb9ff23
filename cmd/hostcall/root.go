package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/hostcall/catalog"
	"github.com/jonwraymond/hostcall/code"
	"github.com/jonwraymond/hostcall/internal/config"
	"github.com/jonwraymond/hostcall/invoke"
	"github.com/jonwraymond/hostcall/lisp"
)

// app carries state shared by all subcommands of one root command.
type app struct {
	verbose     bool
	cfgFile     string
	namespace   string
	load        []string
	sourcePaths []string

	cfg     *config.Config
	cfgPath string
	logger  *log.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "hostcall",
		Short: "Call hosted runtime functions by name",
		Long: titleStyle.Render("hostcall") + subtitleStyle.Render(" - call hosted runtime functions by name") + `

hostcall resolves symbols of an embedded Clojure-dialect runtime and calls
them with arguments written as data literals.

` + subtitleStyle.Render("Examples:") + `
  hostcall call inc 41                     Call clojure.core/inc
  hostcall invoke clojure.core/+ 1 2 3     Call any symbol by its full name
  hostcall call -l clojure.string upper_case '"hi"'
  hostcall eval '(reduce + (range 10))'    Evaluate a snippet
  hostcall search "split string"           Search loaded symbols
  hostcall serve                           Serve symbols over MCP (stdio)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/hostcall/hostcall.cue)")
	flags.StringVarP(&a.namespace, "namespace", "n", "", "primary namespace (default clojure.core)")
	flags.StringSliceVarP(&a.load, "load", "l", nil, "additional namespaces to load")
	flags.StringSliceVar(&a.sourcePaths, "source-path", nil, "directories searched for namespace sources")

	root.AddCommand(
		newCallCmd(a),
		newInvokeCmd(a),
		newEvalCmd(a),
		newNSCmd(a),
		newSearchCmd(a),
		newDocCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return root
}

// init loads configuration and applies flag overrides.
func (a *app) init(cmd *cobra.Command) error {
	cfg, path, err := config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: a.cfgFile})
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("namespace") {
		cfg.Namespace = a.namespace
	}
	if flags.Changed("load") {
		cfg.Load = append(cfg.Load, a.load...)
	}
	if flags.Changed("source-path") {
		cfg.SourcePaths = append(cfg.SourcePaths, a.sourcePaths...)
	}
	a.cfg, a.cfgPath = cfg, path

	a.logger = log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "hostcall"})
	a.logger.SetLevel(cfg.Level())
	if a.verbose {
		a.logger.SetLevel(log.DebugLevel)
	}
	a.logger.Debug("config loaded", "path", path, "namespace", cfg.Namespace, "load", cfg.Load)
	return nil
}

// invoker builds an invoker from the resolved configuration.
func (a *app) invoker(ctx context.Context) (*invoke.Invoker, error) {
	return invoke.New(ctx, invoke.Options{
		Namespace:   a.cfg.Namespace,
		SourcePaths: a.cfg.SourcePaths,
		Load:        a.cfg.Load,
		Aliases:     a.cfg.AliasMap(),
		Catalog:     catalog.New(catalog.WithLogger(a.logger)),
		Logger:      a.logger,
	})
}

// parseArgs reads each argument as a single data literal. Arguments that are
// not one literal, or read as a bare symbol, are passed as strings.
func parseArgs(args []string, raw bool) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = arg
		if raw {
			continue
		}
		forms, err := lisp.ReadAll(arg)
		if err != nil || len(forms) != 1 {
			continue
		}
		if _, isSym := forms[0].(lisp.Symbol); isSym {
			continue
		}
		out[i] = forms[0]
	}
	return out
}

func printValue(cmd *cobra.Command, v any) {
	fmt.Fprintln(cmd.OutOrStdout(), lisp.PrStr(v))
}

func formatArglists(arglists []string) string {
	return strings.Join(arglists, " ")
}

// executor builds a snippet executor over rt using the eval settings.
func (a *app) executor(rt *lisp.Runtime) (*code.DefaultExecutor, error) {
	return code.NewDefaultExecutor(code.Config{
		Runtime:        rt,
		DefaultTimeout: a.cfg.Eval.Timeout,
		MaxCalls:       a.cfg.Eval.MaxCalls,
		Logger:         code.LoggerFunc(a.logger.Debugf),
	})
}
