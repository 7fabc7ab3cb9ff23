package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/jonwraymond/hostcall/lisp"
)

const (
	// AppName is the application name.
	AppName = "hostcall"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "hostcall"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "HOSTCALL"
)

// ErrInvalidConfig is returned when a configuration fails validation.
var ErrInvalidConfig = errors.New("invalid config")

//go:embed config_schema.cue
var configSchema string

// AliasEntry registers Name as an alias of Target.
type AliasEntry struct {
	Name   string `json:"name" mapstructure:"name"`
	Target string `json:"target" mapstructure:"target"`
}

// EvalConfig configures snippet evaluation.
type EvalConfig struct {
	Timeout  time.Duration `json:"timeout" mapstructure:"timeout"`
	MaxCalls int           `json:"max_calls" mapstructure:"max_calls"`
}

// Config holds hostcall settings.
type Config struct {
	Namespace   string       `json:"namespace" mapstructure:"namespace"`
	Load        []string     `json:"load" mapstructure:"load"`
	SourcePaths []string     `json:"source_paths" mapstructure:"source_paths"`
	Aliases     []AliasEntry `json:"aliases" mapstructure:"aliases"`
	LogLevel    string       `json:"log_level" mapstructure:"log_level"`
	Eval        EvalConfig   `json:"eval" mapstructure:"eval"`
}

// LoadOptions controls where Load looks for the config file.
type LoadOptions struct {
	// ConfigFilePath is used exclusively when set; it must exist.
	ConfigFilePath string
	// ConfigDirPath overrides the user config directory.
	ConfigDirPath string
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Namespace: lisp.CoreNamespace,
		LogLevel:  "info",
	}
}

// ConfigDir returns $XDG_CONFIG_HOME/hostcall, or ~/.config/hostcall.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// Load resolves the configuration and returns it with the path of the file
// it was read from, empty when only defaults and environment applied.
func Load(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("namespace", defaults.Namespace)
	v.SetDefault("load", defaults.Load)
	v.SetDefault("source_paths", defaults.SourcePaths)
	v.SetDefault("aliases", defaults.Aliases)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("eval.timeout", defaults.Eval.Timeout)
	v.SetDefault("eval.max_calls", defaults.Eval.MaxCalls)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := findConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, path, nil
}

func findConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		return opts.ConfigFilePath, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	name := ConfigFileName + "." + ConfigFileExt
	if p := filepath.Join(dir, name); fileExists(p) {
		return p, nil
	}
	if fileExists(name) {
		return name, nil
	}
	return "", nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, userValue.Err())
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// Validate checks constraints the schema cannot express, including values
// that arrive through the environment.
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("%w: namespace is empty", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.Eval.Timeout < 0 {
		return fmt.Errorf("%w: negative eval.timeout", ErrInvalidConfig)
	}
	if c.Eval.MaxCalls < 0 {
		return fmt.Errorf("%w: negative eval.max_calls", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Aliases))
	for i, a := range c.Aliases {
		if !lisp.IsIdentifier(a.Name) {
			return fmt.Errorf("%w: aliases[%d]: %q is not an identifier", ErrInvalidConfig, i, a.Name)
		}
		if seen[a.Name] {
			return fmt.Errorf("%w: aliases[%d]: duplicate alias %q", ErrInvalidConfig, i, a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}

// AliasMap returns the aliases keyed by name.
func (c *Config) AliasMap() map[string]string {
	if len(c.Aliases) == 0 {
		return nil
	}
	out := make(map[string]string, len(c.Aliases))
	for _, a := range c.Aliases {
		out[a.Name] = a.Target
	}
	return out
}

// Level returns the configured log level.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// GenerateCUE renders cfg as a hostcall.cue file.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// hostcall configuration\n\n")
	fmt.Fprintf(&sb, "namespace: %q\n", cfg.Namespace)
	writeList(&sb, "load", cfg.Load)
	writeList(&sb, "source_paths", cfg.SourcePaths)

	if len(cfg.Aliases) > 0 {
		sb.WriteString("\naliases: [\n")
		for _, a := range cfg.Aliases {
			fmt.Fprintf(&sb, "\t{name: %q, target: %q},\n", a.Name, a.Target)
		}
		sb.WriteString("]\n")
	}

	fmt.Fprintf(&sb, "\nlog_level: %q\n", cfg.LogLevel)

	sb.WriteString("\neval: {\n")
	fmt.Fprintf(&sb, "\ttimeout:   %q\n", cfg.Eval.Timeout.String())
	fmt.Fprintf(&sb, "\tmax_calls: %d\n", cfg.Eval.MaxCalls)
	sb.WriteString("}\n")

	return sb.String()
}

func writeList(sb *strings.Builder, key string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "\n%s: [\n", key)
	for _, item := range items {
		fmt.Fprintf(sb, "\t%q,\n", item)
	}
	sb.WriteString("]\n")
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
