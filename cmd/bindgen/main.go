package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jward/bindgen"
	"github.com/jward/bindgen/internal/config"
	"github.com/jward/bindgen/scripts"
)

var (
	flagConfig     string
	flagDB         string
	flagFormat     string
	flagVerbose    bool
	flagImplicit   bool
	flagModule     string
	flagScriptsDir string
)

// cfg is the loaded config with command-line overrides applied.
var cfg *config.Config

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "bindgen",
	Short:         "Build a language-neutral API model from TypeScript sources",
	Long:          "bindgen computes the export closure of TypeScript sources, merges and binds its declarations, and hands the model to emitters.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		return loadConfig(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultFile, "config file; missing is fine")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "run database path (overrides config db)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagImplicit, "implicit-export", false, "treat every top-level declaration as exported")
	rootCmd.PersistentFlags().StringVar(&flagModule, "module", "", "module name (overrides config module)")
	rootCmd.PersistentFlags().StringVar(&flagScriptsDir, "scripts-dir", "", "load emitter scripts from disk instead of embedded")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(runsCmd)
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) error {
	c, err := config.LoadOptional(flagConfig)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		c.DB = flagDB
	}
	if flags.Changed("module") {
		c.Module = flagModule
	}
	if flags.Changed("implicit-export") {
		c.ImplicitExport = flagImplicit
	}
	if flagVerbose {
		c.LogLevel = "debug"
	}
	cfg = c
	return nil
}

// newLogger builds the CLI logger writing to w at the named level.
func newLogger(w io.Writer, level string) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix:          "bindgen",
		ReportTimestamp: level == "debug",
	})
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// newEngine builds an Engine from cfg. Logs go to stderr so stdout stays
// machine-readable.
func newEngine(cmd *cobra.Command) (*bindgen.Engine, error) {
	opts := []bindgen.Option{
		bindgen.WithLogger(newLogger(cmd.ErrOrStderr(), cfg.LogLevel)),
		bindgen.WithModuleName(cfg.Module),
		bindgen.WithImplicitExport(cfg.ImplicitExport),
	}
	if cfg.DB != "" {
		opts = append(opts, bindgen.WithStore(cfg.DB))
	}
	if flagScriptsDir != "" {
		opts = append(opts, bindgen.WithScriptsDir(flagScriptsDir))
	} else {
		opts = append(opts, bindgen.WithScriptsFS(scripts.FS))
	}
	e, err := bindgen.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	return e, nil
}
