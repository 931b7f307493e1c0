// Package cli implements the cobra command tree for lazyfilter.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rebelice/lazyfilter/internal/config"
	"github.com/rebelice/lazyfilter/internal/logger"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

func usageError(format string, args ...interface{}) error {
	return &ExitError{Code: 2, Err: fmt.Errorf(format, args...)}
}

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return 1
	}

	return 0
}

// NewRootCommand constructs the top-level command. Without a subcommand it
// starts the filter builder TUI.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile  string
		logLevel string
		src      fieldSource
		preset   string
	)

	cmd := &cobra.Command{
		Use:   "lazyfilter",
		Short: "Build AND/OR filter chains for PostgreSQL tables in the terminal",
		Long: `lazyfilter is a terminal filter builder. Pick a table with --dsn and
--table, or describe fields in a YAML file with --fields, then build a chain
of typed rules joined by AND/OR and apply it.

Chains can be saved as presets and every applied chain is kept in history.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadFrom(cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if src.dsn == "" {
				src.dsn = cfg.Database.DSN
			}

			var log *zap.Logger
			if cmd == cmd.Root() && cfg.Log.File == "" {
				// The TUI owns the terminal, so without a log file nothing is logged
				log = zap.NewNop()
			} else if log, err = logger.NewLogger(cfg.Log.Env, cfg.Log.Level, cfg.Log.File); err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logger.ContextWithLogger(ctx, log)
			cmd.SetContext(ctx)

			log.Debug("configuration loaded",
				zap.Int("max_filters", cfg.Filter.MaxFilters),
				zap.String("default_logic", cfg.Filter.DefaultLogic),
			)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, src, preset)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/lazyfilter/config.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	src.register(cmd)

	cmd.Flags().StringVar(&preset, "preset", "", "open the builder with a saved preset")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	cmd.AddCommand(
		newWhereCommand(&src),
		newPresetsCommand(),
		newHistoryCommand(),
	)

	return cmd
}
