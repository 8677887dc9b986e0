package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/fql/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is resolved before any subcommand runs: file, then FQL_*
	// environment, then flags.
	Config *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// configFlags are the persistent flags that override a config setting of
// the same name.
var configFlags = []struct {
	flag, usage string
}{
	{"schema", "directory of CUE model definitions"},
	{"catalog", "extra YAML translation catalog"},
	{"locale", "locale for describe (e.g. en, es-MX)"},
	{"style", "translation style (html)"},
	{"dialect", "SQL dialect (sqlite|postgres|mysql)"},
	{"driver", "database/sql driver for exec"},
	{"database", "database DSN for exec"},
	{"store", "SQLite file of saved queries"},
	{"log-level", "log level (debug|info|warn|error)"},
}

// NewRootCommand creates the root command for the fql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "fql",
		Short: "fql - filter query language",
		Long: `Compile, describe and run FQL filter expressions.

Expressions are JSON trees. Wherever a command takes EXPR it accepts a
path to a file, - for standard input, or an inline JSON object.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.resolve(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default "+config.DefaultFile+")")
	for _, f := range configFlags {
		cmd.PersistentFlags().String(f.flag, "", f.usage)
	}

	// Add subcommands
	cmd.AddCommand(NewSQLCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewDescribeCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewExpandCommand(opts))
	cmd.AddCommand(NewSaveCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

// resolve loads the config, applies flag overrides and installs the logger.
func (opts *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	for _, f := range configFlags {
		if !cmd.Flags().Changed(f.flag) {
			continue
		}
		value, err := cmd.Flags().GetString(f.flag)
		if err != nil {
			return WrapExitError(ExitCommandError, "flag --"+f.flag, err)
		}
		if err := cfg.Set(strings.ReplaceAll(f.flag, "-", "_"), value); err != nil {
			return WrapExitError(ExitCommandError, "flag --"+f.flag, err)
		}
	}
	if opts.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	opts.Config = cfg
	slog.SetDefault(NewLogger(cmd.ErrOrStderr(), cfg.Level()))
	return nil
}

// formatter returns the OutputFormatter for cmd.
func (opts *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
