package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/rxharness/internal/config"
	"github.com/roach88/rxharness/internal/matcher"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Engine  string // empty defers to config
	EnvFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the rxharness CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "rxharness",
		Short: "rxharness - regular expression conformance harness",
		Long: `Evaluate catalogs of regular-expression test cases against a matching engine.

Engines: ` + fmt.Sprint(matcher.Engines()) + `

Configuration is read from defaults, then a .env file, then RXHARNESS_*
environment variables, then flags.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Engine, "engine", "", fmt.Sprintf("matching engine %v (default from config: %s)", matcher.Engines(), config.DefaultEngine))
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "env file to read (default .env when present)")

	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// loadConfig resolves configuration with the global flags applied.
// Configuration problems are command errors.
func (o *RootOptions) loadConfig(flags config.Flags) (*config.Config, error) {
	flags.Engine = o.Engine
	flags.EnvFile = o.EnvFile

	cfg, err := config.Load(flags)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// logger returns a debug-level text logger on w when verbose output is
// enabled, and a discarding logger otherwise.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	if !o.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
