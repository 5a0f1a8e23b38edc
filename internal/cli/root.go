package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/snapsum/internal/engine"
)

// Environment variables that supply flag defaults.
const (
	EnvDatabase    = "SNAPSUM_DB"
	EnvParallelism = "SNAPSUM_PARALLELISM"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric   = "E001" // Generic/unknown error
	ErrCodeManifest  = "E002" // Manifest could not be loaded or is invalid
	ErrCodeDatabase  = "E003" // Journal could not be opened or written
	ErrCodeInvariant = "E004" // Checksum invariant violated
	ErrCodeDiffers   = "E005" // Checksum trees differ
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose     bool
	Format      string // "json" | "text"
	Parallelism int
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the snapsum CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "snapsum",
		Short: "snapsum - deterministic workspace checksums",
		Long: `Compute content-addressed checksum trees over workspace manifests.

Two processes holding the same workspace content compute the same checksums,
so comparing roots is enough to know whether they are in sync.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().IntVar(&opts.Parallelism, "parallelism", envInt(EnvParallelism, 0),
		"max concurrent entity checksums (0 = GOMAXPROCS, env "+EnvParallelism+")")

	// Add subcommands
	cmd.AddCommand(NewSumCommand(opts))
	cmd.AddCommand(NewConeCommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter returns an OutputFormatter writing to cmd's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger builds a text logger on w; --verbose enables debug level.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// engine builds an Engine honoring --parallelism.
func (o *RootOptions) engine(logger *slog.Logger, extra ...engine.EngineOption) *engine.Engine {
	opts := []engine.EngineOption{engine.WithLogger(logger)}
	if o.Parallelism > 0 {
		opts = append(opts, engine.WithParallelism(o.Parallelism))
	}
	return engine.New(append(opts, extra...)...)
}

// envInt reads an integer environment variable, returning fallback when it
// is unset or malformed.
func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
