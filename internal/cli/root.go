package cli

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/polls/internal/config"
	"github.com/roach88/polls/internal/poll"
	"github.com/roach88/polls/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // overrides database.path from config
	Now        string // RFC 3339 override for the clock
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the polls CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "polls",
		Short: "polls - questions, choices and votes",
		Long: `A small polls service. Questions become visible once their
publication time has passed; until then they are hidden from listings
and treated as not found.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Now != "" {
				if _, err := time.Parse(time.RFC3339, opts.Now); err != nil {
					return fmt.Errorf("invalid --now %q: %w", opts.Now, err)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Now, "now", "", "pin the current time (RFC 3339), for previews and tests")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewQuestionCommand(opts))
	cmd.AddCommand(NewVoteCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig reads the config file, applies environment and flag overrides,
// and validates the result.
func (o *RootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	cfg.ApplyEnv()
	if o.Database != "" {
		cfg.Database.Path = o.Database
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// clock returns a fixed clock when --now is set, else the system clock.
func (o *RootOptions) clock() poll.Clock {
	if o.Now == "" {
		return poll.SystemClock{}
	}
	// Already validated in PersistentPreRunE.
	t, _ := time.Parse(time.RFC3339, o.Now)
	return poll.NewFixedClock(t)
}

// logger builds the slog logger for a command. --verbose forces debug.
func (o *RootOptions) logger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	level := cfg.Logging.SlogLevel()
	if o.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// session bundles what data commands need: validated config, open store,
// logger and clock. Callers must Close it.
type session struct {
	cfg    config.Config
	store  *store.Store
	logger *slog.Logger
	clock  poll.Clock
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// openSession loads config and opens the store, reporting failures through f.
func (o *RootOptions) openSession(cmd *cobra.Command, f *OutputFormatter) (*session, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	logger := o.logger(cmd, cfg)

	logger.Debug("opening database", "path", cfg.Database.Path)
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}

	return &session{cfg: cfg, store: st, logger: logger, clock: o.clock()}, nil
}
