package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/polls/internal/fixture"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <fixture.yaml>",
		Short: "Load questions and choices from a YAML fixture",
		Long: `Load questions and choices from a YAML fixture.

Each question's pub_offset is added to the current time (or --now), so a
fixture can create past, current and scheduled questions in one go.

Example:
  polls seed ./fixtures/tutorial.yaml --db ./polls.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runSeed(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	fx, err := fixture.Load(path)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeInvalidInput, "failed to load fixture", err)
	}
	f.VerboseLog("Loaded %d question(s) from %s", len(fx.Questions), path)

	sess, err := opts.openSession(cmd, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	now := sess.clock.Now()
	created, err := fx.Apply(cmd.Context(), sess.store, now)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to seed database", err)
	}
	sess.logger.Info("seeded database", "questions", len(created), "path", sess.cfg.Database.Path)

	summaries := make([]QuestionSummary, len(created))
	for i, q := range created {
		summaries[i] = summarize(q, now)
	}
	return f.Emit(summaries, func(w io.Writer) {
		fmt.Fprintf(w, "Seeded %d question(s)\n", len(created))
		for _, s := range summaries {
			s.writeLine(w)
		}
	})
}
