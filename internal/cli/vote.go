package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/polls/internal/poll"
	"github.com/roach88/polls/internal/store"
)

// NewVoteCommand creates the vote command.
func NewVoteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vote <question-id> <choice-id>",
		Short:         "Cast a vote for a choice of a published question",
		Example:       `  polls vote 0190a5f2-7c1e-7b3a-9d4e-1f2a3b4c5d6e 0190a5f2-7c1f-7000-8000-000000000001`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVote(rootOpts, args[0], args[1], cmd)
		},
	}
	return cmd
}

func runVote(opts *RootOptions, questionID, choiceID string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sess, err := opts.openSession(cmd, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	if _, err := visibleQuestion(cmd, sess, f, questionID); err != nil {
		return err
	}

	c, err := sess.store.Vote(cmd.Context(), questionID, choiceID)
	if errors.Is(err, store.ErrNotFound) {
		return f.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("choice %s not found", choiceID), nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to record vote", err)
	}

	return f.Emit(c, func(w io.Writer) {
		fmt.Fprintf(w, "%s now has %s\n", c.Text, poll.VoteLabel(c.Votes))
	})
}
