package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/roach88/polls/internal/poll"
	"github.com/roach88/polls/internal/store"
)

// QuestionSummary is the CLI rendering of a question.
type QuestionSummary struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
	Visible bool      `json:"visible"`
	Recent  bool      `json:"was_published_recently"`
}

// QuestionDetail is a question with its choices.
type QuestionDetail struct {
	Question QuestionSummary `json:"question"`
	Choices  []poll.Choice   `json:"choices"`
}

func summarize(q poll.Question, now time.Time) QuestionSummary {
	return QuestionSummary{
		ID:      q.ID,
		Text:    q.Text,
		PubDate: q.PubDate,
		Visible: poll.IsVisible(q, now),
		Recent:  poll.WasPublishedRecently(q, now),
	}
}

// listTextWidth caps question text in text-format listings, in terminal cells.
const listTextWidth = 60

func (s QuestionSummary) writeLine(w io.Writer) {
	var flag string
	switch {
	case !s.Visible:
		flag = "  (scheduled)"
	case s.Recent:
		flag = "  (new)"
	}
	text := runewidth.Truncate(s.Text, listTextWidth, "...")
	fmt.Fprintf(w, "%s  %s  %s%s\n", s.ID, s.PubDate.Format(time.RFC3339), text, flag)
}

// NewQuestionCommand creates the question command group.
func NewQuestionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "question",
		Short: "Create and inspect questions",
	}

	cmd.AddCommand(newQuestionAddCommand(rootOpts))
	cmd.AddCommand(newQuestionListCommand(rootOpts))
	cmd.AddCommand(newQuestionShowCommand(rootOpts))

	return cmd
}

type questionAddOptions struct {
	*RootOptions
	PubOffset time.Duration
	Choices   []string
}

func newQuestionAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &questionAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Create a question",
		Long: `Create a question published at now plus --pub-offset.

A positive offset schedules the question: it stays hidden until then.

Example:
  polls question add "What's up?" --choice "Not much" --choice "The sky"
  polls question add "Coming soon" --pub-offset 72h`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuestionAdd(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.PubOffset, "pub-offset", 0, "publication time relative to now (e.g. -24h, 72h)")
	cmd.Flags().StringArrayVar(&opts.Choices, "choice", nil, "choice text (repeatable)")

	return cmd
}

func runQuestionAdd(opts *questionAddOptions, text string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	// Validate everything before touching the database.
	now := opts.clock().Now()
	q, err := poll.NewQuestion(text, now.Add(opts.PubOffset))
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeInvalidInput, "invalid question", err)
	}
	choices := make([]poll.Choice, 0, len(opts.Choices))
	for _, c := range opts.Choices {
		choice, err := poll.NewChoice(c)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeInvalidInput, "invalid choice", err)
		}
		choices = append(choices, choice)
	}

	sess, err := opts.openSession(cmd, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	q, choices, err = sess.store.CreateQuestionWithChoices(ctx, q, choices)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to create question", err)
	}
	sess.logger.Debug("question created", "id", q.ID, "choices", len(choices))

	detail := QuestionDetail{Question: summarize(q, now), Choices: choices}
	return f.Emit(detail, func(w io.Writer) {
		fmt.Fprintf(w, "Created question %s\n", q.ID)
		for _, c := range choices {
			fmt.Fprintf(w, "  choice %s  %s\n", c.ID, c.Text)
		}
	})
}

type questionListOptions struct {
	*RootOptions
	All   bool
	Limit int
}

func newQuestionListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &questionListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List published questions, most recent first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuestionList(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "include scheduled (future) questions")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of questions (0 = no limit)")

	return cmd
}

func runQuestionList(opts *questionListOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sess, err := opts.openSession(cmd, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	now := sess.clock.Now()
	var qs []poll.Question
	if opts.All {
		qs, err = sess.store.Questions(cmd.Context())
		if err == nil && opts.Limit > 0 && len(qs) > opts.Limit {
			qs = qs[:opts.Limit]
		}
	} else {
		qs, err = sess.store.PublishedQuestions(cmd.Context(), now, opts.Limit)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to list questions", err)
	}

	summaries := make([]QuestionSummary, len(qs))
	for i, q := range qs {
		summaries[i] = summarize(q, now)
	}

	return f.Emit(summaries, func(w io.Writer) {
		if len(summaries) == 0 {
			fmt.Fprintln(w, "No polls are available.")
			return
		}
		for _, s := range summaries {
			s.writeLine(w)
		}
	})
}

func newQuestionShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "show <id>",
		Short:         "Show a published question with its choices and votes",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuestionShow(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runQuestionShow(opts *RootOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	sess, err := opts.openSession(cmd, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	q, err := visibleQuestion(cmd, sess, f, id)
	if err != nil {
		return err
	}

	choices, err := sess.store.Choices(cmd.Context(), q.ID)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read choices", err)
	}

	detail := QuestionDetail{Question: summarize(q, sess.clock.Now()), Choices: choices}
	return f.Emit(detail, func(w io.Writer) {
		detail.Question.writeLine(w)
		for _, c := range choices {
			fmt.Fprintf(w, "  %s  %s  %d\n", c.ID, c.Text, c.Votes)
		}
	})
}

// visibleQuestion loads id and applies the publication gate. Unknown and
// scheduled questions both report not found.
func visibleQuestion(cmd *cobra.Command, sess *session, f *OutputFormatter, id string) (poll.Question, error) {
	q, err := sess.store.Question(cmd.Context(), id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !poll.IsVisible(q, sess.clock.Now())) {
		return poll.Question{}, f.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("question %s not found", id), nil)
	}
	if err != nil {
		return poll.Question{}, f.Fail(ExitCommandError, ErrCodeStore, "failed to read question", err)
	}
	return q, nil
}
