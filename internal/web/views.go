package web

import (
	"context"
	"errors"
	"time"

	"github.com/roach88/polls/internal/poll"
	"github.com/roach88/polls/internal/store"
)

// errNotVisible marks a lookup the caller must answer with 404.
var errNotVisible = errors.New("question not visible")

type questionView struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
	Recent  bool      `json:"was_published_recently"`
}

type choiceView struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes int64  `json:"votes"`
	Label string `json:"-"`
}

type indexPage struct {
	Questions []questionView `json:"questions"`
}

type detailPage struct {
	Question     questionView `json:"question"`
	Choices      []choiceView `json:"choices"`
	ErrorMessage string       `json:"-"`
}

func newQuestionView(q poll.Question, now time.Time) questionView {
	return questionView{
		ID:      q.ID,
		Text:    q.Text,
		PubDate: q.PubDate,
		Recent:  poll.WasPublishedRecently(q, now),
	}
}

func newChoiceViews(cs []poll.Choice) []choiceView {
	out := make([]choiceView, len(cs))
	for i, c := range cs {
		out[i] = choiceView{ID: c.ID, Text: c.Text, Votes: c.Votes, Label: poll.VoteLabel(c.Votes)}
	}
	return out
}

// loadIndex builds the index page from the latest visible questions.
func (s *Server) loadIndex(ctx context.Context) (indexPage, error) {
	now := s.clock.Now()

	qs, err := s.store.PublishedQuestions(ctx, now, s.limit)
	if err != nil {
		return indexPage{}, err
	}

	// The query already filters and orders; the gate stays the authority
	// on what the index may show.
	visible := poll.ListVisible(qs, now)
	page := indexPage{Questions: make([]questionView, len(visible))}
	for i, q := range visible {
		page.Questions[i] = newQuestionView(q, now)
	}
	return page, nil
}

// loadDetail fetches a visible question with its choices.
// Unknown and unpublished questions both yield errNotVisible.
func (s *Server) loadDetail(ctx context.Context, id string) (detailPage, error) {
	now := s.clock.Now()

	q, err := s.store.Question(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return detailPage{}, errNotVisible
	}
	if err != nil {
		return detailPage{}, err
	}
	if !poll.IsVisible(q, now) {
		return detailPage{}, errNotVisible
	}

	choices, err := s.store.Choices(ctx, q.ID)
	if err != nil {
		return detailPage{}, err
	}

	return detailPage{
		Question: newQuestionView(q, now),
		Choices:  newChoiceViews(choices),
	}, nil
}
