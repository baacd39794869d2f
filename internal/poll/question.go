package poll

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxTextLength is the maximum length, in runes, of question and choice text.
const MaxTextLength = 200

var (
	ErrEmptyText   = errors.New("text must not be empty")
	ErrTextTooLong = fmt.Errorf("text must be at most %d characters", MaxTextLength)
)

// Question is a single poll question.
type Question struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`

	// Seq is the store-assigned insertion sequence. Zero until persisted.
	Seq int64 `json:"-"`
}

// Choice is one answer to a Question, with its running vote count.
type Choice struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	Votes      int64  `json:"votes"`
	Seq        int64  `json:"-"`
}

// NewQuestion validates text and returns an unsaved question.
// ID and Seq are left for the store to assign.
func NewQuestion(text string, pubDate time.Time) (Question, error) {
	normalized, err := normalizeText(text)
	if err != nil {
		return Question{}, fmt.Errorf("question: %w", err)
	}
	return Question{Text: normalized, PubDate: pubDate}, nil
}

// NewChoice validates text and returns an unsaved choice with zero votes.
func NewChoice(text string) (Choice, error) {
	normalized, err := normalizeText(text)
	if err != nil {
		return Choice{}, fmt.Errorf("choice: %w", err)
	}
	return Choice{Text: normalized}, nil
}

// normalizeText trims and NFC-normalizes text so that visually identical
// input is stored identically.
func normalizeText(s string) (string, error) {
	s = strings.TrimSpace(norm.NFC.String(s))
	if s == "" {
		return "", ErrEmptyText
	}
	if utf8.RuneCountInString(s) > MaxTextLength {
		return "", ErrTextTooLong
	}
	return s, nil
}

// VoteLabel renders a vote count with the right plural, e.g. "1 vote".
func VoteLabel(n int64) string {
	if n == 1 {
		return "1 vote"
	}
	return fmt.Sprintf("%d votes", n)
}

func (q Question) String() string {
	return q.Text
}
