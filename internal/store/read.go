package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/polls/internal/poll"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Question retrieves a single question by ID regardless of its publication
// time. Returns ErrNotFound if absent.
func (s *Store) Question(ctx context.Context, id string) (poll.Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx, `
		SELECT id, question_text, pub_date, pub_nanos, seq
		FROM questions
		WHERE id = ?
	`, id))
	if err != nil {
		return poll.Question{}, fmt.Errorf("read question %s: %w", id, err)
	}
	return q, nil
}

// Questions returns every question ordered by pub_date DESC, seq DESC.
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) Questions(ctx context.Context) ([]poll.Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_text, pub_date, pub_nanos, seq
		FROM questions
		ORDER BY pub_date DESC, pub_nanos DESC, seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	return collectQuestions(rows)
}

// PublishedQuestions returns the questions visible at now, most recent first,
// ties broken by reverse insertion order. It is the SQL form of
// poll.ListVisible. A limit <= 0 means no limit.
func (s *Store) PublishedQuestions(ctx context.Context, now time.Time, limit int) ([]poll.Question, error) {
	if limit <= 0 {
		limit = -1 // SQLite: negative LIMIT means unbounded
	}
	sec, nsec := toUnix(now)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_text, pub_date, pub_nanos, seq
		FROM questions
		WHERE pub_date < ? OR (pub_date = ? AND pub_nanos <= ?)
		ORDER BY pub_date DESC, pub_nanos DESC, seq DESC
		LIMIT ?
	`, sec, sec, nsec, limit)
	if err != nil {
		return nil, fmt.Errorf("query published questions: %w", err)
	}
	return collectQuestions(rows)
}

// Choices returns the choices of a question in insertion order.
// Returns an empty slice (not nil) if the question has none.
func (s *Store) Choices(ctx context.Context, questionID string) ([]poll.Choice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_id, choice_text, votes, seq
		FROM choices
		WHERE question_id = ?
		ORDER BY seq ASC
	`, questionID)
	if err != nil {
		return nil, fmt.Errorf("query choices: %w", err)
	}
	defer rows.Close()

	choices := []poll.Choice{}
	for rows.Next() {
		c, err := scanChoice(rows)
		if err != nil {
			return nil, err
		}
		choices = append(choices, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate choices: %w", err)
	}
	return choices, nil
}

func collectQuestions(rows *sql.Rows) ([]poll.Question, error) {
	defer rows.Close()

	questions := []poll.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return questions, nil
}

func scanQuestion(row rowScanner) (poll.Question, error) {
	var (
		q        poll.Question
		pubDate  int64
		pubNanos int64
	)
	if err := row.Scan(&q.ID, &q.Text, &pubDate, &pubNanos, &q.Seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return poll.Question{}, ErrNotFound
		}
		return poll.Question{}, fmt.Errorf("scan question: %w", err)
	}
	q.PubDate = fromUnix(pubDate, pubNanos)
	return q, nil
}

func scanChoice(row rowScanner) (poll.Choice, error) {
	var c poll.Choice
	if err := row.Scan(&c.ID, &c.QuestionID, &c.Text, &c.Votes, &c.Seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return poll.Choice{}, ErrNotFound
		}
		return poll.Choice{}, fmt.Errorf("scan choice: %w", err)
	}
	return c, nil
}
