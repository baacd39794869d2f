package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/polls/internal/poll"
)

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Draft is a question together with the choices to create for it.
type Draft struct {
	Question poll.Question
	Choices  []poll.Choice
}

// CreateQuestion inserts q and returns it with ID and Seq assigned.
// An ID already set on q is kept.
func (s *Store) CreateQuestion(ctx context.Context, q poll.Question) (poll.Question, error) {
	q, err := s.insertQuestion(ctx, s.db, q)
	if err != nil {
		return poll.Question{}, fmt.Errorf("create question: %w", err)
	}
	return q, nil
}

// CreateQuestionWithChoices inserts q and its choices in one transaction.
// Either everything is written or nothing is.
func (s *Store) CreateQuestionWithChoices(ctx context.Context, q poll.Question, cs []poll.Choice) (poll.Question, []poll.Choice, error) {
	created, err := s.CreateDrafts(ctx, []Draft{{Question: q, Choices: cs}})
	if err != nil {
		return poll.Question{}, nil, err
	}
	return created[0].Question, created[0].Choices, nil
}

// CreateDrafts inserts every draft in one transaction, in order, and
// returns them with IDs and Seqs assigned. A failure rolls back all of them.
func (s *Store) CreateDrafts(ctx context.Context, drafts []Draft) ([]Draft, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create drafts: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	out := make([]Draft, len(drafts))
	for i, d := range drafts {
		q, err := s.insertQuestion(ctx, tx, d.Question)
		if err != nil {
			return nil, fmt.Errorf("create drafts: question %d: %w", i, err)
		}

		choices := make([]poll.Choice, len(d.Choices))
		for j, c := range d.Choices {
			choices[j], err = s.insertChoice(ctx, tx, q.ID, c)
			if err != nil {
				return nil, fmt.Errorf("create drafts: question %d choice %d: %w", i, j, err)
			}
		}
		out[i] = Draft{Question: q, Choices: choices}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("create drafts: commit: %w", err)
	}
	return out, nil
}

// AddChoice attaches c to the question identified by questionID.
// Returns ErrNotFound if the question does not exist.
func (s *Store) AddChoice(ctx context.Context, questionID string, c poll.Choice) (poll.Choice, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return poll.Choice{}, fmt.Errorf("add choice: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM questions WHERE id = ?`, questionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return poll.Choice{}, fmt.Errorf("add choice: question %s: %w", questionID, ErrNotFound)
	}
	if err != nil {
		return poll.Choice{}, fmt.Errorf("add choice: lookup question: %w", err)
	}

	c, err = s.insertChoice(ctx, tx, questionID, c)
	if err != nil {
		return poll.Choice{}, fmt.Errorf("add choice: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return poll.Choice{}, fmt.Errorf("add choice: commit: %w", err)
	}
	return c, nil
}

func (s *Store) insertQuestion(ctx context.Context, db execer, q poll.Question) (poll.Question, error) {
	if q.ID == "" {
		q.ID = s.ids.Generate()
	}
	sec, nsec := toUnix(q.PubDate)

	result, err := db.ExecContext(ctx, `
		INSERT INTO questions (id, question_text, pub_date, pub_nanos)
		VALUES (?, ?, ?, ?)
	`, q.ID, q.Text, sec, nsec)
	if err != nil {
		return poll.Question{}, fmt.Errorf("insert question: %w", err)
	}

	q.Seq, err = result.LastInsertId()
	if err != nil {
		return poll.Question{}, fmt.Errorf("last insert id: %w", err)
	}
	q.PubDate = q.PubDate.UTC()
	return q, nil
}

func (s *Store) insertChoice(ctx context.Context, db execer, questionID string, c poll.Choice) (poll.Choice, error) {
	if c.ID == "" {
		c.ID = s.ids.Generate()
	}
	c.QuestionID = questionID

	result, err := db.ExecContext(ctx, `
		INSERT INTO choices (id, question_id, choice_text, votes)
		VALUES (?, ?, ?, ?)
	`, c.ID, c.QuestionID, c.Text, c.Votes)
	if err != nil {
		return poll.Choice{}, fmt.Errorf("insert choice: %w", err)
	}

	c.Seq, err = result.LastInsertId()
	if err != nil {
		return poll.Choice{}, fmt.Errorf("last insert id: %w", err)
	}
	return c, nil
}

// Vote increments the vote count of choiceID, which must belong to
// questionID, and returns the updated choice.
//
// The increment happens in SQL (votes = votes + 1) so concurrent votes are
// never lost. Returns ErrNotFound if the pair does not match a choice.
func (s *Store) Vote(ctx context.Context, questionID, choiceID string) (poll.Choice, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return poll.Choice{}, fmt.Errorf("vote: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	result, err := tx.ExecContext(ctx, `
		UPDATE choices SET votes = votes + 1
		WHERE id = ? AND question_id = ?
	`, choiceID, questionID)
	if err != nil {
		return poll.Choice{}, fmt.Errorf("vote: update: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return poll.Choice{}, fmt.Errorf("vote: rows affected: %w", err)
	}
	if n == 0 {
		return poll.Choice{}, fmt.Errorf("vote: choice %s: %w", choiceID, ErrNotFound)
	}

	c, err := scanChoice(tx.QueryRowContext(ctx, `
		SELECT id, question_id, choice_text, votes, seq
		FROM choices
		WHERE id = ?
	`, choiceID))
	if err != nil {
		return poll.Choice{}, fmt.Errorf("vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return poll.Choice{}, fmt.Errorf("vote: commit: %w", err)
	}
	return c, nil
}
