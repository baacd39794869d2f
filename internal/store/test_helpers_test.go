package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/polls/internal/poll"
)

var testNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestQuestion stores a question published offset from testNow.
func createTestQuestion(t *testing.T, s *Store, text string, offset time.Duration) poll.Question {
	t.Helper()
	q, err := poll.NewQuestion(text, testNow.Add(offset))
	require.NoError(t, err)
	q, err = s.CreateQuestion(context.Background(), q)
	require.NoError(t, err)
	return q
}

func createTestChoice(t *testing.T, s *Store, questionID, text string) poll.Choice {
	t.Helper()
	c, err := poll.NewChoice(text)
	require.NoError(t, err)
	c, err = s.AddChoice(context.Background(), questionID, c)
	require.NoError(t, err)
	return c
}

func questionIDs(qs []poll.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}
