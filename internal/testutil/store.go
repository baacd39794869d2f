package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/polls/internal/poll"
	"github.com/roach88/polls/internal/store"
)

// Now is the instant every test clock starts at.
var Now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

// Day is one calendar day for offset arithmetic in tests.
const Day = 24 * time.Hour

// NewStore opens a fresh SQLite store in t.TempDir and closes it on cleanup.
//
// If ids are given the store hands them out in creation order (questions
// and choices share the sequence), which keeps golden output stable.
func NewStore(t *testing.T, ids ...string) *store.Store {
	t.Helper()

	var opts []store.Option
	if len(ids) > 0 {
		opts = append(opts, store.WithIDGenerator(poll.NewFixedGenerator(ids...)))
	}
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// NewClock returns a clock pinned at Now.
func NewClock() *poll.FixedClock {
	return poll.NewFixedClock(Now)
}

// CreateQuestion stores a question published offset from Now.
func CreateQuestion(t *testing.T, st *store.Store, text string, offset time.Duration) poll.Question {
	t.Helper()
	q, err := poll.NewQuestion(text, Now.Add(offset))
	require.NoError(t, err)
	q, err = st.CreateQuestion(context.Background(), q)
	require.NoError(t, err)
	return q
}

// AddChoice stores a choice for questionID.
func AddChoice(t *testing.T, st *store.Store, questionID, text string) poll.Choice {
	t.Helper()
	c, err := poll.NewChoice(text)
	require.NoError(t, err)
	c, err = st.AddChoice(context.Background(), questionID, c)
	require.NoError(t, err)
	return c
}
