package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/polls/internal/poll"
	"github.com/roach88/polls/internal/store"
	"github.com/roach88/polls/internal/testutil"
)

const day = testutil.Day

type testEnv struct {
	store  *store.Store
	clock  *poll.FixedClock
	server *Server
}

// newTestEnv wires a Server to a fresh store and a clock pinned at
// testutil.Now. ids, if given, become the store's IDs in creation order.
func newTestEnv(t *testing.T, ids ...string) *testEnv {
	t.Helper()

	st := testutil.NewStore(t, ids...)
	clock := testutil.NewClock()
	srv, err := NewServer(st, Options{
		Clock:  clock,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)

	return &testEnv{store: st, clock: clock, server: srv}
}

// createQuestion mirrors the tutorial's create_question(question_text, days).
func (e *testEnv) createQuestion(t *testing.T, text string, offset time.Duration) poll.Question {
	t.Helper()
	return testutil.CreateQuestion(t, e.store, text, offset)
}

func (e *testEnv) addChoice(t *testing.T, questionID, text string) poll.Choice {
	t.Helper()
	return testutil.AddChoice(t, e.store, questionID, text)
}

func (e *testEnv) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (e *testEnv) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}
