package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file was not created")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "Open() iteration %d", i)
		s.Close()
	}

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	for _, table := range []string{"questions", "choices"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		assert.NoError(t, err, "table %q not found after idempotent opens", table)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	assert.Error(t, err)
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("user_version", "2"))
}

func TestOpen_MigrationCreatesChoiceIndex(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_choices_question'",
	).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "idx_choices_question", name)
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	assert.NoError(t, s.Close())
}

func TestPing(t *testing.T) {
	s := createTestStore(t)
	assert.NoError(t, s.Ping(t.Context()))
}

func TestOpen_MigrationCreatesPublishedIndex(t *testing.T) {
	s := createTestStore(t)

	var name string
	err := s.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='idx_questions_published'",
	).Scan(&name)
	require.NoError(t, err)
}

func TestOpen_MigratesNanosecondPubDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v1.db")
	pub := testNow.Add(123 * time.Nanosecond)
	early := time.Date(1960, time.January, 1, 0, 0, 0, 5, time.UTC)

	// Lay out a database the way schema version 1 left it.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE questions (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			question_text TEXT NOT NULL,
			pub_date INTEGER NOT NULL
		)`,
		`CREATE INDEX idx_questions_pub_date ON questions(pub_date DESC, seq DESC)`,
		`PRAGMA user_version = 1`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	_, err = db.Exec(`INSERT INTO questions (id, question_text, pub_date) VALUES (?, ?, ?), (?, ?, ?)`,
		"q-1", "What's up?", pub.UnixNano(),
		"q-old", "Old", early.UnixNano(),
	)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.verifyPragma("user_version", "2"))

	got, err := s.Question(context.Background(), "q-1")
	require.NoError(t, err)
	assert.True(t, got.PubDate.Equal(pub), "got %s", got.PubDate)

	got, err = s.Question(context.Background(), "q-old")
	require.NoError(t, err)
	assert.True(t, got.PubDate.Equal(early), "got %s", got.PubDate)
}
