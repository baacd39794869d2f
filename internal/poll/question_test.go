package poll

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestion_TrimsText(t *testing.T) {
	pub := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	q, err := NewQuestion("  What's new?  ", pub)
	require.NoError(t, err)

	assert.Equal(t, "What's new?", q.Text)
	assert.True(t, q.PubDate.Equal(pub))
	assert.Empty(t, q.ID, "ID is assigned by the store")
	assert.Zero(t, q.Seq)
}

func TestNewQuestion_NormalizesNFC(t *testing.T) {
	// "¿Quién?" with a decomposed e + combining acute accent.
	decomposed := "¿Quie\u0301n?"
	q, err := NewQuestion(decomposed, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "¿Qui\u00e9n?", q.Text)
}

func TestNewQuestion_Empty(t *testing.T) {
	_, err := NewQuestion("   ", time.Now())
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestNewQuestion_TooLong(t *testing.T) {
	_, err := NewQuestion(strings.Repeat("x", MaxTextLength+1), time.Now())
	assert.ErrorIs(t, err, ErrTextTooLong)

	_, err = NewQuestion(strings.Repeat("ñ", MaxTextLength), time.Now())
	assert.NoError(t, err, "length is counted in runes, not bytes")
}

func TestNewChoice(t *testing.T) {
	c, err := NewChoice(" The sky ")
	require.NoError(t, err)
	assert.Equal(t, "The sky", c.Text)
	assert.Zero(t, c.Votes)

	_, err = NewChoice("")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestQuestion_String(t *testing.T) {
	assert.Equal(t, "What's up?", Question{Text: "What's up?"}.String())
}

func TestVoteLabel(t *testing.T) {
	tests := map[int64]string{0: "0 votes", 1: "1 vote", 2: "2 votes"}
	for n, want := range tests {
		assert.Equal(t, want, VoteLabel(n))
	}
}
