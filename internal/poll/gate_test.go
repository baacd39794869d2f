package poll

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gateNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func questionAt(id string, offset time.Duration, seq int64) Question {
	return Question{ID: id, Text: "question " + id, PubDate: gateNow.Add(offset), Seq: seq}
}

func ids(qs []Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestWasPublishedRecently_FutureQuestion(t *testing.T) {
	q := questionAt("future", 30*24*time.Hour, 1)
	assert.False(t, WasPublishedRecently(q, gateNow))
}

func TestWasPublishedRecently_OldQuestion(t *testing.T) {
	q := questionAt("old", -(24*time.Hour + time.Second), 1)
	assert.False(t, WasPublishedRecently(q, gateNow))
}

func TestWasPublishedRecently_RecentQuestion(t *testing.T) {
	q := questionAt("recent", -(23*time.Hour + 59*time.Minute + 59*time.Second), 1)
	assert.True(t, WasPublishedRecently(q, gateNow))
}

func TestWasPublishedRecently_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"exactly now", 0, true},
		{"one nanosecond ahead", time.Nanosecond, false},
		{"exactly one day ago", -RecentWindow, true},
		{"one nanosecond past a day", -RecentWindow - time.Nanosecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := questionAt("b", tt.offset, 1)
			assert.Equal(t, tt.want, WasPublishedRecently(q, gateNow))
		})
	}
}

func TestWasPublishedRecently_TimezoneIndependent(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	q := Question{PubDate: gateNow.Add(-time.Hour).In(tokyo)}
	assert.True(t, WasPublishedRecently(q, gateNow))
}

func TestIsVisible(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   bool
	}{
		{"past ten days", -10 * 24 * time.Hour, true},
		{"exactly now", 0, true},
		{"future thirty days", 30 * 24 * time.Hour, false},
		{"one nanosecond ahead", time.Nanosecond, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsVisible(questionAt("v", tt.offset, 1), gateNow))
		})
	}
}

func TestListVisible_Empty(t *testing.T) {
	got := ListVisible(nil, gateNow)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListVisible_PastAndFuture(t *testing.T) {
	past := questionAt("past", -30*24*time.Hour, 1)
	future := questionAt("future", 30*24*time.Hour, 2)

	got := ListVisible([]Question{past, future}, gateNow)
	if diff := cmp.Diff([]Question{past}, got); diff != "" {
		t.Errorf("ListVisible() mismatch (-want +got):\n%s", diff)
	}
}

func TestListVisible_TwoPastQuestions(t *testing.T) {
	past1 := questionAt("past1", -30*24*time.Hour, 1)
	past2 := questionAt("past2", -40*24*time.Hour, 2)

	// Input order reversed to prove the result is sorted, not passed through.
	got := ListVisible([]Question{past2, past1}, gateNow)
	assert.Equal(t, []string{"past1", "past2"}, ids(got))
}

func TestListVisible_TwoFutureQuestions(t *testing.T) {
	future1 := questionAt("future1", 30*24*time.Hour, 1)
	future2 := questionAt("future2", 40*24*time.Hour, 2)

	got := ListVisible([]Question{future1, future2}, gateNow)
	assert.Empty(t, got)
}

func TestListVisible_TiesBrokenByReverseInsertion(t *testing.T) {
	first := questionAt("first", -time.Hour, 1)
	second := questionAt("second", -time.Hour, 2)
	third := questionAt("third", -time.Hour, 3)
	older := questionAt("older", -2*time.Hour, 4)

	got := ListVisible([]Question{first, older, third, second}, gateNow)
	assert.Equal(t, []string{"third", "second", "first", "older"}, ids(got))
}

func TestListVisible_DoesNotMutateInput(t *testing.T) {
	in := []Question{
		questionAt("a", -3*time.Hour, 1),
		questionAt("b", time.Hour, 2),
		questionAt("c", -time.Hour, 3),
	}
	snapshot := append([]Question(nil), in...)

	_ = ListVisible(in, gateNow)
	if diff := cmp.Diff(snapshot, in); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}
