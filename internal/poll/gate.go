package poll

import (
	"sort"
	"time"
)

// RecentWindow is how far back a question still counts as recently published.
const RecentWindow = 24 * time.Hour

// WasPublishedRecently reports whether q was published within
// [now-RecentWindow, now]. Future questions are never recent.
func WasPublishedRecently(q Question, now time.Time) bool {
	if q.PubDate.After(now) {
		return false
	}
	return !q.PubDate.Before(now.Add(-RecentWindow))
}

// IsVisible reports whether q is published at or before now.
// Callers treat an invisible question as not found.
func IsVisible(q Question, now time.Time) bool {
	return !q.PubDate.After(now)
}

// ListVisible returns the visible questions, most recently published first.
// Equal publication times are ordered by Seq descending (newest insert first).
// The returned slice is never nil and qs is left untouched.
func ListVisible(qs []Question, now time.Time) []Question {
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		if IsVisible(q, now) {
			out = append(out, q)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PubDate.Equal(out[j].PubDate) {
			return out[i].PubDate.After(out[j].PubDate)
		}
		return out[i].Seq > out[j].Seq
	})
	return out
}
