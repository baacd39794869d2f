// Package fixture loads seed data for the polls store from YAML files.
//
// A fixture lists questions with a publication offset relative to "now" so
// the same file produces past, present, and future questions whenever it is
// applied:
//
//	questions:
//	  - text: "What's up?"
//	    pub_offset: "-24h"
//	    choices: ["Not much", "The sky"]
package fixture

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/polls/internal/poll"
	"github.com/roach88/polls/internal/store"
)

// Fixture is a set of questions to seed.
type Fixture struct {
	Questions []QuestionSpec `yaml:"questions"`
}

// QuestionSpec describes one seeded question.
type QuestionSpec struct {
	// Text is the question text.
	Text string `yaml:"text"`

	// PubOffset is added to now to get the publication time.
	// Negative offsets are in the past. Empty means "now".
	PubOffset string `yaml:"pub_offset,omitempty"`

	// Choices lists choice texts in display order.
	Choices []string `yaml:"choices,omitempty"`
}

// Offset parses PubOffset.
func (q QuestionSpec) Offset() (time.Duration, error) {
	if q.PubOffset == "" {
		return 0, nil
	}
	return time.ParseDuration(q.PubOffset)
}

// Writer is the subset of the store that Apply needs. CreateDrafts must
// write all drafts or none.
type Writer interface {
	CreateDrafts(ctx context.Context, drafts []store.Draft) ([]store.Draft, error)
}

// Load reads and parses a fixture YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields, or is missing required fields.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates fixture YAML.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

func validate(f *Fixture) error {
	if len(f.Questions) == 0 {
		return fmt.Errorf("questions list is required and must be non-empty")
	}

	for i, q := range f.Questions {
		if _, err := poll.NewQuestion(q.Text, time.Time{}); err != nil {
			return fmt.Errorf("questions[%d]: %w", i, err)
		}
		if _, err := q.Offset(); err != nil {
			return fmt.Errorf("questions[%d].pub_offset: %w", i, err)
		}
		for j, c := range q.Choices {
			if _, err := poll.NewChoice(c); err != nil {
				return fmt.Errorf("questions[%d].choices[%d]: %w", i, j, err)
			}
		}
	}
	return nil
}

// Apply creates every question and choice in f, publishing each question at
// now plus its offset. Questions are created in file order, in a single
// write: on error nothing from f is stored.
func (f *Fixture) Apply(ctx context.Context, w Writer, now time.Time) ([]poll.Question, error) {
	drafts := make([]store.Draft, 0, len(f.Questions))
	for i, spec := range f.Questions {
		offset, err := spec.Offset()
		if err != nil {
			return nil, fmt.Errorf("questions[%d].pub_offset: %w", i, err)
		}

		q, err := poll.NewQuestion(spec.Text, now.Add(offset))
		if err != nil {
			return nil, fmt.Errorf("questions[%d]: %w", i, err)
		}

		choices := make([]poll.Choice, len(spec.Choices))
		for j, text := range spec.Choices {
			choices[j], err = poll.NewChoice(text)
			if err != nil {
				return nil, fmt.Errorf("questions[%d].choices[%d]: %w", i, j, err)
			}
		}
		drafts = append(drafts, store.Draft{Question: q, Choices: choices})
	}

	written, err := w.CreateDrafts(ctx, drafts)
	if err != nil {
		return nil, fmt.Errorf("apply fixture: %w", err)
	}

	created := make([]poll.Question, len(written))
	for i, d := range written {
		created[i] = d.Question
	}
	return created, nil
}
