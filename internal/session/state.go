// Package session implements the server-authoritative test-taking attempt
// machine: durable per-(user, test) state, forward-only navigation across
// timed sections, a per-section countdown, and the review/submit flow.
package session

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/prepkit/ielts-backend/internal/model"
)

// State is the mutable core of one test attempt. It is owned by the Store and
// mutated only through the navigation and timer operations in this package.
//
// Invariants:
//   - CurrentSection always indexes a valid section; CurrentQuestion always
//     indexes a valid question of that section.
//   - Remaining holds an entry for every section, never below zero. Only the
//     active section's entry decreases; the rest stay frozen.
//   - Answers is keyed by question ID; re-answering overwrites in place.
type State struct {
	TestID          uuid.UUID                  `json:"test_id"`
	UserID          int                        `json:"user_id"`
	CurrentSection  int                        `json:"current_section"`
	CurrentQuestion int                        `json:"current_question"`
	Answers         map[uuid.UUID]model.Answer `json:"answers"`
	Remaining       map[string]int             `json:"remaining"`
	StartedAt       time.Time                  `json:"started_at"`
}

// New creates a fresh attempt state positioned at the first question of the
// first section, with every section's timer at its full duration.
func New(userID int, test *model.Test, now time.Time) *State {
	remaining := make(map[string]int, len(test.Sections))
	for _, sec := range test.Sections {
		remaining[sec.ID] = sec.DurationSeconds
	}
	return &State{
		TestID:    test.ID,
		UserID:    userID,
		Answers:   make(map[uuid.UUID]model.Answer),
		Remaining: remaining,
		StartedAt: now,
	}
}

// Clone returns a deep copy, used to hand snapshots across goroutine
// boundaries without exposing the live maps.
func (s *State) Clone() *State {
	cp := *s
	cp.Answers = make(map[uuid.UUID]model.Answer, len(s.Answers))
	for k, v := range s.Answers {
		cp.Answers[k] = v
	}
	cp.Remaining = make(map[string]int, len(s.Remaining))
	for k, v := range s.Remaining {
		cp.Remaining[k] = v
	}
	return &cp
}

// Plan is the immutable attempt layout: the test definition plus its questions
// grouped per section in display order. It is built once at session start and
// read-only afterwards.
type Plan struct {
	Test     *model.Test
	sections [][]model.QuestionForStudent
}

// NewPlan groups questions by section, ordered by OrderNum within each
// section. Questions referencing unknown sections are dropped.
func NewPlan(test *model.Test, questions []model.QuestionForStudent) *Plan {
	index := make(map[string]int, len(test.Sections))
	for i, sec := range test.Sections {
		index[sec.ID] = i
	}

	grouped := make([][]model.QuestionForStudent, len(test.Sections))
	for _, q := range questions {
		i, ok := index[q.SectionID]
		if !ok {
			continue
		}
		grouped[i] = append(grouped[i], q)
	}
	for i := range grouped {
		sort.Slice(grouped[i], func(a, b int) bool {
			return grouped[i][a].OrderNum < grouped[i][b].OrderNum
		})
	}

	return &Plan{Test: test, sections: grouped}
}

// SectionQuestions returns the ordered questions of section i.
func (p *Plan) SectionQuestions(i int) []model.QuestionForStudent {
	if i < 0 || i >= len(p.sections) {
		return nil
	}
	return p.sections[i]
}

// QuestionAt returns the question under the state's cursor.
func (p *Plan) QuestionAt(s *State) (model.QuestionForStudent, bool) {
	qs := p.SectionQuestions(s.CurrentSection)
	if s.CurrentQuestion < 0 || s.CurrentQuestion >= len(qs) {
		return model.QuestionForStudent{}, false
	}
	return qs[s.CurrentQuestion], true
}

// ActiveSectionID returns the identifier of the section under the cursor.
func (s *State) ActiveSectionID(test *model.Test) string {
	if s.CurrentSection < 0 || s.CurrentSection >= len(test.Sections) {
		return ""
	}
	return test.Sections[s.CurrentSection].ID
}

// RemainingActive returns the seconds left in the active section.
func (s *State) RemainingActive(test *model.Test) int {
	return s.Remaining[s.ActiveSectionID(test)]
}
