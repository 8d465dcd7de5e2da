package model

import (
	"time"

	"github.com/google/uuid"
)

// TestStatus enumerates the possible states of a mock test.
type TestStatus string

const (
	TestStatusDraft     TestStatus = "DRAFT"
	TestStatusPublished TestStatus = "PUBLISHED"
	TestStatusArchived  TestStatus = "ARCHIVED"
)

// Section is a timed subdivision of a test (Listening, Reading, Writing).
// DurationSeconds is the full time budget for the section; QuestionCount is
// the expected number of questions, used for lobby display only.
type Section struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationSeconds int    `json:"duration_seconds"`
	QuestionCount   int    `json:"question_count"`
}

// Test represents a mock test definition. Sections keep their declared order;
// the attempt flow walks them strictly forward.
type Test struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Sections    []Section  `json:"sections"`
	Status      TestStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SectionByID returns the section with the given identifier, or nil.
func (t *Test) SectionByID(id string) *Section {
	for i := range t.Sections {
		if t.Sections[i].ID == id {
			return &t.Sections[i]
		}
	}
	return nil
}

// TestPayload is the Redis-cached payload sent to students (no correct answers).
type TestPayload struct {
	TestID    uuid.UUID            `json:"test_id"`
	Title     string               `json:"title"`
	Sections  []Section            `json:"sections"`
	Questions []QuestionForStudent `json:"questions"`
}
