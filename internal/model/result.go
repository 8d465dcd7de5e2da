package model

import (
	"time"

	"github.com/google/uuid"
)

// ResultStatus enumerates result lifecycle states. A result with an ungraded
// writing section stays PENDING_REVIEW until an eduadmin confirms the bands.
type ResultStatus string

const (
	ResultStatusCompleted     ResultStatus = "COMPLETED"
	ResultStatusPendingReview ResultStatus = "PENDING_REVIEW"
)

// SectionResult holds per-section grading output. Band is nil for sections
// that require manual grading (writing tasks).
type SectionResult struct {
	SectionID      string   `json:"section_id"`
	CorrectAnswers int      `json:"correct_answers"`
	TotalQuestions int      `json:"total_questions"`
	Answered       int      `json:"answered"`
	Band           *float64 `json:"band,omitempty"`
}

// Result represents a finalized test attempt.
type Result struct {
	ID            uuid.UUID       `json:"id"`
	UserID        int             `json:"user_id"`
	TestID        uuid.UUID       `json:"test_id"`
	Status        ResultStatus    `json:"status"`
	StartedAt     time.Time       `json:"started_at"`
	CompletedAt   time.Time       `json:"completed_at"`
	AutoSubmitted bool            `json:"auto_submitted"`
	Sections      []SectionResult `json:"sections"`
	OverallBand   *float64        `json:"overall_band,omitempty"`
	Feedback      string          `json:"feedback,omitempty"`
	ConfirmedBy   *int            `json:"confirmed_by,omitempty"`
}
