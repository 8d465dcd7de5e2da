package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus tracks whether an assigned test has been attempted.
type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "ASSIGNED"
	AssignmentStatusCompleted AssignmentStatus = "COMPLETED"
)

// Assignment links a user to a test they are eligible to take. Assignments are
// created by seed tooling; this service only reads and completes them.
type Assignment struct {
	ID         uuid.UUID        `json:"id"`
	TestID     uuid.UUID        `json:"test_id"`
	UserID     int              `json:"user_id"`
	Status     AssignmentStatus `json:"status"`
	AssignedAt time.Time        `json:"assigned_at"`
}
