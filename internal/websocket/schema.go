package websocket

import (
	"github.com/prepkit/ielts-backend/internal/model"
	"github.com/prepkit/ielts-backend/internal/session"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer  Action = "answer"
	ActionAdvance Action = "advance"
	ActionRetreat Action = "retreat"
	ActionReview  Action = "review"
	ActionResume  Action = "resume"
	ActionSubmit  Action = "submit"
	ActionPing    Action = "ping"
)

// Request is the single inbound message shape; unused fields stay empty for
// actions that do not need them.
type Request struct {
	Action    Action        `json:"action"`
	QID       string        `json:"q_id,omitempty"`
	Answer    *model.Answer `json:"answer,omitempty"`
	Confirmed bool          `json:"confirmed,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState     Event = "state"     // full snapshot on connect and resume
	EventTick      Event = "tick"      // one per elapsed second while running
	EventSaved     Event = "saved"     // answer recorded
	EventNav       Event = "nav"       // cursor moved
	EventReview    Event = "review"    // summary, countdown paused
	EventSubmitted Event = "submitted" // manual submit accepted
	EventExpired   Event = "expired"   // timer ran out, attempt auto-submitted
	EventPong      Event = "pong"
	EventError     Event = "error"
)

// StateResponse carries a full attempt snapshot.
type StateResponse struct {
	Event Event          `json:"event"`
	State *session.State `json:"state"`
	Phase session.Phase  `json:"phase"`
}

// TickResponse reports the active section countdown.
type TickResponse struct {
	Event     Event  `json:"event"`
	SectionID string `json:"section_id"`
	Remaining int    `json:"remaining"`
}

// SavedResponse acknowledges a recorded answer.
type SavedResponse struct {
	Event Event  `json:"event"`
	QID   string `json:"q_id"`
}

// NavResponse reports the cursor after an advance or retreat.
type NavResponse struct {
	Event     Event `json:"event"`
	Section   int   `json:"section"`
	Question  int   `json:"question"`
	Completed bool  `json:"completed"` // advance hit the end of the test
}

// ReviewResponse carries the per-section completion summary.
type ReviewResponse struct {
	Event    Event                    `json:"event"`
	Sections []session.SectionSummary `json:"sections"`
}

// ResultResponse carries the graded result after a submit or expiry.
type ResultResponse struct {
	Event  Event         `json:"event"`
	Result *model.Result `json:"result"`
}

// ErrorResponse reports a rejected action.
type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

// PongResponse answers a ping.
type PongResponse struct {
	Event Event `json:"event"`
}
