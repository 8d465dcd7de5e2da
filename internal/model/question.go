package model

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// QuestionType tags the four IELTS question shapes the platform supports.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionTypeTrueFalseNG    QuestionType = "TRUE_FALSE_NOT_GIVEN"
	QuestionTypeFillInBlank    QuestionType = "FILL_IN_BLANK"
	QuestionTypeWritingTask    QuestionType = "WRITING_TASK"
)

// Question represents a single test question. CorrectAnswer is empty for
// writing tasks, which are graded manually.
type Question struct {
	ID            uuid.UUID    `json:"id"`
	TestID        uuid.UUID    `json:"test_id"`
	SectionID     string       `json:"section_id"`
	QuestionType  QuestionType `json:"question_type"`
	Prompt        string       `json:"prompt"`
	Passage       string       `json:"passage,omitempty"`
	Options       []string     `json:"options,omitempty"`
	MinWords      int          `json:"min_words,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	OrderNum      int          `json:"order_num"`
}

// QuestionForStudent is a question without the correct answer, sent to students.
type QuestionForStudent struct {
	ID           uuid.UUID    `json:"id"`
	SectionID    string       `json:"section_id"`
	QuestionType QuestionType `json:"question_type"`
	Prompt       string       `json:"prompt"`
	Passage      string       `json:"passage,omitempty"`
	Options      []string     `json:"options,omitempty"`
	MinWords     int          `json:"min_words,omitempty"`
	OrderNum     int          `json:"order_num"`
}

// ForStudent strips the correct answer from a question.
func (q *Question) ForStudent() QuestionForStudent {
	return QuestionForStudent{
		ID:           q.ID,
		SectionID:    q.SectionID,
		QuestionType: q.QuestionType,
		Prompt:       q.Prompt,
		Passage:      q.Passage,
		Options:      q.Options,
		MinWords:     q.MinWords,
		OrderNum:     q.OrderNum,
	}
}

// ─── Answers ────────────────────────────────────────────────────────

// AnswerKind discriminates the answer union.
type AnswerKind string

const (
	AnswerKindChoice   AnswerKind = "choice"
	AnswerKindTriState AnswerKind = "tristate"
	AnswerKindText     AnswerKind = "text"
)

// TriState is the answer value for TRUE_FALSE_NOT_GIVEN questions.
type TriState string

const (
	TriStateTrue     TriState = "true"
	TriStateFalse    TriState = "false"
	TriStateNotGiven TriState = "not_given"
)

// Answer is the tagged union of submitted answer values. Exactly one of
// Choice, TriState, or Text is meaningful, selected by Kind.
type Answer struct {
	Kind     AnswerKind `json:"kind"`
	Choice   *int       `json:"choice,omitempty"`
	TriState *TriState  `json:"tri_state,omitempty"`
	Text     string     `json:"text,omitempty"`
}

// ChoiceAnswer builds a choice-index answer.
func ChoiceAnswer(idx int) Answer {
	return Answer{Kind: AnswerKindChoice, Choice: &idx}
}

// TriStateAnswer builds a true/false/not-given answer.
func TriStateAnswer(v TriState) Answer {
	return Answer{Kind: AnswerKindTriState, TriState: &v}
}

// TextAnswer builds a free-text answer (fill-in-blank or writing).
func TextAnswer(text string) Answer {
	return Answer{Kind: AnswerKindText, Text: text}
}

// IsZero reports whether the answer carries no value at all.
func (a Answer) IsZero() bool {
	return a.Kind == "" && a.Choice == nil && a.TriState == nil && a.Text == ""
}

// Matches compares the answer against a stored correct-answer string.
// Choice answers compare by index, tri-state by token, text answers
// case-insensitively with surrounding whitespace ignored. Writing tasks
// have no key and never match.
func (a Answer) Matches(correct string) bool {
	if correct == "" {
		return false
	}
	switch a.Kind {
	case AnswerKindChoice:
		if a.Choice == nil {
			return false
		}
		want, err := strconv.Atoi(correct)
		if err != nil {
			return false
		}
		return *a.Choice == want
	case AnswerKindTriState:
		return a.TriState != nil && string(*a.TriState) == correct
	case AnswerKindText:
		return strings.EqualFold(strings.TrimSpace(a.Text), strings.TrimSpace(correct))
	default:
		return false
	}
}
