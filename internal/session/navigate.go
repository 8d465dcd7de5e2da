package session

import (
	"github.com/google/uuid"
	"github.com/prepkit/ielts-backend/internal/model"
)

// Advance moves the cursor to the next question. At the end of a section it
// crosses into the next one at question zero; at the last question of the
// last section it leaves the cursor untouched and reports completion so the
// caller can open the review flow instead.
func Advance(s *State, p *Plan) (completed bool) {
	qs := p.SectionQuestions(s.CurrentSection)

	if s.CurrentQuestion < len(qs)-1 {
		s.CurrentQuestion++
		return false
	}

	if s.CurrentSection < len(p.Test.Sections)-1 {
		s.CurrentSection++
		s.CurrentQuestion = 0
		return false
	}

	return true
}

// Retreat moves the cursor one question back within the current section.
// At question zero it is a no-op: sections are strictly forward-only and a
// previous section is never re-entered.
func Retreat(s *State) {
	if s.CurrentQuestion > 0 {
		s.CurrentQuestion--
	}
}

// RecordAnswer stores or overwrites the answer for a question. No shape
// validation happens here; minimum-word requirements are advisory only.
func RecordAnswer(s *State, questionID uuid.UUID, answer model.Answer) {
	s.Answers[questionID] = answer
}
