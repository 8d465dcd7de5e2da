package session

import (
	"testing"
	"time"

	"github.com/prepkit/ielts-backend/internal/model"
)

func TestAdvanceWithinSection(t *testing.T) {
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())

	if completed := Advance(s, p); completed {
		t.Fatal("advance inside a section must not report completion")
	}
	if s.CurrentSection != 0 || s.CurrentQuestion != 1 {
		t.Errorf("cursor = (%d, %d), want (0, 1)", s.CurrentSection, s.CurrentQuestion)
	}
}

func TestAdvanceCrossesSectionBoundary(t *testing.T) {
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())
	s.CurrentQuestion = 2 // last listening question

	if completed := Advance(s, p); completed {
		t.Fatal("crossing into the next section must not report completion")
	}
	if s.CurrentSection != 1 || s.CurrentQuestion != 0 {
		t.Errorf("cursor = (%d, %d), want (1, 0)", s.CurrentSection, s.CurrentQuestion)
	}
}

func TestAdvanceAtEndReportsCompletion(t *testing.T) {
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())
	s.CurrentSection = 1
	s.CurrentQuestion = 1 // last question of last section

	if completed := Advance(s, p); !completed {
		t.Fatal("advance at the end of the test must report completion")
	}
	if s.CurrentSection != 1 || s.CurrentQuestion != 1 {
		t.Errorf("completion moved the cursor to (%d, %d)", s.CurrentSection, s.CurrentQuestion)
	}
}

func TestRetreatWithinSection(t *testing.T) {
	test, _ := twoSectionTest()
	s := New(7, test, time.Now())
	s.CurrentQuestion = 2

	Retreat(s)
	if s.CurrentQuestion != 1 {
		t.Errorf("question = %d, want 1", s.CurrentQuestion)
	}
}

func TestRetreatNeverCrossesBack(t *testing.T) {
	test, _ := twoSectionTest()
	s := New(7, test, time.Now())
	s.CurrentSection = 1
	s.CurrentQuestion = 0

	Retreat(s)
	if s.CurrentSection != 1 || s.CurrentQuestion != 0 {
		t.Errorf("retreat at section start moved cursor to (%d, %d)", s.CurrentSection, s.CurrentQuestion)
	}
}

func TestRecordAnswerOverwrites(t *testing.T) {
	test, qs := twoSectionTest()
	s := New(7, test, time.Now())

	RecordAnswer(s, qs[0].ID, model.ChoiceAnswer(1))
	RecordAnswer(s, qs[0].ID, model.ChoiceAnswer(3))

	got := s.Answers[qs[0].ID]
	if got.Choice == nil || *got.Choice != 3 {
		t.Errorf("answer = %+v, want choice 3", got)
	}
	if len(s.Answers) != 1 {
		t.Errorf("re-answering created %d entries, want 1", len(s.Answers))
	}
}

func TestSectionTimersUntouchedByNavigation(t *testing.T) {
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())
	s.Remaining["listening"] = 10

	// Walk off the end of listening into reading.
	s.CurrentQuestion = 2
	Advance(s, p)

	if s.Remaining["listening"] != 10 {
		t.Errorf("listening remaining = %d after crossing, want 10", s.Remaining["listening"])
	}
	if s.Remaining["reading"] != 30 {
		t.Errorf("reading remaining = %d after crossing, want 30", s.Remaining["reading"])
	}
}
