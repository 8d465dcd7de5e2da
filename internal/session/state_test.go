package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prepkit/ielts-backend/internal/model"
)

// twoSectionTest builds a small attempt layout: a 60-second section with
// three questions and a 30-second section with two.
func twoSectionTest() (*model.Test, []model.QuestionForStudent) {
	test := &model.Test{
		ID:    uuid.New(),
		Title: "Mini Mock",
		Sections: []model.Section{
			{ID: "listening", Name: "Listening", DurationSeconds: 60, QuestionCount: 3},
			{ID: "reading", Name: "Reading", DurationSeconds: 30, QuestionCount: 2},
		},
		Status: model.TestStatusPublished,
	}

	questions := []model.QuestionForStudent{
		{ID: uuid.New(), SectionID: "listening", QuestionType: model.QuestionTypeMultipleChoice, OrderNum: 1},
		{ID: uuid.New(), SectionID: "listening", QuestionType: model.QuestionTypeMultipleChoice, OrderNum: 2},
		{ID: uuid.New(), SectionID: "listening", QuestionType: model.QuestionTypeMultipleChoice, OrderNum: 3},
		{ID: uuid.New(), SectionID: "reading", QuestionType: model.QuestionTypeFillInBlank, OrderNum: 4},
		{ID: uuid.New(), SectionID: "reading", QuestionType: model.QuestionTypeFillInBlank, OrderNum: 5},
	}
	return test, questions
}

func TestNewState(t *testing.T) {
	test, _ := twoSectionTest()
	s := New(7, test, time.Now())

	if s.CurrentSection != 0 || s.CurrentQuestion != 0 {
		t.Fatalf("fresh state cursor = (%d, %d), want (0, 0)", s.CurrentSection, s.CurrentQuestion)
	}
	if s.Remaining["listening"] != 60 {
		t.Errorf("listening remaining = %d, want 60", s.Remaining["listening"])
	}
	if s.Remaining["reading"] != 30 {
		t.Errorf("reading remaining = %d, want 30", s.Remaining["reading"])
	}
	if len(s.Answers) != 0 {
		t.Errorf("fresh state has %d answers, want 0", len(s.Answers))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	test, qs := twoSectionTest()
	s := New(7, test, time.Now())
	s.Answers[qs[0].ID] = model.TextAnswer("original")

	cp := s.Clone()
	cp.Answers[qs[0].ID] = model.TextAnswer("changed")
	cp.Remaining["listening"] = 1

	if s.Answers[qs[0].ID].Text != "original" {
		t.Error("mutating clone answers changed the original")
	}
	if s.Remaining["listening"] != 60 {
		t.Error("mutating clone timers changed the original")
	}
}

func TestPlanGroupsAndOrders(t *testing.T) {
	test, qs := twoSectionTest()

	// Shuffle input order; the plan must sort within each section.
	shuffled := []model.QuestionForStudent{qs[2], qs[4], qs[0], qs[3], qs[1]}
	p := NewPlan(test, shuffled)

	listening := p.SectionQuestions(0)
	if len(listening) != 3 {
		t.Fatalf("listening has %d questions, want 3", len(listening))
	}
	for i, q := range listening {
		if q.OrderNum != i+1 {
			t.Errorf("listening[%d].OrderNum = %d, want %d", i, q.OrderNum, i+1)
		}
	}
	if got := len(p.SectionQuestions(1)); got != 2 {
		t.Errorf("reading has %d questions, want 2", got)
	}
}

func TestPlanDropsUnknownSections(t *testing.T) {
	test, qs := twoSectionTest()
	qs = append(qs, model.QuestionForStudent{ID: uuid.New(), SectionID: "speaking", OrderNum: 6})

	p := NewPlan(test, qs)
	total := len(p.SectionQuestions(0)) + len(p.SectionQuestions(1))
	if total != 5 {
		t.Errorf("plan holds %d questions, want 5", total)
	}
}

func TestQuestionAtBounds(t *testing.T) {
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())

	if q, ok := p.QuestionAt(s); !ok || q.ID != qs[0].ID {
		t.Error("cursor at origin should resolve to the first question")
	}

	s.CurrentQuestion = 99
	if _, ok := p.QuestionAt(s); ok {
		t.Error("out-of-range cursor should not resolve")
	}
}

func TestRemainingActiveFollowsCursor(t *testing.T) {
	test, _ := twoSectionTest()
	s := New(7, test, time.Now())

	if got := s.RemainingActive(test); got != 60 {
		t.Errorf("active remaining = %d, want 60", got)
	}
	s.CurrentSection = 1
	if got := s.RemainingActive(test); got != 30 {
		t.Errorf("active remaining = %d, want 30", got)
	}
}
