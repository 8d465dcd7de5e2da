package session

import (
	"testing"
	"time"

	"github.com/prepkit/ielts-backend/internal/model"
)

func TestReviewSummaryCounts(t *testing.T) {
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())

	s.Answers[qs[0].ID] = model.ChoiceAnswer(0)
	s.Answers[qs[2].ID] = model.ChoiceAnswer(1)
	s.Answers[qs[3].ID] = model.TextAnswer("northern")

	summary := BuildReviewSummary(s, p)
	if len(summary) != 2 {
		t.Fatalf("summary covers %d sections, want 2", len(summary))
	}

	if summary[0].SectionID != "listening" || summary[0].Answered != 2 || summary[0].Total != 3 {
		t.Errorf("listening summary = %+v, want 2/3", summary[0])
	}
	if summary[1].SectionID != "reading" || summary[1].Answered != 1 || summary[1].Total != 2 {
		t.Errorf("reading summary = %+v, want 1/2", summary[1])
	}
}

func TestReviewSummarySkipsZeroAnswers(t *testing.T) {
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())

	s.Answers[qs[0].ID] = model.Answer{}

	summary := BuildReviewSummary(s, p)
	if summary[0].Answered != 0 {
		t.Errorf("zero-value answer counted: %+v", summary[0])
	}
}

func TestReviewSummaryMutatesNothing(t *testing.T) {
	test, qs := twoSectionTest()
	p := NewPlan(test, qs)
	s := New(7, test, time.Now())
	s.CurrentSection = 1
	s.Remaining["listening"] = 17

	BuildReviewSummary(s, p)

	if s.CurrentSection != 1 || s.Remaining["listening"] != 17 || len(s.Answers) != 0 {
		t.Error("building the summary changed attempt state")
	}
}
