package model

import "testing"

func TestAnswerMatches(t *testing.T) {
	cases := []struct {
		name    string
		answer  Answer
		correct string
		want    bool
	}{
		{"choice match", ChoiceAnswer(2), "2", true},
		{"choice mismatch", ChoiceAnswer(1), "2", false},
		{"choice against non-numeric key", ChoiceAnswer(0), "true", false},
		{"tristate match", TriStateAnswer(TriStateNotGiven), "not_given", true},
		{"tristate mismatch", TriStateAnswer(TriStateTrue), "false", false},
		{"text exact", TextAnswer("cotton"), "cotton", true},
		{"text case insensitive", TextAnswer("Cotton"), "cotton", true},
		{"text trims whitespace", TextAnswer("  cotton "), "cotton", true},
		{"text mismatch", TextAnswer("rice"), "cotton", false},
		{"empty key never matches", TextAnswer("anything"), "", false},
		{"zero answer", Answer{}, "cotton", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.answer.Matches(tc.correct); got != tc.want {
				t.Errorf("Matches(%q) = %v, want %v", tc.correct, got, tc.want)
			}
		})
	}
}

func TestAnswerIsZero(t *testing.T) {
	if !(Answer{}).IsZero() {
		t.Error("empty answer should be zero")
	}
	if ChoiceAnswer(0).IsZero() {
		t.Error("choice 0 is a real answer")
	}
	if TextAnswer("").IsZero() {
		t.Error("text answers keep their kind even when blank")
	}
}
