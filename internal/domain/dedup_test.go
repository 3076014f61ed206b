package domain

import (
	"reflect"
	"testing"
)

func TestDeduplicateAnswers(t *testing.T) {
	tests := []struct {
		name        string
		answers     []QuestionAnswer
		wantLen     int
		wantChanged bool
	}{
		{
			name:        "empty",
			answers:     nil,
			wantLen:     0,
			wantChanged: false,
		},
		{
			name: "no duplicates",
			answers: []QuestionAnswer{
				{Question: "Do you encrypt data?", Answer: "Yes"},
				{Question: "Do you train staff?", Answer: "Yes"},
			},
			wantLen:     2,
			wantChanged: false,
		},
		{
			name: "case insensitive duplicate",
			answers: []QuestionAnswer{
				{Question: "Do you encrypt data?", Answer: "Yes"},
				{Question: "DO YOU ENCRYPT DATA?", Answer: "Also yes"},
			},
			wantLen:     1,
			wantChanged: true,
		},
		{
			name: "whitespace-padded duplicate",
			answers: []QuestionAnswer{
				{Question: "Do you encrypt data?", Answer: "Yes"},
				{Question: "  Do you encrypt data?  ", Answer: ""},
			},
			wantLen:     1,
			wantChanged: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := DeduplicateAnswers(tt.answers)
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %v, want %v", changed, tt.wantChanged)
			}
		})
	}
}

func TestDeduplicateAnswersAdoptsRealAnswer(t *testing.T) {
	answers := []QuestionAnswer{
		{Question: "Do you encrypt data?", Answer: ""},
		{Question: "Do you encrypt data?", Answer: "Yes, AES-256"},
	}

	got, changed := DeduplicateAnswers(answers)
	if !changed {
		t.Fatal("expected a change")
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Answer != "Yes, AES-256" {
		t.Errorf("Answer = %q, want %q", got[0].Answer, "Yes, AES-256")
	}
}

func TestDeduplicateAnswersKeepsFirstAnswered(t *testing.T) {
	answers := []QuestionAnswer{
		{Question: "Do you encrypt data?", Answer: "Yes, AES-256", QuestionID: "q-1"},
		{Question: "do you encrypt data?", Answer: "Maybe"},
	}

	got, _ := DeduplicateAnswers(answers)
	if got[0].Answer != "Yes, AES-256" {
		t.Errorf("first answered occurrence must win, got %q", got[0].Answer)
	}
	if got[0].QuestionID != "q-1" {
		t.Errorf("QuestionID = %q, want q-1", got[0].QuestionID)
	}
}

func TestDeduplicateAnswersIdempotent(t *testing.T) {
	answers := []QuestionAnswer{
		{Question: "A?", Answer: "1"},
		{Question: "a?", Answer: "2"},
		{Question: "B?", Answer: ""},
		{Question: "b?", Answer: "3"},
	}

	once, _ := DeduplicateAnswers(answers)
	twice, changed := DeduplicateAnswers(once)
	if changed {
		t.Error("second pass must not change anything")
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("dedup not idempotent: %v vs %v", once, twice)
	}
}
