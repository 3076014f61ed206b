package domain

import "testing"

func TestStateOf(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   AnswerState
	}{
		{"empty string", "", AnswerStateEmpty},
		{"whitespace only", "   \t", AnswerStateEmpty},
		{"generation placeholder", PlaceholderGenerating, AnswerStatePending},
		{"regeneration placeholder", PlaceholderRegenerating, AnswerStatePending},
		{"legacy placeholder", "AI answer will be generated", AnswerStatePending},
		{"legacy batch placeholder", "Processing in batch mode...", AnswerStatePending},
		{"fallback sentinel", FallbackAnswer, AnswerStateFailed},
		{"real answer", "Yes, we encrypt all data at rest.", AnswerStateGenerated},
		{"answer with padding", "  Yes.  ", AnswerStateGenerated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StateOf(tt.answer); got != tt.want {
				t.Errorf("StateOf(%q) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestProgressOf(t *testing.T) {
	tests := []struct {
		name    string
		answers []QuestionAnswer
		want    int
	}{
		{
			name:    "no answers",
			answers: nil,
			want:    0,
		},
		{
			name: "three of four answered",
			answers: []QuestionAnswer{
				{Question: "q1", Answer: "a1"},
				{Question: "q2", Answer: "a2"},
				{Question: "q3", Answer: "a3"},
				{Question: "q4", Answer: ""},
			},
			want: 75,
		},
		{
			name: "fallback sentinel not counted",
			answers: []QuestionAnswer{
				{Question: "q1", Answer: "a1"},
				{Question: "q2", Answer: FallbackAnswer},
			},
			want: 50,
		},
		{
			name: "placeholders not counted",
			answers: []QuestionAnswer{
				{Question: "q1", Answer: PlaceholderGenerating},
				{Question: "q2", Answer: PlaceholderRegenerating},
				{Question: "q3", Answer: "done"},
			},
			want: 33,
		},
		{
			name: "all answered",
			answers: []QuestionAnswer{
				{Question: "q1", Answer: "a1"},
				{Question: "q2", Answer: "a2"},
			},
			want: 100,
		},
		{
			name: "rounding",
			answers: []QuestionAnswer{
				{Question: "q1", Answer: "a1"},
				{Question: "q2", Answer: ""},
				{Question: "q3", Answer: ""},
			},
			want: 33,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressOf(tt.answers); got != tt.want {
				t.Errorf("ProgressOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStatusForProgress(t *testing.T) {
	tests := []struct {
		progress int
		want     Status
	}{
		{0, StatusNotStarted},
		{1, StatusDraft},
		{24, StatusDraft},
		{25, StatusInProgress},
		{74, StatusInProgress},
		{75, StatusInReview},
		{99, StatusInReview},
		{100, StatusCompleted},
	}

	for _, tt := range tests {
		if got := StatusForProgress(tt.progress); got != tt.want {
			t.Errorf("StatusForProgress(%d) = %v, want %v", tt.progress, got, tt.want)
		}
	}
}

func TestRecalculate(t *testing.T) {
	q := Questionnaire{
		Answers: []QuestionAnswer{
			{Question: "q1", Answer: "a1"},
			{Question: "q2", Answer: "a2"},
			{Question: "q3", Answer: "a3"},
			{Question: "q4", Answer: ""},
		},
	}
	q.Recalculate()

	if q.Progress != 75 {
		t.Errorf("Progress = %d, want 75", q.Progress)
	}
	if q.Status != StatusInReview {
		t.Errorf("Status = %v, want %v", q.Status, StatusInReview)
	}
	if q.Answers[3].NeedsAttention != true {
		t.Error("expected unanswered question to need attention")
	}
	if q.Answers[0].NeedsAttention {
		t.Error("answered question should not need attention")
	}
}
