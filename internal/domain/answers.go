package domain

import (
	"math"
	"strings"
)

// Placeholder and fallback texts. These exact strings appear in cached
// records written by older clients, so they are part of the persisted
// format and must not be reworded.
const (
	// PlaceholderGenerating is shown while the initial auto-generation
	// batch is in flight for a question.
	PlaceholderGenerating = "Generating AI answer..."

	// PlaceholderRegenerating is shown while a single answer is being
	// regenerated on request.
	PlaceholderRegenerating = "Generating new answer..."

	// FallbackAnswer is the sentinel a failed generation resolves to.
	// It is never counted as answered.
	FallbackAnswer = "We couldn't generate an answer—please try again."
)

// legacyPlaceholders are placeholder texts written by older clients.
// They still appear in cached data and count as pending, not answered.
var legacyPlaceholders = []string{
	"AI answer will be generated",
	"Processing in batch mode...",
}

// StateOf classifies answer text that was not produced in this session,
// e.g. text loaded from the cache or returned by the backend.
func StateOf(answer string) AnswerState {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return AnswerStateEmpty
	}
	if trimmed == PlaceholderGenerating || trimmed == PlaceholderRegenerating {
		return AnswerStatePending
	}
	for _, p := range legacyPlaceholders {
		if strings.Contains(trimmed, p) {
			return AnswerStatePending
		}
	}
	if trimmed == FallbackAnswer {
		return AnswerStateFailed
	}
	return AnswerStateGenerated
}

// IsAnswered reports whether answer text counts toward progress.
func IsAnswered(answer string) bool {
	return StateOf(answer) == AnswerStateGenerated
}

// AnsweredCount counts answers that contribute to progress.
func AnsweredCount(answers []QuestionAnswer) int {
	n := 0
	for _, a := range answers {
		if IsAnswered(a.Answer) {
			n++
		}
	}
	return n
}

// ProgressOf computes the 0-100 completion percentage. An empty
// questionnaire has progress 0.
func ProgressOf(answers []QuestionAnswer) int {
	if len(answers) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(AnsweredCount(answers)) / float64(len(answers))))
}

// StatusForProgress derives the status from progress. Thresholds are
// checked high-to-low.
func StatusForProgress(progress int) Status {
	switch {
	case progress >= 100:
		return StatusCompleted
	case progress >= 75:
		return StatusInReview
	case progress >= 25:
		return StatusInProgress
	case progress > 0:
		return StatusDraft
	default:
		return StatusNotStarted
	}
}

// Recalculate rederives progress, status, and per-answer needsAttention
// from the current answer texts.
func (q *Questionnaire) Recalculate() {
	for i := range q.Answers {
		q.Answers[i].NeedsAttention = strings.TrimSpace(q.Answers[i].Answer) == ""
	}
	q.Progress = ProgressOf(q.Answers)
	q.Status = StatusForProgress(q.Progress)
}
