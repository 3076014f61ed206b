package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// normalizeQuestion produces the key used to detect duplicate questions:
// whitespace-trimmed, Unicode case-folded text.
func normalizeQuestion(question string) string {
	return cases.Fold().String(strings.TrimSpace(question))
}

// DeduplicateAnswers collapses answers whose question text is
// case-insensitively identical, keeping the first occurrence. When the
// kept entry has no usable answer and a later duplicate does, the
// duplicate's answer (and question id, if the kept one lacks it) is
// adopted so that real answers are never lost to ordering.
//
// The operation is idempotent. The returned flag reports whether
// anything was removed or merged.
func DeduplicateAnswers(answers []QuestionAnswer) ([]QuestionAnswer, bool) {
	if len(answers) < 2 {
		return answers, false
	}

	index := make(map[string]int, len(answers))
	out := make([]QuestionAnswer, 0, len(answers))
	changed := false

	for _, a := range answers {
		key := normalizeQuestion(a.Question)
		at, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, a)
			continue
		}
		changed = true
		kept := &out[at]
		if !IsAnswered(kept.Answer) && IsAnswered(a.Answer) {
			kept.Answer = a.Answer
			kept.State = AnswerStateGenerated
			kept.NeedsAttention = false
		}
		if kept.QuestionID == "" && a.QuestionID != "" {
			kept.QuestionID = a.QuestionID
		}
	}

	if !changed {
		return answers, false
	}
	return out, true
}
