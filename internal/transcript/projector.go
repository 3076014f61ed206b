// Package transcript derives the chat-style message list shown for a
// questionnaire. Projection is a pure function of the record: message
// ids are derived from answer positions, so re-running it on every state
// change yields a stable, idempotent transcript.
package transcript

import (
	"fmt"
	"strings"

	"github.com/AiGarnet/garnet-questionnaire/internal/category"
	"github.com/AiGarnet/garnet-questionnaire/internal/domain"
)

// Role distinguishes message presentation styles.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// maxSuggestions caps the suggestion strings attached to one message.
const maxSuggestions = 3

// Message is one entry of the projected transcript.
type Message struct {
	ID          string   `json:"id"`
	Role        Role     `json:"role"`
	Content     string   `json:"content"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Projector builds transcripts, using the classifier for suggestions.
type Projector struct {
	classifier *category.Classifier
}

// New creates a Projector.
func New(classifier *category.Classifier) *Projector {
	return &Projector{classifier: classifier}
}

// Project derives the message list for a questionnaire: a welcome
// message summarizing completion, then per answer (in array order) the
// question followed by either the answer or a placeholder. When
// activeCategory is non-empty only matching answers are projected.
func (p *Projector) Project(q domain.Questionnaire, activeCategory domain.Category) []Message {
	answered := domain.AnsweredCount(q.Answers)
	messages := []Message{{
		ID:      "welcome",
		Role:    RoleSystem,
		Content: fmt.Sprintf("Welcome to %s. %d of %d questions are answered.", q.Name, answered, len(q.Answers)),
	}}

	for i, a := range q.Answers {
		if activeCategory != "" && a.Category != activeCategory {
			continue
		}

		messages = append(messages, Message{
			ID:      fmt.Sprintf("question-%d", i),
			Role:    RoleUser,
			Content: a.Question,
		})

		if strings.TrimSpace(a.Answer) == "" {
			messages = append(messages, Message{
				ID:          fmt.Sprintf("placeholder-%d", i),
				Role:        RoleAssistant,
				Content:     "No answer yet for this question.",
				Suggestions: p.classifier.Suggestions(a.Question, maxSuggestions),
			})
			continue
		}

		messages = append(messages, Message{
			ID:          fmt.Sprintf("answer-%d", i),
			Role:        RoleAssistant,
			Content:     a.Answer,
			Suggestions: p.classifier.Suggestions(a.Question, maxSuggestions),
		})
	}

	return messages
}
