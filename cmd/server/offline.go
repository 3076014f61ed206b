package main

import (
	"context"
	"log"

	"github.com/AiGarnet/garnet-questionnaire/internal/domain"
	"github.com/AiGarnet/garnet-questionnaire/internal/generate"
	"github.com/AiGarnet/garnet-questionnaire/internal/remote"
)

// generatorFor returns the HTTP generator when an ask URL is configured,
// otherwise a mock that resolves every question to the fallback answer so
// offline instances still complete their load cycle.
func generatorFor(askURL string) generate.Generator {
	if askURL == "" {
		log.Println("Warning: no ask URL configured, answer generation disabled")
		return generate.NewMock("")
	}
	return generate.NewHTTP(askURL)
}

// offlineBackend stands in for the remote API when GARNET_BACKEND_URL is
// unset. Fetches miss so the engine falls back to the cache, and updates
// fail so edits are saved locally.
type offlineBackend struct{}

func (o offlineBackend) FetchQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error) {
	return domain.Questionnaire{}, domain.ErrNotFound
}

func (o offlineBackend) UpdateQuestion(ctx context.Context, questionnaireID, questionID string, update remote.UpdateQuestionRequest) (domain.QuestionAnswer, error) {
	return domain.QuestionAnswer{}, domain.ErrNotFound
}
