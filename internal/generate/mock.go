package generate

import (
	"context"
	"sync"

	"github.com/AiGarnet/garnet-questionnaire/internal/domain"
)

// Mock is an in-memory generator for testing.
type Mock struct {
	mu sync.Mutex

	// Response is returned for every question. Empty means the fallback
	// sentinel, simulating a failed generation.
	Response string

	// Responses, when set, maps question text to an answer and takes
	// precedence over Response.
	Responses map[string]string

	// Block, when set, is received from before answering, letting tests
	// control completion order of concurrent generations.
	Block chan struct{}

	CallCount int
	Questions []string
}

// NewMock creates a mock that answers every question with response.
func NewMock(response string) *Mock {
	return &Mock{Response: response}
}

func (m *Mock) Generate(ctx context.Context, question string) string {
	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.Questions = append(m.Questions, question)

	if m.Responses != nil {
		if ans, ok := m.Responses[question]; ok {
			return ans
		}
	}
	if m.Response == "" {
		return domain.FallbackAnswer
	}
	return m.Response
}

var _ Generator = (*Mock)(nil)
