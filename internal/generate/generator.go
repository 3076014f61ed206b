// Package generate produces AI answers for questionnaire questions via
// the backend /ask endpoint.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AiGarnet/garnet-questionnaire/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Generator produces answer text for a question. Generate never fails:
// any transport or protocol problem resolves to domain.FallbackAnswer,
// which consumers exclude from completion counts.
type Generator interface {
	Generate(ctx context.Context, question string) string
}

// HTTPGenerator calls POST {askURL} with {"question": ...} and returns
// the "answer" field of the response.
type HTTPGenerator struct {
	askURL  string
	context string
	client  *http.Client
}

// Option configures an HTTPGenerator.
type Option func(*HTTPGenerator)

// WithContext sets an optional context string sent with every request.
func WithContext(c string) Option {
	return func(g *HTTPGenerator) { g.context = c }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *HTTPGenerator) { g.client.Timeout = d }
}

// NewHTTP creates a generator against the given /ask endpoint.
func NewHTTP(askURL string, opts ...Option) *HTTPGenerator {
	g := &HTTPGenerator{
		askURL: askURL,
		client: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type askRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Generate resolves to generated answer text, or to the fallback
// sentinel on any failure. It never returns an error; a hung endpoint is
// cut off by the client timeout and degrades to the sentinel as well.
func (g *HTTPGenerator) Generate(ctx context.Context, question string) string {
	body, err := json.Marshal(askRequest{Question: question, Context: g.context})
	if err != nil {
		log.Printf("generate: marshal request: %v", err)
		return domain.FallbackAnswer
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.askURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("generate: create request: %v", err)
		return domain.FallbackAnswer
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("generate: request failed: %v", err)
		return domain.FallbackAnswer
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("generate: unexpected status %d", resp.StatusCode)
		return domain.FallbackAnswer
	}

	var ar askResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		log.Printf("generate: malformed response: %v", err)
		return domain.FallbackAnswer
	}
	if strings.TrimSpace(ar.Answer) == "" {
		log.Printf("generate: empty answer in response")
		return domain.FallbackAnswer
	}

	return ar.Answer
}

var _ Generator = (*HTTPGenerator)(nil)
