// Package remote is the REST client for the compliance backend. It maps
// the backend's wire shapes into the canonical questionnaire model at
// the boundary.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/AiGarnet/garnet-questionnaire/internal/category"
	"github.com/AiGarnet/garnet-questionnaire/internal/domain"
)

// QuestionnaireDTO is the backend's wire shape for a questionnaire.
type QuestionnaireDTO struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Status    string        `json:"status"`
	Progress  int           `json:"progress"`
	DueDate   string        `json:"dueDate,omitempty"`
	Questions []QuestionDTO `json:"questions"`
	CreatedAt string        `json:"createdAt,omitempty"`
}

// QuestionDTO is the backend's wire shape for one question.
type QuestionDTO struct {
	ID           string `json:"id"`
	QuestionText string `json:"questionText"`
	Answer       string `json:"answer"`
	IsRequired   bool   `json:"isRequired"`
}

// UpdateQuestionRequest is the PUT body for a per-question update. Nil
// fields are omitted from the wire.
type UpdateQuestionRequest struct {
	QuestionText *string `json:"questionText,omitempty"`
	Answer       *string `json:"answer,omitempty"`
}

// Client talks to the compliance backend REST API.
type Client struct {
	baseURL    string
	http       *http.Client
	classifier *category.Classifier
	schema     *jsonschema.Schema
}

// NewClient creates a backend client rooted at baseURL.
func NewClient(baseURL string, classifier *category.Classifier) (*Client, error) {
	schema, err := compileQuestionnaireSchema()
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: 30 * time.Second},
		classifier: classifier,
		schema:     schema,
	}, nil
}

// toDomain maps the wire shape into the canonical model, deriving
// category and needsAttention for each answer.
func (c *Client) toDomain(dto QuestionnaireDTO) domain.Questionnaire {
	q := domain.Questionnaire{
		ID:        dto.ID,
		Name:      dto.Title,
		Status:    domain.Status(dto.Status),
		Progress:  dto.Progress,
		DueDate:   dto.DueDate,
		CreatedAt: dto.CreatedAt,
		Answers:   make([]domain.QuestionAnswer, 0, len(dto.Questions)),
	}
	for _, qd := range dto.Questions {
		q.Answers = append(q.Answers, c.toDomainAnswer(qd))
	}
	q.Recalculate()
	return q
}

func (c *Client) toDomainAnswer(qd QuestionDTO) domain.QuestionAnswer {
	return domain.QuestionAnswer{
		QuestionID:     qd.ID,
		Question:       qd.QuestionText,
		Answer:         qd.Answer,
		IsMandatory:    qd.IsRequired,
		NeedsAttention: !domain.IsAnswered(qd.Answer),
		Category:       c.classifier.Classify(qd.QuestionText),
		State:          domain.StateOf(qd.Answer),
	}
}

// FetchQuestionnaire loads and maps one questionnaire.
// A 404 yields domain.ErrNotFound; other failures are transport errors
// the caller recovers from via the cache.
func (c *Client) FetchQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error) {
	url := fmt.Sprintf("%s/api/questionnaires/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Questionnaire{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Questionnaire{}, fmt.Errorf("fetch questionnaire: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.Questionnaire{}, domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Questionnaire{}, fmt.Errorf("fetch questionnaire: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Questionnaire{}, fmt.Errorf("read response: %w", err)
	}
	if err := validatePayload(c.schema, body); err != nil {
		return domain.Questionnaire{}, fmt.Errorf("questionnaire %s: %w", id, err)
	}

	var dto QuestionnaireDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return domain.Questionnaire{}, fmt.Errorf("unmarshal questionnaire: %w", err)
	}

	return c.toDomain(dto), nil
}

// UpdateQuestion PUTs a targeted update for one question and returns the
// server's representation of that question. The backend may respond with
// either the updated question record or the whole questionnaire; both
// shapes are handled.
func (c *Client) UpdateQuestion(ctx context.Context, questionnaireID, questionID string, update UpdateQuestionRequest) (domain.QuestionAnswer, error) {
	if questionID == "" {
		return domain.QuestionAnswer{}, domain.ErrNoQuestionID
	}

	body, err := json.Marshal(update)
	if err != nil {
		return domain.QuestionAnswer{}, fmt.Errorf("marshal update: %w", err)
	}

	url := fmt.Sprintf("%s/api/questionnaires/%s/questions/%s", c.baseURL, questionnaireID, questionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return domain.QuestionAnswer{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.QuestionAnswer{}, fmt.Errorf("update question: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.QuestionAnswer{}, fmt.Errorf("update question: status %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.QuestionAnswer{}, fmt.Errorf("read response: %w", err)
	}

	// Question-record shape first.
	var qd QuestionDTO
	if err := json.Unmarshal(respBody, &qd); err == nil && qd.QuestionText != "" {
		return c.toDomainAnswer(qd), nil
	}

	// Whole-questionnaire shape: pick out the updated question.
	var dto QuestionnaireDTO
	if err := json.Unmarshal(respBody, &dto); err == nil {
		for _, q := range dto.Questions {
			if q.ID == questionID {
				return c.toDomainAnswer(q), nil
			}
		}
	}

	return domain.QuestionAnswer{}, fmt.Errorf("update question: unrecognized response shape")
}

// DeleteQuestionnaire asks the backend to delete a questionnaire.
// Deletion is backend-owned; the caller mirrors it into the cache.
func (c *Client) DeleteQuestionnaire(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/api/questionnaires/%s", c.baseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete questionnaire: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("delete questionnaire: status %d", resp.StatusCode)
	}
	return nil
}
