package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/AiGarnet/garnet-questionnaire/internal/cache"
	"github.com/AiGarnet/garnet-questionnaire/internal/category"
	"github.com/AiGarnet/garnet-questionnaire/internal/domain"
	"github.com/AiGarnet/garnet-questionnaire/internal/generate"
	"github.com/AiGarnet/garnet-questionnaire/internal/reconcile"
	"github.com/AiGarnet/garnet-questionnaire/internal/remote"
)

type stubBackend struct {
	mu       sync.Mutex
	rec      domain.Questionnaire
	fetchErr error
	deleted  []string
	updates  int
}

func (s *stubBackend) FetchQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return domain.Questionnaire{}, s.fetchErr
	}
	return s.rec.Clone(), nil
}

func (s *stubBackend) UpdateQuestion(ctx context.Context, questionnaireID, questionID string, update remote.UpdateQuestionRequest) (domain.QuestionAnswer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	answer := ""
	if update.Answer != nil {
		answer = *update.Answer
	}
	return domain.QuestionAnswer{QuestionID: questionID, Answer: answer}, nil
}

func (s *stubBackend) DeleteQuestionnaire(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

func backendRecord() domain.Questionnaire {
	return domain.Questionnaire{
		ID:   "qn-1",
		Name: "Vendor Security Review",
		Answers: []domain.QuestionAnswer{
			{QuestionID: "q-1", Question: "Do you encrypt data at rest?", Answer: "Yes, AES-256."},
			{Question: "Do you run awareness training?", Answer: ""},
		},
	}
}

func setupHandler(t *testing.T, backend *stubBackend) (*Handler, *cache.Store) {
	t.Helper()
	classifier, err := category.New()
	if err != nil {
		t.Fatalf("category.New() error: %v", err)
	}
	store := cache.NewStore(cache.NewMemory())
	svc := reconcile.NewService(reconcile.Config{
		Backend:       backend,
		Generator:     generate.NewMock("Generated answer."),
		Store:         store,
		NotFoundGrace: 10 * time.Millisecond,
	})
	return NewHandler(svc, store, classifier, backend), store
}

func TestCreateQuestionnaire(t *testing.T) {
	handler, _ := setupHandler(t, &stubBackend{rec: backendRecord()})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid",
			body:       `{"name": "New Review", "questions": [{"question": "Do you encrypt data?", "isMandatory": true}]}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing name",
			body:       `{"questions": [{"question": "q"}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "no questions",
			body:       `{"name": "x", "questions": []}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty question text",
			body:       `{"name": "x", "questions": [{"question": ""}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid json",
			body:       `{invalid}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/questionnaires", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.CreateQuestionnaire(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusCreated {
				var resp questionnaireResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("decode response: %v", err)
				}
				q := resp.Questionnaire
				if q.ID == "" {
					t.Error("expected generated id")
				}
				if q.Status != domain.StatusNotStarted || q.Progress != 0 {
					t.Errorf("status/progress = %v/%d, want NotStarted/0", q.Status, q.Progress)
				}
				if q.Answers[0].Category != domain.CategoryDataProtection {
					t.Errorf("category = %v, want Data Protection", q.Answers[0].Category)
				}
			}
		})
	}
}

func TestGetQuestionnaireReconciles(t *testing.T) {
	backend := &stubBackend{rec: backendRecord()}
	handler, store := setupHandler(t, backend)

	req := httptest.NewRequest("GET", "/api/questionnaires/qn-1", nil)
	req.SetPathValue("id", "qn-1")
	w := httptest.NewRecorder()

	handler.GetQuestionnaire(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp questionnaireResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.State != reconcile.StateReady {
		t.Errorf("state = %v, want Ready", resp.State)
	}
	if resp.Questionnaire.Answers[1].Answer != "Generated answer." {
		t.Errorf("empty answer not generated: %q", resp.Questionnaire.Answers[1].Answer)
	}

	if _, ok := store.FindByID(context.Background(), "qn-1"); !ok {
		t.Error("reconciled record not cached")
	}
}

func TestGetQuestionnaireNotFound(t *testing.T) {
	backend := &stubBackend{fetchErr: errors.New("network down")}
	handler, _ := setupHandler(t, backend)

	req := httptest.NewRequest("GET", "/api/questionnaires/missing", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	handler.GetQuestionnaire(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Redirect != ListingPath {
		t.Errorf("redirect = %q, want %q", resp.Redirect, ListingPath)
	}
}

func TestSaveAnswer(t *testing.T) {
	backend := &stubBackend{rec: backendRecord()}
	handler, store := setupHandler(t, backend)

	tests := []struct {
		name        string
		index       string
		body        string
		wantStatus  int
		wantSavedTo string
	}{
		{
			name:        "answer with questionId goes to database",
			index:       "0",
			body:        `{"answer": "Updated answer."}`,
			wantStatus:  http.StatusOK,
			wantSavedTo: "database",
		},
		{
			name:        "answer without questionId stays local",
			index:       "1",
			body:        `{"answer": "Local answer."}`,
			wantStatus:  http.StatusOK,
			wantSavedTo: "local",
		},
		{
			name:       "index out of range",
			index:      "9",
			body:       `{"answer": "x"}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "non-numeric index",
			index:      "abc",
			body:       `{"answer": "x"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("PUT", "/api/questionnaires/qn-1/answers/"+tt.index, bytes.NewBufferString(tt.body))
			req.SetPathValue("id", "qn-1")
			req.SetPathValue("index", tt.index)
			w := httptest.NewRecorder()

			handler.SaveAnswer(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp saveAnswerResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.SavedTo != tt.wantSavedTo {
				t.Errorf("savedTo = %q, want %q", resp.SavedTo, tt.wantSavedTo)
			}
		})
	}

	rec, _ := store.FindByID(context.Background(), "qn-1")
	if rec.Answers[1].Answer != "Local answer." {
		t.Errorf("cache not updated by local save: %q", rec.Answers[1].Answer)
	}
}

func TestRegenerateAnswer(t *testing.T) {
	backend := &stubBackend{rec: backendRecord()}
	handler, _ := setupHandler(t, backend)

	req := httptest.NewRequest("POST", "/api/questionnaires/qn-1/answers/1/regenerate", nil)
	req.SetPathValue("id", "qn-1")
	req.SetPathValue("index", "1")
	w := httptest.NewRecorder()

	handler.RegenerateAnswer(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp questionnaireResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Questionnaire.Answers[1].Answer != "Generated answer." {
		t.Errorf("answer = %q", resp.Questionnaire.Answers[1].Answer)
	}
}

func TestDeleteQuestionnaire(t *testing.T) {
	backend := &stubBackend{rec: backendRecord()}
	handler, store := setupHandler(t, backend)

	store.Put(context.Background(), backendRecord())

	req := httptest.NewRequest("DELETE", "/api/questionnaires/qn-1", nil)
	req.SetPathValue("id", "qn-1")
	w := httptest.NewRecorder()

	handler.DeleteQuestionnaire(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "qn-1" {
		t.Errorf("backend deletions = %v", backend.deleted)
	}
	if _, ok := store.FindByID(context.Background(), "qn-1"); ok {
		t.Error("cache entry not mirrored out after delete")
	}
}

func TestGetTranscript(t *testing.T) {
	backend := &stubBackend{rec: backendRecord()}
	handler, _ := setupHandler(t, backend)

	req := httptest.NewRequest("GET", "/api/questionnaires/qn-1/transcript", nil)
	req.SetPathValue("id", "qn-1")
	w := httptest.NewRecorder()

	handler.GetTranscript(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp transcriptResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Messages) == 0 || resp.Messages[0].ID != "welcome" {
		t.Errorf("messages = %+v, want welcome first", resp.Messages)
	}
}

func TestGetTranscriptRejectsUnknownCategory(t *testing.T) {
	backend := &stubBackend{rec: backendRecord()}
	handler, _ := setupHandler(t, backend)

	req := httptest.NewRequest("GET", "/api/questionnaires/qn-1/transcript?category=Bogus", nil)
	req.SetPathValue("id", "qn-1")
	w := httptest.NewRecorder()

	handler.GetTranscript(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListQuestionnaires(t *testing.T) {
	backend := &stubBackend{rec: backendRecord()}
	handler, store := setupHandler(t, backend)

	empty := httptest.NewRecorder()
	handler.ListQuestionnaires(empty, httptest.NewRequest("GET", "/api/questionnaires", nil))
	var emptyResp listQuestionnairesResponse
	if err := json.NewDecoder(empty.Body).Decode(&emptyResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(emptyResp.Questionnaires) != 0 {
		t.Errorf("expected empty listing, got %d", len(emptyResp.Questionnaires))
	}

	store.Put(context.Background(), backendRecord())

	rr := httptest.NewRecorder()
	handler.ListQuestionnaires(rr, httptest.NewRequest("GET", "/api/questionnaires", nil))
	var resp listQuestionnairesResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Questionnaires) != 1 || resp.Questionnaires[0].ID != "qn-1" {
		t.Errorf("listing = %+v", resp.Questionnaires)
	}
}
