package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/AiGarnet/garnet-questionnaire/internal/cache"
	"github.com/AiGarnet/garnet-questionnaire/internal/category"
	"github.com/AiGarnet/garnet-questionnaire/internal/domain"
	"github.com/AiGarnet/garnet-questionnaire/internal/reconcile"
	"github.com/AiGarnet/garnet-questionnaire/internal/transcript"
)

// ListingPath is where the UI escapes to when a questionnaire does not
// exist anywhere; it is returned to clients as the redirect hint.
const ListingPath = "/questionnaires"

// BackendDeleter is the slice of the backend client deletion needs.
type BackendDeleter interface {
	DeleteQuestionnaire(ctx context.Context, id string) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	svc        *reconcile.Service
	store      *cache.Store
	projector  *transcript.Projector
	classifier *category.Classifier
	deleter    BackendDeleter
}

// NewHandler creates a new Handler. deleter may be nil when no backend
// is configured; deletion then only touches the cache.
func NewHandler(svc *reconcile.Service, store *cache.Store, classifier *category.Classifier, deleter BackendDeleter) *Handler {
	return &Handler{
		svc:        svc,
		store:      store,
		projector:  transcript.New(classifier),
		classifier: classifier,
		deleter:    deleter,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/questionnaires", h.ListQuestionnaires)
	mux.HandleFunc("POST /api/questionnaires", h.CreateQuestionnaire)
	mux.HandleFunc("GET /api/questionnaires/{id}", h.GetQuestionnaire)
	mux.HandleFunc("DELETE /api/questionnaires/{id}", h.DeleteQuestionnaire)
	mux.HandleFunc("PUT /api/questionnaires/{id}/answers/{index}", h.SaveAnswer)
	mux.HandleFunc("POST /api/questionnaires/{id}/answers/{index}/regenerate", h.RegenerateAnswer)
	mux.HandleFunc("GET /api/questionnaires/{id}/transcript", h.GetTranscript)
}

// Error response helpers

type errorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err, message string) {
	writeJSON(w, status, errorResponse{Error: err, Message: message})
}

// ListQuestionnaires

type listQuestionnairesResponse struct {
	Questionnaires []domain.Questionnaire `json:"questionnaires"`
}

func (h *Handler) ListQuestionnaires(w http.ResponseWriter, r *http.Request) {
	all := h.store.LoadAll(r.Context())
	if all == nil {
		all = []domain.Questionnaire{}
	}
	writeJSON(w, http.StatusOK, listQuestionnairesResponse{Questionnaires: all})
}

// CreateQuestionnaire synthesizes a questionnaire client-side from a
// form submission and caches it. Backend-side creation is out of scope;
// records created here carry no questionIds until the backend assigns
// them.

type createQuestionRequest struct {
	Question    string `json:"question"`
	IsMandatory bool   `json:"isMandatory"`
}

type createQuestionnaireRequest struct {
	Name      string                  `json:"name"`
	DueDate   string                  `json:"dueDate"`
	Questions []createQuestionRequest `json:"questions"`
}

type questionnaireResponse struct {
	Questionnaire domain.Questionnaire `json:"questionnaire"`
	State         reconcile.LoadState  `json:"state,omitempty"`
	Events        []reconcile.Event    `json:"events,omitempty"`
}

func (h *Handler) CreateQuestionnaire(w http.ResponseWriter, r *http.Request) {
	var req createQuestionnaireRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}
	if len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, "validation_error", "at least one question is required")
		return
	}

	q := domain.Questionnaire{
		ID:        uuid.NewString(),
		Name:      req.Name,
		DueDate:   req.DueDate,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Answers:   make([]domain.QuestionAnswer, 0, len(req.Questions)),
	}
	for _, cq := range req.Questions {
		if cq.Question == "" {
			writeError(w, http.StatusBadRequest, "validation_error", "question text must not be empty")
			return
		}
		q.Answers = append(q.Answers, domain.QuestionAnswer{
			Question:       cq.Question,
			IsMandatory:    cq.IsMandatory,
			NeedsAttention: true,
			Category:       h.classifier.Classify(cq.Question),
		})
	}
	q.Answers, _ = domain.DeduplicateAnswers(q.Answers)
	q.Recalculate()

	h.store.Put(r.Context(), q)

	writeJSON(w, http.StatusCreated, questionnaireResponse{Questionnaire: q})
}

// GetQuestionnaire triggers a reconciliation pass (remote-first load,
// dedup, auto-generation) and returns the settled record.
func (h *Handler) GetQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	eng := h.svc.Engine(id)
	if err := eng.EnsureLoaded(r.Context()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{
				Error:    "not_found",
				Message:  "Questionnaire not found",
				Redirect: ListingPath,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load questionnaire")
		return
	}

	state, rec := eng.Snapshot()
	writeJSON(w, http.StatusOK, questionnaireResponse{
		Questionnaire: rec,
		State:         state,
		Events:        eng.Events(),
	})
}

// DeleteQuestionnaire delegates deletion to the backend and mirrors it
// into the cache. A backend failure still clears the local mirror.
func (h *Handler) DeleteQuestionnaire(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if h.deleter != nil {
		if err := h.deleter.DeleteQuestionnaire(r.Context(), id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			log.Printf("api: backend delete of %s failed: %v", id, err)
		}
	}
	h.store.Remove(r.Context(), id)

	w.WriteHeader(http.StatusNoContent)
}

// SaveAnswer

type saveAnswerRequest struct {
	Answer string `json:"answer"`
}

type saveAnswerResponse struct {
	SavedTo       string               `json:"savedTo"` // "database" or "local"
	Questionnaire domain.Questionnaire `json:"questionnaire"`
}

func (h *Handler) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "answer index must be an integer")
		return
	}

	var req saveAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body")
		return
	}

	eng := h.svc.Engine(id)
	if err := eng.EnsureLoaded(r.Context()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Questionnaire not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load questionnaire")
		return
	}

	res, err := eng.SaveEdit(r.Context(), index, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrIndexOutOfRange):
			writeError(w, http.StatusNotFound, "not_found", "No answer at that index")
		case errors.Is(err, reconcile.ErrSuperseded):
			writeError(w, http.StatusConflict, "conflict", "Questionnaire changed during save")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to save answer")
		}
		return
	}

	savedTo := "local"
	if res.SavedRemote {
		savedTo = "database"
	}
	writeJSON(w, http.StatusOK, saveAnswerResponse{SavedTo: savedTo, Questionnaire: res.Questionnaire})
}

// RegenerateAnswer

func (h *Handler) RegenerateAnswer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "answer index must be an integer")
		return
	}

	eng := h.svc.Engine(id)
	if err := eng.EnsureLoaded(r.Context()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Questionnaire not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load questionnaire")
		return
	}

	rec, err := eng.Regenerate(r.Context(), index)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrIndexOutOfRange):
			writeError(w, http.StatusNotFound, "not_found", "No answer at that index")
		case errors.Is(err, reconcile.ErrSuperseded):
			writeError(w, http.StatusConflict, "conflict", "Questionnaire changed during regeneration")
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", "Failed to regenerate answer")
		}
		return
	}

	writeJSON(w, http.StatusOK, questionnaireResponse{Questionnaire: rec})
}

// GetTranscript

type transcriptResponse struct {
	Messages []transcript.Message `json:"messages"`
	Events   []reconcile.Event    `json:"events"`
}

func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	activeCategory := domain.Category(r.URL.Query().Get("category"))
	if activeCategory != "" && !activeCategory.IsValid() {
		writeError(w, http.StatusBadRequest, "validation_error", "unknown category")
		return
	}

	eng := h.svc.Engine(id)
	if err := eng.EnsureLoaded(r.Context()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "Questionnaire not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to load questionnaire")
		return
	}

	_, rec := eng.Snapshot()
	writeJSON(w, http.StatusOK, transcriptResponse{
		Messages: h.projector.Project(rec, activeCategory),
		Events:   eng.Events(),
	})
}
