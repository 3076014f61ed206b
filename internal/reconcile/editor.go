package reconcile

import (
	"context"
	"log"

	"github.com/AiGarnet/garnet-questionnaire/internal/domain"
	"github.com/AiGarnet/garnet-questionnaire/internal/remote"
)

// SaveResult reports where an edit landed.
type SaveResult struct {
	SavedRemote   bool
	Questionnaire domain.Questionnaire
}

// BeginEdit copies the current answer text into the edit buffer and
// marks the index as being edited. Editing is exclusive: one index per
// engine; beginning an edit elsewhere moves the editing cursor without
// touching the previous answer.
func (e *Engine) BeginEdit(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.rec.Answers) {
		return domain.ErrIndexOutOfRange
	}
	if e.editing >= 0 && e.editing < len(e.phases) && e.phases[e.editing] == PhaseEditing {
		e.phases[e.editing] = PhaseIdle
	}
	e.editing = index
	e.editBuf = e.rec.Answers[index].Answer
	e.phases[index] = PhaseEditing
	return nil
}

// EditBuffer returns the currently edited index (-1 when none) and the
// buffer contents.
func (e *Engine) EditBuffer() (int, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editing, e.editBuf
}

// CancelEdit discards the buffer for index without persisting anything.
func (e *Engine) CancelEdit(index int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.editing != index {
		return
	}
	e.editing = -1
	e.editBuf = ""
	if index >= 0 && index < len(e.phases) {
		e.phases[index] = PhaseIdle
	}
}

// SaveEdit persists new answer text for one index. Answers with a
// questionId go to the backend first and adopt the server's returned
// representation; on any failure (or when no questionId exists) the text
// is kept locally. Both paths update the cache before the edit flag is
// cleared, and both emit a confirmation event for the transcript.
func (e *Engine) SaveEdit(ctx context.Context, index int, text string) (SaveResult, error) {
	e.mu.Lock()
	if index < 0 || index >= len(e.rec.Answers) {
		e.mu.Unlock()
		return SaveResult{}, domain.ErrIndexOutOfRange
	}
	epoch := e.epoch
	target := e.rec.Answers[index]
	e.phases[index] = PhaseSaving
	e.mu.Unlock()

	savedRemote := false
	final := text
	if target.QuestionID != "" {
		updated, err := e.backend.UpdateQuestion(ctx, e.id, target.QuestionID, remote.UpdateQuestionRequest{Answer: &text})
		if err != nil {
			log.Printf("reconcile: backend save for %s/%s failed, keeping local copy: %v", e.id, target.QuestionID, err)
		} else {
			savedRemote = true
			if updated.Answer != "" {
				final = updated.Answer
			}
		}
	}

	e.mu.Lock()
	if e.epoch != epoch || index >= len(e.rec.Answers) || e.rec.Answers[index].Question != target.Question {
		e.mu.Unlock()
		return SaveResult{}, ErrSuperseded
	}
	a := &e.rec.Answers[index]
	a.Answer = final
	a.IsLoading = false
	a.State = domain.StateOf(final)
	e.rec.Recalculate()
	snapshot := e.rec.Clone()
	e.mu.Unlock()

	// Cache reflects the new text before edit mode is released.
	e.store.Put(ctx, snapshot)

	e.mu.Lock()
	if e.epoch == epoch {
		if e.editing == index {
			e.editing = -1
			e.editBuf = ""
		}
		if index < len(e.phases) {
			e.phases[index] = PhaseIdle
		}
		if savedRemote {
			e.appendEventLocked(EventSaveConfirmation, "Answer saved to database.")
		} else {
			e.appendEventLocked(EventSaveConfirmation, "Answer saved locally.")
		}
	}
	e.mu.Unlock()

	return SaveResult{SavedRemote: savedRemote, Questionnaire: snapshot}, nil
}

// Regenerate replaces one answer with a freshly generated one: transient
// placeholder while in flight, per-index loading flag, cache persisted on
// completion, and a best-effort mirror to the backend whose failure is
// logged but never surfaced to the caller.
func (e *Engine) Regenerate(ctx context.Context, index int) (domain.Questionnaire, error) {
	e.mu.Lock()
	if index < 0 || index >= len(e.rec.Answers) {
		e.mu.Unlock()
		return domain.Questionnaire{}, domain.ErrIndexOutOfRange
	}
	epoch := e.epoch
	question := e.rec.Answers[index].Question
	questionID := e.rec.Answers[index].QuestionID
	a := &e.rec.Answers[index]
	a.Answer = domain.PlaceholderRegenerating
	a.IsLoading = true
	a.State = domain.AnswerStatePending
	e.phases[index] = PhaseGenerating
	e.mu.Unlock()

	answer := e.gen.Generate(ctx, question)

	e.mu.Lock()
	if e.epoch != epoch || index >= len(e.rec.Answers) || e.rec.Answers[index].Question != question {
		e.mu.Unlock()
		return domain.Questionnaire{}, ErrSuperseded
	}
	a = &e.rec.Answers[index]
	a.Answer = answer
	a.IsLoading = false
	if answer == domain.FallbackAnswer {
		a.State = domain.AnswerStateFailed
	} else {
		a.State = domain.AnswerStateGenerated
	}
	e.phases[index] = PhaseIdle
	e.rec.Recalculate()
	snapshot := e.rec.Clone()
	e.mu.Unlock()

	e.store.Put(ctx, snapshot)

	if questionID != "" && answer != domain.FallbackAnswer {
		if _, err := e.backend.UpdateQuestion(ctx, e.id, questionID, remote.UpdateQuestionRequest{Answer: &answer}); err != nil {
			log.Printf("reconcile: backend mirror of regenerated answer %s/%s failed: %v", e.id, questionID, err)
		}
	}

	return snapshot, nil
}
