package reconcile

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AiGarnet/garnet-questionnaire/internal/cache"
	"github.com/AiGarnet/garnet-questionnaire/internal/domain"
	"github.com/AiGarnet/garnet-questionnaire/internal/generate"
	"github.com/AiGarnet/garnet-questionnaire/internal/remote"
)

// Backend is the slice of the compliance backend the engine depends on.
// *remote.Client implements it.
type Backend interface {
	FetchQuestionnaire(ctx context.Context, id string) (domain.Questionnaire, error)
	UpdateQuestion(ctx context.Context, questionnaireID, questionID string, update remote.UpdateQuestionRequest) (domain.QuestionAnswer, error)
}

// Engine drives the answer lifecycle for one questionnaire id.
//
// Every asynchronous result is applied under an epoch guard: a result
// computed for load N is discarded once load N+1 has replaced the
// record, so a slow response can never land on the wrong data. Results
// are index-addressed and additionally matched by question text, so a
// list mutation cannot misattribute an answer.
type Engine struct {
	id      string
	backend Backend
	gen     generate.Generator
	store   *cache.Store
	grace   time.Duration
	notify  func(id string)

	mu      sync.Mutex
	state   LoadState
	rec     domain.Questionnaire
	phases  []AnswerPhase
	editing int
	editBuf string
	epoch   uint64
	events  []Event
	done    chan struct{}
}

func newEngine(id string, cfg Config) *Engine {
	return &Engine{
		id:      id,
		backend: cfg.Backend,
		gen:     cfg.Generator,
		store:   cfg.Store,
		grace:   cfg.NotFoundGrace,
		notify:  cfg.OnNotFound,
		state:   StateIdle,
		editing: -1,
	}
}

// ID returns the questionnaire id this engine serves.
func (e *Engine) ID() string { return e.id }

// Snapshot returns the current load state and a deep copy of the record.
func (e *Engine) Snapshot() (LoadState, domain.Questionnaire) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state, e.rec.Clone()
}

// Phase returns the transient phase of one answer.
func (e *Engine) Phase(index int) AnswerPhase {
	e.mu.Lock()
	defer e.mu.Unlock()
	if index < 0 || index >= len(e.phases) {
		return PhaseIdle
	}
	return e.phases[index]
}

// Events returns a copy of the transcript events emitted so far.
func (e *Engine) Events() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out
}

// Wait blocks until the pass in flight settles: Ready, NotFound, or
// abandoned because a newer load superseded it.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EnsureLoaded runs Load when nothing has been loaded yet, then waits
// for the reconciliation pass to settle.
func (e *Engine) EnsureLoaded(ctx context.Context) error {
	e.mu.Lock()
	state := e.state
	e.mu.Unlock()

	if state == StateIdle || state == StateNotFound {
		if err := e.Load(ctx); err != nil {
			return err
		}
	}
	return e.Wait(ctx)
}

// Load runs one reconciliation pass: remote-first fetch with cache
// fallback, duplicate collapse, and concurrent generation of answers for
// every unanswered question. It returns once generation has been kicked
// off; the record with placeholders is immediately visible via Snapshot,
// and Wait blocks until the pass settles into Ready.
//
// A miss on both remote and cache is the only terminal failure: the
// engine moves to NotFound and, after the grace period, fires the
// configured redirect hook if no newer load has succeeded meanwhile.
func (e *Engine) Load(ctx context.Context) error {
	e.mu.Lock()
	e.epoch++
	epoch := e.epoch
	e.state = StateLoading
	e.editing = -1
	done := make(chan struct{})
	e.done = done
	e.mu.Unlock()

	rec, err := e.backend.FetchQuestionnaire(ctx, e.id)
	if err != nil {
		log.Printf("reconcile: remote load of %s failed, falling back to cache: %v", e.id, err)
		cached, ok := e.store.FindByID(ctx, e.id)
		if !ok {
			e.markNotFound(epoch, done)
			return domain.ErrNotFound
		}
		rec = cached
	}
	for i := range rec.Answers {
		rec.Answers[i].State = domain.StateOf(rec.Answers[i].Answer)
	}

	deduped, collapsed := domain.DeduplicateAnswers(rec.Answers)
	rec.Answers = deduped
	rec.Recalculate()
	if collapsed {
		e.store.Put(ctx, rec)
	}

	var pending []int
	for i := range rec.Answers {
		switch rec.Answers[i].State {
		case domain.AnswerStateEmpty, domain.AnswerStatePending:
			pending = append(pending, i)
		}
	}

	e.mu.Lock()
	if e.epoch != epoch {
		e.mu.Unlock()
		// Each pass owns its channel; releasing waiters on an abandoned
		// pass is always safe.
		close(done)
		return ErrSuperseded
	}
	e.rec = rec
	e.phases = make([]AnswerPhase, len(rec.Answers))

	if len(pending) == 0 {
		e.state = StateReady
		close(done)
		e.mu.Unlock()
		return nil
	}

	e.state = StateAutoGenerating
	questions := make(map[int]string, len(pending))
	for _, i := range pending {
		e.rec.Answers[i].Answer = domain.PlaceholderGenerating
		e.rec.Answers[i].IsLoading = true
		e.rec.Answers[i].State = domain.AnswerStatePending
		e.phases[i] = PhaseGenerating
		questions[i] = e.rec.Answers[i].Question
	}
	e.mu.Unlock()

	// One request per empty answer, all in flight at once. Completion
	// order is irrelevant; each result lands on its own index only.
	var wg sync.WaitGroup
	for index, question := range questions {
		wg.Add(1)
		go func(index int, question string) {
			defer wg.Done()
			answer := e.gen.Generate(ctx, question)
			e.applyGenerated(epoch, index, question, answer)
		}(index, question)
	}

	go func() {
		wg.Wait()
		e.mu.Lock()
		if e.epoch != epoch {
			e.mu.Unlock()
			// Superseded mid-batch. The results were dropped, but waiters
			// on this pass still get released.
			close(done)
			return
		}
		e.rec.Recalculate()
		snapshot := e.rec.Clone()
		e.state = StateReady
		close(done)
		e.mu.Unlock()

		// Single cache write after the whole batch resolves. The load
		// context may be long gone by now.
		e.store.Put(context.Background(), snapshot)
	}()

	return nil
}

// applyGenerated installs one generation result, or drops it when the
// record it was computed for is no longer current.
func (e *Engine) applyGenerated(epoch uint64, index int, question, answer string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.epoch != epoch {
		return
	}
	if index >= len(e.rec.Answers) || e.rec.Answers[index].Question != question {
		return
	}

	a := &e.rec.Answers[index]
	a.Answer = answer
	a.IsLoading = false
	if answer == domain.FallbackAnswer {
		a.State = domain.AnswerStateFailed
	} else {
		a.State = domain.AnswerStateGenerated
	}
	a.NeedsAttention = !domain.IsAnswered(answer)
	e.phases[index] = PhaseIdle
}

// markNotFound transitions to the terminal not-found state and schedules
// the redirect hook after the grace period.
func (e *Engine) markNotFound(epoch uint64, done chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.epoch != epoch {
		close(done)
		return
	}
	e.state = StateNotFound
	e.rec = domain.Questionnaire{ID: e.id}
	e.phases = nil
	e.appendEventLocked(EventNotFound, "Questionnaire not found. You will be redirected to your questionnaires shortly.")
	close(done)

	if e.notify == nil {
		return
	}
	notify := e.notify
	id := e.id
	time.AfterFunc(e.grace, func() {
		e.mu.Lock()
		still := e.epoch == epoch && e.state == StateNotFound
		e.mu.Unlock()
		if still {
			notify(id)
		}
	})
}

func (e *Engine) appendEventLocked(kind, content string) {
	e.events = append(e.events, Event{
		ID:      uuid.NewString(),
		Kind:    kind,
		Content: content,
		At:      time.Now().UTC(),
	})
}
