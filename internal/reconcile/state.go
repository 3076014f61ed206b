// Package reconcile owns the questionnaire answer lifecycle: remote-first
// load with cache fallback, duplicate collapse, concurrent auto-generation
// of missing answers, per-answer edit and regenerate, and the dual write
// back to backend and cache.
package reconcile

import (
	"errors"
	"time"
)

// LoadState is the lifecycle of one questionnaire load.
type LoadState string

const (
	StateIdle           LoadState = "Idle"
	StateLoading        LoadState = "Loading"
	StateAutoGenerating LoadState = "AutoGenerating"
	StateNotFound       LoadState = "NotFound"
	StateReady          LoadState = "Ready"
)

// AnswerPhase is the transient lifecycle of one answer. Phases are
// tracked per index; a questionnaire-wide loading flag would misreport
// concurrent generations.
type AnswerPhase string

const (
	PhaseIdle       AnswerPhase = "Idle"
	PhaseGenerating AnswerPhase = "Generating"
	PhaseEditing    AnswerPhase = "Editing"
	PhaseSaving     AnswerPhase = "Saving"
)

// Event kinds appended to the chat transcript.
const (
	EventSaveConfirmation = "save-confirmation"
	EventNotFound         = "not-found"
)

// Event is a system message the engine emits for the transcript.
type Event struct {
	ID      string    `json:"id"`
	Kind    string    `json:"kind"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// ErrSuperseded indicates an async result arrived after a newer load
// replaced the record it was computed for; the result was discarded.
var ErrSuperseded = errors.New("superseded by a newer load")
