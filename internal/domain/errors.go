package domain

import "errors"

var (
	// ErrNotFound indicates no record exists remotely or in the cache.
	ErrNotFound = errors.New("not found")

	// ErrIndexOutOfRange indicates an answer index outside the current record.
	ErrIndexOutOfRange = errors.New("answer index out of range")

	// ErrNoQuestionID indicates a per-question backend update was requested
	// for an answer that was never persisted server-side.
	ErrNoQuestionID = errors.New("answer has no question id")
)
