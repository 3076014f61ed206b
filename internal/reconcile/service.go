package reconcile

import (
	"sync"
	"time"

	"github.com/AiGarnet/garnet-questionnaire/internal/cache"
	"github.com/AiGarnet/garnet-questionnaire/internal/generate"
)

// DefaultNotFoundGrace is how long a NotFound engine waits before firing
// the redirect hook.
const DefaultNotFoundGrace = 5 * time.Second

// Config wires an engine's collaborators.
type Config struct {
	Backend   Backend
	Generator generate.Generator
	Store     *cache.Store

	// NotFoundGrace defaults to DefaultNotFoundGrace.
	NotFoundGrace time.Duration

	// OnNotFound, when set, is invoked with the questionnaire id after
	// the grace period if the record is still missing everywhere.
	OnNotFound func(id string)
}

// Service hands out one engine per questionnaire id.
type Service struct {
	cfg Config

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewService creates the engine registry.
func NewService(cfg Config) *Service {
	if cfg.NotFoundGrace == 0 {
		cfg.NotFoundGrace = DefaultNotFoundGrace
	}
	return &Service{
		cfg:     cfg,
		engines: make(map[string]*Engine),
	}
}

// Engine returns the engine for id, creating it on first use.
func (s *Service) Engine(id string) *Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.engines[id]; ok {
		return e
	}
	e := newEngine(id, s.cfg)
	s.engines[id] = e
	return e
}
