package cache

import (
	"context"
	"encoding/json"
	"log"

	"github.com/AiGarnet/garnet-questionnaire/internal/domain"
)

// StorageKey is the key the web client has always used for its local
// questionnaire cache. The value is a JSON array of questionnaires.
const StorageKey = "user_questionnaires"

// Store adapts a KV into questionnaire read/write/merge operations.
//
// Every write is a whole-array read-modify-write; concurrent writers are
// resolved last-writer-wins. That is the accepted consistency model for
// this cache, matching the multi-tab behavior of the original client.
// Read and write failures are logged and swallowed: callers always get a
// usable (possibly empty) result and in-memory state stays authoritative
// for the session even when durability is lost.
type Store struct {
	kv KV
}

// NewStore wraps a KV.
func NewStore(kv KV) *Store {
	return &Store{kv: kv}
}

// LoadAll returns every cached questionnaire. Absent or corrupt data
// yields an empty slice, never an error.
func (s *Store) LoadAll(ctx context.Context) []domain.Questionnaire {
	raw, ok, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		log.Printf("cache: read failed: %v", err)
		return nil
	}
	if !ok {
		return nil
	}

	var all []domain.Questionnaire
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		log.Printf("cache: corrupt %s entry ignored: %v", StorageKey, err)
		return nil
	}
	return all
}

// FindByID returns the cached questionnaire with the given id.
func (s *Store) FindByID(ctx context.Context, id string) (domain.Questionnaire, bool) {
	for _, q := range s.LoadAll(ctx) {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Questionnaire{}, false
}

// Upsert applies update to the entry with the given id, appending a new
// entry when none exists, and writes the whole array back.
func (s *Store) Upsert(ctx context.Context, id string, update func(domain.Questionnaire) domain.Questionnaire) {
	all := s.LoadAll(ctx)

	found := false
	for i, q := range all {
		if q.ID == id {
			all[i] = update(q)
			found = true
			break
		}
	}
	if !found {
		all = append(all, update(domain.Questionnaire{ID: id}))
	}

	s.writeAll(ctx, all)
}

// Put replaces (or appends) the entry for q.ID with q.
func (s *Store) Put(ctx context.Context, q domain.Questionnaire) {
	s.Upsert(ctx, q.ID, func(domain.Questionnaire) domain.Questionnaire { return q })
}

// Remove filters the entry for id out of the cached array. Used to
// mirror a backend-side deletion; the cache never originates deletes.
func (s *Store) Remove(ctx context.Context, id string) {
	all := s.LoadAll(ctx)
	kept := all[:0]
	for _, q := range all {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(all) {
		return
	}
	s.writeAll(ctx, kept)
}

func (s *Store) writeAll(ctx context.Context, all []domain.Questionnaire) {
	if all == nil {
		all = []domain.Questionnaire{}
	}
	data, err := json.Marshal(all)
	if err != nil {
		log.Printf("cache: marshal failed: %v", err)
		return
	}
	if err := s.kv.Set(ctx, StorageKey, string(data)); err != nil {
		log.Printf("cache: write failed: %v", err)
	}
}
