// Package memory provides process-local storage for entities and the stream
// checkpoint. It backs dry runs of the pipeline and the tests of the
// projection layer.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/gabapcia/credwatch/internal/entity"
	"github.com/gabapcia/credwatch/internal/pkg/types"
)

type store struct {
	mu          sync.RWMutex
	docs        map[entity.Kind]map[string]json.RawMessage
	checkpoints map[string]types.Hex
}

var (
	_ entity.Store      = (*store)(nil)
	_ entity.BatchSaver = (*store)(nil)
)

// Get implements entity.Store.
func (s *store) Get(_ context.Context, kind entity.Kind, id string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[kind][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", entity.ErrEntityNotFound, kind, id)
	}

	return slices.Clone(doc), nil
}

// Save implements entity.Store.
func (s *store) Save(_ context.Context, kind entity.Kind, id string, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[kind]; !ok {
		s.docs[kind] = make(map[string]json.RawMessage)
	}

	s.docs[kind][id] = slices.Clone(doc)
	return nil
}

// SaveBatch implements entity.BatchSaver.
func (s *store) SaveBatch(_ context.Context, docs []entity.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range docs {
		if _, ok := s.docs[d.Kind]; !ok {
			s.docs[d.Kind] = make(map[string]json.RawMessage)
		}

		s.docs[d.Kind][d.ID] = slices.Clone(d.Doc)
	}

	return nil
}

// QueryByFields implements entity.Store.
func (s *store) QueryByFields(_ context.Context, kind entity.Kind, predicates []entity.Predicate, opts entity.QueryOptions) ([]json.RawMessage, error) {
	s.mu.RLock()
	docs := make([]json.RawMessage, 0, len(s.docs[kind]))
	for _, doc := range s.docs[kind] {
		docs = append(docs, slices.Clone(doc))
	}
	s.mu.RUnlock()

	return entity.Select(docs, predicates, opts)
}

// NewStore returns an empty in-memory store.
func NewStore() *store {
	return &store{
		docs:        make(map[entity.Kind]map[string]json.RawMessage),
		checkpoints: make(map[string]types.Hex),
	}
}
