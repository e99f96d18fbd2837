package entity

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
)

// Document is one record queued for a batch write.
type Document struct {
	Kind Kind
	ID   string
	Doc  json.RawMessage
}

// BatchSaver is implemented by stores that can persist several documents
// atomically.
type BatchSaver interface {
	SaveBatch(ctx context.Context, docs []Document) error
}

type stagedKey struct {
	kind Kind
	id   string
}

// Staging is a Store that keeps writes in memory on top of a base store
// until Commit. Reads see the staged writes. The writes of one block are
// staged so that a failed projection leaves the base store untouched.
type Staging struct {
	base Store

	mu      sync.Mutex
	pending map[stagedKey]json.RawMessage
	order   []stagedKey
}

var (
	_ Store   = (*Staging)(nil)
	_ Counter = (*Staging)(nil)
)

// NewStaging returns a Staging over base.
func NewStaging(base Store) *Staging {
	return &Staging{
		base:    base,
		pending: make(map[stagedKey]json.RawMessage),
	}
}

// Get implements Store.
func (s *Staging) Get(ctx context.Context, kind Kind, id string) (json.RawMessage, error) {
	s.mu.Lock()
	doc, ok := s.pending[stagedKey{kind, id}]
	s.mu.Unlock()

	if ok {
		return slices.Clone(doc), nil
	}

	return s.base.Get(ctx, kind, id)
}

// Save implements Store.
func (s *Staging) Save(_ context.Context, kind Kind, id string, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stagedKey{kind, id}
	if _, ok := s.pending[key]; !ok {
		s.order = append(s.order, key)
	}

	s.pending[key] = slices.Clone(doc)
	return nil
}

// staged returns the staged documents of kind keyed by id.
func (s *Staging) staged(kind Kind) map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]json.RawMessage)
	for key, doc := range s.pending {
		if key.kind == kind {
			staged[key.id] = doc
		}
	}

	return staged
}

// CountByFields implements Counter. Without staged documents of kind the
// count is delegated to the base store.
func (s *Staging) CountByFields(ctx context.Context, kind Kind, predicates []Predicate) (int, error) {
	if len(s.staged(kind)) == 0 {
		return Count(ctx, s.base, kind, predicates...)
	}

	docs, err := s.QueryByFields(ctx, kind, predicates, QueryOptions{})
	if err != nil {
		return 0, err
	}

	return len(docs), nil
}

// QueryByFields implements Store. Staged documents of kind replace their
// stored version before predicates apply.
func (s *Staging) QueryByFields(ctx context.Context, kind Kind, predicates []Predicate, opts QueryOptions) ([]json.RawMessage, error) {
	staged := s.staged(kind)
	if len(staged) == 0 {
		return s.base.QueryByFields(ctx, kind, predicates, opts)
	}

	stored, err := s.base.QueryByFields(ctx, kind, nil, QueryOptions{})
	if err != nil {
		return nil, err
	}

	docs := make([]json.RawMessage, 0, len(stored)+len(staged))
	for _, doc := range stored {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(doc, &head); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", kind, err)
		}

		if _, ok := staged[head.ID]; !ok {
			docs = append(docs, doc)
		}
	}
	for _, doc := range staged {
		docs = append(docs, slices.Clone(doc))
	}

	return Select(docs, predicates, opts)
}

// Commit writes the staged documents to the base store, in one batch when
// the base store supports it, and clears the stage.
func (s *Staging) Commit(ctx context.Context) error {
	s.mu.Lock()
	docs := make([]Document, len(s.order))
	for i, key := range s.order {
		docs[i] = Document{Kind: key.kind, ID: key.id, Doc: s.pending[key]}
	}
	s.mu.Unlock()

	if len(docs) == 0 {
		return nil
	}

	var err error
	if batch, ok := s.base.(BatchSaver); ok {
		err = batch.SaveBatch(ctx, docs)
	} else {
		for _, d := range docs {
			if err = s.base.Save(ctx, d.Kind, d.ID, d.Doc); err != nil {
				break
			}
		}
	}
	if err != nil {
		return fmt.Errorf("committing %d documents: %w", len(docs), err)
	}

	s.Discard()
	return nil
}

// Discard drops every staged write.
func (s *Staging) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.pending)
	s.order = s.order[:0]
}

// Pending reports how many documents are staged.
func (s *Staging) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.order)
}
