// Package entity defines the records projected from chain events and the
// store contract they are persisted through.
package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrEntityNotFound is returned by Store.Get when no record has the given id.
var ErrEntityNotFound = errors.New("entity not found")

// Kind names a family of records; stores keep one namespace per kind.
type Kind string

const (
	KindBlock            Kind = "block"
	KindCType            Kind = "ctype"
	KindAttestation      Kind = "attestation"
	KindDID              Kind = "did"
	KindWeb3Name         Kind = "web3name"
	KindOwnership        Kind = "ownership"
	KindSanction         Kind = "sanction"
	KindChain            Kind = "chain"
	KindAsset            Kind = "asset"
	KindAssetDID         Kind = "assetdid"
	KindPublicCredential Kind = "publiccredential"
	KindRuling           Kind = "ruling"
)

// Entity is implemented by every persisted record.
type Entity interface {
	EntityKind() Kind
	EntityID() string
}

// Op is a comparison used in a Predicate.
type Op string

const (
	OpEq Op = "="
	OpNe Op = "!="
)

// Predicate filters records on one JSON field. Values are compared after
// JSON normalization, so only scalars are meaningful; a missing field
// compares equal to nil.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Eq builds an equality predicate.
func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Op: OpEq, Value: value}
}

// QueryOptions paginates and orders QueryByFields results. Results are
// ordered by id when OrderBy is empty.
type QueryOptions struct {
	Limit   int
	Offset  int
	OrderBy string
}

// Store persists records as JSON documents grouped by kind. Each call is
// independently durable; no transaction spans two calls.
type Store interface {
	// Get returns the document stored under id, or ErrEntityNotFound.
	Get(ctx context.Context, kind Kind, id string) (json.RawMessage, error)

	// Save creates or overwrites the document stored under id.
	Save(ctx context.Context, kind Kind, id string, doc json.RawMessage) error

	// QueryByFields returns the documents matching every predicate.
	QueryByFields(ctx context.Context, kind Kind, predicates []Predicate, opts QueryOptions) ([]json.RawMessage, error)
}

// Get loads the record id into dst.
func Get(ctx context.Context, s Store, id string, dst Entity) error {
	doc, err := s.Get(ctx, dst.EntityKind(), id)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(doc, dst); err != nil {
		return fmt.Errorf("decoding %s %q: %w", dst.EntityKind(), id, err)
	}

	return nil
}

// Save persists e under its own id.
func Save(ctx context.Context, s Store, e Entity) error {
	doc, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding %s %q: %w", e.EntityKind(), e.EntityID(), err)
	}

	return s.Save(ctx, e.EntityKind(), e.EntityID(), doc)
}

// Query decodes the documents of kind that match predicates.
func Query[T any](ctx context.Context, s Store, kind Kind, predicates []Predicate, opts QueryOptions) ([]T, error) {
	docs, err := s.QueryByFields(ctx, kind, predicates, opts)
	if err != nil {
		return nil, err
	}

	out := make([]T, len(docs))
	for i, doc := range docs {
		if err := json.Unmarshal(doc, &out[i]); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", kind, err)
		}
	}

	return out, nil
}

// Counter is implemented by stores that can count matching documents
// without returning them.
type Counter interface {
	CountByFields(ctx context.Context, kind Kind, predicates []Predicate) (int, error)
}

// Count returns how many documents of kind match predicates. Stores that
// implement Counter answer directly; the others are asked for every match
// in a single query.
func Count(ctx context.Context, s Store, kind Kind, predicates ...Predicate) (int, error) {
	if c, ok := s.(Counter); ok {
		return c.CountByFields(ctx, kind, predicates)
	}

	docs, err := s.QueryByFields(ctx, kind, predicates, QueryOptions{})
	if err != nil {
		return 0, err
	}

	return len(docs), nil
}

// Load returns the record of type T stored under id.
func Load[T Entity](ctx context.Context, s Store, id string) (T, error) {
	var v T

	doc, err := s.Get(ctx, v.EntityKind(), id)
	if err != nil {
		return v, err
	}

	if err := json.Unmarshal(doc, &v); err != nil {
		return v, fmt.Errorf("decoding %s %q: %w", v.EntityKind(), id, err)
	}

	return v, nil
}
