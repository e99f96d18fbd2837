// Package aggregation maintains the per-CType attestation counters.
//
// A record moves from absent to active exactly once, either through the
// creation of its CType or, when indexing started after that creation,
// through a placeholder. Every transition increments its own counter and
// recomputes the number of valid attestations from the attestation records
// themselves instead of adjusting it incrementally.
package aggregation

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/credwatch/internal/entity"
	"github.com/gabapcia/credwatch/internal/pkg/logger"
	"github.com/gabapcia/credwatch/internal/pkg/validator"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/gabapcia/credwatch/internal/aggregation"

var (
	// ErrAggregationNotFound is returned when a transition targets a CType
	// that was never created and placeholders are not allowed.
	ErrAggregationNotFound = errors.New("aggregation not found")

	// ErrMalformedID is returned for ids that are not CType ids.
	ErrMalformedID = errors.New("malformed aggregation id")
)

// Transition is a counter-changing event of an attestation.
type Transition string

const (
	Created Transition = "CREATED"
	Revoked Transition = "REVOKED"
	Removed Transition = "REMOVED"
)

// Service applies attestation transitions to CType aggregations.
type Service interface {
	// Define stores the descriptive fields of a newly created CType, keeping
	// the counters of any placeholder already standing in for it.
	Define(ctx context.Context, ctype entity.CType) error

	// RecordCreated counts a new attestation of the CType id.
	RecordCreated(ctx context.Context, id string) error

	// RecordRevoked counts a revocation of an attestation of the CType id.
	RecordRevoked(ctx context.Context, id string) error

	// RecordRemoved counts a removal of an attestation of the CType id.
	RecordRemoved(ctx context.Context, id string) error
}

type service struct {
	store            entity.Store
	tolerateGaps     bool
	placeholderCount metric.Int64Counter
}

var _ Service = (*service)(nil)

func validateID(id string) error {
	if err := validator.Var(id, "ctypeid"); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrMalformedID, id, err)
	}

	return nil
}

// Placeholder returns the record that stands in for a CType whose creation
// was not indexed.
func Placeholder(id string) entity.CType {
	return entity.CType{
		ID:                  id,
		Author:              entity.Prehistoric,
		RegistrationBlockID: entity.Prehistoric,
		Definition:          entity.Prehistoric,
		Placeholder:         true,
	}
}

func (s *service) Define(ctx context.Context, ctype entity.CType) error {
	if err := validator.Validate(ctype); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedID, err)
	}

	var existing entity.CType
	err := entity.Get(ctx, s.store, ctype.ID, &existing)
	switch {
	case err == nil:
		ctype.AttestationsCreated = existing.AttestationsCreated
		ctype.AttestationsRevoked = existing.AttestationsRevoked
		ctype.AttestationsRemoved = existing.AttestationsRemoved
		ctype.ValidAttestations = existing.ValidAttestations

		logger.Warn(ctx, "ctype defined over an existing aggregation",
			"ctype.id", ctype.ID,
			"ctype.placeholder", existing.Placeholder,
		)
	case !errors.Is(err, entity.ErrEntityNotFound):
		return err
	}

	ctype.Placeholder = false
	return entity.Save(ctx, s.store, ctype)
}

func (s *service) load(ctx context.Context, id string, t Transition) (entity.CType, error) {
	var agg entity.CType

	err := entity.Get(ctx, s.store, id, &agg)
	if err == nil {
		return agg, nil
	}

	if !errors.Is(err, entity.ErrEntityNotFound) {
		return agg, err
	}

	if !s.tolerateGaps {
		return agg, fmt.Errorf("%w: %s", ErrAggregationNotFound, id)
	}

	logger.Warn(ctx, "creating placeholder aggregation for a ctype created before the first indexed block",
		"ctype.id", id,
		"transition", t,
	)
	s.placeholderCount.Add(ctx, 1, metric.WithAttributes(attribute.String("transition", string(t))))

	return Placeholder(id), nil
}

func (s *service) apply(ctx context.Context, id string, t Transition) error {
	if err := validateID(id); err != nil {
		return err
	}

	agg, err := s.load(ctx, id, t)
	if err != nil {
		return err
	}

	valid, err := entity.Count(ctx, s.store, entity.KindAttestation,
		entity.Eq("cTypeId", id),
		entity.Eq("valid", true),
	)
	if err != nil {
		return fmt.Errorf("counting valid attestations of %s: %w", id, err)
	}
	agg.ValidAttestations = uint64(valid)

	switch t {
	case Created:
		agg.AttestationsCreated++
	case Revoked:
		agg.AttestationsRevoked++
	case Removed:
		agg.AttestationsRemoved++
	}

	return entity.Save(ctx, s.store, agg)
}

func (s *service) RecordCreated(ctx context.Context, id string) error {
	return s.apply(ctx, id, Created)
}

func (s *service) RecordRevoked(ctx context.Context, id string) error {
	return s.apply(ctx, id, Revoked)
}

func (s *service) RecordRemoved(ctx context.Context, id string) error {
	return s.apply(ctx, id, Removed)
}

type config struct {
	tolerateGaps bool
	meter        metric.Meter
}

// Option customizes the aggregation service.
type Option func(*config)

// WithHistoryGapsTolerated allows placeholders for CTypes whose creation was
// never indexed. Without it such transitions fail with ErrAggregationNotFound.
func WithHistoryGapsTolerated(tolerate bool) Option {
	return func(c *config) {
		c.tolerateGaps = tolerate
	}
}

// WithMeter overrides the meter used for the placeholder counter.
func WithMeter(m metric.Meter) Option {
	return func(c *config) {
		c.meter = m
	}
}

// New returns an aggregation service persisting through store.
func New(store entity.Store, opts ...Option) (*service, error) {
	cfg := config{
		meter: otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	placeholderCount, err := cfg.meter.Int64Counter("credwatch.aggregation.placeholders",
		metric.WithDescription("CType aggregations created as placeholders"),
	)
	if err != nil {
		return nil, err
	}

	return &service{
		store:            store,
		tolerateGaps:     cfg.tolerateGaps,
		placeholderCount: placeholderCount,
	}, nil
}
