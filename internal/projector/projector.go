// Package projector turns chain events into entity records.
//
// Each supported event kind has one handler, looked up by (pallet, method).
// Handlers read the event data, resolve the payload of the emitting
// extrinsic when the event only carries a hash, check the result against
// the records already stored and save the resulting mutations. Events must
// be projected one at a time, in block and event order.
package projector

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/gabapcia/credwatch/internal/aggregation"
	"github.com/gabapcia/credwatch/internal/canonhash"
	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/entity"
	"github.com/gabapcia/credwatch/internal/pkg/logger"
	"github.com/gabapcia/credwatch/internal/resolver"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/gabapcia/credwatch/internal/projector"

// Resolver locates the leaf call an event refers to.
type Resolver interface {
	Resolve(root chain.Call, target resolver.Target) (resolver.Leaf, error)
}

type handlerFunc func(ctx context.Context, ec *eventContext) error

// Projector projects blocks into an entity store.
type Projector struct {
	store        entity.Store
	resolver     Resolver
	aggregations aggregation.Service
	tolerateGaps bool
	handlers     map[chain.CallKey]handlerFunc

	eventCount       metric.Int64Counter
	placeholderCount metric.Int64Counter
	fatalCount       metric.Int64Counter
}

// eventContext carries the event being projected and what is known about
// it so far, for diagnostics.
type eventContext struct {
	block   *chain.Block
	event   chain.Event
	blockID string
	target  string
}

func (ec *eventContext) hashArg(i int) (canonhash.Hash, error) {
	arg, ok := ec.event.Arg(i)
	if !ok {
		return canonhash.Hash{}, violation("event data field %d missing", i)
	}

	h, err := arg.Hash()
	if err != nil {
		return canonhash.Hash{}, violation("event data field %d: %v", i, err)
	}

	return h, nil
}

func (ec *eventContext) accountArg(i int) (chain.AccountID, error) {
	arg, ok := ec.event.Arg(i)
	if !ok {
		return chain.AccountID{}, violation("event data field %d missing", i)
	}

	id, err := arg.AccountID()
	if err != nil {
		return chain.AccountID{}, violation("event data field %d: %v", i, err)
	}

	return id, nil
}

func (ec *eventContext) textArg(i int) (string, error) {
	arg, ok := ec.event.Arg(i)
	if !ok {
		return "", violation("event data field %d missing", i)
	}

	s, err := arg.TextValue()
	if err != nil {
		return "", violation("event data field %d: %v", i, err)
	}

	return s, nil
}

func (ec *eventContext) extrinsic() (chain.Extrinsic, error) {
	ext, ok := ec.block.ExtrinsicOf(ec.event)
	if !ok {
		return chain.Extrinsic{}, violation("event was not emitted by an extrinsic of the block")
	}

	return ext, nil
}

// payer returns the address of the extrinsic signer, who pays the deposits.
func (ec *eventContext) payer() (string, error) {
	ext, err := ec.extrinsic()
	if err != nil {
		return "", err
	}

	if ext.Signer == nil {
		return "", violation("extrinsic %d is unsigned", ext.Index)
	}

	return ext.Signer.String(), nil
}

func (ec *eventContext) shape() string {
	if ext, ok := ec.block.ExtrinsicOf(ec.event); ok {
		return ext.Call.Shape()
	}

	return ""
}

// Project projects every supported event of block, in event index order.
// It stops at the first error; a *FatalError means the indexer must halt.
func (p *Projector) Project(ctx context.Context, block chain.Block) error {
	events := slices.Clone(block.Events)
	slices.SortStableFunc(events, func(a, b chain.Event) int {
		return a.Index - b.Index
	})

	for _, ev := range events {
		if err := p.projectEvent(ctx, &block, ev); err != nil {
			return err
		}
	}

	return nil
}

// Supports reports whether events of key are projected.
func (p *Projector) Supports(key chain.CallKey) bool {
	_, ok := p.handlers[key]
	return ok
}

func (p *Projector) projectEvent(ctx context.Context, block *chain.Block, ev chain.Event) error {
	handle, ok := p.handlers[ev.Key()]
	if !ok {
		return nil
	}

	ctx = logger.Derive(ctx, "event.index", ev.Index, "event.kind", ev.Key().String())
	ec := &eventContext{block: block, event: ev}

	err := p.saveBlock(ctx, ec)
	if err == nil {
		err = handle(ctx, ec)
	}
	if err != nil {
		return p.fail(ctx, ec, err)
	}

	p.eventCount.Add(ctx, 1, metric.WithAttributes(attribute.String("event", ev.Key().String())))
	logger.Debug(ctx, "event projected")
	return nil
}

func (p *Projector) fail(ctx context.Context, ec *eventContext, err error) error {
	if errors.Is(err, aggregation.ErrAggregationNotFound) || errors.Is(err, aggregation.ErrMalformedID) {
		err = fmt.Errorf("%w: %w", ErrConsistencyViolation, err)
	}

	if !errors.Is(err, ErrConsistencyViolation) && !errors.Is(err, ErrResolutionFailed) {
		return fmt.Errorf("projecting %s at block %d: %w", ec.event.Key(), ec.block.Height, err)
	}

	fe := &FatalError{
		Height:    ec.block.Height,
		Extrinsic: ec.event.ExtrinsicIndex,
		Event:     fmt.Sprintf("%s#%d", ec.event.Key(), ec.event.Index),
		Target:    ec.target,
		Shape:     ec.shape(),
		Err:       err,
	}

	p.fatalCount.Add(ctx, 1, metric.WithAttributes(attribute.String("event", ec.event.Key().String())))
	logger.Error(ctx, "fatal projection error",
		"extrinsic.index", fe.Extrinsic,
		"target", fe.Target,
		"call.shape", fe.Shape,
		"error", err,
	)

	return fe
}

// saveBlock stores the block of ec the first time one of its events is
// projected and checks that later sightings agree with it.
func (p *Projector) saveBlock(ctx context.Context, ec *eventContext) error {
	id := entity.BlockID(ec.block.Height)

	existing, err := entity.Load[entity.Block](ctx, p.store, id)
	switch {
	case err == nil:
		if existing.Hash != ec.block.Hash.String() || !existing.Timestamp.Equal(ec.block.Timestamp) {
			return violation("block %s was stored with hash %s at %s, now seen as %s at %s",
				id, existing.Hash, existing.Timestamp, ec.block.Hash, ec.block.Timestamp)
		}
	case errors.Is(err, entity.ErrEntityNotFound):
		if ec.block.Timestamp.IsZero() {
			return violation("block %s has no timestamp", id)
		}

		err = entity.Save(ctx, p.store, entity.Block{
			ID:        id,
			Hash:      ec.block.Hash.String(),
			Timestamp: ec.block.Timestamp.UTC(),
		})
		if err != nil {
			return err
		}
	default:
		return err
	}

	ec.blockID = id
	return nil
}

// resolve finds the leaf call of the extrinsic that emitted the event.
func (p *Projector) resolve(ec *eventContext, kind resolver.LeafKind, hash canonhash.Hash, identity *chain.AccountID) (resolver.Leaf, error) {
	ec.target = hash.String()

	ext, err := ec.extrinsic()
	if err != nil {
		return resolver.Leaf{}, err
	}

	leaf, err := p.resolver.Resolve(ext.Call, resolver.Target{Hash: hash, Kind: kind, Identity: identity})
	if err != nil {
		return resolver.Leaf{}, fmt.Errorf("%w: %w", ErrResolutionFailed, err)
	}

	return leaf, nil
}

// reconcile loads the record stored under id. When it is missing and the
// indexer started after the record could have been created, the record
// returned by placeholder is saved in its place and a warning is logged;
// otherwise the absence is a consistency violation.
func reconcile[T entity.Entity](ctx context.Context, p *Projector, id string, placeholder func() (T, error)) (T, error) {
	v, err := entity.Load[T](ctx, p.store, id)
	if err == nil || !errors.Is(err, entity.ErrEntityNotFound) {
		return v, err
	}

	kind := v.EntityKind()
	if !p.tolerateGaps {
		return v, violation("%s %q not found", kind, id)
	}

	v, err = placeholder()
	if err != nil {
		return v, err
	}

	if err := entity.Save(ctx, p.store, v); err != nil {
		return v, err
	}

	p.notePlaceholder(ctx, kind, id)
	return v, nil
}

func (p *Projector) notePlaceholder(ctx context.Context, kind entity.Kind, id string) {
	logger.Warn(ctx, "created placeholder for a record that predates the first indexed block",
		"entity.kind", kind,
		"entity.id", id,
	)
	p.placeholderCount.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}

// count returns how many records of kind match predicates, to derive the
// ordinal of the next record of a series.
func (p *Projector) count(ctx context.Context, kind entity.Kind, predicates ...entity.Predicate) (int, error) {
	return entity.Count(ctx, p.store, kind, predicates...)
}

func (p *Projector) registerDefaults() {
	p.handlers = map[chain.CallKey]handlerFunc{
		{Pallet: "ctype", Method: "CTypeCreated"}: p.handleCTypeCreated,

		{Pallet: "attestation", Method: "AttestationCreated"}:          p.handleAttestationCreated,
		{Pallet: "attestation", Method: "AttestationRevoked"}:          p.handleAttestationRevoked,
		{Pallet: "attestation", Method: "AttestationRemoved"}:          p.handleAttestationRemoved,
		{Pallet: "attestation", Method: "AttestationDepositReclaimed"}: p.handleAttestationRemoved,
		{Pallet: "attestation", Method: "DepositOwnerChanged"}:         p.handleAttestationDepositOwnerChanged,

		{Pallet: "did", Method: "DidCreated"}:          p.handleDidCreated,
		{Pallet: "did", Method: "DidDeleted"}:          p.handleDidDeleted,
		{Pallet: "did", Method: "DepositOwnerChanged"}: p.handleDidDepositOwnerChanged,

		{Pallet: "web3Names", Method: "Web3NameClaimed"}:  p.handleWeb3NameClaimed,
		{Pallet: "web3Names", Method: "Web3NameReleased"}: p.handleWeb3NameReleased,
		{Pallet: "web3Names", Method: "Web3NameBanned"}:   p.handleWeb3NameBanned,
		{Pallet: "web3Names", Method: "Web3NameUnbanned"}: p.handleWeb3NameUnbanned,

		{Pallet: "publicCredentials", Method: "CredentialStored"}:    p.handleCredentialStored,
		{Pallet: "publicCredentials", Method: "CredentialRemoved"}:   p.handleCredentialRemoved,
		{Pallet: "publicCredentials", Method: "CredentialRevoked"}:   p.handleCredentialRevoked,
		{Pallet: "publicCredentials", Method: "CredentialUnrevoked"}: p.handleCredentialUnrevoked,
		{Pallet: "publicCredentials", Method: "DepositOwnerChanged"}: p.handleCredentialDepositOwnerChanged,
	}
}

type config struct {
	tolerateGaps bool
	meter        metric.Meter
}

// Option customizes a Projector.
type Option func(*config)

// WithHistoryGapsTolerated lets handlers create placeholder records for
// entities whose creation happened before the first indexed block.
func WithHistoryGapsTolerated(tolerate bool) Option {
	return func(c *config) {
		c.tolerateGaps = tolerate
	}
}

// WithMeter overrides the meter used for the projection counters.
func WithMeter(m metric.Meter) Option {
	return func(c *config) {
		c.meter = m
	}
}

// New returns a Projector writing to store. The aggregation service must
// share the same store.
func New(store entity.Store, r Resolver, aggregations aggregation.Service, opts ...Option) (*Projector, error) {
	cfg := config{
		meter: otel.Meter(instrumentationName),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &Projector{
		store:        store,
		resolver:     r,
		aggregations: aggregations,
		tolerateGaps: cfg.tolerateGaps,
	}

	var err error
	if p.eventCount, err = cfg.meter.Int64Counter("credwatch.projector.events",
		metric.WithDescription("Chain events projected into the entity store"),
	); err != nil {
		return nil, err
	}

	if p.placeholderCount, err = cfg.meter.Int64Counter("credwatch.projector.placeholders",
		metric.WithDescription("Placeholder records created for history before the first indexed block"),
	); err != nil {
		return nil, err
	}

	if p.fatalCount, err = cfg.meter.Int64Counter("credwatch.projector.fatal_errors",
		metric.WithDescription("Events whose projection halted the indexer"),
	); err != nil {
		return nil, err
	}

	p.registerDefaults()
	return p, nil
}
