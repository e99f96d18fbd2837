package projector

import (
	"context"
	"errors"

	"github.com/gabapcia/credwatch/internal/entity"
	"github.com/gabapcia/credwatch/internal/pkg/logger"
	"github.com/gabapcia/credwatch/internal/resolver"
)

// handleCTypeCreated projects ctype.CTypeCreated [author, ctype hash]. The
// definition is taken from the ctype.add call that hashes to the event hash.
func (p *Projector) handleCTypeCreated(ctx context.Context, ec *eventContext) error {
	author, err := ec.accountArg(0)
	if err != nil {
		return err
	}

	hash, err := ec.hashArg(1)
	if err != nil {
		return err
	}

	leaf, err := p.resolve(ec, resolver.AddCType, hash, &author)
	if err != nil {
		return err
	}

	definition, ok := resolver.CTypeDefinition(leaf.Payload)
	if !ok {
		return violation("ctype definition of kind %s", leaf.Payload.Kind)
	}

	ctype := entity.CType{
		ID:                  entity.CTypeIDPrefix + hash.String(),
		Author:              author.DID(),
		RegistrationBlockID: ec.blockID,
		Definition:          string(definition),
	}

	logger.Info(ctx, "ctype registered", "ctype.id", ctype.ID, "ctype.author", ctype.Author)
	return p.aggregations.Define(ctx, ctype)
}

// ensurePrehistoricCType makes sure the aggregation records without a known
// CType point to exists. It counts as one creation the first time.
func (p *Projector) ensurePrehistoricCType(ctx context.Context) (string, error) {
	id := entity.CTypeIDPrefix + entity.Prehistoric

	_, err := entity.Load[entity.CType](ctx, p.store, id)
	switch {
	case err == nil:
		return id, nil
	case !errors.Is(err, entity.ErrEntityNotFound):
		return "", err
	case !p.tolerateGaps:
		return "", violation("ctype %q not found", id)
	}

	return id, p.aggregations.RecordCreated(ctx, id)
}
