package projector

import (
	"context"
	"errors"

	"github.com/gabapcia/credwatch/internal/entity"
	"github.com/gabapcia/credwatch/internal/pkg/logger"
)

func placeholderDID(ec *eventContext, id string) entity.DID {
	return entity.DID{
		ID:              id,
		Payer:           entity.Prehistoric,
		CreationBlockID: ec.blockID,
		Active:          true,
		Placeholder:     true,
	}
}

// handleDidCreated projects did.DidCreated [payer, did identifier].
func (p *Projector) handleDidCreated(ctx context.Context, ec *eventContext) error {
	payer, err := ec.accountArg(0)
	if err != nil {
		return err
	}

	identifier, err := ec.accountArg(1)
	if err != nil {
		return err
	}

	id := identifier.DID()
	ec.target = id

	existing, err := entity.Load[entity.DID](ctx, p.store, id)
	switch {
	case err == nil && !existing.Placeholder:
		return violation("did %s was already created at block %s", id, existing.CreationBlockID)
	case err != nil && !errors.Is(err, entity.ErrEntityNotFound):
		return err
	}

	did := entity.DID{
		ID:              id,
		Payer:           payer.String(),
		CreationBlockID: ec.blockID,
		Active:          true,
		Web3NameID:      existing.Web3NameID,
	}

	logger.Info(ctx, "did created", "did.id", did.ID)
	return entity.Save(ctx, p.store, did)
}

// handleDidDeleted projects did.DidDeleted [did identifier].
func (p *Projector) handleDidDeleted(ctx context.Context, ec *eventContext) error {
	identifier, err := ec.accountArg(0)
	if err != nil {
		return err
	}

	id := identifier.DID()
	ec.target = id

	did, err := reconcile(ctx, p, id, func() (entity.DID, error) {
		return placeholderDID(ec, id), nil
	})
	if err != nil {
		return err
	}

	if !did.Active {
		return violation("did %s was already deleted at block %s", id, did.DeletionBlockID)
	}

	did.Active = false
	did.DeletionBlockID = ec.blockID
	return entity.Save(ctx, p.store, did)
}

// handleDidDepositOwnerChanged projects did.DepositOwnerChanged
// [did identifier, old owner, new owner].
func (p *Projector) handleDidDepositOwnerChanged(ctx context.Context, ec *eventContext) error {
	identifier, err := ec.accountArg(0)
	if err != nil {
		return err
	}

	to, err := ec.accountArg(2)
	if err != nil {
		return err
	}

	id := identifier.DID()
	ec.target = id

	did, err := reconcile(ctx, p, id, func() (entity.DID, error) {
		return placeholderDID(ec, id), nil
	})
	if err != nil {
		return err
	}

	did.Payer = to.String()
	return entity.Save(ctx, p.store, did)
}
