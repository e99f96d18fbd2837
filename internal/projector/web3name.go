package projector

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/credwatch/internal/entity"
	"github.com/gabapcia/credwatch/internal/pkg/logger"
)

// Web3NamePrefix prefixes a claimed name to form its id.
const Web3NamePrefix = "w3n:"

func (ec *eventContext) nameArg(i int) (string, error) {
	name, err := ec.textArg(i)
	if err != nil {
		return "", err
	}

	if name == "" {
		return "", violation("empty web3 name")
	}

	id := Web3NamePrefix + name
	ec.target = id
	return id, nil
}

func (p *Projector) ownerDID(ctx context.Context, ec *eventContext) (entity.DID, error) {
	owner, err := ec.accountArg(0)
	if err != nil {
		return entity.DID{}, err
	}

	id := owner.DID()
	return reconcile(ctx, p, id, func() (entity.DID, error) {
		return placeholderDID(ec, id), nil
	})
}

// loadOrCreateName returns the name record, creating it unbanned when the
// name was never claimed nor sanctioned before.
func (p *Projector) loadOrCreateName(ctx context.Context, id string) (entity.Web3Name, error) {
	name, err := entity.Load[entity.Web3Name](ctx, p.store, id)
	if errors.Is(err, entity.ErrEntityNotFound) {
		return entity.Web3Name{ID: id}, nil
	}

	return name, err
}

// handleWeb3NameClaimed projects web3Names.Web3NameClaimed [owner, name].
func (p *Projector) handleWeb3NameClaimed(ctx context.Context, ec *eventContext) error {
	nameID, err := ec.nameArg(1)
	if err != nil {
		return err
	}

	did, err := p.ownerDID(ctx, ec)
	if err != nil {
		return err
	}

	name, err := p.loadOrCreateName(ctx, nameID)
	if err != nil {
		return err
	}

	held, err := p.count(ctx, entity.KindOwnership, entity.Eq("nameId", nameID), entity.Eq("released", false))
	if err != nil {
		return err
	}
	if held > 0 {
		return violation("%s is claimed while still held", nameID)
	}

	previous, err := p.count(ctx, entity.KindOwnership, entity.Eq("nameId", nameID))
	if err != nil {
		return err
	}

	did.Web3NameID = nameID
	if err := entity.Save(ctx, p.store, did); err != nil {
		return err
	}

	ownership := entity.Ownership{
		ID:           fmt.Sprintf("#%d_%s", previous+1, nameID),
		NameID:       nameID,
		BearerID:     did.ID,
		ClaimBlockID: ec.blockID,
	}
	if err := entity.Save(ctx, p.store, ownership); err != nil {
		return err
	}

	logger.Info(ctx, "web3 name claimed", "web3name.id", nameID, "did.id", did.ID)
	return entity.Save(ctx, p.store, name)
}

// handleWeb3NameReleased projects web3Names.Web3NameReleased [owner, name].
func (p *Projector) handleWeb3NameReleased(ctx context.Context, ec *eventContext) error {
	nameID, err := ec.nameArg(1)
	if err != nil {
		return err
	}

	did, err := p.ownerDID(ctx, ec)
	if err != nil {
		return err
	}

	if _, err := reconcile(ctx, p, nameID, func() (entity.Web3Name, error) {
		return entity.Web3Name{ID: nameID}, nil
	}); err != nil {
		return err
	}

	ownership, err := p.currentOwnership(ctx, ec, nameID, did.ID)
	if err != nil {
		return err
	}

	ownership.Released = true
	ownership.ReleaseBlockID = ec.blockID
	if err := entity.Save(ctx, p.store, ownership); err != nil {
		return err
	}

	if did.Web3NameID == nameID {
		did.Web3NameID = ""
	}
	return entity.Save(ctx, p.store, did)
}

// currentOwnership returns the ownership of nameID that was not released
// yet. It must be held by bearerID.
func (p *Projector) currentOwnership(ctx context.Context, ec *eventContext, nameID, bearerID string) (entity.Ownership, error) {
	found, err := entity.Query[entity.Ownership](ctx, p.store, entity.KindOwnership,
		[]entity.Predicate{entity.Eq("nameId", nameID), entity.Eq("released", false)},
		entity.QueryOptions{Limit: 2},
	)
	if err != nil {
		return entity.Ownership{}, err
	}

	switch {
	case len(found) == 1 && found[0].BearerID != bearerID:
		return entity.Ownership{}, violation("%s is held by %s, released by %s", nameID, found[0].BearerID, bearerID)
	case len(found) == 1:
		return found[0], nil
	case len(found) > 1:
		return entity.Ownership{}, violation("%s is held by more than one bearer", nameID)
	case !p.tolerateGaps:
		return entity.Ownership{}, violation("%s is not held by anyone", nameID)
	}

	previous, err := p.count(ctx, entity.KindOwnership, entity.Eq("nameId", nameID))
	if err != nil {
		return entity.Ownership{}, err
	}

	ownership := entity.Ownership{
		ID:           fmt.Sprintf("#%d_%s", previous+1, nameID),
		NameID:       nameID,
		BearerID:     bearerID,
		ClaimBlockID: entity.Prehistoric,
	}
	p.notePlaceholder(ctx, entity.KindOwnership, ownership.ID)

	return ownership, nil
}

func (p *Projector) sanction(ctx context.Context, ec *eventContext, nature entity.SanctionNature, banned bool) error {
	nameID, err := ec.nameArg(0)
	if err != nil {
		return err
	}

	var name entity.Web3Name
	if banned {
		// A name can be banned before anyone claims it.
		name, err = p.loadOrCreateName(ctx, nameID)
	} else {
		name, err = reconcile(ctx, p, nameID, func() (entity.Web3Name, error) {
			return entity.Web3Name{ID: nameID, Banned: true}, nil
		})
	}
	if err != nil {
		return err
	}

	if name.Banned == banned {
		return violation("%s already has banned=%t", nameID, banned)
	}

	previous, err := p.count(ctx, entity.KindSanction, entity.Eq("nameId", nameID))
	if err != nil {
		return err
	}

	if err := entity.Save(ctx, p.store, entity.Sanction{
		ID:                 fmt.Sprintf("§%d_%s", previous+1, nameID),
		NameID:             nameID,
		Nature:             nature,
		EnforcementBlockID: ec.blockID,
	}); err != nil {
		return err
	}

	name.Banned = banned
	return entity.Save(ctx, p.store, name)
}

// handleWeb3NameBanned projects web3Names.Web3NameBanned [name]. A held name
// is released by its own event, emitted before this one.
func (p *Projector) handleWeb3NameBanned(ctx context.Context, ec *eventContext) error {
	return p.sanction(ctx, ec, entity.SanctionProhibition, true)
}

// handleWeb3NameUnbanned projects web3Names.Web3NameUnbanned [name].
func (p *Projector) handleWeb3NameUnbanned(ctx context.Context, ec *eventContext) error {
	return p.sanction(ctx, ec, entity.SanctionPermission, false)
}
