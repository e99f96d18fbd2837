package projector

import (
	"context"
	"fmt"

	"github.com/gabapcia/credwatch/internal/canonhash"
	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/entity"
	"github.com/gabapcia/credwatch/internal/pkg/logger"
	"github.com/gabapcia/credwatch/internal/resolver"
)

// optionalID renders an optional identifier field, such as a delegation or
// authorization id, as hex. Enum-wrapped ids carry the value in their only field.
func optionalID(arg chain.Arg, ok bool) string {
	if !ok {
		return ""
	}

	switch arg.Kind {
	case chain.KindBytes:
		if len(arg.Raw) == 0 {
			return ""
		}
		return arg.Raw.String()
	case chain.KindText:
		return arg.Text
	case chain.KindRecord:
		if len(arg.Fields) == 1 {
			return optionalID(arg.Fields[0], true)
		}
	}

	return ""
}

// nextAttestationID numbers attestations by their order of creation within a block.
func (p *Projector) nextAttestationID(ctx context.Context, blockID string) (string, error) {
	n, err := p.count(ctx, entity.KindAttestation, entity.Eq("creationBlockId", blockID))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d", blockID, n), nil
}

// handleAttestationCreated projects attestation.AttestationCreated
// [attester, claim hash, ctype hash, delegation?].
func (p *Projector) handleAttestationCreated(ctx context.Context, ec *eventContext) error {
	attester, err := ec.accountArg(0)
	if err != nil {
		return err
	}

	claimHash, err := ec.hashArg(1)
	if err != nil {
		return err
	}

	ctypeHash, err := ec.hashArg(2)
	if err != nil {
		return err
	}

	payer, err := ec.payer()
	if err != nil {
		return err
	}

	leaf, err := p.resolve(ec, resolver.AddAttestation, claimHash, &attester)
	if err != nil {
		return err
	}

	arg, ok := leaf.Call.Arg(1)
	if !ok {
		return violation("attestation.add has no ctype argument")
	}
	named, err := arg.Hash()
	if err != nil {
		return violation("attestation.add has an unreadable ctype argument: %v", err)
	}
	if named != ctypeHash {
		return violation("attestation.add names ctype %s, event names %s", named, ctypeHash)
	}

	issuer, err := reconcile(ctx, p, attester.DID(), func() (entity.DID, error) {
		return placeholderDID(ec, attester.DID()), nil
	})
	if err != nil {
		return err
	}

	standing, err := p.count(ctx, entity.KindAttestation,
		entity.Eq("claimHash", claimHash.String()),
		entity.Eq("removed", false),
	)
	if err != nil {
		return err
	}
	if standing > 0 {
		return violation("claim hash %s already has an attestation that was not removed", claimHash)
	}

	id, err := p.nextAttestationID(ctx, ec.blockID)
	if err != nil {
		return err
	}

	attestation := entity.Attestation{
		ID:              id,
		ClaimHash:       claimHash.String(),
		CTypeID:         entity.CTypeIDPrefix + ctypeHash.String(),
		IssuerID:        issuer.ID,
		Payer:           payer,
		Valid:           true,
		CreationBlockID: ec.blockID,
		DelegationID:    optionalID(ec.event.Arg(3)),
	}

	if err := entity.Save(ctx, p.store, attestation); err != nil {
		return err
	}

	logger.Info(ctx, "attestation created", "attestation.id", attestation.ID, "ctype.id", attestation.CTypeID)
	return p.aggregations.RecordCreated(ctx, attestation.CTypeID)
}

// currentAttestation returns the one attestation of claimHash matching
// state. Without any, a placeholder issued by issuer is created when history
// gaps are tolerated.
func (p *Projector) currentAttestation(ctx context.Context, ec *eventContext, claimHash canonhash.Hash, state entity.Predicate, issuer string) (entity.Attestation, error) {
	ec.target = claimHash.String()

	found, err := entity.Query[entity.Attestation](ctx, p.store, entity.KindAttestation,
		[]entity.Predicate{entity.Eq("claimHash", claimHash.String()), state},
		entity.QueryOptions{Limit: 2},
	)
	if err != nil {
		return entity.Attestation{}, err
	}

	switch {
	case len(found) == 1:
		return found[0], nil
	case len(found) > 1:
		return entity.Attestation{}, violation("more than one attestation of claim hash %s has %s=%v", claimHash, state.Field, state.Value)
	case !p.tolerateGaps:
		return entity.Attestation{}, violation("no attestation of claim hash %s has %s=%v", claimHash, state.Field, state.Value)
	}

	return p.prehistoricAttestation(ctx, ec, claimHash, issuer)
}

// prehistoricAttestation stands in for an attestation created before the
// first indexed block. It is valid until the event being projected says
// otherwise.
func (p *Projector) prehistoricAttestation(ctx context.Context, ec *eventContext, claimHash canonhash.Hash, issuer string) (entity.Attestation, error) {
	did, err := reconcile(ctx, p, issuer, func() (entity.DID, error) {
		return placeholderDID(ec, issuer), nil
	})
	if err != nil {
		return entity.Attestation{}, err
	}

	id, err := p.nextAttestationID(ctx, ec.blockID)
	if err != nil {
		return entity.Attestation{}, err
	}

	attestation := entity.Attestation{
		ID:              id,
		ClaimHash:       claimHash.String(),
		CTypeID:         entity.CTypeIDPrefix + entity.Prehistoric,
		IssuerID:        did.ID,
		Payer:           entity.Prehistoric,
		Valid:           true,
		CreationBlockID: ec.blockID,
		Placeholder:     true,
	}

	if err := entity.Save(ctx, p.store, attestation); err != nil {
		return entity.Attestation{}, err
	}

	p.notePlaceholder(ctx, entity.KindAttestation, attestation.ID)

	if _, err := p.ensurePrehistoricCType(ctx); err != nil {
		return entity.Attestation{}, err
	}

	return attestation, nil
}

// handleAttestationRevoked projects attestation.AttestationRevoked [attester, claim hash].
func (p *Projector) handleAttestationRevoked(ctx context.Context, ec *eventContext) error {
	attester, err := ec.accountArg(0)
	if err != nil {
		return err
	}

	claimHash, err := ec.hashArg(1)
	if err != nil {
		return err
	}

	attestation, err := p.currentAttestation(ctx, ec, claimHash, entity.Eq("valid", true), attester.DID())
	if err != nil {
		return err
	}

	attestation.Valid = false
	attestation.RevocationBlockID = ec.blockID
	if err := entity.Save(ctx, p.store, attestation); err != nil {
		return err
	}

	return p.aggregations.RecordRevoked(ctx, attestation.CTypeID)
}

// handleAttestationRemoved projects attestation.AttestationRemoved
// [attester, claim hash] and attestation.AttestationDepositReclaimed
// [account, claim hash]. The latter does not name the attester.
func (p *Projector) handleAttestationRemoved(ctx context.Context, ec *eventContext) error {
	issuer := chain.DIDPrefix + entity.Prehistoric
	if ec.event.Method == "AttestationRemoved" {
		attester, err := ec.accountArg(0)
		if err != nil {
			return err
		}
		issuer = attester.DID()
	}

	claimHash, err := ec.hashArg(1)
	if err != nil {
		return err
	}

	attestation, err := p.currentAttestation(ctx, ec, claimHash, entity.Eq("removed", false), issuer)
	if err != nil {
		return err
	}

	attestation.Valid = false
	attestation.Removed = true
	attestation.RemovalBlockID = ec.blockID
	if err := entity.Save(ctx, p.store, attestation); err != nil {
		return err
	}

	return p.aggregations.RecordRemoved(ctx, attestation.CTypeID)
}

// handleAttestationDepositOwnerChanged projects
// attestation.DepositOwnerChanged [claim hash, old owner, new owner].
func (p *Projector) handleAttestationDepositOwnerChanged(ctx context.Context, ec *eventContext) error {
	claimHash, err := ec.hashArg(0)
	if err != nil {
		return err
	}

	from, err := ec.accountArg(1)
	if err != nil {
		return err
	}

	to, err := ec.accountArg(2)
	if err != nil {
		return err
	}

	attestation, err := p.currentAttestation(ctx, ec, claimHash, entity.Eq("removed", false), chain.DIDPrefix+entity.Prehistoric)
	if err != nil {
		return err
	}

	if attestation.Payer != from.String() && attestation.Payer != entity.Prehistoric {
		logger.Warn(ctx, "deposit owner differs from the recorded payer",
			"attestation.id", attestation.ID,
			"payer.recorded", attestation.Payer,
			"payer.previous", from.String(),
		)
	}

	attestation.Payer = to.String()
	return entity.Save(ctx, p.store, attestation)
}
