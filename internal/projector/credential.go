package projector

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabapcia/credwatch/internal/aggregation"
	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/entity"
	"github.com/gabapcia/credwatch/internal/pkg/logger"
	"github.com/gabapcia/credwatch/internal/resolver"
)

// claimsOf renders the CBOR-encoded claims of a credential as hex.
func claimsOf(arg chain.Arg, ok bool) (string, error) {
	if !ok {
		return "", violation("credential without claims")
	}

	switch arg.Kind {
	case chain.KindBytes:
		return arg.Raw.String(), nil
	case chain.KindText:
		return arg.Text, nil
	default:
		return "", violation("credential claims of kind %s", arg.Kind)
	}
}

func (ec *eventContext) credentialID(i int) (string, error) {
	h, err := ec.hashArg(i)
	if err != nil {
		return "", err
	}

	ec.target = h.String()
	return ec.target, nil
}

func (p *Projector) ruling(ctx context.Context, ec *eventContext, credentialID string, nature entity.RulingNature) error {
	previous, err := p.count(ctx, entity.KindRuling, entity.Eq("credentialId", credentialID))
	if err != nil {
		return err
	}

	return entity.Save(ctx, p.store, entity.Ruling{
		ID:            fmt.Sprintf("§%d_%s", previous+1, credentialID),
		CredentialID:  credentialID,
		Nature:        nature,
		RulingBlockID: ec.blockID,
	})
}

// credential loads a public credential. One issued before the first indexed
// block is replaced by a placeholder about subject, or about the unknown
// asset DID when the event does not name the subject.
func (p *Projector) credential(ctx context.Context, ec *eventContext, id string, subject *assetDID) (entity.PublicCredential, error) {
	return reconcile(ctx, p, id, func() (entity.PublicCredential, error) {
		a := prehistoricAssetDID()
		if subject != nil {
			a = *subject
		}

		subjectID, err := p.saveAssetDID(ctx, a, subject == nil)
		if err != nil {
			return entity.PublicCredential{}, err
		}

		issuerID := chain.DIDPrefix + entity.Prehistoric
		if _, err := reconcile(ctx, p, issuerID, func() (entity.DID, error) {
			return placeholderDID(ec, issuerID), nil
		}); err != nil {
			return entity.PublicCredential{}, err
		}

		ctypeID := entity.CTypeIDPrefix + entity.Prehistoric
		if _, err := reconcile(ctx, p, ctypeID, func() (entity.CType, error) {
			return aggregation.Placeholder(ctypeID), nil
		}); err != nil {
			return entity.PublicCredential{}, err
		}

		return entity.PublicCredential{
			ID:           id,
			SubjectID:    subjectID,
			Valid:        true,
			CTypeID:      ctypeID,
			Claims:       entity.Prehistoric,
			IssuerID:     issuerID,
			Payer:        entity.Prehistoric,
			DelegationID: entity.Prehistoric,
			Placeholder:  true,
		}, nil
	})
}

// handleCredentialStored projects publicCredentials.CredentialStored
// [subject, credential id]. The credential itself is taken from the
// publicCredentials.add call whose payload hashes to the credential id.
func (p *Projector) handleCredentialStored(ctx context.Context, ec *eventContext) error {
	subjectArg, ok := ec.event.Arg(0)
	if !ok {
		return violation("event data field 0 missing")
	}

	subject, err := parseAssetDID(subjectArg)
	if err != nil {
		return err
	}

	subjectID, err := p.saveAssetDID(ctx, subject, false)
	if err != nil {
		return err
	}

	hash, err := ec.hashArg(1)
	if err != nil {
		return err
	}

	payer, err := ec.payer()
	if err != nil {
		return err
	}

	leaf, err := p.resolve(ec, resolver.AddPublicCredential, hash, nil)
	if err != nil {
		return err
	}

	if leaf.Identity == nil {
		return violation("credential was not issued by a did")
	}

	declared, ok := leaf.Payload.Field("subject")
	if !ok {
		return violation("credential without subject")
	}

	declaredSubject, err := declared.TextValue()
	if err != nil {
		return violation("credential subject: %v", err)
	}

	if !strings.EqualFold(declaredSubject, subjectID) {
		return violation("credential subject %s does not match event subject %s", declaredSubject, subjectID)
	}

	ctypeArg, ok := leaf.Payload.Field("ctypeHash")
	if !ok {
		return violation("credential without ctype hash")
	}

	ctypeHash, err := ctypeArg.Hash()
	if err != nil {
		return violation("credential ctype hash: %v", err)
	}

	claims, err := claimsOf(leaf.Payload.Field("claims"))
	if err != nil {
		return err
	}

	credential := entity.PublicCredential{
		ID:           hash.String(),
		SubjectID:    subjectID,
		Valid:        true,
		CTypeID:      entity.CTypeIDPrefix + ctypeHash.String(),
		Claims:       claims,
		IssuerID:     leaf.Identity.DID(),
		Payer:        payer,
		DelegationID: optionalID(leaf.Payload.Field("authorization")),
	}

	if err := entity.Save(ctx, p.store, credential); err != nil {
		return err
	}

	logger.Info(ctx, "public credential stored", "credential.id", credential.ID, "credential.subject", subjectID)
	return p.ruling(ctx, ec, credential.ID, entity.RulingCreation)
}

// handleCredentialRemoved projects publicCredentials.CredentialRemoved
// [subject, credential id].
func (p *Projector) handleCredentialRemoved(ctx context.Context, ec *eventContext) error {
	subjectArg, ok := ec.event.Arg(0)
	if !ok {
		return violation("event data field 0 missing")
	}

	subject, err := parseAssetDID(subjectArg)
	if err != nil {
		return err
	}

	subjectID, err := p.saveAssetDID(ctx, subject, false)
	if err != nil {
		return err
	}

	id, err := ec.credentialID(1)
	if err != nil {
		return err
	}

	credential, err := p.credential(ctx, ec, id, &subject)
	if err != nil {
		return err
	}

	if !strings.EqualFold(credential.SubjectID, subjectID) {
		return violation("credential subject %s does not match event subject %s", credential.SubjectID, subjectID)
	}

	credential.Valid = false
	if err := entity.Save(ctx, p.store, credential); err != nil {
		return err
	}

	return p.ruling(ctx, ec, id, entity.RulingRemoval)
}

func (p *Projector) setCredentialValidity(ctx context.Context, ec *eventContext, valid bool, nature entity.RulingNature) error {
	id, err := ec.credentialID(0)
	if err != nil {
		return err
	}

	credential, err := p.credential(ctx, ec, id, nil)
	if err != nil {
		return err
	}

	credential.Valid = valid
	if err := entity.Save(ctx, p.store, credential); err != nil {
		return err
	}

	return p.ruling(ctx, ec, id, nature)
}

// handleCredentialRevoked projects publicCredentials.CredentialRevoked [credential id].
func (p *Projector) handleCredentialRevoked(ctx context.Context, ec *eventContext) error {
	return p.setCredentialValidity(ctx, ec, false, entity.RulingRevocation)
}

// handleCredentialUnrevoked projects publicCredentials.CredentialUnrevoked [credential id].
func (p *Projector) handleCredentialUnrevoked(ctx context.Context, ec *eventContext) error {
	return p.setCredentialValidity(ctx, ec, true, entity.RulingRestoration)
}

// handleCredentialDepositOwnerChanged projects
// publicCredentials.DepositOwnerChanged [credential id, old owner, new owner].
func (p *Projector) handleCredentialDepositOwnerChanged(ctx context.Context, ec *eventContext) error {
	id, err := ec.credentialID(0)
	if err != nil {
		return err
	}

	to, err := ec.accountArg(2)
	if err != nil {
		return err
	}

	credential, err := p.credential(ctx, ec, id, nil)
	if err != nil {
		return err
	}

	credential.Payer = to.String()
	return entity.Save(ctx, p.store, credential)
}
