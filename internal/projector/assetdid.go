package projector

import (
	"context"
	"errors"
	"strings"

	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/entity"
)

// AssetDIDPrefix is the method prefix of asset DIDs.
const AssetDIDPrefix = "did:asset:"

type assetDID struct {
	chain entity.Chain
	asset entity.Asset
}

func (a assetDID) uri() string {
	return AssetDIDPrefix + a.chain.ID + "." + a.asset.ID
}

func newAssetDID(chainNS, chainRef, assetNS, assetRef, assetID string) assetDID {
	assetComponent := assetNS + ":" + assetRef
	if assetID != "" {
		assetComponent += ":" + assetID
	}

	return assetDID{
		chain: entity.Chain{
			ID:        chainNS + ":" + chainRef,
			Namespace: chainNS,
			Reference: chainRef,
		},
		asset: entity.Asset{
			ID:         assetComponent,
			Namespace:  assetNS,
			Reference:  assetRef,
			Identifier: assetID,
		},
	}
}

// prehistoricAssetDID is the subject of public credentials whose subject
// is unknown.
func prehistoricAssetDID() assetDID {
	return assetDID{
		chain: entity.Chain{ID: entity.Prehistoric, Namespace: entity.Prehistoric, Reference: entity.Prehistoric},
		asset: entity.Asset{ID: entity.Prehistoric, Namespace: entity.Prehistoric, Reference: entity.Prehistoric},
	}
}

// parseAssetDID reads the subject of a public credential event, either as a
// did:asset URI or as the decoded {chainId: {ns: ref}, assetId: {ns: [ref, id?]}} record.
func parseAssetDID(arg chain.Arg) (assetDID, error) {
	switch arg.Kind {
	case chain.KindText:
		return parseAssetDIDURI(arg.Text)
	case chain.KindRecord:
	default:
		return assetDID{}, violation("asset did of kind %s", arg.Kind)
	}

	chainID, ok := arg.Field("chainId")
	if !ok || chainID.Kind != chain.KindRecord || len(chainID.Fields) != 1 {
		return assetDID{}, violation("asset did without a chain id")
	}

	assetID, ok := arg.Field("assetId")
	if !ok || assetID.Kind != chain.KindRecord || len(assetID.Fields) != 1 {
		return assetDID{}, violation("asset did without an asset id")
	}

	chainRef, err := chainID.Fields[0].TextValue()
	if err != nil {
		return assetDID{}, violation("asset did chain reference: %v", err)
	}

	asset := assetID.Fields[0]
	parts := []chain.Arg{asset}
	if asset.Kind == chain.KindList {
		parts = asset.Fields
	}
	if len(parts) == 0 || len(parts) > 2 {
		return assetDID{}, violation("asset did asset id has %d parts", len(parts))
	}

	values := make([]string, 2)
	for i, part := range parts {
		if values[i], err = part.TextValue(); err != nil {
			return assetDID{}, violation("asset did asset id: %v", err)
		}
	}

	return newAssetDID(chainID.Fields[0].Name, chainRef, asset.Name, values[0], values[1]), nil
}

func parseAssetDIDURI(uri string) (assetDID, error) {
	rest, ok := strings.CutPrefix(uri, AssetDIDPrefix)
	if !ok {
		return assetDID{}, violation("%q is not an asset did", uri)
	}

	chainComponent, assetComponent, ok := strings.Cut(rest, ".")
	if !ok {
		return assetDID{}, violation("%q has no asset component", uri)
	}

	chainParts := strings.SplitN(chainComponent, ":", 2)
	assetParts := strings.SplitN(assetComponent, ":", 3)
	if len(chainParts) != 2 || len(assetParts) < 2 {
		return assetDID{}, violation("%q is not a CAIP asset did", uri)
	}

	var identifier string
	if len(assetParts) == 3 {
		identifier = assetParts[2]
	}

	return newAssetDID(chainParts[0], chainParts[1], assetParts[0], assetParts[1], identifier), nil
}

// saveAssetDID stores the asset DID and its chain and asset components the
// first time they are seen, and returns its URI.
func (p *Projector) saveAssetDID(ctx context.Context, a assetDID, placeholder bool) (string, error) {
	uri := a.uri()

	_, err := entity.Load[entity.AssetDID](ctx, p.store, uri)
	switch {
	case err == nil:
		return uri, nil
	case !errors.Is(err, entity.ErrEntityNotFound):
		return "", err
	}

	for _, e := range []entity.Entity{
		a.chain,
		a.asset,
		entity.AssetDID{ID: uri, ChainID: a.chain.ID, AssetID: a.asset.ID, Placeholder: placeholder},
	} {
		if err := entity.Save(ctx, p.store, e); err != nil {
			return "", err
		}
	}

	if placeholder {
		p.notePlaceholder(ctx, entity.KindAssetDID, uri)
	}

	return uri, nil
}
