package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gabapcia/credwatch/internal/canonhash"
	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/pkg/types"
	"github.com/gabapcia/credwatch/internal/resolver"

	"github.com/urfave/cli/v3"
)

var (
	// ErrExtrinsicNotFound is returned when the block has no extrinsic at
	// the requested index.
	ErrExtrinsicNotFound = errors.New("extrinsic not found")

	// ErrUnknownLeafKind is returned for a --kind other than ctype,
	// attestation or credential.
	ErrUnknownLeafKind = errors.New("unknown leaf kind")
)

var leafKinds = map[string]resolver.LeafKind{
	"ctype":       resolver.AddCType,
	"attestation": resolver.AddAttestation,
	"credential":  resolver.AddPublicCredential,
}

// resolvedLeaf is the printed form of a resolved leaf.
type resolvedLeaf struct {
	Kind     string      `json:"kind"`
	Call     string      `json:"call"`
	Path     []string    `json:"path"`
	Identity string      `json:"identity,omitempty"`
	Payload  types.Bytes `json:"payload"`
}

// resolveCallCommand returns the command printing the leaf call that an
// event hash resolves to inside an extrinsic.
//
// Usage example:
//
//	credwatch resolve --height 4200000 --extrinsic 2 --kind attestation --hash 0x...
func resolveCallCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:        "resolve",
		Description: "Fetches a block and prints the leaf call of an extrinsic matching the given hash.",
		Usage:       "Resolves an event hash against its extrinsic. Must provide --height, --extrinsic, --kind and --hash.",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:     "height",
				Usage:    "Block height",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "extrinsic",
				Usage:    "Extrinsic index within the block",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "kind",
				Usage:    "Leaf kind: ctype, attestation or credential",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "hash",
				Usage:    "0x-prefixed hash carried by the event",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "identity",
				Usage: "SS58 address already known to authorize the call",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			target, err := parseTarget(c.String("kind"), c.String("hash"), c.String("identity"))
			if err != nil {
				return err
			}

			block, err := app.Blockchain.FetchBlockByHeight(ctx, types.HexFromUint64(c.Uint64("height")))
			if err != nil {
				return err
			}

			index := int(c.Int("extrinsic"))
			ext, ok := findExtrinsic(block, index)
			if !ok {
				return fmt.Errorf("%w: %d in block %d", ErrExtrinsicNotFound, index, block.Height)
			}

			leaf, err := app.Resolver.Resolve(ext.Call, target)
			if err != nil {
				return err
			}

			out := resolvedLeaf{
				Kind:    target.Kind.String(),
				Call:    leaf.Call.Key().String(),
				Path:    leaf.Path,
				Payload: leaf.Payload.Raw,
			}
			if leaf.Identity != nil {
				out.Identity = leaf.Identity.String()
			}

			enc := json.NewEncoder(c.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
}

func parseTarget(kind, hash, identity string) (resolver.Target, error) {
	leafKind, ok := leafKinds[kind]
	if !ok {
		return resolver.Target{}, fmt.Errorf("%w: %q", ErrUnknownLeafKind, kind)
	}

	h, err := canonhash.ParseHash(hash)
	if err != nil {
		return resolver.Target{}, err
	}

	target := resolver.Target{Hash: h, Kind: leafKind}
	if identity != "" {
		id, err := chain.ParseAccountID(identity)
		if err != nil {
			return resolver.Target{}, err
		}
		target.Identity = &id
	}

	return target, nil
}

func findExtrinsic(block chain.Block, index int) (chain.Extrinsic, bool) {
	for _, ext := range block.Extrinsics {
		if ext.Index == index {
			return ext, true
		}
	}

	return chain.Extrinsic{}, false
}
