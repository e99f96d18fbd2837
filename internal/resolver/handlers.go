package resolver

import (
	"fmt"
	"strings"

	"github.com/gabapcia/credwatch/internal/canonhash"
	"github.com/gabapcia/credwatch/internal/chain"
	"github.com/gabapcia/credwatch/internal/pkg/types"
)

// Call keys of the shapes registered by New.
var (
	KeyBatch          = chain.CallKey{Pallet: "utility", Method: "batch"}
	KeyBatchAll       = chain.CallKey{Pallet: "utility", Method: "batchAll"}
	KeyForceBatch     = chain.CallKey{Pallet: "utility", Method: "forceBatch"}
	KeySubmitDidCall  = chain.CallKey{Pallet: "did", Method: "submitDidCall"}
	KeyDispatchAs     = chain.CallKey{Pallet: "did", Method: "dispatchAs"}
	KeyProxy          = chain.CallKey{Pallet: "proxy", Method: "proxy"}
	KeyProxyAnnounced = chain.CallKey{Pallet: "proxy", Method: "proxyAnnounced"}
	KeyAddCType       = chain.CallKey{Pallet: "ctype", Method: "add"}
	KeyAddAttestation = chain.CallKey{Pallet: "attestation", Method: "add"}
	KeyAddCredential  = chain.CallKey{Pallet: "publicCredentials", Method: "add"}
)

func registerDefaults(r *Resolver) {
	for _, key := range []chain.CallKey{KeyBatch, KeyBatchAll, KeyForceBatch} {
		r.Register(key, resolveBatch)
	}

	r.Register(KeySubmitDidCall, resolveSubmitDidCall)
	r.Register(KeyDispatchAs, resolveDispatchAs)
	r.Register(KeyProxy, ProxyHandler(2))
	r.Register(KeyProxyAnnounced, ProxyHandler(3))

	r.Register(KeyAddCType, matchCType)
	r.Register(KeyAddAttestation, matchAttestation)
	r.Register(KeyAddCredential, matchPublicCredential)
}

func unrecognized(call chain.Call, format string, a ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrUnrecognizedShape, call.Key(), fmt.Sprintf(format, a...))
}

func nestedCall(call chain.Call, arg chain.Arg) (chain.Call, error) {
	if arg.Kind != chain.KindCall || arg.Call == nil {
		return chain.Call{}, unrecognized(call, "argument %q is %s, want call", arg.Name, arg.Kind)
	}

	return *arg.Call, nil
}

// resolveBatch walks every child of a utility batch. Children resolve
// independently; more than one match is ambiguous.
func resolveBatch(call chain.Call, c Context) ([]Leaf, error) {
	arg, ok := call.Arg(0)
	if !ok || arg.Kind != chain.KindCalls {
		return nil, unrecognized(call, "first argument must be a list of calls")
	}

	var matches []Leaf
	for i, child := range arg.Calls {
		leaves, err := c.ResolveChild(child, i)
		if err != nil {
			return nil, err
		}
		matches = append(matches, leaves...)
	}

	if len(matches) > 1 {
		return nil, &AmbiguityError{Candidates: matches}
	}

	return matches, nil
}

// resolveSubmitDidCall unwraps did.submitDidCall, whose first argument is a
// record carrying the authorizing DID and the dispatched call.
func resolveSubmitDidCall(call chain.Call, c Context) ([]Leaf, error) {
	arg, ok := call.Arg(0)
	if !ok || arg.Kind != chain.KindRecord {
		return nil, unrecognized(call, "first argument must be a record")
	}

	didArg, ok := arg.Field("did")
	if !ok {
		return nil, unrecognized(call, "missing did field")
	}

	callArg, ok := arg.Field("call")
	if !ok {
		return nil, unrecognized(call, "missing call field")
	}

	return authorizedDispatch(call, c, didArg, callArg)
}

// resolveDispatchAs unwraps did.dispatchAs(did, call).
func resolveDispatchAs(call chain.Call, c Context) ([]Leaf, error) {
	didArg, ok := call.Arg(0)
	if !ok {
		return nil, unrecognized(call, "missing did argument")
	}

	callArg, ok := call.Arg(1)
	if !ok {
		return nil, unrecognized(call, "missing call argument")
	}

	return authorizedDispatch(call, c, didArg, callArg)
}

func authorizedDispatch(call chain.Call, c Context, didArg, callArg chain.Arg) ([]Leaf, error) {
	did, err := didArg.AccountID()
	if err != nil {
		return nil, unrecognized(call, "did: %v", err)
	}

	inner, err := nestedCall(call, callArg)
	if err != nil {
		return nil, err
	}

	c, err = c.WithIdentity(did)
	if err != nil {
		return nil, err
	}

	return c.Resolve(inner)
}

// ProxyHandler unwraps a proxy call whose proxied call sits at position
// callIndex. Proxies never assert an identity.
func ProxyHandler(callIndex int) Handler {
	return func(call chain.Call, c Context) ([]Leaf, error) {
		arg, ok := call.Arg(callIndex)
		if !ok {
			return nil, unrecognized(call, "missing proxied call at position %d", callIndex)
		}

		inner, err := nestedCall(call, arg)
		if err != nil {
			return nil, err
		}

		return c.Resolve(inner)
	}
}

// CTypeDefinition returns the schema bytes of a ctype.add argument. Decoders
// render the Vec<u8> either as raw bytes or as 0x-hex of its UTF-8 text.
func CTypeDefinition(arg chain.Arg) ([]byte, bool) {
	switch arg.Kind {
	case chain.KindBytes:
		return arg.Raw, true
	case chain.KindText:
		if strings.HasPrefix(arg.Text, "0x") {
			raw, err := types.BytesFromHex(arg.Text)
			if err != nil {
				return nil, false
			}
			return raw, true
		}
		return []byte(arg.Text), true
	default:
		return nil, false
	}
}

// matchCType hashes the schema of ctype.add in schema mode. Definitions that
// are not JSON objects cannot match any hash and are skipped.
func matchCType(call chain.Call, c Context) ([]Leaf, error) {
	if c.Target().Kind != AddCType {
		return nil, nil
	}

	arg, ok := call.Arg(0)
	if !ok {
		return nil, unrecognized(call, "missing definition")
	}

	definition, ok := CTypeDefinition(arg)
	if !ok {
		return nil, unrecognized(call, "definition is %s, want bytes", arg.Kind)
	}

	h, err := canonhash.HashSchema(definition)
	if err != nil || h != c.Target().Hash {
		return nil, nil
	}

	return []Leaf{c.Leaf(call, arg)}, nil
}

// matchAttestation compares the claim hash argument of attestation.add.
func matchAttestation(call chain.Call, c Context) ([]Leaf, error) {
	if c.Target().Kind != AddAttestation {
		return nil, nil
	}

	arg, ok := call.Arg(0)
	if !ok {
		return nil, unrecognized(call, "missing claim hash")
	}

	claimHash, err := arg.Hash()
	if err != nil {
		return nil, unrecognized(call, "claim hash: %v", err)
	}

	if claimHash != c.Target().Hash {
		return nil, nil
	}

	return []Leaf{c.Leaf(call, arg)}, nil
}

// matchPublicCredential hashes the SCALE encoding of the credential followed
// by the authorizing identity. Without an identity nothing can match.
func matchPublicCredential(call chain.Call, c Context) ([]Leaf, error) {
	if c.Target().Kind != AddPublicCredential {
		return nil, nil
	}

	arg, ok := call.Arg(0)
	if !ok || arg.Kind != chain.KindRecord {
		return nil, unrecognized(call, "first argument must be a credential record")
	}

	if len(arg.Raw) == 0 {
		return nil, unrecognized(call, "credential record has no encoding")
	}

	identity := c.Identity()
	if identity == nil {
		return nil, nil
	}

	if canonhash.HashPayload(arg.Raw, identity.Bytes()) != c.Target().Hash {
		return nil, nil
	}

	return []Leaf{c.Leaf(call, arg)}, nil
}
