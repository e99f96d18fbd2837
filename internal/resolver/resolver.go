// Package resolver locates, inside the call tree of an extrinsic, the leaf
// call that produced a chain event, and verifies it by content hash.
//
// Wrapper calls (batches, proxies, DID-authorized dispatch) are walked through
// a dispatch table keyed by (pallet, method); leaf calls are matched against
// the target hash. The resolver never mutates the calls it reads and holds no
// state between calls, so it is safe for concurrent use.
package resolver

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gabapcia/credwatch/internal/canonhash"
	"github.com/gabapcia/credwatch/internal/chain"
)

// DefaultMaxDepth bounds call nesting when no WithMaxDepth option is given.
const DefaultMaxDepth = 64

var (
	// ErrNoMatch is returned when no leaf in the tree matches the target.
	ErrNoMatch = errors.New("no matching call")

	// ErrAmbiguousMatch is returned when more than one leaf matches the target.
	ErrAmbiguousMatch = errors.New("ambiguous call match")

	// ErrIdentityConflict is returned when a nested wrapper asserts a different
	// identity than an enclosing one.
	ErrIdentityConflict = errors.New("conflicting authorizing identity")

	// ErrUnrecognizedShape is returned when a registered call carries
	// arguments that do not fit its expected layout.
	ErrUnrecognizedShape = errors.New("unrecognized call shape")

	// ErrDepthExceeded is returned when nesting goes beyond the depth budget.
	ErrDepthExceeded = errors.New("call nesting too deep")
)

// LeafKind is the kind of domain action a leaf call performs.
type LeafKind uint8

const (
	AddCType LeafKind = iota + 1
	AddAttestation
	AddPublicCredential
)

func (k LeafKind) String() string {
	switch k {
	case AddCType:
		return "AddCType"
	case AddAttestation:
		return "AddAttestation"
	case AddPublicCredential:
		return "AddPublicCredential"
	default:
		return fmt.Sprintf("LeafKind(%d)", uint8(k))
	}
}

// Target describes the leaf being looked for. Identity, when set, is the
// identity already known to authorize the leaf.
type Target struct {
	Hash     canonhash.Hash
	Kind     LeafKind
	Identity *chain.AccountID
}

// Leaf is a matched leaf call.
type Leaf struct {
	Call     chain.Call       // the leaf call itself
	Payload  chain.Arg        // the argument the hash was computed over
	Identity *chain.AccountID // identity accumulated through the wrappers, if any
	Path     []string         // call keys from the root down to the leaf, batch entries suffixed with the child index
}

// describePayload renders a payload for diagnostics: UTF-8 text as a quoted
// string, anything else as 0x-hex of its encoding.
func describePayload(arg chain.Arg) string {
	switch {
	case arg.Kind == chain.KindText:
		return strconv.Quote(arg.Text)
	case len(arg.Raw) > 0 && utf8.Valid(arg.Raw) && isPrintable(arg.Raw):
		return strconv.Quote(string(arg.Raw))
	default:
		return arg.Raw.String()
	}
}

func isPrintable(b []byte) bool {
	for _, r := range string(b) {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// AmbiguityError reports every candidate of an ambiguous match.
type AmbiguityError struct {
	Candidates []Leaf
}

func (e *AmbiguityError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d candidates", ErrAmbiguousMatch, len(e.Candidates))

	for i, c := range e.Candidates {
		if i > 0 {
			sb.WriteString(";")
		}
		fmt.Fprintf(&sb, " %s payload %s", strings.Join(c.Path, " > "), describePayload(c.Payload))
	}

	return sb.String()
}

func (e *AmbiguityError) Unwrap() error {
	return ErrAmbiguousMatch
}

// Handler resolves one registered call shape. It returns the matching leaves
// found under call; an empty result means the branch contributed nothing.
type Handler func(call chain.Call, c Context) ([]Leaf, error)

// Context is the per-branch resolution state. It is passed by value, so a
// handler cannot leak identity changes into sibling branches.
type Context struct {
	resolver *Resolver
	target   Target
	identity *chain.AccountID
	depth    int
	path     []string
}

// Target returns the leaf being looked for.
func (c Context) Target() Target {
	return c.target
}

// Identity returns the identity accumulated so far, or nil.
func (c Context) Identity() *chain.AccountID {
	return c.identity
}

// Depth returns how many calls enclose the current one.
func (c Context) Depth() int {
	return c.depth
}

// Path returns the call keys from the root down to the current call.
func (c Context) Path() []string {
	return slices.Clone(c.path)
}

// WithIdentity returns a context authorized by id. It fails with
// ErrIdentityConflict when a different identity was already asserted.
func (c Context) WithIdentity(id chain.AccountID) (Context, error) {
	if c.identity != nil && *c.identity != id {
		return c, fmt.Errorf("%w: %s asserted under %s", ErrIdentityConflict, id.DID(), c.identity.DID())
	}

	c.identity = &id
	return c, nil
}

// Resolve descends into a nested call.
func (c Context) Resolve(call chain.Call) ([]Leaf, error) {
	return c.resolver.descend(call, c)
}

// ResolveChild descends into the child at position i of a call list, so the
// path tells siblings apart.
func (c Context) ResolveChild(call chain.Call, i int) ([]Leaf, error) {
	if n := len(c.path); n > 0 {
		c.path = slices.Clone(c.path)
		c.path[n-1] = fmt.Sprintf("%s[%d]", c.path[n-1], i)
	}

	return c.resolver.descend(call, c)
}

// Leaf builds the match result for the current leaf call.
func (c Context) Leaf(call chain.Call, payload chain.Arg) Leaf {
	return Leaf{
		Call:     call,
		Payload:  payload,
		Identity: c.identity,
		Path:     c.Path(),
	}
}

// Resolver walks call trees through a table of registered handlers.
type Resolver struct {
	mu       sync.RWMutex
	handlers map[chain.CallKey]Handler
	maxDepth int
}

// Register adds or replaces the handler for key.
func (r *Resolver) Register(key chain.CallKey, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[key] = h
}

func (r *Resolver) lookup(key chain.CallKey) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[key]
	return h, ok
}

func (r *Resolver) descend(call chain.Call, c Context) ([]Leaf, error) {
	if c.depth >= r.maxDepth {
		return nil, fmt.Errorf("%w: more than %d levels at %s", ErrDepthExceeded, r.maxDepth, call.Key())
	}

	h, ok := r.lookup(call.Key())
	if !ok {
		return nil, nil
	}

	c.depth++
	c.path = append(slices.Clone(c.path), call.Key().String())

	return h(call, c)
}

// Resolve returns the single leaf under root that matches target.
func (r *Resolver) Resolve(root chain.Call, target Target) (Leaf, error) {
	leaves, err := r.descend(root, Context{
		resolver: r,
		target:   target,
		identity: target.Identity,
	})
	if err != nil {
		return Leaf{}, err
	}

	switch len(leaves) {
	case 0:
		return Leaf{}, fmt.Errorf("%w: %s %s in %s", ErrNoMatch, target.Kind, target.Hash, root.Shape())
	case 1:
		return leaves[0], nil
	default:
		return Leaf{}, &AmbiguityError{Candidates: leaves}
	}
}

type config struct {
	maxDepth int
}

// Option customizes a Resolver.
type Option func(*config)

// WithMaxDepth bounds how deeply calls may nest before resolution fails.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		c.maxDepth = depth
	}
}

// New returns a Resolver with the default wrapper and leaf handlers registered.
func New(opts ...Option) *Resolver {
	cfg := config{
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := &Resolver{
		handlers: make(map[chain.CallKey]Handler),
		maxDepth: cfg.maxDepth,
	}
	registerDefaults(r)

	return r
}
