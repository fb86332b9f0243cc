// Package interop implements the Rust-interop registry (spec.md §4.4): a
// priority-ordered list of queriers that resolve method/trait signatures
// for a Rust type, with a shared in-memory cache keyed by crate name.
//
// The {Lookup, Register, global} shape follows the teacher's
// core/decorator/registry.go "database/sql driver registration" pattern,
// generalized from a single flat path-keyed map to a priority list of
// pluggable queriers plus a per-crate cache, since this spec's queriers
// must be tried in order and fall through only on error.
package interop

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Portfoligno/veltrano-transpiler-sub001/internal/debug"
)

// Receiver is the calling discipline a method signature requires.
type Receiver int

const (
	ReceiverNone Receiver = iota // associated function, no receiver
	ReceiverValue
	ReceiverRef
	ReceiverMutRef
)

func (r Receiver) String() string {
	switch r {
	case ReceiverNone:
		return "None"
	case ReceiverValue:
		return "Value"
	case ReceiverRef:
		return "Ref"
	case ReceiverMutRef:
		return "MutRef"
	default:
		return "Receiver(?)"
	}
}

// RustTypePath names a Rust type for interop purposes: "i64", "String",
// "Vec", a crate-qualified custom path, etc. Interop works over these
// plain path strings rather than internal/types.RustType directly, since
// a registry entry describes a nominal Rust item, not a structural shape.
type RustTypePath string

// MethodSignature is what method resolution (spec.md §4.4) produces.
type MethodSignature struct {
	Name       string
	Receiver   Receiver
	Lifetime   string // receiver lifetime, when Receiver is Ref/MutRef
	Params     []RustTypePath
	ReturnType RustTypePath
}

// TypeInfo describes one Rust type's inherent methods and implemented
// traits (by name), as discovered by a querier.
type TypeInfo struct {
	Path          RustTypePath
	Methods       map[string]MethodSignature // method name -> signature
	Traits        []string                   // implemented trait names
}

// TraitInfo describes a trait's methods, keyed by method name. Self in a
// trait method's ReturnType/Params is left as the literal string "Self";
// callers resolve it against the implementing type.
type TraitInfo struct {
	Name    string
	Methods map[string]MethodSignature
}

// CrateInfo is what a querier returns for one crate (spec.md §4.4).
type CrateInfo struct {
	Crate               string
	Functions           map[string]MethodSignature
	Types               map[RustTypePath]TypeInfo
	Traits              map[string]TraitInfo
	TraitImplementations map[RustTypePath][]string // type path -> trait names
}

// Querier is one provider in the registry's priority list (spec.md §4.4,
// "polymorphic set of objects sharing {query_crate, supports_crate,
// priority}", per spec.md §9's design note).
type Querier interface {
	Name() string
	Priority() int
	SupportsCrate(name string) bool
	QueryCrate(ctx context.Context, name string) (*CrateInfo, error)
}

// Registry holds a priority-ordered list of queriers plus a process-wide
// per-crate cache, populated on first successful query (spec.md §9
// "Registry caching").
type Registry struct {
	mu       sync.RWMutex
	queriers []Querier
	cache    map[string]*CrateInfo
}

// NewRegistry builds an empty registry. Queriers are added with Register,
// preserving descending priority order (spec.md §9 "Querier priority
// list").
func NewRegistry() *Registry {
	return &Registry{cache: make(map[string]*CrateInfo)}
}

// Register inserts q into the registry's priority list, keeping the list
// sorted by descending Priority() (ties keep insertion order, i.e. the
// sort is stable).
func (r *Registry) Register(q Querier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queriers = append(r.queriers, q)
	sort.SliceStable(r.queriers, func(i, j int) bool {
		return r.queriers[i].Priority() > r.queriers[j].Priority()
	})
}

// Queriers returns the registered queriers in priority order (for
// inspection/testing; callers must not mutate the returned slice).
func (r *Registry) Queriers() []Querier {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Querier, len(r.queriers))
	copy(out, r.queriers)
	return out
}

// CrateInfo returns the cached or freshly queried CrateInfo for name,
// trying queriers in descending priority order. A querier is skipped
// unless it supports the crate; when a higher-priority querier errors,
// resolution falls through to the next — but a querier that supports the
// crate and finds nothing returns a CrateInfo with empty maps, which is
// authoritative and is not retried against a lower-priority querier
// (spec.md §9: "only on errors, never on supported-but-not-found").
func (r *Registry) CrateInfo(ctx context.Context, name string) (*CrateInfo, error) {
	r.mu.RLock()
	if cached, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	queriers := make([]Querier, len(r.queriers))
	copy(queriers, r.queriers)
	r.mu.RUnlock()

	var lastErr error
	for _, q := range queriers {
		if !q.SupportsCrate(name) {
			continue
		}
		info, err := q.QueryCrate(ctx, name)
		if err != nil {
			debug.Logger().Debug("querier failed, falling through", "querier", q.Name(), "crate", name, "error", err)
			lastErr = err
			continue
		}
		r.mu.Lock()
		r.cache[name] = info
		r.mu.Unlock()
		debug.Logger().Debug("registry cache populated", "querier", q.Name(), "crate", name)
		return info, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("no querier resolved crate %q: %w", name, lastErr)
	}
	return nil, fmt.Errorf("no querier supports crate %q", name)
}

// Invalidate drops a crate's cached CrateInfo, forcing the next CrateInfo
// call to re-query every querier. Used by a long-running driver when a
// SourceQuerier reports its workspace changed (SPEC_FULL.md §3).
func (r *Registry) Invalidate(crate string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.cache, crate)
}

// ErrMethodNotFound is returned (wrapped with context) when method
// resolution exhausts every candidate type path and trait.
var ErrMethodNotFound = fmt.Errorf("method not found")

// ToSnakeCase translates a Veltrano camelCase method name to Rust
// snake_case (spec.md §4.4 step 1): a literal "_" becomes "__" first (to
// stay injective, mirroring the codegen name-translation rule in spec.md
// §4.6), then each uppercase letter becomes "_" + lowercase.
func ToSnakeCase(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '_':
			b.WriteString("__")
		case r >= 'A' && r <= 'Z':
			b.WriteByte('_')
			b.WriteRune(r - 'A' + 'a')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
