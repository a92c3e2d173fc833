// Package resolver implements spec.md §4.6: resolving a reference string
// against a base URI and a Registry, including the dynamic-scope walk
// $dynamicRef/$recursiveRef need.
//
// Resolver depends on registry (for lookups) and resource (for
// id()/anchors()); registry deliberately does not depend back on
// resolver, to avoid an import cycle, so the "registry.resolver(base)"
// convenience constructor described by spec.md §4.5 lives here instead,
// as New/NewWithRoot taking a registry.Registry by value.
package resolver

import (
	"github.com/signadot/jsonref/internal/trace"
	"github.com/signadot/jsonref/jsonvalue"
	"github.com/signadot/jsonref/pointer"
	"github.com/signadot/jsonref/referr"
	"github.com/signadot/jsonref/registry"
	"github.com/signadot/jsonref/resource"
	"github.com/signadot/jsonref/uri"
)

// Resolver is an immutable (registry, dynamic scope) pair. Every method
// returns a new Resolver; none mutate the receiver.
//
// scope holds the base URI of every resource entered so far, outermost
// first, and always ends with the resolver's own current base (the
// "innermost" frame) — spec.md §4.6 step 3's "append (absolute,
// resource) to dynamic scope if that absolute URI is not already the
// innermost entry". DynamicScope() hides that last entry from callers;
// BaseURI() is exactly it.
type Resolver struct {
	registry registry.Registry
	scope    []string
}

// New builds a Resolver rooted at baseURI against reg. baseURI need not
// already be registered; it is only consulted on the first Lookup.
func New(reg registry.Registry, baseURI string) (Resolver, error) {
	key, err := normalizeKey(baseURI)
	if err != nil {
		return Resolver{}, err
	}
	return Resolver{registry: reg, scope: []string{key}}, nil
}

// NewWithRoot registers res under the anonymous base URI ("") and
// returns a Resolver rooted there — for resolving references within a
// single in-memory document that was never assigned a URI of its own.
func NewWithRoot(reg registry.Registry, res resource.Resource) (Resolver, error) {
	next, err := reg.WithResource("", res)
	if err != nil {
		return Resolver{}, err
	}
	return Resolver{registry: next, scope: []string{""}}, nil
}

// Registry returns the resolver's current registry (reflecting any
// retrieve-hook memoization done by prior Lookups).
func (r Resolver) Registry() registry.Registry { return r.registry }

// BaseURI returns the resolver's current (innermost) base.
func (r Resolver) BaseURI() string { return r.scope[len(r.scope)-1] }

// DynamicScope returns the base URI of every resource entered on the way
// to this Resolver, outermost first, excluding the resolver's own base
// (spec.md §4.6).
func (r Resolver) DynamicScope() []string {
	if len(r.scope) == 0 {
		return nil
	}
	out := make([]string, len(r.scope)-1)
	copy(out, r.scope[:len(r.scope)-1])
	return out
}

// fullScope returns the dynamic scope INCLUDING the innermost frame,
// outermost first — used by the $dynamicRef/$recursiveRef walk, which
// per spec.md §4.6 considers the current resource too.
func (r Resolver) fullScope() []string { return r.scope }

// pushed returns a copy of scope with uri appended, unless uri is
// already the innermost entry (spec.md §4.6 step 3).
func pushed(scope []string, u string) []string {
	if len(scope) > 0 && scope[len(scope)-1] == u {
		return scope
	}
	return append(append([]string{}, scope...), u)
}

// Resolved pairs the JSON value a reference points at with a Resolver
// rooted there, ready to resolve further references relative to it.
type Resolved struct {
	Contents jsonvalue.Value
	Resolver Resolver
}

func normalizeKey(rawURI string) (string, error) {
	u, err := uri.Parse(rawURI)
	if err != nil {
		return "", err
	}
	return uri.WithEmptyFragmentStripped(u).Absolute, nil
}

func joinURI(base, ref string) (string, error) {
	baseURI, err := uri.Parse(base)
	if err != nil {
		return "", err
	}
	joined, err := uri.Join(baseURI, ref)
	if err != nil {
		return "", err
	}
	return uri.WithEmptyFragmentStripped(joined).Absolute, nil
}

// Lookup resolves ref against the resolver's base URI and current
// registry (spec.md §4.6 step 4): join, fetch, classify the fragment,
// then dispatch on its kind. A plain-name fragment that names a dynamic
// anchor is resolved through LookupDynamicAnchor's scope walk; for
// $recursiveRef see LookupRecursiveAnchor.
func (r Resolver) Lookup(ref string) (Resolved, error) {
	if trace.Resolve() {
		trace.Logf("resolver: lookup %s against %s\n", ref, r.BaseURI())
	}
	base, err := uri.Parse(r.BaseURI())
	if err != nil {
		return Resolved{}, err
	}
	joined, err := uri.Join(base, ref)
	if err != nil {
		return Resolved{}, err
	}
	absolute := uri.WithEmptyFragmentStripped(joined).Absolute

	root, reg, err := r.registry.Get(absolute)
	if err != nil {
		return Resolved{}, err
	}
	scope := pushed(r.scope, absolute)

	switch uri.ClassifyFragment(joined) {
	case uri.FragmentNone, uri.FragmentEmpty:
		return Resolved{
			Contents: root.Contents,
			Resolver: Resolver{registry: reg, scope: scope},
		}, nil

	case uri.FragmentJSONPointer:
		contents, newScope, err := walkPointer(root, pointer.Tokens(joined.Fragment), scope)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{Contents: contents, Resolver: Resolver{registry: reg, scope: newScope}}, nil

	case uri.FragmentPlainName:
		anchor, reg2, err := reg.Anchor(absolute, joined.Fragment)
		if err != nil {
			return Resolved{}, err
		}
		if anchor.Dynamic {
			return Resolver{registry: reg2, scope: scope}.LookupDynamicAnchor(joined.Fragment)
		}
		if id, ok := anchor.Resource.ID(); ok {
			if j, err := joinURI(absolute, id); err == nil {
				scope = pushed(scope, j)
			}
		}
		return Resolved{
			Contents: anchor.Resource.Contents,
			Resolver: Resolver{registry: reg2, scope: scope},
		}, nil

	default: // uri.FragmentInvalid
		return Resolved{}, &referr.InvalidAnchor{
			URI:        absolute,
			Name:       joined.Fragment,
			Suggestion: uri.InvalidFragmentSuggestion(joined.Fragment),
		}
	}
}

// walkPointer steps through tokens one at a time starting from the
// resource sitting at the innermost scope frame, re-basing every time a
// node along the way declares its own id() (spec.md §4.6 step 4's
// "hop by hop" re-basing walk) — only $id-induced scope changes are
// recorded; anchors discovered along the way are not.
func walkPointer(root resource.Resource, tokens []string, scope []string) (jsonvalue.Value, []string, error) {
	current := root.Contents
	base := scope[len(scope)-1]
	for _, tok := range tokens {
		next, err := pointer.Step(current, tok)
		if err != nil {
			return jsonvalue.Value{}, nil, &referr.PointerToNowhere{Reference: tok, Resource: current}
		}
		current = next
		if id, ok := root.Specification.IDOf(current); ok {
			joined, err := joinURI(base, id)
			if err != nil {
				return jsonvalue.Value{}, nil, err
			}
			base = joined
			scope = pushed(scope, base)
		}
	}
	return current, scope, nil
}

// InSubresource returns a Resolver rooted at sub, given that sub was
// reached by the caller without going through Lookup (e.g. while walking
// resource.Subresources() directly, such as during schema validation
// rather than reference resolution). If sub declares its own id(), the
// new Resolver's base is re-based accordingly and pushed onto the
// dynamic scope, exactly as Lookup's JSON-Pointer walk would have done.
func (r Resolver) InSubresource(sub resource.Resource) Resolver {
	scope := r.scope
	if id, ok := sub.ID(); ok {
		if joined, err := joinURI(r.BaseURI(), id); err == nil {
			scope = pushed(scope, joined)
		}
	}
	return Resolver{registry: r.registry, scope: scope}
}
