package resolver

import (
	"github.com/signadot/jsonref/registry"
	"github.com/signadot/jsonref/resource"
)

// resolvedFromAnchor builds a Resolved for an anchor already located at u,
// pushing u (and, if the anchor's own resource declares an id(), its
// rebased canonical URI too) onto the dynamic scope.
func (r Resolver) resolvedFromAnchor(a resource.Anchor, reg registry.Registry, u string) (Resolved, error) {
	scope := pushed(r.scope, u)
	if id, ok := a.Resource.ID(); ok {
		if j, err := joinURI(u, id); err == nil {
			scope = pushed(scope, j)
		}
	}
	return Resolved{Contents: a.Resource.Contents, Resolver: Resolver{registry: reg, scope: scope}}, nil
}

// LookupDynamicAnchor implements $dynamicRef "#name" resolution
// (spec.md §4.6): first resolve "#name" normally against the resolver's
// own base, exactly as a plain $ref would. Only when that directly
// resolved anchor is itself declared dynamic does a dynamic anchor
// elsewhere in scope get to override it — scanning the dynamic scope
// outermost-to-innermost (including the resolver's own base) for the
// first resource that also declares a dynamic anchor named name. A
// directly resolved anchor that is not dynamic is used as-is, with no
// scope walk at all.
func (r Resolver) LookupDynamicAnchor(name string) (Resolved, error) {
	direct, reg, err := r.registry.Anchor(r.BaseURI(), name)
	if err != nil {
		return Resolved{}, err
	}
	if !direct.Dynamic {
		return r.resolvedFromAnchor(direct, reg, r.BaseURI())
	}
	for _, u := range r.fullScope() {
		a, reg2, aerr := reg.Anchor(u, name)
		reg = reg2
		if aerr != nil || !a.Dynamic {
			continue
		}
		return r.resolvedFromAnchor(a, reg, u)
	}
	// Unreachable in practice: direct already proved the resolver's own
	// base declares a dynamic anchor named name, and fullScope always ends
	// with that base, so the loop above matches by the time it reaches
	// u == r.BaseURI().
	return r.resolvedFromAnchor(direct, reg, r.BaseURI())
}

// recursiveAnchorName mirrors spec.recursiveAnchorName: the empty string,
// the only anchor name a $recursiveAnchor:true resource is ever indexed
// under (spec.md §4.3.3 — no author-written anchor can be named "").
const recursiveAnchorName = ""

// LookupRecursiveAnchor implements Draft 2019-09's $recursiveRef "#": only
// when the resolver's own base itself declares "$recursiveAnchor": true
// does the dynamic scope get scanned outermost-to-innermost for the
// OUTERMOST such declaration; otherwise this is a plain same-document "#"
// lookup, exactly as if $recursiveAnchor had never been declared anywhere.
func (r Resolver) LookupRecursiveAnchor() (Resolved, error) {
	direct, reg, err := r.registry.Anchor(r.BaseURI(), recursiveAnchorName)
	if err != nil || !direct.Dynamic {
		return r.Lookup("#")
	}
	for _, u := range r.fullScope() {
		a, reg2, aerr := reg.Anchor(u, recursiveAnchorName)
		reg = reg2
		if aerr != nil || !a.Dynamic {
			continue
		}
		return r.resolvedFromAnchor(a, reg, u)
	}
	// Unreachable in practice, for the same reason as LookupDynamicAnchor.
	return r.resolvedFromAnchor(direct, reg, r.BaseURI())
}
