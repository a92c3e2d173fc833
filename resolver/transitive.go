package resolver

import (
	"github.com/signadot/jsonref/jsonvalue"
	"github.com/signadot/jsonref/referr"
	"github.com/signadot/jsonref/uri"
)

// ResolveTransitive repeatedly looks up ref, and then re-resolves through
// any "$ref" found at the destination, until it lands on a value that is
// not itself a bare {"$ref": ...} indirection (spec.md §9's supplemented
// "transitive $ref following"). Cycle detection is by the (URI, fragment)
// pair each reference resolves to, per spec.md §9: revisiting one fails
// with PointerToNowhere rather than looping forever.
func (r Resolver) ResolveTransitive(ref string) (Resolved, error) {
	seen := map[string]bool{}

	current := r
	currentRef := ref
	for {
		base, err := uri.Parse(current.BaseURI())
		if err != nil {
			return Resolved{}, err
		}
		target, err := uri.Join(base, currentRef)
		if err != nil {
			return Resolved{}, err
		}
		key := uri.WithEmptyFragmentStripped(target).String()
		if seen[key] {
			return Resolved{}, &referr.PointerToNowhere{Reference: currentRef}
		}
		seen[key] = true

		resolved, err := current.Lookup(currentRef)
		if err != nil {
			return Resolved{}, err
		}
		nextRef, ok := bareRef(resolved)
		if !ok {
			return resolved, nil
		}
		current = resolved.Resolver
		currentRef = nextRef
	}
}

// bareRef reports whether contents is an object with a string "$ref"
// member (any sibling keywords are ignored, so an object with siblings
// counts too) and, if so, returns the reference string to follow next.
func bareRef(r Resolved) (string, bool) {
	obj := r.Contents
	if obj.Kind() != jsonvalue.Object {
		return "", false
	}
	ref, ok := obj.LookupString("$ref")
	if !ok {
		return "", false
	}
	return ref, true
}
