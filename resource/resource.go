// Package resource implements spec.md §4.4: a Resource pairs a parsed
// JSON value with the Specification used to interpret it, and exposes
// id()/subresources()/anchors() by delegation.
package resource

import (
	"iter"

	"github.com/signadot/jsonref/jsonvalue"
	"github.com/signadot/jsonref/pointer"
	"github.com/signadot/jsonref/spec"
)

// Resource is an immutable (contents, specification) pair.
type Resource struct {
	Contents      jsonvalue.Value
	Specification spec.Specification
}

// CreateResource bypasses dialect detection (spec.md §4.4
// "Specification.create_resource").
func CreateResource(s spec.Specification, contents jsonvalue.Value) Resource {
	return Resource{Contents: contents, Specification: s}
}

// FromContents infers the dialect from contents' "$schema" member. ok is
// false when $schema is absent, not a string, or unrecognized — the
// caller turns that into referr.CannotDetermineSpecification.
func FromContents(contents jsonvalue.Value) (Resource, bool) {
	s, ok := spec.Detect(contents)
	if !ok {
		return Resource{}, false
	}
	return CreateResource(s, contents), true
}

// Opaque wraps contents in the null specification (spec.md §9's
// OPAQUE_SPECIFICATION ancestor): no id, no anchors, no subresources.
// Used internally for values that are never schema documents in their own
// right (e.g. the dialect table itself, in the original Python library).
func Opaque(contents jsonvalue.Value) Resource {
	return CreateResource(spec.OpaqueSpecification, contents)
}

// ID returns this resource's internal identifier, per its specification.
func (r Resource) ID() (string, bool) {
	return r.Specification.IDOf(r.Contents)
}

// Anchor is a named pointer into a resource. Dynamic is true for
// $dynamicAnchor/$recursiveAnchor-declared anchors, which participate in
// the dynamic-scope walk (spec.md §4.6) instead of being used directly.
type Anchor struct {
	Name     string
	Dynamic  bool
	Resource Resource
}

// Anchors lazily enumerates this resource's own anchors (not those of its
// subresources); spec.md §9 asks that this not be eagerly materialized
// except during crawl().
func (r Resource) Anchors() iter.Seq[Anchor] {
	return func(yield func(Anchor) bool) {
		for info := range r.Specification.AnchorsIn(r.Contents) {
			a := Anchor{
				Name:     info.Name,
				Dynamic:  info.Dynamic,
				Resource: CreateResource(r.Specification, info.Contents),
			}
			if !yield(a) {
				return
			}
		}
	}
}

// Subresources lazily enumerates this resource's direct schema-bearing
// children, each wrapped as its own Resource under the same
// specification (booleans are filtered out upstream in spec, since a
// boolean JSON Schema has no id/anchors/subresources of its own).
func (r Resource) Subresources() iter.Seq[Resource] {
	return func(yield func(Resource) bool) {
		for child := range r.Specification.SubresourcesOf(r.Contents) {
			if !yield(CreateResource(r.Specification, child)) {
				return
			}
		}
	}
}

// Pointer evaluates a plain RFC 6901 JSON Pointer against this resource's
// own contents, with no re-basing across subresource boundaries (the
// resolver package performs that re-basing walk itself, since it alone
// knows about base URIs and dynamic scope — see spec.md §4.6 step 4).
// Pointer("") always succeeds and returns the resource's own contents.
func (r Resource) Pointer(p string) (jsonvalue.Value, error) {
	return pointer.Evaluate(r.Contents, p)
}
