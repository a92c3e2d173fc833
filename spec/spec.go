// Package spec defines the per-dialect Specification descriptor (spec.md
// §4.3) that the rest of the module uses to walk a resource without
// knowing which JSON Schema draft it was written against.
package spec

import (
	"iter"
	"strings"

	"github.com/signadot/jsonref/jsonvalue"
)

// AnchorInfo is a named anchor discovered inside a resource by
// Specification.AnchorsIn. It carries the contents the anchor points to
// (not a resolver/registry-aware type) so that spec stays free of any
// dependency on resource/registry/resolver.
type AnchorInfo struct {
	Name     string
	Dynamic  bool
	Contents jsonvalue.Value
}

// Specification bundles the three pure, per-dialect extraction functions
// spec.md §4.3 describes, plus the dialect's own identity (used by the
// dialect table and by error messages).
type Specification struct {
	// Name identifies the dialect for diagnostics (e.g. "draft2020-12").
	Name string
	// MetaSchemaURI is the canonical $schema value for this dialect.
	MetaSchemaURI string

	// IDOf returns the resource's internal identifier, or ("", false) if
	// it has none (including the "empty string after fragment-stripping
	// means no id" rule from spec.md §9's Open Question).
	IDOf func(contents jsonvalue.Value) (string, bool)

	// AnchorsInFn enumerates the anchors this resource itself exposes
	// (not those of its subresources).
	AnchorsInFn func(contents jsonvalue.Value) iter.Seq[AnchorInfo]

	// SubresourcesOfFn enumerates this resource's direct schema-bearing
	// children (not recursively — Registry.Crawl does the recursion).
	SubresourcesOfFn func(contents jsonvalue.Value) iter.Seq[jsonvalue.Value]
}

// AnchorsIn is a nil-safe convenience wrapper around AnchorsInFn.
func (s Specification) AnchorsIn(contents jsonvalue.Value) iter.Seq[AnchorInfo] {
	if s.AnchorsInFn == nil {
		return func(yield func(AnchorInfo) bool) {}
	}
	return s.AnchorsInFn(contents)
}

// SubresourcesOf is a nil-safe convenience wrapper around SubresourcesOfFn.
func (s Specification) SubresourcesOf(contents jsonvalue.Value) iter.Seq[jsonvalue.Value] {
	if s.SubresourcesOfFn == nil {
		return func(yield func(jsonvalue.Value) bool) {}
	}
	return s.SubresourcesOfFn(contents)
}

// OpaqueSpecification is the "null" specification for resources that have
// no subresources or IDs at all (grounded on the original Python
// library's OPAQUE_SPECIFICATION), used when a Resource is constructed
// without dialect detection, e.g. to hold arbitrary payloads that are
// never crawled.
var OpaqueSpecification = Specification{
	Name:             "opaque",
	IDOf:             func(jsonvalue.Value) (string, bool) { return "", false },
	AnchorsInFn:      func(jsonvalue.Value) iter.Seq[AnchorInfo] { return func(func(AnchorInfo) bool) {} },
	SubresourcesOfFn: func(jsonvalue.Value) iter.Seq[jsonvalue.Value] { return func(func(jsonvalue.Value) bool) {} },
}

// stripEmptyFragment implements spec.md §9's Open Question resolution:
// an $id that is empty after stripping a trailing empty fragment is
// treated as "no id".
func stripEmptyFragment(id string) (string, bool) {
	id = strings.TrimSuffix(id, "#")
	if id == "" {
		return "", false
	}
	return id, true
}
