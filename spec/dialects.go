package spec

import (
	"iter"
	"strings"

	"github.com/signadot/jsonref/jsonvalue"
)

// Dialect URIs, spec.md §6.
const (
	Draft4URI     = "http://json-schema.org/draft-04/schema#"
	Draft6URI     = "http://json-schema.org/draft-06/schema#"
	Draft7URI     = "http://json-schema.org/draft-07/schema#"
	Draft201909URI = "https://json-schema.org/draft/2019-09/schema"
	Draft202012URI = "https://json-schema.org/draft/2020-12/schema"
)

// recursiveAnchorName is the synthetic, non-authorable anchor name used
// internally to record a Draft 2019-09 "$recursiveAnchor: true" resource
// on the dynamic scope so the $recursiveRef walk (spec.md §4.6) can find
// it with the same machinery as named $dynamicAnchor lookups. No JSON
// Schema author can ever write an anchor named "" (spec.md §4.1: a plain
// name anchor is non-empty), so this can't collide with a real anchor.
const recursiveAnchorName = ""

var (
	Draft4     = makeLegacyDialect("draft-04", Draft4URI, legacyIDKeyword)
	Draft6     = makeLegacyDialect("draft-06", Draft6URI, dollarIDKeyword)
	Draft7     = makeLegacyDialect("draft-07", Draft7URI, dollarIDKeyword)
	Draft201909 = makeModernDialect("draft2019-09", Draft201909URI, true)
	Draft202012 = makeModernDialect("draft2020-12", Draft202012URI, false)
)

// ByDialectURI is the dialect table of spec.md §9: new dialects are added
// here, nowhere else in the core.
var ByDialectURI = map[string]Specification{
	Draft4URI:      Draft4,
	Draft6URI:      Draft6,
	Draft7URI:      Draft7,
	Draft201909URI: Draft201909,
	Draft202012URI: Draft202012,
}

// Detect returns the Specification named by contents' "$schema" member.
// ok is false if $schema is absent, not a string, or not a known dialect
// URI — callers turn that into referr.CannotDetermineSpecification.
func Detect(contents jsonvalue.Value) (Specification, bool) {
	if contents.Kind() != jsonvalue.Object {
		return Specification{}, false
	}
	schema, ok := contents.LookupString("$schema")
	if !ok {
		return Specification{}, false
	}
	spec, ok := ByDialectURI[strings.TrimSuffix(schema, "#")]
	if ok {
		return spec, true
	}
	spec, ok = ByDialectURI[schema]
	return spec, ok
}

const (
	legacyIDKeyword = "id"
	dollarIDKeyword = "$id"
)

// makeLegacyDialect builds Draft 4/6/7 descriptors. Draft 4 reads "id",
// Draft 6/7 read "$id"; all three derive a single plain-name anchor from
// an id of the form "#name" (spec.md §4.3.3) and walk the pre-2019
// subresource keyword set (spec.md §4.3.2).
func makeLegacyDialect(name, metaSchemaURI, idKeyword string) Specification {
	idOf := func(contents jsonvalue.Value) (string, bool) {
		if contents.Kind() != jsonvalue.Object {
			return "", false
		}
		if idKeyword == dollarIDKeyword {
			if _, hasRef := contents.Lookup("$ref"); hasRef {
				return "", false
			}
		}
		id, ok := contents.LookupString(idKeyword)
		if !ok {
			return "", false
		}
		if strings.HasPrefix(id, "#") {
			return "", false
		}
		return stripEmptyFragment(id)
	}
	return Specification{
		Name:          name,
		MetaSchemaURI: metaSchemaURI,
		IDOf:          idOf,
		AnchorsInFn: func(contents jsonvalue.Value) iter.Seq[AnchorInfo] {
			return func(yield func(AnchorInfo) bool) {
				if contents.Kind() != jsonvalue.Object {
					return
				}
				id, ok := contents.LookupString(idKeyword)
				if !ok || !strings.HasPrefix(id, "#") || len(id) == 1 {
					return
				}
				yield(AnchorInfo{Name: id[1:], Contents: contents})
			}
		},
		SubresourcesOfFn: legacySubresources,
	}
}

func legacySubresources(contents jsonvalue.Value) iter.Seq[jsonvalue.Value] {
	return func(yield func(jsonvalue.Value) bool) {
		if contents.Kind() != jsonvalue.Object {
			return
		}
		walkSubresources(contents, legacyKeywords, yield)
	}
}

// legacyKeywords is the pre-2019 subresource keyword table (spec.md
// §4.3.2), shared by Drafts 4, 6, and 7.
var legacyKeywords = keywordSets{
	single: []string{"additionalItems", "additionalProperties", "not"},
	arrays: []string{"allOf", "anyOf", "oneOf"},
	maps:   []string{"properties", "patternProperties", "definitions"},
	items:  true,
}

// makeModernDialect builds the 2019-09/2020-12 descriptors. Both use
// "$id" and the full modern subresource keyword set; they differ only in
// which anchor keyword introduces dynamic behavior ($recursiveAnchor vs
// $dynamicAnchor).
func makeModernDialect(name, metaSchemaURI string, is201909 bool) Specification {
	return Specification{
		Name:          name,
		MetaSchemaURI: metaSchemaURI,
		IDOf: func(contents jsonvalue.Value) (string, bool) {
			if contents.Kind() != jsonvalue.Object {
				return "", false
			}
			id, ok := contents.LookupString("$id")
			if !ok {
				return "", false
			}
			return stripEmptyFragment(id)
		},
		AnchorsInFn: func(contents jsonvalue.Value) iter.Seq[AnchorInfo] {
			return func(yield func(AnchorInfo) bool) {
				if contents.Kind() != jsonvalue.Object {
					return
				}
				if name, ok := contents.LookupString("$anchor"); ok && name != "" {
					if !yield(AnchorInfo{Name: name, Contents: contents}) {
						return
					}
				}
				if is201909 {
					if recursive, ok := contents.Lookup("$recursiveAnchor"); ok &&
						recursive.Kind() == jsonvalue.Bool && recursive.AsBool() {
						yield(AnchorInfo{Name: recursiveAnchorName, Dynamic: true, Contents: contents})
					}
					return
				}
				if name, ok := contents.LookupString("$dynamicAnchor"); ok && name != "" {
					yield(AnchorInfo{Name: name, Dynamic: true, Contents: contents})
				}
			}
		},
		SubresourcesOfFn: func(contents jsonvalue.Value) iter.Seq[jsonvalue.Value] {
			return func(yield func(jsonvalue.Value) bool) {
				if contents.Kind() != jsonvalue.Object {
					return
				}
				walkSubresources(contents, modernKeywords, yield)
			}
		},
	}
}

// modernKeywords is the 2019-09/2020-12 subresource keyword table
// (spec.md §4.3.2). "definitions" is inspected even though both dialects
// renamed it to "$defs", per spec.md's explicit instruction.
var modernKeywords = keywordSets{
	single: []string{
		"additionalItems", "additionalProperties", "not",
		"contains", "propertyNames", "unevaluatedItems", "unevaluatedProperties",
		"if", "then", "else",
	},
	arrays: []string{"allOf", "anyOf", "oneOf", "prefixItems"},
	maps:   []string{"properties", "patternProperties", "definitions", "$defs", "dependentSchemas"},
	items:  true,
}

// keywordSets groups the subresource-bearing keywords of a dialect by how
// their value should be walked.
type keywordSets struct {
	// single holds a lone schema value directly (skipped if it's a bool,
	// and additionalProperties/additionalItems are only schemas when
	// their value is an object per spec.md: a bool there is not a schema).
	single []string
	// arrays hold an array of schemas.
	arrays []string
	// maps hold an object whose *values* (not the object itself) are
	// schemas.
	maps []string
	// items is handled specially: old-style "items" can be a single
	// schema or an array of schemas; boolean schemas are always skipped.
	items bool
}

func walkSubresources(contents jsonvalue.Value, ks keywordSets, yield func(jsonvalue.Value) bool) {
	emit := func(v jsonvalue.Value) bool {
		if isBooleanSchema(v) {
			return true
		}
		return yield(v)
	}
	for _, kw := range ks.single {
		v, ok := contents.Lookup(kw)
		if !ok || v.Kind() != jsonvalue.Object {
			continue
		}
		if !emit(v) {
			return
		}
	}
	for _, kw := range ks.arrays {
		arr, ok := contents.Lookup(kw)
		if !ok || arr.Kind() != jsonvalue.Array {
			continue
		}
		for _, v := range arr.Elems() {
			if !emit(v) {
				return
			}
		}
	}
	for _, kw := range ks.maps {
		m, ok := contents.Lookup(kw)
		if !ok || m.Kind() != jsonvalue.Object {
			continue
		}
		for _, member := range m.Members() {
			if !emit(member.Value) {
				return
			}
		}
	}
	if ks.items {
		if items, ok := contents.Lookup("items"); ok {
			if items.Kind() == jsonvalue.Array {
				for _, v := range items.Elems() {
					if !emit(v) {
						return
					}
				}
			} else if !emit(items) {
				return
			}
		}
	}
}

// isBooleanSchema reports whether v is a JSON Schema boolean-literal
// schema ("true"/"false" as the schema itself), which never has IDs,
// anchors, or further subresources.
func isBooleanSchema(v jsonvalue.Value) bool {
	return v.Kind() == jsonvalue.Bool
}

// IsRecursiveAnchor reports whether a is the synthetic $recursiveAnchor
// marker produced by the Draft 2019-09 descriptor.
func IsRecursiveAnchor(a AnchorInfo) bool {
	return a.Dynamic && a.Name == recursiveAnchorName
}
