// Package jsonvalue implements the recursive JSON value the rest of the
// module resolves references against. Values are immutable: once built,
// a Value and everything reachable from it never changes, so it is safe
// to share a single Value across registries, resolvers, and goroutines.
package jsonvalue

import "fmt"

// Kind identifies the concrete shape a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return fmt.Sprintf("<unknown kind %d>", int(k))
	}
}

// Member is one key/value pair of an Object, in declaration order.
type Member struct {
	Key   string
	Value Value
}

// Value is the JSON sum type: null, bool, number, string, array, or an
// ordered object. The zero Value is JSON null.
//
// Object key order is preserved (Members) because Specification.AnchorsIn
// and Specification.SubresourcesOf must walk a resource deterministically,
// but callers must not treat that order as semantically meaningful per
// spec.md §6.
type Value struct {
	kind    Kind
	boolean bool
	number  string // literal number text, exactly as read from the source
	str     string
	elems   []Value
	members []Member
}

// Nil is the JSON null value.
var Nil = Value{kind: Null}

func NewBool(b bool) Value   { return Value{kind: Bool, boolean: b} }
func NewString(s string) Value { return Value{kind: String, str: s} }
func NewNumber(literal string) Value { return Value{kind: Number, number: literal} }

// NewArray builds an Array Value. The slice is copied defensively so the
// caller's backing array can still be mutated without affecting the Value.
func NewArray(elems []Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: Array, elems: cp}
}

// NewObject builds an Object Value from ordered members. Later duplicate
// keys shadow earlier ones for Lookup, but all members are kept in
// Members() to preserve round-trip order (mirroring how a JSON decoder
// sees the document).
func NewObject(members []Member) Value {
	cp := make([]Member, len(members))
	copy(cp, members)
	return Value{kind: Object, members: cp}
}

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == Null }

// AsBool returns the boolean payload; only meaningful when Kind() == Bool.
func (v Value) AsBool() bool { return v.boolean }

// AsNumber returns the number's literal text as it was read; only
// meaningful when Kind() == Number.
func (v Value) AsNumber() string { return v.number }

// AsString returns the string payload; only meaningful when Kind() == String.
func (v Value) AsString() string { return v.str }

// Elems returns the array elements in order; only meaningful when
// Kind() == Array. The returned slice must not be mutated by callers.
func (v Value) Elems() []Value { return v.elems }

// Members returns the object's key/value pairs in declaration order; only
// meaningful when Kind() == Object. The returned slice must not be
// mutated by callers.
func (v Value) Members() []Member { return v.members }

// Lookup returns the value of the last member with the given key, and
// whether it was present. Only meaningful when Kind() == Object.
func (v Value) Lookup(key string) (Value, bool) {
	var (
		found Value
		ok    bool
	)
	for _, m := range v.members {
		if m.Key == key {
			found, ok = m.Value, true
		}
	}
	return found, ok
}

// LookupString is a convenience for the common case of expecting a string
// member (e.g. "$id", "$schema", "$anchor"): it returns ("", false) if the
// member is absent or not a string.
func (v Value) LookupString(key string) (string, bool) {
	m, ok := v.Lookup(key)
	if !ok || m.kind != String {
		return "", false
	}
	return m.str, true
}

// Equal reports deep structural equality. Object member order is
// significant here only insofar as Go slice/string equality makes it so;
// this is used by the registry's "same URI must mean the same resource"
// invariant check, not as a semantic JSON-equality predicate.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.boolean == other.boolean
	case Number:
		return v.number == other.number
	case String:
		return v.str == other.str
	case Array:
		if len(v.elems) != len(other.elems) {
			return false
		}
		for i := range v.elems {
			if !v.elems[i].Equal(other.elems[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.members) != len(other.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != other.members[i].Key {
				return false
			}
			if !v.members[i].Value.Equal(other.members[i].Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
