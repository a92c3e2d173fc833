// Package pointer evaluates RFC 6901 JSON Pointers against a
// jsonvalue.Value, per spec.md §4.2.
package pointer

import (
	"strconv"
	"strings"

	"github.com/signadot/jsonref/jsonvalue"
)

// NotFound is returned (wrapped by the caller as referr.PointerToNowhere)
// when a pointer step falls off the document: an object lacks the
// property, an array index is non-numeric/negative/out of bounds, or the
// step descends into a scalar.
type NotFound struct {
	// Pointer is the full pointer string being evaluated.
	Pointer string
	// Token is the specific step that failed.
	Token string
}

func (e *NotFound) Error() string {
	return "pointer: no such element " + strconv.Quote(e.Token) + " in " + strconv.Quote(e.Pointer)
}

// Evaluate walks pointer against root and returns the value it reaches.
//
// The empty string always succeeds and returns root itself (spec.md §4.4:
// `pointer("")` must succeed).
func Evaluate(root jsonvalue.Value, pointer string) (jsonvalue.Value, error) {
	if pointer == "" {
		return root, nil
	}
	if !strings.HasPrefix(pointer, "/") {
		return jsonvalue.Value{}, &NotFound{Pointer: pointer, Token: pointer}
	}
	tokens := strings.Split(pointer[1:], "/")
	current := root
	for _, raw := range tokens {
		token := decodeToken(raw)
		next, err := step(current, token)
		if err != nil {
			return jsonvalue.Value{}, &NotFound{Pointer: pointer, Token: token}
		}
		current = next
	}
	return current, nil
}

// Tokens splits a non-empty pointer into its decoded reference tokens,
// without evaluating it. Used by the resolver to walk a pointer one hop
// at a time while re-basing against any subresource $id encountered along
// the way (spec.md §4.6 step 4).
func Tokens(pointer string) []string {
	if pointer == "" {
		return nil
	}
	raw := strings.Split(pointer[1:], "/")
	tokens := make([]string, len(raw))
	for i, r := range raw {
		tokens[i] = decodeToken(r)
	}
	return tokens
}

func decodeToken(raw string) string {
	if !strings.ContainsRune(raw, '~') {
		return raw
	}
	raw = strings.ReplaceAll(raw, "~1", "/")
	raw = strings.ReplaceAll(raw, "~0", "~")
	return raw
}

// Step descends one decoded token into v. It is exported so the resolver
// can interleave stepping with subresource re-scoping.
func Step(v jsonvalue.Value, token string) (jsonvalue.Value, error) {
	return step(v, token)
}

func step(v jsonvalue.Value, token string) (jsonvalue.Value, error) {
	switch v.Kind() {
	case jsonvalue.Object:
		next, ok := v.Lookup(token)
		if !ok {
			return jsonvalue.Value{}, &NotFound{Token: token}
		}
		return next, nil
	case jsonvalue.Array:
		idx, err := arrayIndex(token)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		elems := v.Elems()
		if idx < 0 || idx >= len(elems) {
			return jsonvalue.Value{}, &NotFound{Token: token}
		}
		return elems[idx], nil
	default:
		return jsonvalue.Value{}, &NotFound{Token: token}
	}
}

func arrayIndex(token string) (int, error) {
	if token == "" || (len(token) > 1 && token[0] == '0') {
		return -1, &NotFound{Token: token}
	}
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return -1, &NotFound{Token: token}
	}
	return n, nil
}
