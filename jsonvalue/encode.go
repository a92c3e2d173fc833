package jsonvalue

import (
	"encoding/json"
	"strings"
)

// Encode renders v back to compact JSON text. It exists for debugging and
// for the demonstration CLI, not for round-tripping fidelity of number
// formatting beyond what was originally read (Number already stores the
// exact literal seen by the decoder).
func (v Value) Encode() string {
	var b strings.Builder
	v.encodeTo(&b)
	return b.String()
}

func (v Value) encodeTo(b *strings.Builder) {
	switch v.kind {
	case Null:
		b.WriteString("null")
	case Bool:
		if v.boolean {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Number:
		b.WriteString(v.number)
	case String:
		b.WriteString(quote(v.str))
	case Array:
		b.WriteByte('[')
		for i, e := range v.elems {
			if i > 0 {
				b.WriteByte(',')
			}
			e.encodeTo(b)
		}
		b.WriteByte(']')
	case Object:
		b.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(m.Key))
			b.WriteByte(':')
			m.Value.encodeTo(b)
		}
		b.WriteByte('}')
	}
}

// quote renders s as a JSON string literal.
func quote(s string) string {
	out, _ := json.Marshal(s)
	return string(out)
}
