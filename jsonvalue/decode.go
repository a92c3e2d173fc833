package jsonvalue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Decode reads exactly one JSON value from r, preserving object key order.
//
// A plain json.Unmarshal into map[string]any would lose that order, so
// this walks the token stream by hand (json.Decoder.Token), building the
// ordered Value tree directly.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

// DecodeString is a convenience for Decode(strings.NewReader(s)).
func DecodeString(s string) (Value, error) {
	return Decode(bytes.NewReader([]byte(s)))
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return valueFromToken(dec, tok)
}

func valueFromToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Value{}, fmt.Errorf("jsonvalue: unexpected delimiter %q", t)
		}
	case nil:
		return Nil, nil
	case bool:
		return NewBool(t), nil
	case json.Number:
		return NewNumber(t.String()), nil
	case string:
		return NewString(t), nil
	default:
		return Value{}, fmt.Errorf("jsonvalue: unexpected token %T", tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	var members []Member
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("jsonvalue: object key is %T, not string", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		members = append(members, Member{Key: key, Value: val})
	}
	// consume the closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Value{kind: Object, members: members}, nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	var elems []Value
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, val)
	}
	// consume the closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Value{kind: Array, elems: elems}, nil
}
