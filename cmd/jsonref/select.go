package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/expr-lang/expr"

	"github.com/signadot/jsonref/jsonvalue"
)

// runSelect evaluates an expr-lang expression against the resolved
// value, with the value itself bound to "value" in the expression's
// environment — grounded on eval/script_funcs.go's exprOpts/expr.Eval
// pairing, simplified here to a single bound variable instead of a
// custom function table.
func runSelect(value jsonvalue.Value, source string) error {
	env := map[string]any{"value": toAny(value)}
	result, err := expr.Eval(source, env)
	if err != nil {
		return fmt.Errorf("evaluating -select expression: %w", err)
	}
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding -select result: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

// toAny converts a jsonvalue.Value into the map[string]any/[]any/plain
// shape expr-lang's environment expects; jsonvalue.Value itself is not
// something expr can index into directly.
func toAny(v jsonvalue.Value) any {
	switch v.Kind() {
	case jsonvalue.Null:
		return nil
	case jsonvalue.Bool:
		return v.AsBool()
	case jsonvalue.Number:
		f, err := strconv.ParseFloat(v.AsNumber(), 64)
		if err != nil {
			return v.AsNumber()
		}
		return f
	case jsonvalue.String:
		return v.AsString()
	case jsonvalue.Array:
		elems := v.Elems()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = toAny(e)
		}
		return out
	case jsonvalue.Object:
		out := make(map[string]any, len(v.Members()))
		for _, m := range v.Members() {
			out[m.Key] = toAny(m.Value)
		}
		return out
	default:
		return nil
	}
}
