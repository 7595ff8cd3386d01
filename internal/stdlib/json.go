package stdlib

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fusabi-lang/fusabi/internal/heap"
	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// jsonEntries bridges Fusabi values and encoding/json, following the
// teacher's habit (internal/evaluator/builtins_json.go) of a recursive
// value<->any.(interface{}) walk: records become JSON objects, lists and
// arrays become JSON arrays, Strings/Ints/Floats/Bools map directly, Unit
// maps to null.
func jsonEntries() []entry {
	return []entry{
		{"stringify", hostfn.Native{Name: "Json.stringify", Arity: 1, Fn: jsonStringify}},
		{"parse", hostfn.Native{Name: "Json.parse", Arity: 1, Fn: jsonParse}},
	}
}

func jsonStringify(c hostfn.Caller, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Value{}, fmt.Errorf("Json.stringify: expected 1 argument")
	}
	native, err := valueToJSON(args[0])
	if err != nil {
		return value.Value{}, err
	}
	bytes, err := json.Marshal(native)
	if err != nil {
		return value.Value{}, fmt.Errorf("Json.stringify: %w", err)
	}
	return newString(c, string(bytes)), nil
}

func jsonParse(c hostfn.Caller, args []value.Value) (value.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	var decoded interface{}
	if err := json.Unmarshal([]byte(s), &decoded); err != nil {
		return errVariant(c, newString(c, err.Error())), nil
	}
	return ok(c, jsonToValue(c, decoded)), nil
}

func valueToJSON(v value.Value) (interface{}, error) {
	switch {
	case v.IsUnit():
		return nil, nil
	case v.IsBool():
		return v.AsBool(), nil
	case v.IsInt():
		return v.AsInt(), nil
	case v.IsFloat():
		return v.AsFloat(), nil
	case v.IsObj():
		switch o := v.AsObj().(type) {
		case *heap.StringObj:
			return o.Data, nil
		case *heap.ListObj:
			elems := o.ToSlice()
			out := make([]interface{}, len(elems))
			for i, e := range elems {
				converted, err := valueToJSON(e)
				if err != nil {
					return nil, err
				}
				out[i] = converted
			}
			return out, nil
		case *heap.ArrayObj:
			out := make([]interface{}, len(o.Elements))
			for i, e := range o.Elements {
				converted, err := valueToJSON(e)
				if err != nil {
					return nil, err
				}
				out[i] = converted
			}
			return out, nil
		case *heap.RecordObj:
			out := make(map[string]interface{}, len(o.Names))
			for i, name := range o.Names {
				converted, err := valueToJSON(o.Values[i])
				if err != nil {
					return nil, err
				}
				out[name] = converted
			}
			return out, nil
		case *heap.VariantObj:
			if !o.HasPayload {
				return o.Ctor, nil
			}
			payload, err := valueToJSON(o.Payload)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{o.Ctor: payload}, nil
		}
	}
	return nil, fmt.Errorf("Json.stringify: value is not JSON-representable")
}

func jsonToValue(c hostfn.Caller, native interface{}) value.Value {
	switch n := native.(type) {
	case nil:
		return value.UnitVal()
	case bool:
		return value.BoolVal(n)
	case float64:
		return value.FloatVal(n)
	case string:
		return newString(c, n)
	case []interface{}:
		out := make([]value.Value, len(n))
		for i, e := range n {
			out[i] = jsonToValue(c, e)
		}
		return newList(c, out)
	case map[string]interface{}:
		names := make([]string, 0, len(n))
		for k := range n {
			names = append(names, k)
		}
		sort.Strings(names)
		values := make([]value.Value, len(names))
		for i, k := range names {
			values[i] = jsonToValue(c, n[k])
		}
		return newRecord(c, names, values)
	default:
		return value.UnitVal()
	}
}
