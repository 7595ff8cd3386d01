package stdlib

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// yamlEntries mirrors the teacher's builtins_yaml.go: gopkg.in/yaml.v3
// decodes into maps/slices/scalars the way encoding/json does, except
// integers come back as Go int rather than float64, handled separately in
// yamlInfer so `Yaml.decode "x: 1"` yields an Int rather than a Float.
func yamlEntries() []entry {
	return []entry{
		{"decode", hostfn.Native{Name: "Yaml.decode", Arity: 1, Fn: yamlDecode}},
		{"encode", hostfn.Native{Name: "Yaml.encode", Arity: 1, Fn: yamlEncode}},
	}
}

func yamlDecode(c hostfn.Caller, args []value.Value) (value.Value, error) {
	content, err := argString(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	var decoded interface{}
	if err := yaml.Unmarshal([]byte(content), &decoded); err != nil {
		return errVariant(c, newString(c, fmt.Sprintf("YAML parse error: %v", err))), nil
	}
	return ok(c, yamlInfer(c, decoded)), nil
}

func yamlEncode(c hostfn.Caller, args []value.Value) (value.Value, error) {
	if len(args) < 1 {
		return value.Value{}, fmt.Errorf("Yaml.encode: expected 1 argument")
	}
	native, err := valueToJSON(args[0])
	if err != nil {
		return value.Value{}, err
	}
	bytes, err := yaml.Marshal(native)
	if err != nil {
		return value.Value{}, fmt.Errorf("Yaml.encode: %w", err)
	}
	return newString(c, string(bytes)), nil
}

func yamlInfer(c hostfn.Caller, data interface{}) value.Value {
	switch v := data.(type) {
	case nil:
		return value.UnitVal()
	case bool:
		return value.BoolVal(v)
	case int:
		return value.IntVal(int64(v))
	case int64:
		return value.IntVal(v)
	case float64:
		return value.FloatVal(v)
	case string:
		return newString(c, v)
	case []interface{}:
		out := make([]value.Value, len(v))
		for i, item := range v {
			out[i] = yamlInfer(c, item)
		}
		return newList(c, out)
	case map[string]interface{}:
		names := make([]string, 0, len(v))
		for k := range v {
			names = append(names, k)
		}
		sort.Strings(names)
		values := make([]value.Value, len(names))
		for i, k := range names {
			values[i] = yamlInfer(c, v[k])
		}
		return newRecord(c, names, values)
	case map[interface{}]interface{}:
		names := make([]string, 0, len(v))
		for k := range v {
			names = append(names, fmt.Sprintf("%v", k))
		}
		sort.Strings(names)
		byName := make(map[string]interface{}, len(v))
		for k, val := range v {
			byName[fmt.Sprintf("%v", k)] = val
		}
		values := make([]value.Value, len(names))
		for i, name := range names {
			values[i] = yamlInfer(c, byName[name])
		}
		return newRecord(c, names, values)
	default:
		return value.UnitVal()
	}
}
