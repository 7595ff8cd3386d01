// Package stdlib registers Fusabi's built-in modules (spec.md §4.8): each
// module is a global Record whose fields are NativeFn handles, backed by an
// entry in the host registry under a "Module.field" qualified name. The
// core specification only requires the registration contract; this package
// carries enough concrete modules to exercise the domain stack named in
// SPEC_FULL.md §4.8 and the end-to-end scenarios of spec.md §8.
package stdlib

import (
	"github.com/fusabi-lang/fusabi/internal/heap"
	"github.com/fusabi-lang/fusabi/internal/hostfn"
	"github.com/fusabi-lang/fusabi/internal/value"
)

// Register installs every stdlib module into natives (for Call dispatch)
// and globals (for LoadGlobal "List" / GetField "map" lookup), following
// the teacher's pattern of one registration function per builtin family
// (e.g. registerListBuiltins in the teacher's internal/vm/builtins_list.go).
func Register(natives *hostfn.Registry, globals map[string]value.Value) {
	globals["List"] = module(natives, "List", listEntries())
	globals["String"] = module(natives, "String", stringEntries())
	globals["Option"] = module(natives, "Option", optionEntries())
	globals["Result"] = module(natives, "Result", resultEntries())
	globals["Array"] = module(natives, "Array", arrayEntries())
	globals["Dict"] = module(natives, "Dict", dictEntries())
	globals["Json"] = module(natives, "Json", jsonEntries())
	globals["Http"] = module(natives, "Http", httpEntries())
	globals["Grpc"] = module(natives, "Grpc", grpcEntries())
	globals["Csv"] = module(natives, "Csv", csvEntries())
	globals["Yaml"] = module(natives, "Yaml", yamlEntries())
	globals["Uuid"] = module(natives, "Uuid", uuidEntries())
}

// entry pairs a module field name with its Native implementation. A plain
// slice (rather than a map) keeps registration order — and therefore the
// backing Record's field order — deterministic.
type entry struct {
	field  string
	native hostfn.Native
}

// module registers every entry's Native under its qualified name and
// returns a Record value binding each unqualified field name to a NativeFn
// handle (spec.md §4.8: "Modules appear as globals whose values are
// records of NativeFn fields"). These records are permanent fixtures of
// the Engine, always reachable through globals, so they're built directly
// rather than routed through Heap.Register/GC accounting — see DESIGN.md.
func module(natives *hostfn.Registry, name string, entries []entry) value.Value {
	names := make([]string, len(entries))
	values := make([]value.Value, len(entries))
	for i, e := range entries {
		natives.Register(e.native)
		names[i] = e.field
		values[i] = value.ObjVal(heap.NewNativeFn(e.native.Name, e.native.Arity))
	}
	return value.ObjVal(heap.NewRecord(names, values))
}
