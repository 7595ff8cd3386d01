package stdlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fusabi-lang/fusabi/internal/ast"
)

// These two modules are tested with testify/assert rather than plain
// t.Fatalf, grounded on the direct testify/assert usage found elsewhere in
// the retrieved pack (go-probe's probetest harness) rather than on the
// teacher, which never imports testify directly — see DESIGN.md.

func TestUuidNewIsValid(t *testing.T) {
	prog := &ast.Program{
		File: "t.fsx",
		Tail: app(field(ident("Uuid"), "isValid"), app(field(ident("Uuid"), "new"))),
	}
	got := run(t, prog)
	assert.True(t, got.IsBool())
	assert.True(t, got.AsBool(), "a freshly generated Uuid should parse as valid")
}

func TestUuidIsValidRejectsGarbage(t *testing.T) {
	prog := &ast.Program{
		File: "t.fsx",
		Tail: app(field(ident("Uuid"), "isValid"), strLit("not-a-uuid")),
	}
	got := run(t, prog)
	assert.True(t, got.IsBool())
	assert.False(t, got.AsBool())
}

func TestYamlEncodeDecodeRoundTrip(t *testing.T) {
	// Yaml.decode (Yaml.encode [1; 2; 3])
	encoded := app(field(ident("Yaml"), "encode"), &ast.ListLit{
		Elements: []ast.Expr{intLit(1), intLit(2), intLit(3)},
		TSpan:    sp(),
	})
	prog := &ast.Program{
		File: "t.fsx",
		Tail: app(field(ident("Result"), "isOk"), app(field(ident("Yaml"), "decode"), encoded)),
	}
	got := run(t, prog)
	assert.True(t, got.IsBool())
	assert.True(t, got.AsBool(), "round-tripping a list through Yaml.encode/decode should succeed")
}

func TestYamlDecodeReportsParseError(t *testing.T) {
	prog := &ast.Program{
		File: "t.fsx",
		Tail: app(field(ident("Result"), "isOk"), app(field(ident("Yaml"), "decode"), strLit("[unterminated"))),
	}
	got := run(t, prog)
	assert.True(t, got.IsBool())
	assert.False(t, got.AsBool(), "malformed YAML should decode to an Err, not panic")
}
