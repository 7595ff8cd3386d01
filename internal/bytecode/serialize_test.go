package bytecode

import (
	"testing"

	"github.com/fusabi-lang/fusabi/internal/token"
)

func sampleChunk() *Chunk {
	c := NewChunk("main", "sample.fsx")
	idx := c.AddConstant(ConstOfInt(42))
	c.Emit(OpLoadConst, token.Span{})
	c.EmitU16(uint16(idx))
	c.Emit(OpReturn, token.Span{})
	return c
}

func TestSerializeRoundTrip(t *testing.T) {
	original := sampleChunk()

	data, err := Serialize(original)
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !Sniff(data) {
		t.Fatalf("Sniff did not recognize freshly-serialized data")
	}

	decoded, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	if decoded.Name != original.Name || decoded.File != original.File {
		t.Fatalf("round trip lost Name/File: got %+v", decoded)
	}
	if len(decoded.Constants) != 1 || decoded.Constants[0].I != 42 {
		t.Fatalf("round trip lost constants: %+v", decoded.Constants)
	}
	if len(decoded.Code) != len(original.Code) {
		t.Fatalf("round trip lost code bytes")
	}
}

func TestSniffRejectsSourceText(t *testing.T) {
	if Sniff([]byte("let x = 1\n")) {
		t.Fatalf("Sniff should not match plain source text")
	}
	if Sniff(nil) {
		t.Fatalf("Sniff should not match empty input")
	}
}

func TestDeserializeRejectsCorruptedMagic(t *testing.T) {
	data, err := Serialize(sampleChunk())
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	data[0] = 'X'

	_, err = Deserialize(data)
	if err == nil {
		t.Fatalf("expected a FormatError for corrupted magic")
	}
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("expected *FormatError, got %T: %v", err, err)
	}
}

func TestDeserializeRejectsUnsupportedVersion(t *testing.T) {
	data, err := Serialize(sampleChunk())
	if err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	data[4] = 0xFF

	_, err = Deserialize(data)
	if err == nil {
		t.Fatalf("expected a FormatError for unsupported version")
	}
}

func TestDeserializeRejectsShortPayload(t *testing.T) {
	_, err := Deserialize([]byte{'F', 'Z'})
	if err == nil {
		t.Fatalf("expected a FormatError for a too-short payload")
	}
}
