package bytecode

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// magic and version identify the .fzb format (spec.md §4.7). Format:
//   magic (4 bytes) "FZB\x01" | version (1 byte) | gob-encoded *Chunk
//
// Grounded on the teacher's internal/vm/bundle.go Serialize/DeserializeAny
// shape (magic + version byte + gob body), simplified to a single Chunk
// since Fusabi's module system is out of scope for the bytecode container
// (spec.md explicitly scopes .fzb to one compiled chunk, not a
// multi-module bundle).
var magic = [4]byte{'F', 'Z', 'B', 0x01}

const currentVersion byte = 1

// FormatError reports a malformed .fzb payload: bad magic, unsupported
// version, or a body that fails to decode. Never guessed at — any mismatch
// is reported, never silently tolerated (spec.md §4.7).
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "fzb format error: " + e.Reason }

func init() {
	gob.Register(&Chunk{})
}

// Serialize encodes a Chunk into the .fzb binary format.
func Serialize(c *Chunk) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Write(magic[:])
	buf.WriteByte(currentVersion)

	enc := gob.NewEncoder(buf)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("fzb gob encoding failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a .fzb payload into a Chunk. Any mismatch in magic or
// version, or any failure to decode the body, returns *FormatError.
func Deserialize(data []byte) (*Chunk, error) {
	if len(data) < 5 {
		return nil, &FormatError{Reason: "payload shorter than header"}
	}
	if data[0] != magic[0] || data[1] != magic[1] || data[2] != magic[2] || data[3] != magic[3] {
		return nil, &FormatError{Reason: fmt.Sprintf("bad magic %x", data[0:4])}
	}

	version := data[4]
	if version != currentVersion {
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported version %d", version)}
	}

	dec := gob.NewDecoder(bytes.NewReader(data[5:]))
	var c Chunk
	if err := dec.Decode(&c); err != nil {
		return nil, &FormatError{Reason: fmt.Sprintf("body decode failed: %v", err)}
	}
	return &c, nil
}

// Sniff reports whether data begins with the .fzb magic, used by the CLI
// to distinguish compiled bytecode from source text (spec.md §7).
func Sniff(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	return data[0] == magic[0] && data[1] == magic[1] && data[2] == magic[2] && data[3] == magic[3]
}
