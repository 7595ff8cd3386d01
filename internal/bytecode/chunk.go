package bytecode

import "github.com/fusabi-lang/fusabi/internal/token"

// ConstTag identifies which shape a Const holds. The constant pool is
// restricted to this closed, directly-serializable sum (spec.md §3's
// "restricted to Int, Float, Bool, String, Unit" rule) — it never holds a
// live heap.Object, so .fzb bodies never need to serialize pointer graphs.
type ConstTag byte

const (
	ConstUnit ConstTag = iota
	ConstBool
	ConstInt
	ConstFloat
	ConstString
)

// Const is one constant-pool entry. The VM materializes it into a runtime
// value.Value on OP_LOAD_CONST, allocating a fresh heap.StringObj for
// ConstString entries.
type Const struct {
	Tag ConstTag
	B   bool
	I   int64
	F   float64
	S   string
}

func ConstOfUnit() Const           { return Const{Tag: ConstUnit} }
func ConstOfBool(b bool) Const     { return Const{Tag: ConstBool, B: b} }
func ConstOfInt(i int64) Const     { return Const{Tag: ConstInt, I: i} }
func ConstOfFloat(f float64) Const { return Const{Tag: ConstFloat, F: f} }
func ConstOfString(s string) Const { return Const{Tag: ConstString, S: s} }

// UpvalueDesc tells the VM, for one upvalue slot of a closure being created,
// whether to capture it from the enclosing frame's local slot (IsLocal) or
// from the enclosing function's own upvalue array — grounded on the
// teacher's compiler upvalue-descriptor shape.
type UpvalueDesc struct {
	IsLocal bool
	Index   int
}

// Chunk is one compiled function body: its code, constant pool, and the
// metadata the VM needs to set up a call frame (spec.md §4.3/§4.4).
type Chunk struct {
	Name string
	File string

	Code  []byte
	Spans []token.Span // Spans[i] is the source span for the instruction starting at Code[i]; only instruction-start offsets are populated

	Constants []Const

	Arity      int // required parameter count for this compiled lambda
	LocalCount int // stack slots to reserve for locals+params on call
	Upvalues   []UpvalueDesc

	// NestedChunks holds every lambda/let-bound function literal compiled
	// within this chunk's body, looked up by name when OP_MAKE_CLOSURE
	// constructs a closure over one of them.
	NestedChunks []*Chunk
}

// AddNestedChunk registers a compiled function literal as a child of this
// chunk and returns its name (used as the OP_MAKE_CLOSURE operand key).
func (c *Chunk) AddNestedChunk(child *Chunk) string {
	c.NestedChunks = append(c.NestedChunks, child)
	return child.Name
}

// NewChunk creates an empty chunk ready for the compiler to emit into.
func NewChunk(name, file string) *Chunk {
	return &Chunk{Name: name, File: file}
}

// AddConstant interns-by-append and returns the new constant's pool index.
// The compiler does not currently dedupe; pool size is bounded by source
// literal count, not runtime allocation volume.
func (c *Chunk) AddConstant(k Const) int {
	c.Constants = append(c.Constants, k)
	return len(c.Constants) - 1
}

// Emit appends one opcode byte and returns its offset, recording span for
// disassembly and runtime error reporting.
func (c *Chunk) Emit(op Op, span token.Span) int {
	offset := len(c.Code)
	c.Code = append(c.Code, byte(op))
	c.growSpans(offset, span)
	return offset
}

// EmitByte appends a raw operand byte (no span recorded — operands are part
// of the instruction whose span was recorded at Emit).
func (c *Chunk) EmitByte(b byte) int {
	offset := len(c.Code)
	c.Code = append(c.Code, b)
	return offset
}

// EmitU16 appends a big-endian two-byte operand, used by jump targets and
// constant/local/upvalue indices beyond 256.
func (c *Chunk) EmitU16(n uint16) int {
	offset := len(c.Code)
	c.Code = append(c.Code, byte(n>>8), byte(n))
	return offset
}

// PatchU16 overwrites a previously-emitted two-byte operand at offset, used
// to back-patch forward jump targets once the jump destination is known.
func (c *Chunk) PatchU16(offset int, n uint16) {
	c.Code[offset] = byte(n >> 8)
	c.Code[offset+1] = byte(n)
}

// ReadU16 reads a big-endian two-byte operand at offset.
func (c *Chunk) ReadU16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}

func (c *Chunk) growSpans(offset int, span token.Span) {
	for len(c.Spans) <= offset {
		c.Spans = append(c.Spans, token.Span{})
	}
	c.Spans[offset] = span
}

// SpanAt returns the span recorded for the instruction starting at ip, or a
// zero Span if none was recorded at that exact offset.
func (c *Chunk) SpanAt(ip int) token.Span {
	if ip < 0 || ip >= len(c.Spans) {
		return token.Span{}
	}
	return c.Spans[ip]
}
