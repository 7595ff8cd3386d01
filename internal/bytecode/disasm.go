package bytecode

import (
	"fmt"
	"strings"
)

// widths gives the operand byte-width for opcodes with a fixed-size
// operand; opcodes absent from this map take no operand. OpMakeRecord's
// operand is a field count, followed inline by that many u16 field-name
// constant indices.
var widths = map[Op]int{
	OpLoadConst:    2,
	OpLoadLocal:    2,
	OpStoreLocal:   2,
	OpLoadGlobal:   2,
	OpStoreGlobal:  2,
	OpLoadUpvalue:  2,
	OpStoreUpvalue: 2,
	OpCloseUpvalue: 2,
	OpPopBelow:     2,
	OpJump:         2,
	OpJumpIfFalse:  2,
	OpJumpIfTrue:   2,
	OpCall:         2,
	OpTailCall:     2,
	OpMakeClosure:  2,
	OpMakeTuple:    2,
	OpMakeList:     2,
	OpMakeArray:    2,
	OpMakeRecord:   2,
	OpMakeVariant:  2,
	OpExtendRecord: 2,
	OpGetField:     2,
	OpTupleGet:     2,
	OpTagEq:        2,
	OpFieldMatch:   2,
}

// Disassemble renders a chunk's bytecode as a human-readable listing,
// grounded on the teacher's internal/vm disassembler output shape: one line
// per instruction, offset, mnemonic, operand, and (for LOAD_CONST) the
// constant's printed value.
func Disassemble(c *Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", chunkLabel(c))
	for ip := 0; ip < len(c.Code); {
		ip = disassembleInstr(&b, c, ip)
	}
	return b.String()
}

func chunkLabel(c *Chunk) string {
	if c.Name == "" {
		return "<script>"
	}
	return c.Name
}

func disassembleInstr(b *strings.Builder, c *Chunk, ip int) int {
	op := Op(c.Code[ip])
	fmt.Fprintf(b, "%04d %-16s", ip, op.String())

	width, hasOperand := widths[op]
	if !hasOperand {
		b.WriteByte('\n')
		return ip + 1
	}

	next := ip + 1 + width
	if width == 2 {
		operand := c.ReadU16(ip + 1)
		fmt.Fprintf(b, " %5d", operand)
		if op == OpLoadConst && int(operand) < len(c.Constants) {
			fmt.Fprintf(b, "  ; %s", formatConst(c.Constants[operand]))
		}
		if op == OpMakeRecord {
			next += 2 * int(operand)
		}
	}
	b.WriteByte('\n')
	return next
}

func formatConst(k Const) string {
	switch k.Tag {
	case ConstUnit:
		return "()"
	case ConstBool:
		return fmt.Sprintf("%t", k.B)
	case ConstInt:
		return fmt.Sprintf("%d", k.I)
	case ConstFloat:
		return fmt.Sprintf("%g", k.F)
	case ConstString:
		return fmt.Sprintf("%q", k.S)
	default:
		return "?"
	}
}
