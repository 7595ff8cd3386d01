// Package bytecode defines the instruction set, constant pool, and Chunk
// layout the compiler emits and the VM executes (spec.md §4.3). The naming
// and enumeration-plus-name-table idiom is grounded on the teacher's
// internal/vm/opcodes.go.
package bytecode

// Op is a single VM instruction opcode.
type Op byte

const (
	// Constants
	OpLoadConst Op = iota
	OpLoadUnit
	OpLoadTrue
	OpLoadFalse

	// Stack manipulation
	OpPop
	OpPopBelow // discard the N stack slots just below the top, keeping the top (scope exit under a kept result)
	OpDup

	// Locals
	OpLoadLocal
	OpStoreLocal

	// Globals
	OpLoadGlobal
	OpStoreGlobal

	// Upvalues
	OpLoadUpvalue
	OpStoreUpvalue
	OpCloseUpvalue

	// Arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg
	OpConcat // String ++ String, and List ++ List

	// Comparison
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	// Logical
	OpNot
	OpAnd
	OpOr

	// Control flow
	OpJump
	OpJumpIfFalse
	OpJumpIfTrue

	// Call
	OpCall
	OpTailCall
	OpReturn

	// Closures
	OpMakeClosure

	// Aggregates
	OpMakeTuple
	OpMakeList
	OpMakeArray
	OpMakeRecord
	OpMakeVariant
	OpExtendRecord // { base with f = v }: [base, v] -> [new record]

	// Access
	OpGetField
	OpGetIndex
	OpSetIndex
	OpTupleGet

	// Pattern matching primitives emitted by the compiler's decision tree
	OpTagEq         // pop variant, push bool: tag == constant
	OpFieldMatch    // pop record, push field value (for nested pattern tests)
	OpListLen       // pop list, push its length as Int
	OpListHead      // pop non-nil list, push head
	OpListTail      // pop non-nil list, push tail (as a List)
	OpListIsNil     // pop list, push bool
	OpVariantPayload // pop variant, push its payload (Unit if it has none)

	// Misc
	OpPrint
	OpMatchFail // pop the scrutinee, raise MatchFailure — emitted past a match's last arm
	OpHalt
)

// Names maps an Op to its mnemonic, used by the disassembler.
var Names = map[Op]string{
	OpLoadConst:    "LOAD_CONST",
	OpLoadUnit:     "LOAD_UNIT",
	OpLoadTrue:     "LOAD_TRUE",
	OpLoadFalse:    "LOAD_FALSE",
	OpPop:          "POP",
	OpPopBelow:     "POP_BELOW",
	OpDup:          "DUP",
	OpLoadLocal:    "LOAD_LOCAL",
	OpStoreLocal:   "STORE_LOCAL",
	OpLoadGlobal:   "LOAD_GLOBAL",
	OpStoreGlobal:  "STORE_GLOBAL",
	OpLoadUpvalue:  "LOAD_UPVALUE",
	OpStoreUpvalue: "STORE_UPVALUE",
	OpCloseUpvalue: "CLOSE_UPVALUE",
	OpAdd:          "ADD",
	OpSub:          "SUB",
	OpMul:          "MUL",
	OpDiv:          "DIV",
	OpMod:          "MOD",
	OpNeg:          "NEG",
	OpConcat:       "CONCAT",
	OpEq:           "EQ",
	OpNe:           "NE",
	OpLt:           "LT",
	OpLe:           "LE",
	OpGt:           "GT",
	OpGe:           "GE",
	OpNot:          "NOT",
	OpAnd:          "AND",
	OpOr:           "OR",
	OpJump:         "JUMP",
	OpJumpIfFalse:  "JUMP_IF_FALSE",
	OpJumpIfTrue:   "JUMP_IF_TRUE",
	OpCall:         "CALL",
	OpTailCall:     "TAIL_CALL",
	OpReturn:       "RETURN",
	OpMakeClosure:  "MAKE_CLOSURE",
	OpMakeTuple:    "MAKE_TUPLE",
	OpMakeList:     "MAKE_LIST",
	OpMakeArray:    "MAKE_ARRAY",
	OpMakeRecord:   "MAKE_RECORD",
	OpMakeVariant:  "MAKE_VARIANT",
	OpExtendRecord: "EXTEND_RECORD",
	OpGetField:     "GET_FIELD",
	OpGetIndex:     "GET_INDEX",
	OpSetIndex:     "SET_INDEX",
	OpTupleGet:     "TUPLE_GET",
	OpTagEq:        "TAG_EQ",
	OpFieldMatch:   "FIELD_MATCH",
	OpListLen:      "LIST_LEN",
	OpListHead:     "LIST_HEAD",
	OpListTail:     "LIST_TAIL",
	OpListIsNil:    "LIST_IS_NIL",
	OpVariantPayload: "VARIANT_PAYLOAD",
	OpPrint:        "PRINT",
	OpMatchFail:    "MATCH_FAIL",
	OpHalt:         "HALT",
}

func (o Op) String() string {
	if n, ok := Names[o]; ok {
		return n
	}
	return "UNKNOWN"
}
