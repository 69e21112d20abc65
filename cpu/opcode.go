package cpu

import (
	"slices"
	"strings"
)

// Opcode is the instruction identifier at the start of each instruction.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_HALT = Opcode(0)  // halt
	OP_SET  = Opcode(1)  // set
	OP_PUSH = Opcode(2)  // push
	OP_POP  = Opcode(3)  // pop
	OP_EQ   = Opcode(4)  // eq
	OP_GT   = Opcode(5)  // gt
	OP_JMP  = Opcode(6)  // jmp
	OP_JT   = Opcode(7)  // jt
	OP_JF   = Opcode(8)  // jf
	OP_ADD  = Opcode(9)  // add
	OP_MULT = Opcode(10) // mult
	OP_MOD  = Opcode(11) // mod
	OP_AND  = Opcode(12) // and
	OP_OR   = Opcode(13) // or
	OP_NOT  = Opcode(14) // not
	OP_RMEM = Opcode(15) // rmem
	OP_WMEM = Opcode(16) // wmem
	OP_CALL = Opcode(17) // call
	OP_RET  = Opcode(18) // ret
	OP_OUT  = Opcode(19) // out
	OP_IN   = Opcode(20) // in
	OP_NOOP = Opcode(21) // noop
)

// OP_COUNT is the number of defined opcodes.
const OP_COUNT = int(OP_NOOP) + 1

// opArity is the operand count of each opcode, shared by the cpu, the
// assembler and the disassembler.
var opArity = [OP_COUNT]int{
	OP_HALT: 0,
	OP_SET:  2,
	OP_PUSH: 1,
	OP_POP:  1,
	OP_EQ:   3,
	OP_GT:   3,
	OP_JMP:  1,
	OP_JT:   2,
	OP_JF:   2,
	OP_ADD:  3,
	OP_MULT: 3,
	OP_MOD:  3,
	OP_AND:  3,
	OP_OR:   3,
	OP_NOT:  2,
	OP_RMEM: 2,
	OP_WMEM: 2,
	OP_CALL: 1,
	OP_RET:  0,
	OP_OUT:  1,
	OP_IN:   1,
	OP_NOOP: 0,
}

// opTarget marks the opcodes whose first operand names the register
// written.
var opTarget = [OP_COUNT]bool{
	OP_SET:  true,
	OP_POP:  true,
	OP_EQ:   true,
	OP_GT:   true,
	OP_ADD:  true,
	OP_MULT: true,
	OP_MOD:  true,
	OP_AND:  true,
	OP_OR:   true,
	OP_NOT:  true,
	OP_RMEM: true,
	OP_IN:   true,
}

// opMap maps mnemonics to opcodes.
var opMap = func() map[string]Opcode {
	ops := make(map[string]Opcode, OP_COUNT)
	for op := range Opcode(OP_COUNT) {
		ops[op.String()] = op
	}
	return ops
}()

// ParseOpcode returns the opcode for a mnemonic.
func ParseOpcode(mnemonic string) (op Opcode, ok bool) {
	op, ok = opMap[mnemonic]
	return
}

// Valid returns true if the opcode is defined.
func (op Opcode) Valid() bool {
	return op >= 0 && int(op) < OP_COUNT
}

// Arity returns the number of operands following the opcode.
func (op Opcode) Arity() int {
	return opArity[op]
}

// Target returns true if the first operand must be a register.
func (op Opcode) Target() bool {
	return opTarget[op]
}

// Code is a single decoded instruction.
type Code struct {
	Opcode   Opcode
	Operands []Word
}

// MakeCode creates an instruction from an opcode and its operands.
func MakeCode(op Opcode, operands ...Word) Code {
	return Code{Opcode: op, Operands: operands}
}

// Len returns the number of memory words the instruction occupies.
func (code Code) Len() int {
	return 1 + len(code.Operands)
}

// Words returns the encoded instruction.
func (code Code) Words() (words []Word) {
	words = make([]Word, 0, code.Len())
	words = append(words, Word(code.Opcode))
	words = append(words, code.Operands...)
	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	words := make([]string, 0, code.Len())
	words = append(words, code.Opcode.String())
	for _, operand := range code.Operands {
		words = append(words, operand.Operand())
	}
	return strings.Join(words, " ")
}

// Decode reads the instruction at address. Operands are not validated;
// an undefined opcode is returned along with ErrIllegalOpcode.
func Decode(mem *Memory, address Word) (code Code, err error) {
	word, err := mem.Get(address)
	if err != nil {
		return
	}

	code.Opcode = Opcode(word)
	if !code.Opcode.Valid() {
		err = ErrIllegalOpcode
		return
	}

	arity := code.Opcode.Arity()
	if int(address)+arity >= mem.Len() {
		err = ErrAddressBounds
		return
	}

	if arity > 0 {
		start := int(address) + 1
		code.Operands = slices.Clone(mem.Data[start : start+arity])
	}
	return
}
