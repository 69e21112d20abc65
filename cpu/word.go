package cpu

import (
	"fmt"
)

// Word is the unit of storage in memory, registers and the stack.
type Word uint16

const (
	WORD_MODULUS   = 0x8000       // Arithmetic is modulo 2^15.
	WORD_MAX       = Word(0x7fff) // Largest literal value.
	REGISTER_BASE  = Word(0x8000) // Operand encoding of register 'a'.
	REGISTER_COUNT = 8            // Registers 'a' through 'h'.

	OPERAND_MAX = REGISTER_BASE + REGISTER_COUNT - 1 // Largest valid operand.
)

// IsLiteral returns true if the operand is a literal value.
func (w Word) IsLiteral() bool {
	return w <= WORD_MAX
}

// IsRegister returns true if the operand names a register.
func (w Word) IsRegister() bool {
	return w >= REGISTER_BASE && w <= OPERAND_MAX
}

// Valid returns true if the word is a literal or a register reference.
func (w Word) Valid() bool {
	return w <= OPERAND_MAX
}

// Register returns the register index of a register operand.
func (w Word) Register() int {
	return int(w - REGISTER_BASE)
}

// MakeRegister returns the operand encoding of a register index.
func MakeRegister(index int) Word {
	return REGISTER_BASE + Word(index)
}

// Operand renders an operand as assembler text: a decimal literal, or a
// register name 'a' through 'h'.
func (w Word) Operand() string {
	if w.IsRegister() {
		return string(rune('a' + w.Register()))
	}
	return fmt.Sprintf("%d", uint16(w))
}
