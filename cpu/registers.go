package cpu

import (
	"fmt"
	"strings"
)

// Registers is the bank of eight general-purpose registers, 'a' through 'h'.
type Registers [REGISTER_COUNT]Word

// Resolve returns the value of an operand: literals are their own value,
// register references read the register.
func (reg *Registers) Resolve(operand Word) (value Word, err error) {
	switch {
	case operand.IsLiteral():
		value = operand
	case operand.IsRegister():
		value = reg[operand.Register()]
	default:
		err = ErrOutOfRange
	}

	return
}

// Write stores value into the register named by operand.
func (reg *Registers) Write(operand Word, value Word) (err error) {
	if !operand.IsRegister() {
		err = ErrInvalidRegister
		return
	}

	if !value.IsLiteral() {
		err = ErrOutOfRange
		return
	}

	reg[operand.Register()] = value
	return
}

// Reset zeroes all registers.
func (reg *Registers) Reset() {
	clear(reg[:])
}

// String returns the register bank as "a=0 b=1 ...".
func (reg *Registers) String() string {
	parts := make([]string, len(reg))
	for n, value := range reg {
		parts[n] = fmt.Sprintf("%c=%d", 'a'+n, value)
	}
	return strings.Join(parts, " ")
}
