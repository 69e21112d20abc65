package cpu

import (
	"errors"

	"github.com/ezrec/synacor/translate"
)

var f = translate.From

var (
	// Value model errors
	ErrOutOfRange      = errors.New(f("value out of range"))
	ErrInvalidRegister = errors.New(f("register invalid"))
	ErrAddressBounds   = errors.New(f("address out of bounds"))

	// Cpu errors
	ErrHalted         = errors.New(f("cpu halted"))
	ErrIllegalOpcode  = errors.New(f("illegal opcode"))
	ErrStackUnderflow = errors.New(f("stack underflow"))
	ErrStackFull      = errors.New(f("stack full"))
	ErrDivideByZero   = errors.New(f("divide by zero"))
	ErrStuck          = errors.New(f("instruction jumps to itself"))
	ErrChannelInvalid = errors.New(f("channel invalid"))
	ErrInputClosed    = errors.New(f("input closed"))
	ErrOutputFailed   = errors.New(f("output failed"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrOpcodeMissing   = errors.New(f("opcode missing"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
)

// ErrFault describes why, and where, the cpu halted abnormally.
type ErrFault struct {
	Address Word   // Address of the faulting instruction.
	Opcode  Word   // Raw opcode word at Address.
	Text    string // Disassembly of the instruction, if it could be decoded.
	Err     error  // Cause of the fault.
}

func (err *ErrFault) Error() string {
	if len(err.Text) == 0 {
		return f("fault at %v (opcode %v) %v", uint16(err.Address), uint16(err.Opcode), err.Err)
	}
	return f("fault at %v '%v' %v", uint16(err.Address), err.Text, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrArgCount reports an operand count that does not match the opcode.
type ErrArgCount struct {
	Opcode   Opcode
	Expected int
	Actual   int
}

func (err ErrArgCount) Error() string {
	return f("'%v' expects %d arguments, not %d", err.Opcode.String(), err.Expected, err.Actual)
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value or register", string(err))
}

type ErrValueRange string

func (err ErrValueRange) Error() string {
	return f("'%v' is out of range", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrWord identifies the memory cell that caused an error.
type ErrWord struct {
	Address Word
	Value   Word
	Err     error
}

func (err ErrWord) Error() string {
	return f("word %v at address %v %v", uint16(err.Value), uint16(err.Address), err.Err)
}

func (err ErrWord) Unwrap() error {
	return err.Err
}
