package cpu

import (
	"errors"
	"fmt"
	"log"

	"github.com/ezrec/synacor/io"
)

// Source is the character input consumed by the 'in' instruction.
type Source io.Source

// Sink is the character output written by the 'out' instruction.
type Sink io.Sink

// HaltReason records why the cpu stopped.
type HaltReason int

const (
	HALT_NONE   = HaltReason(0) // Still running.
	HALT_OPCODE = HaltReason(1) // Executed 'halt'.
	HALT_RETURN = HaltReason(2) // Executed 'ret' with an empty stack.
	HALT_FAULT  = HaltReason(3) // Stopped by a fault.
)

func (hr HaltReason) String() string {
	switch hr {
	case HALT_NONE:
		return "running"
	case HALT_OPCODE:
		return "halt"
	case HALT_RETURN:
		return "return"
	case HALT_FAULT:
		return "fault"
	}
	return fmt.Sprintf("HaltReason(%d)", int(hr))
}

// Normal returns true if the cpu halted without a fault.
func (hr HaltReason) Normal() bool {
	return hr == HALT_OPCODE || hr == HALT_RETURN
}

// Cpu is the execution context for a single run of a program.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   *Memory   // Program and data.
	Register Registers // Register bank.
	Stack    Stack     // Stack simulation.
	Pc       Word      // Address of the next instruction.

	Input  Source // Character source for 'in'.
	Output Sink   // Character sink for 'out'.

	Halted bool       // Set once the cpu has stopped.
	Reason HaltReason // Why the cpu stopped.
	Fault  *ErrFault  // Fault that stopped the cpu, if any.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a cpu that executes mem.
func NewCpu(mem *Memory) (cpu *Cpu) {
	if mem == nil {
		mem = &Memory{}
	}

	cpu = &Cpu{
		Memory: mem,
	}

	return
}

// Reset clears the registers and stack, and restarts execution at address 0.
// Memory is left untouched.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Register.Reset()
	cpu.Stack.Reset()
	cpu.Pc = 0
	cpu.Halted = false
	cpu.Reason = HALT_NONE
	cpu.Fault = nil
	cpu.Ticks = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var strval string

	code, err := Decode(cpu.Memory, cpu.Pc)
	if err == nil {
		strval = code.String()
	} else {
		strval = "?"
	}
	text += fmt.Sprintf("% 5s: %05d %v\n", "pc", cpu.Pc, strval)

	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %05d\n", string(rune('a'+n)), val)
	}

	val, ok := cpu.Stack.Peek()
	if ok {
		strval = fmt.Sprintf("%05d", val)
	} else {
		strval = "-----"
	}
	text += fmt.Sprintf("% 5s: %v (depth %d)\n", "stack", strval, cpu.Stack.Len())

	text += fmt.Sprintf("% 5s: %v\n", "state", cpu.Reason)

	return
}

// halt stops the cpu.
func (cpu *Cpu) halt(reason HaltReason) {
	cpu.Halted = true
	cpu.Reason = reason

	if cpu.Verbose {
		log.Printf("cpu: %v at %05d", reason, cpu.Pc)
	}
}

// fault stops the cpu, recording the instruction at address and the cause.
func (cpu *Cpu) fault(address Word, code Code, cause error) (err *ErrFault) {
	raw, rerr := cpu.Memory.Get(address)

	err = &ErrFault{
		Address: address,
		Opcode:  raw,
		Err:     cause,
	}

	if rerr == nil && code.Opcode.Valid() && len(code.Operands) == code.Opcode.Arity() {
		err.Text = code.String()
	}

	cpu.Fault = err
	cpu.halt(HALT_FAULT)

	return
}

// Abort stops a running cpu with a fault at the current instruction.
func (cpu *Cpu) Abort(cause error) (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	// An undecodable instruction leaves the fault without text.
	code, _ := Decode(cpu.Memory, cpu.Pc)
	err = cpu.fault(cpu.Pc, code, cause)
	return
}

// Tick executes a single instruction.
// A nil return with Halted set is a normal halt; faults are returned as
// *ErrFault.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalted
		return
	}

	pc := cpu.Pc

	code, err := Decode(cpu.Memory, pc)
	if err != nil {
		err = cpu.fault(pc, code, err)
		return
	}

	if cpu.Verbose {
		log.Printf("%05d: %v", pc, code)
	}

	next, err := cpu.Execute(code)
	if err != nil {
		err = cpu.fault(pc, code, err)
		return
	}

	cpu.Ticks++

	if cpu.Halted {
		return
	}

	// Only the single-instruction cycle is caught here.
	if next == pc {
		err = cpu.fault(pc, code, ErrStuck)
		return
	}

	cpu.Pc = next

	return
}

// handler executes one opcode. next holds the address of the following
// instruction, and may be replaced to transfer control.
type handler func(cpu *Cpu, args []Word, next *Word) error

var handlers = [OP_COUNT]handler{
	OP_HALT: (*Cpu).opHalt,
	OP_SET:  (*Cpu).opSet,
	OP_PUSH: (*Cpu).opPush,
	OP_POP:  (*Cpu).opPop,
	OP_EQ:   (*Cpu).opEq,
	OP_GT:   (*Cpu).opGt,
	OP_JMP:  (*Cpu).opJmp,
	OP_JT:   (*Cpu).opJt,
	OP_JF:   (*Cpu).opJf,
	OP_ADD:  (*Cpu).opAdd,
	OP_MULT: (*Cpu).opMult,
	OP_MOD:  (*Cpu).opMod,
	OP_AND:  (*Cpu).opAnd,
	OP_OR:   (*Cpu).opOr,
	OP_NOT:  (*Cpu).opNot,
	OP_RMEM: (*Cpu).opRmem,
	OP_WMEM: (*Cpu).opWmem,
	OP_CALL: (*Cpu).opCall,
	OP_RET:  (*Cpu).opRet,
	OP_OUT:  (*Cpu).opOut,
	OP_IN:   (*Cpu).opIn,
	OP_NOOP: (*Cpu).opNoop,
}

// Execute executes a single decoded instruction located at Pc, and returns
// the address of the next instruction.
func (cpu *Cpu) Execute(code Code) (next Word, err error) {
	if !code.Opcode.Valid() {
		err = ErrIllegalOpcode
		return
	}

	if len(code.Operands) != code.Opcode.Arity() {
		err = ErrArgCount{Opcode: code.Opcode, Expected: code.Opcode.Arity(), Actual: len(code.Operands)}
		return
	}

	next = cpu.Pc + Word(code.Len())
	err = handlers[code.Opcode](cpu, code.Operands, &next)

	return
}

// values resolves each operand to its value.
func (cpu *Cpu) values(args []Word) (vals []Word, err error) {
	vals = make([]Word, len(args))
	for n, arg := range args {
		vals[n], err = cpu.Register.Resolve(arg)
		if err != nil {
			return
		}
	}
	return
}

// store resolves the source operands, and writes op's result into the
// register named by the first operand.
func (cpu *Cpu) store(args []Word, op func(vals []Word) (Word, error)) (err error) {
	if !args[0].IsRegister() {
		err = ErrInvalidRegister
		return
	}

	vals, err := cpu.values(args[1:])
	if err != nil {
		return
	}

	result, err := op(vals)
	if err != nil {
		return
	}

	err = cpu.Register.Write(args[0], result)
	return
}

func (cpu *Cpu) opHalt(args []Word, next *Word) (err error) {
	cpu.halt(HALT_OPCODE)
	return
}

func (cpu *Cpu) opSet(args []Word, next *Word) (err error) {
	return cpu.store(args, func(vals []Word) (Word, error) {
		return vals[0], nil
	})
}

func (cpu *Cpu) opPush(args []Word, next *Word) (err error) {
	val, err := cpu.Register.Resolve(args[0])
	if err != nil {
		return
	}

	if !cpu.Stack.Push(val) {
		err = ErrStackFull
	}
	return
}

func (cpu *Cpu) opPop(args []Word, next *Word) (err error) {
	if !args[0].IsRegister() {
		err = ErrInvalidRegister
		return
	}

	// Unlike 'ret', an empty stack here is a fault.
	val, ok := cpu.Stack.Pop()
	if !ok {
		err = ErrStackUnderflow
		return
	}

	err = cpu.Register.Write(args[0], val)
	return
}

func boolWord(cond bool) Word {
	if cond {
		return 1
	}
	return 0
}

func (cpu *Cpu) opEq(args []Word, next *Word) (err error) {
	return cpu.store(args, func(vals []Word) (Word, error) {
		return boolWord(vals[0] == vals[1]), nil
	})
}

func (cpu *Cpu) opGt(args []Word, next *Word) (err error) {
	return cpu.store(args, func(vals []Word) (Word, error) {
		return boolWord(vals[0] > vals[1]), nil
	})
}

func (cpu *Cpu) opJmp(args []Word, next *Word) (err error) {
	target, err := cpu.Register.Resolve(args[0])
	if err != nil {
		return
	}

	*next = target
	return
}

func (cpu *Cpu) opJt(args []Word, next *Word) (err error) {
	vals, err := cpu.values(args)
	if err != nil {
		return
	}

	if vals[0] != 0 {
		*next = vals[1]
	}
	return
}

func (cpu *Cpu) opJf(args []Word, next *Word) (err error) {
	vals, err := cpu.values(args)
	if err != nil {
		return
	}

	if vals[0] == 0 {
		*next = vals[1]
	}
	return
}

func (cpu *Cpu) opAdd(args []Word, next *Word) (err error) {
	return cpu.store(args, func(vals []Word) (Word, error) {
		return (vals[0] + vals[1]) % WORD_MODULUS, nil
	})
}

func (cpu *Cpu) opMult(args []Word, next *Word) (err error) {
	return cpu.store(args, func(vals []Word) (Word, error) {
		return Word((uint32(vals[0]) * uint32(vals[1])) % WORD_MODULUS), nil
	})
}

func (cpu *Cpu) opMod(args []Word, next *Word) (err error) {
	return cpu.store(args, func(vals []Word) (Word, error) {
		if vals[1] == 0 {
			return 0, ErrDivideByZero
		}
		return vals[0] % vals[1], nil
	})
}

func (cpu *Cpu) opAnd(args []Word, next *Word) (err error) {
	return cpu.store(args, func(vals []Word) (Word, error) {
		return vals[0] & vals[1], nil
	})
}

func (cpu *Cpu) opOr(args []Word, next *Word) (err error) {
	return cpu.store(args, func(vals []Word) (Word, error) {
		return vals[0] | vals[1], nil
	})
}

func (cpu *Cpu) opNot(args []Word, next *Word) (err error) {
	return cpu.store(args, func(vals []Word) (Word, error) {
		return vals[0] ^ WORD_MAX, nil
	})
}

func (cpu *Cpu) opRmem(args []Word, next *Word) (err error) {
	return cpu.store(args, func(vals []Word) (Word, error) {
		return cpu.Memory.Get(vals[0])
	})
}

func (cpu *Cpu) opWmem(args []Word, next *Word) (err error) {
	vals, err := cpu.values(args)
	if err != nil {
		return
	}

	err = cpu.Memory.Set(vals[0], vals[1])
	return
}

func (cpu *Cpu) opCall(args []Word, next *Word) (err error) {
	target, err := cpu.Register.Resolve(args[0])
	if err != nil {
		return
	}

	if !cpu.Stack.Push(*next) {
		err = ErrStackFull
		return
	}

	*next = target
	return
}

func (cpu *Cpu) opRet(args []Word, next *Word) (err error) {
	// Unlike 'pop', an empty stack here ends the program.
	target, ok := cpu.Stack.Pop()
	if !ok {
		cpu.halt(HALT_RETURN)
		return
	}

	*next = target
	return
}

func (cpu *Cpu) opOut(args []Word, next *Word) (err error) {
	val, err := cpu.Register.Resolve(args[0])
	if err != nil {
		return
	}

	if cpu.Output == nil {
		err = ErrChannelInvalid
		return
	}

	err = cpu.Output.Send(rune(val))
	if err != nil {
		err = errors.Join(ErrOutputFailed, err)
	}
	return
}

func (cpu *Cpu) opIn(args []Word, next *Word) (err error) {
	if !args[0].IsRegister() {
		err = ErrInvalidRegister
		return
	}

	if cpu.Input == nil {
		err = ErrChannelInvalid
		return
	}

	val, err := cpu.Input.Receive()
	if err != nil {
		err = errors.Join(ErrInputClosed, err)
		return
	}

	if val < 0 || val > rune(WORD_MAX) {
		err = ErrOutOfRange
		return
	}

	err = cpu.Register.Write(args[0], Word(val))
	return
}

func (cpu *Cpu) opNoop(args []Word, next *Word) (err error) {
	return
}
