// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"

	"github.com/ezrec/synacor/cpu"
	"github.com/ezrec/synacor/io"
)

// Status summarizes a finished, or interrupted, run.
type Status struct {
	Reason cpu.HaltReason // Why the cpu stopped, or HALT_NONE.
	Fault  *cpu.ErrFault  // Set when Reason is HALT_FAULT.
	Ticks  int            // Instructions executed.
}

func (st Status) String() string {
	if st.Fault != nil {
		return f("%v after %d instructions: %v", st.Reason, st.Ticks, st.Fault)
	}
	return f("%v after %d instructions", st.Reason, st.Ticks)
}

// Emulator state. CPU + program image + IO channels.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of the loaded program, if it was assembled.

	Rom       io.Rom       // Pristine program image.
	Tape      io.Tape      // Console IO channel.
	Temporary io.Temporary // Scripted input, consumed before Tape.Input.
	Echo      bool         // If set, scripted input is copied to Tape.Output.

	Budget     int // Instructions allowed since reset, or zero for no limit.
	MemorySize int // Minimum memory size in words; the image is zero padded.
	StackLimit int // Maximum stack depth, or zero for no limit.

	input io.Chain
}

// NewEmulator creates a new emulator, with an empty program.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(nil),
		Program: &cpu.Program{},
	}

	return
}

// Load replaces the program image with words. Call Reset to start it.
func (emu *Emulator) Load(words []cpu.Word) (err error) {
	mem, err := cpu.NewMemory(words)
	if err != nil {
		return
	}

	emu.Rom = *mem.Rom()
	emu.Program = &cpu.Program{}

	return
}

// LoadProgram replaces the program image with an assembled program, and
// keeps its listing for error reporting.
func (emu *Emulator) LoadProgram(prog *cpu.Program) (err error) {
	err = emu.Load(prog.Binary())
	if err != nil {
		return
	}

	emu.Program = prog

	return
}

// Script queues text as input, ahead of anything read from Tape.Input.
func (emu *Emulator) Script(text string) (err error) {
	var pending []rune
	for {
		value, rerr := emu.Temporary.Receive()
		if rerr != nil {
			break
		}
		pending = append(pending, value)
	}

	emu.Temporary.Capacity = len(pending) + len(text)
	emu.Temporary.Rewind()

	for _, value := range pending {
		err = emu.Temporary.Send(value)
		if err != nil {
			return
		}
	}

	_, err = emu.Temporary.WriteString(text)
	return
}

// Reset rebuilds memory from the program image, clears the cpu state, and
// connects the IO channels.
func (emu *Emulator) Reset() (err error) {
	mem, err := cpu.NewMemory(cpu.FromRom(&emu.Rom))
	if err != nil {
		return
	}

	if emu.MemorySize > 0 {
		err = mem.Resize(emu.MemorySize)
		if err != nil {
			return
		}
	}

	emu.Cpu.Memory = mem
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Stack.Limit = emu.StackLimit
	emu.Cpu.Reset()

	emu.input = io.Chain{Sources: []io.Source{&emu.Temporary, &emu.Tape}}
	if emu.Echo {
		emu.input.Echo = &emu.Tape
	}

	emu.Cpu.Input = &emu.input
	emu.Cpu.Output = &emu.Tape

	return
}

// Code returns the instruction at the program counter.
func (emu *Emulator) Code() (code cpu.Code) {
	code, _ = cpu.Decode(emu.Cpu.Memory, emu.Cpu.Pc)
	return
}

// LineNo returns the source line of the instruction at the program counter,
// or zero if there is no listing for it.
func (emu *Emulator) LineNo() int {
	if emu.Program == nil {
		return 0
	}

	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Statement == nil {
		return 0
	}

	return dbg.LineNo
}

// Status returns the state of the current run.
func (emu *Emulator) Status() Status {
	return Status{
		Reason: emu.Cpu.Reason,
		Fault:  emu.Cpu.Fault,
		Ticks:  emu.Cpu.Ticks,
	}
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	if emu.Budget > 0 && emu.Cpu.Ticks >= emu.Budget && !emu.Cpu.Halted {
		err = emu.Cpu.Abort(ErrBudget)
	} else {
		err = emu.Cpu.Tick()
	}

	done = emu.Cpu.Halted

	return
}

// Run ticks the emulator until the program halts, faults, exhausts the
// budget, or ctx is done. Cancellation is checked between instructions.
func (emu *Emulator) Run(ctx context.Context) (status Status, err error) {
	for done := emu.Cpu.Halted; !done; {
		ctx_err := ctx.Err()
		if ctx_err != nil {
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: emu.Cpu.Abort(ctx_err)}
			break
		}

		done, err = emu.Tick()
		if err != nil {
			break
		}
	}

	status = emu.Status()
	return
}

// Run executes a program image to completion, reading characters from input
// and writing characters to output as the program requests them.
// A normal halt returns a nil error; a fault returns an *ErrRuntime wrapping
// the *cpu.ErrFault.
func Run(ctx context.Context, words []cpu.Word, input io.Source, output io.Sink) (status Status, err error) {
	emu := NewEmulator()

	err = emu.Load(words)
	if err != nil {
		return
	}

	err = emu.Reset()
	if err != nil {
		return
	}

	emu.Cpu.Input = input
	emu.Cpu.Output = output

	status, err = emu.Run(ctx)
	return
}
