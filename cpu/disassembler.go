package cpu

import (
	"fmt"
	"io"
	"strings"
)

// Disassembler renders memory back into assembler source text.
type Disassembler struct {
	Memory  *Memory
	Lenient bool // Emit undecodable words as '.word' instead of failing.
	Address bool // Append the address of each line as a comment.
}

// Check validates a decoded instruction's operands.
func (code Code) Check() (err error) {
	for _, operand := range code.Operands {
		if !operand.Valid() {
			err = ErrOutOfRange
			return
		}
	}

	if code.Opcode.Target() && len(code.Operands) > 0 && !code.Operands[0].IsRegister() {
		err = ErrInvalidRegister
		return
	}
	return
}

// Next decodes and checks the instruction at address.
func (dis *Disassembler) Next(address Word) (code Code, err error) {
	code, err = Decode(dis.Memory, address)
	if err == nil {
		err = code.Check()
	}
	if err != nil {
		raw, _ := dis.Memory.Get(address)
		err = ErrWord{Address: address, Value: raw, Err: err}
	}
	return
}

// WriteTo writes one line per instruction to w.
func (dis *Disassembler) WriteTo(w io.Writer) (n int64, err error) {
	var line string

	for address := 0; address < dis.Memory.Len(); {
		code, derr := dis.Next(Word(address))
		size := code.Len()
		if derr == nil {
			line = code.String()
		} else if dis.Lenient {
			line = ".word " + dis.Memory.Data[address].Operand()
			size = 1
		} else {
			err = derr
			return
		}

		if dis.Address {
			line = fmt.Sprintf("%v ; %d", line, address)
		}

		var written int
		written, err = io.WriteString(w, line+"\n")
		n += int64(written)
		if err != nil {
			return
		}

		address += size
	}

	return
}

// Decompile returns the assembler source for memory. It fails on any word
// that is not part of a valid instruction.
func Decompile(mem *Memory) (text string, err error) {
	dis := &Disassembler{Memory: mem}

	var sb strings.Builder
	_, err = dis.WriteTo(&sb)
	if err != nil {
		return
	}

	text = sb.String()
	return
}
