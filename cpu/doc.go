// Package cpu implements the virtual machine, assembler and disassembler for
// the synacor architecture.
//
// The machine has a 15-bit value space, eight registers (a-h), an unbounded
// stack, and word-addressed memory holding both code and data. Every operand
// in the instruction stream is either a literal (0-32767) or a register
// reference (32768-32775).
//
// The assembler translates one-instruction-per-line mnemonic text into a
// Program, and the disassembler renders memory back into the same text, so
// that the two are inverses of each other.
package cpu
