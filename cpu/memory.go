package cpu

import (
	"slices"

	"github.com/ezrec/synacor/io"
)

// Memory is the word-addressed program and data store.
type Memory struct {
	Data []Word
}

// NewMemory creates a memory holding a copy of words.
// Every word must be a literal or a register reference.
func NewMemory(words []Word) (mem *Memory, err error) {
	if len(words) > WORD_MODULUS {
		err = ErrAddressBounds
		return
	}

	for n, word := range words {
		if !word.Valid() {
			err = ErrWord{Address: Word(n), Value: word, Err: ErrOutOfRange}
			return
		}
	}

	mem = &Memory{Data: slices.Clone(words)}
	return
}

// LoadMemory creates a memory from a little-endian program image.
func LoadMemory(data []byte) (mem *Memory, err error) {
	rom := &io.Rom{}
	err = rom.UnmarshalBinary(data)
	if err != nil {
		return
	}

	mem, err = NewMemory(FromRom(rom))
	return
}

// FromRom converts a program image into words.
func FromRom(rom *io.Rom) (words []Word) {
	words = make([]Word, len(rom.Data))
	for n, data := range rom.Data {
		words[n] = Word(data)
	}
	return
}

// Len returns the number of words in memory.
func (mem *Memory) Len() int {
	return len(mem.Data)
}

// Get reads the word at address.
func (mem *Memory) Get(address Word) (value Word, err error) {
	if int(address) >= len(mem.Data) {
		err = ErrAddressBounds
		return
	}

	value = mem.Data[address]
	return
}

// Set writes a literal value to address.
func (mem *Memory) Set(address Word, value Word) (err error) {
	if int(address) >= len(mem.Data) {
		err = ErrAddressBounds
		return
	}

	if !value.IsLiteral() {
		err = ErrOutOfRange
		return
	}

	mem.Data[address] = value
	return
}

// Resize grows memory with zero words up to length, which may not exceed the
// 15-bit address space. Memory is never shrunk.
func (mem *Memory) Resize(length int) (err error) {
	if length > WORD_MODULUS {
		err = ErrAddressBounds
		return
	}

	if length > len(mem.Data) {
		mem.Data = append(mem.Data, make([]Word, length-len(mem.Data))...)
	}

	return
}

// Rom returns a program image of the memory contents.
func (mem *Memory) Rom() (rom *io.Rom) {
	rom = &io.Rom{Data: make([]uint16, len(mem.Data))}
	for n, word := range mem.Data {
		rom.Data[n] = uint16(word)
	}
	return
}
