package io

import (
	"bufio"
	"io"
)

// Tape provides sequential byte I/O over streams.
// Each input byte is received as one character in [0, 255]. Characters
// below 256 are sent as a single byte, and anything larger as UTF-8.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	reader *bufio.Reader
}

var _ Channel = (*Tape)(nil)

// Rewind is not possible on a tape. It only discards input buffered
// from a plain io.Reader; call it after replacing Input.
func (tc *Tape) Rewind() {
	tc.reader = nil
}

// Receive reads the next byte from the input stream.
func (tc *Tape) Receive() (value rune, err error) {
	if tc.Input == nil {
		err = ErrChannelMissing
		return
	}

	br, ok := tc.Input.(io.ByteReader)
	if !ok {
		if tc.reader == nil {
			tc.reader = bufio.NewReaderSize(tc.Input, 256)
		}
		br = tc.reader
	}

	b, err := br.ReadByte()
	if err != nil {
		return
	}

	value = rune(b)
	return
}

// Send writes a character to the output stream immediately.
func (tc *Tape) Send(value rune) (err error) {
	if tc.Output == nil {
		err = ErrChannelMissing
		return
	}

	_, err = tc.Output.Write(appendChar(nil, value))
	return
}
