// Package io provides the character streams and program images used by the
// synacor virtual machine. It includes sequential terminal-style I/O (Tape),
// an in-memory character queue (Temporary), and the little-endian program
// image (Rom).
package io

// Source supplies input characters to the machine, one at a time.
type Source interface {
	// Receive blocks until a character is available. At end of input
	// it returns io.EOF.
	Receive() (value rune, err error)
}

// Sink accepts output characters from the machine, in order.
type Sink interface {
	// Send writes a single character.
	Send(value rune) error
}

// Channel is a bidirectional character stream.
type Channel interface {
	Source
	Sink
	// Rewind resets the channel to its initial state.
	Rewind()
}
