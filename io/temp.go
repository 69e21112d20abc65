package io

import (
	"io"
)

// Temporary implements a circular buffer of characters.
// It operates as a FIFO queue with a fixed capacity and separate read/write positions.
type Temporary struct {
	Capacity int // Capacity in characters.

	ReadIndex  int
	WriteIndex int
	Size       int
	Data       []rune
}

var _ Channel = (*Temporary)(nil)

// NewTemporary creates an empty queue holding up to capacity characters.
func NewTemporary(capacity int) (temp *Temporary) {
	temp = &Temporary{Capacity: capacity}
	temp.Rewind()
	return
}

// Rewind resets the temporary storage to empty, resetting indices and
// reinitializing the data buffer.
func (temp *Temporary) Rewind() {
	temp.ReadIndex = 0
	temp.WriteIndex = 0
	temp.Size = 0
	temp.Data = make([]rune, temp.Capacity)
}

// Receive removes the oldest character from the buffer.
// Returns io.EOF once the buffer is empty.
func (temp *Temporary) Receive() (value rune, err error) {
	if temp.Size == 0 {
		err = io.EOF
		return
	}

	value = temp.Data[temp.ReadIndex]
	temp.ReadIndex++
	if temp.ReadIndex == temp.Capacity {
		temp.ReadIndex = 0
	}
	temp.Size--

	return
}

// Send appends a character at the current write position.
// Returns ErrChannelFull if the buffer has reached capacity.
func (temp *Temporary) Send(value rune) (err error) {
	if temp.Size >= temp.Capacity {
		err = ErrChannelFull
		return
	}

	if len(temp.Data) != temp.Capacity {
		temp.Rewind()
	}

	temp.Data[temp.WriteIndex] = value

	temp.WriteIndex++
	if temp.WriteIndex == temp.Capacity {
		temp.WriteIndex = 0
	}
	temp.Size++

	return
}

// WriteString queues every byte of text.
func (temp *Temporary) WriteString(text string) (n int, err error) {
	return SendString(temp, text)
}

// String returns the queued characters without consuming them.
func (temp *Temporary) String() string {
	out := make([]byte, 0, temp.Size)
	index := temp.ReadIndex
	for range temp.Size {
		out = appendChar(out, temp.Data[index])
		index++
		if index == temp.Capacity {
			index = 0
		}
	}
	return string(out)
}
