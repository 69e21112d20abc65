package io

import (
	"errors"
	"io"
)

// Chain receives from each of its sources in turn, moving on to the next
// once the current one reports io.EOF. Characters received from any source
// but the last are copied to Echo, if set.
type Chain struct {
	Sources []Source
	Echo    Sink

	index int
}

var _ Source = (*Chain)(nil)

// Receive reads the next character from the current source.
func (ch *Chain) Receive() (value rune, err error) {
	for ch.index < len(ch.Sources) {
		value, err = ch.Sources[ch.index].Receive()
		if errors.Is(err, io.EOF) && ch.index < len(ch.Sources)-1 {
			ch.index++
			continue
		}
		if err != nil {
			return
		}

		if ch.Echo != nil && ch.index < len(ch.Sources)-1 {
			err = ch.Echo.Send(value)
		}
		return
	}

	err = io.EOF
	return
}
