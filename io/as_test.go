package io

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mockSink struct {
	sendCalls []rune
	sendError error
	limit     int
}

func (ms *mockSink) Send(value rune) error {
	if ms.limit > 0 && len(ms.sendCalls) >= ms.limit {
		return ms.sendError
	}
	ms.sendCalls = append(ms.sendCalls, value)
	return nil
}

func TestSendString(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		name     string
		text     string
		expected []rune
	}{
		{
			name:     "empty",
			text:     "",
			expected: nil,
		},
		{
			name:     "ascii",
			text:     "look\n",
			expected: []rune{'l', 'o', 'o', 'k', '\n'},
		},
		{
			name:     "multibyte",
			text:     "café",
			expected: []rune{'c', 'a', 'f', 0xc3, 0xa9},
		},
	}

	for _, test := range tests {
		sink := &mockSink{}
		n, err := SendString(sink, test.text)
		assert.NoError(err, test.name)
		assert.Equal(len(test.expected), n, test.name)
		assert.Equal(test.expected, sink.sendCalls, test.name)
	}
}

func TestSendString_Error(t *testing.T) {
	assert := assert.New(t)

	broken := errors.New("broken")
	sink := &mockSink{limit: 2, sendError: broken}

	n, err := SendString(sink, "abcd")
	assert.ErrorIs(err, broken)
	assert.Equal(2, n)
	assert.Equal([]rune{'a', 'b'}, sink.sendCalls)
}

// receiveAll collects characters from src until it reports an error.
func receiveAll(src Source) (values []rune, err error) {
	for {
		var value rune
		value, err = src.Receive()
		if err != nil {
			return
		}
		values = append(values, value)
	}
}

func TestChain(t *testing.T) {
	assert := assert.New(t)

	script := NewTemporary(16)
	script.WriteString("doorway\n")
	console := &Tape{Input: strings.NewReader("inv\n")}
	echo := NewTemporary(16)

	chain := &Chain{Sources: []Source{script, console}, Echo: echo}

	values, err := receiveAll(chain)
	assert.ErrorIs(err, io.EOF)
	assert.Equal("doorway\ninv\n", string(values))
	assert.Equal("doorway\n", echo.String())

	_, err = chain.Receive()
	assert.ErrorIs(err, io.EOF)
}

func TestChain_Empty(t *testing.T) {
	assert := assert.New(t)

	chain := &Chain{}
	_, err := chain.Receive()
	assert.ErrorIs(err, io.EOF)

	// An empty first source falls straight through.
	chain = &Chain{Sources: []Source{NewTemporary(4), NewTemporary(4)}}
	_, err = chain.Receive()
	assert.ErrorIs(err, io.EOF)
}

func TestChain_Error(t *testing.T) {
	assert := assert.New(t)

	// Errors other than io.EOF stop the chain.
	chain := &Chain{Sources: []Source{&Tape{}, NewTemporary(1)}}
	_, err := chain.Receive()
	assert.ErrorIs(err, ErrChannelMissing)
}
