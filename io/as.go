package io

import (
	"unicode/utf8"
)

// SendString sends each byte of text to the sink, in order.
// n is the number of bytes sent before any error.
func SendString(sink Sink, text string) (n int, err error) {
	for n < len(text) {
		err = sink.Send(rune(text[n]))
		if err != nil {
			return
		}
		n++
	}
	return
}

// appendChar encodes a character: values below 256 as one byte, anything
// larger as UTF-8.
func appendChar(buf []byte, value rune) []byte {
	if value >= 0 && value < 256 {
		return append(buf, byte(value))
	}
	return utf8.AppendRune(buf, value)
}
