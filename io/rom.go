package io

import (
	"encoding/binary"
	"io"
)

// Rom is a program image: a flat sequence of little-endian 16-bit words
// with no header, loaded at address 0.
type Rom struct {
	Data []uint16
}

// UnmarshalBinary decodes an image. The byte length must be even.
func (rc *Rom) UnmarshalBinary(data []byte) (err error) {
	if len(data)%2 != 0 {
		err = ErrImageOdd
		return
	}

	rc.Data = make([]uint16, len(data)/2)
	for n := range rc.Data {
		rc.Data[n] = binary.LittleEndian.Uint16(data[n*2:])
	}

	return
}

// MarshalBinary encodes the image.
func (rc *Rom) MarshalBinary() (data []byte, err error) {
	data = make([]byte, 0, len(rc.Data)*2)
	for _, word := range rc.Data {
		data = binary.LittleEndian.AppendUint16(data, word)
	}
	return
}

// ReadFrom replaces the image with the entire contents of r.
func (rc *Rom) ReadFrom(r io.Reader) (n int64, err error) {
	data, err := io.ReadAll(r)
	n = int64(len(data))
	if err != nil {
		return
	}

	err = rc.UnmarshalBinary(data)
	return
}

// WriteTo writes the encoded image to w.
func (rc *Rom) WriteTo(w io.Writer) (n int64, err error) {
	data, _ := rc.MarshalBinary()
	written, err := w.Write(data)
	n = int64(written)
	return
}
