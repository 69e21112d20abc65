package io

import (
	"errors"

	"github.com/ezrec/synacor/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull    = errors.New(f("channel full"))
	ErrChannelMissing = errors.New(f("channel has no backing stream"))

	// Image errors
	ErrImageOdd = errors.New(f("image has an odd number of bytes"))
)
