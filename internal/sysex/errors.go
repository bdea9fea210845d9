package sysex

import "errors"

var (
	ErrShortFrame    = errors.New("sysex: short frame")
	ErrInvalidStart  = errors.New("sysex: missing start-of-exclusive")
	ErrInvalidEnd    = errors.New("sysex: missing end-of-exclusive")
	ErrInvalidVendor = errors.New("sysex: vendor id mismatch")
	ErrDataByte      = errors.New("sysex: data byte has high bit set")
	ErrInvalidHex    = errors.New("sysex: invalid hex text")
)
