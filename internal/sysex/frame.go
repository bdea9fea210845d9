package sysex

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	StartOfExclusive byte = 0xF0
	EndOfExclusive   byte = 0xF7

	// FrameLen is the size of every request frame: start, vendor id (3),
	// protocol version, device, parameter (2), field B, field A, value (5), end.
	FrameLen = 16

	DefaultDevice          = 0x7F
	DefaultProtocolVersion = 1

	// FloatFlag is raised in the parameter number when the value carries
	// IEEE-754 float bits.
	FloatFlag = 0x2000

	groupBits   = 7
	groupMask   = 0x7F
	valueGroups = 5

	// MaxValue is the largest payload five 7-bit groups can carry.
	MaxValue = 1<<(groupBits*valueGroups) - 1
)

// VendorID is the manufacturer id following the start byte.
var VendorID = [3]byte{0x00, 0x26, 0x05}

// Byte offsets within a frame.
const (
	offVersion   = 4
	offDevice    = 5
	offParamLow  = 6
	offParamHigh = 7
	offFieldB    = 8
	offFieldA    = 9
	offValue     = 10
	offEnd       = offValue + valueGroups
)

// Message is the set of fields a frame carries.
type Message struct {
	ProtocolVersion int
	Device          int
	Parameter       int
	FieldA          int
	FieldB          int
	Value           uint64
}

// Frame is one complete request frame.
type Frame [FrameLen]byte

// Pack serializes m. Every field is masked to its 7-bit groups; range checks
// belong to whoever built m.
func Pack(m Message) Frame {
	var f Frame
	f[0] = StartOfExclusive
	copy(f[1:4], VendorID[:])
	f[offVersion] = byte(m.ProtocolVersion & groupMask)
	f[offDevice] = byte(m.Device & groupMask)
	f[offParamLow] = byte(m.Parameter & groupMask)
	f[offParamHigh] = byte((m.Parameter >> groupBits) & groupMask)
	f[offFieldB] = byte(m.FieldB & groupMask)
	f[offFieldA] = byte(m.FieldA & groupMask)
	putGroups(f[offValue:offEnd], m.Value)
	f[offEnd] = EndOfExclusive
	return f
}

// Unpack validates b as a request frame and returns its fields.
func Unpack(b []byte) (Message, error) {
	if len(b) != FrameLen {
		return Message{}, fmt.Errorf("%w: %d bytes", ErrShortFrame, len(b))
	}
	if b[0] != StartOfExclusive {
		return Message{}, ErrInvalidStart
	}
	if b[offEnd] != EndOfExclusive {
		return Message{}, ErrInvalidEnd
	}
	if b[1] != VendorID[0] || b[2] != VendorID[1] || b[3] != VendorID[2] {
		return Message{}, ErrInvalidVendor
	}
	for i := offVersion; i < offEnd; i++ {
		if b[i] > groupMask {
			return Message{}, fmt.Errorf("%w: offset %d", ErrDataByte, i)
		}
	}
	return Message{
		ProtocolVersion: int(b[offVersion]),
		Device:          int(b[offDevice]),
		Parameter:       int(b[offParamLow]) | int(b[offParamHigh])<<groupBits,
		FieldB:          int(b[offFieldB]),
		FieldA:          int(b[offFieldA]),
		Value:           groups(b[offValue:offEnd]),
	}, nil
}

func putGroups(dst []byte, v uint64) {
	for i := range dst {
		dst[i] = byte(v & groupMask)
		v >>= groupBits
	}
}

func groups(src []byte) uint64 {
	var v uint64
	for i := len(src) - 1; i >= 0; i-- {
		v = v<<groupBits | uint64(src[i]&groupMask)
	}
	return v
}

// Bytes returns a copy of the frame as a slice.
func (f Frame) Bytes() []byte {
	out := make([]byte, FrameLen)
	copy(out, f[:])
	return out
}

// Hex renders the frame as lower-case, space separated bytes.
func (f Frame) Hex() string {
	var sb strings.Builder
	sb.Grow(FrameLen * 3)
	for i, b := range f {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", b)
	}
	return sb.String()
}

func (f Frame) String() string {
	return f.Hex()
}

// ParseHex reads a frame from hex text. Whitespace between bytes is optional.
func ParseHex(s string) (Frame, error) {
	compact := strings.Join(strings.Fields(s), "")
	raw, err := hex.DecodeString(compact)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	if _, err := Unpack(raw); err != nil {
		return Frame{}, err
	}
	var f Frame
	copy(f[:], raw)
	return f, nil
}

// WriteFrame writes the raw frame bytes to w.
func WriteFrame(w io.Writer, f Frame) error {
	_, err := w.Write(f[:])
	return err
}

// ReadFrame reads and validates one raw frame from r.
func ReadFrame(r io.Reader) (Frame, error) {
	var f Frame
	if _, err := io.ReadFull(r, f[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, ErrShortFrame
		}
		return Frame{}, err
	}
	if _, err := Unpack(f[:]); err != nil {
		return Frame{}, err
	}
	return f, nil
}
