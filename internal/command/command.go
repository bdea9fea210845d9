package command

import (
	"fmt"

	"github.com/danmuck/syfoh/internal/sysex"
)

// QueryKind selects which request opcode a query line carries.
type QueryKind int

const (
	QueryNone QueryKind = iota
	QueryCheck
	QueryRead
	QueryGet
)

var queryKeywords = map[string]QueryKind{
	"check": QueryCheck,
	"read":  QueryRead,
	"get":   QueryGet,
}

// Opcode is the value a query places in the parameter slot.
func (q QueryKind) Opcode() int {
	switch q {
	case QueryCheck:
		return 0x02
	case QueryRead:
		return 0x03
	case QueryGet:
		return 0x04
	default:
		return 0
	}
}

func (q QueryKind) String() string {
	switch q {
	case QueryNone:
		return "none"
	case QueryCheck:
		return "check"
	case QueryRead:
		return "read"
	case QueryGet:
		return "get"
	default:
		return fmt.Sprintf("query(%d)", int(q))
	}
}

// Command is one resolved line, ready to pack.
type Command struct {
	Parameter       int
	FieldA          int
	FieldB          int
	Value           uint64
	Device          int
	ProtocolVersion int
	IsQuery         bool
	Query           QueryKind
}

// asQuery repurposes the resolved command as a request: the subject
// parameter moves into the value slot and the opcode takes its place.
func (c Command) asQuery(subject int, kind QueryKind) Command {
	c.IsQuery = true
	c.Query = kind
	c.Value = uint64(subject)
	c.Parameter = kind.Opcode()
	return c
}

// FloatEncoded reports whether the value carries float32 bits.
func (c Command) FloatEncoded() bool {
	return !c.IsQuery && c.Parameter&sysex.FloatFlag != 0
}

func (c Command) Message() sysex.Message {
	return sysex.Message{
		ProtocolVersion: c.ProtocolVersion,
		Device:          c.Device,
		Parameter:       c.Parameter,
		FieldA:          c.FieldA,
		FieldB:          c.FieldB,
		Value:           c.Value,
	}
}

// Pack serializes c into its request frame.
func Pack(c Command) sysex.Frame {
	return sysex.Pack(c.Message())
}
