package command

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrGrammar          = errors.New("command: grammar error")
	ErrUnknownParameter = errors.New("command: unknown parameter")
	ErrUnknownSubfield  = errors.New("command: unknown sub-target")
	ErrInvalidTarget    = errors.New("command: invalid target")
	ErrUnknownEnumValue = errors.New("command: unknown enum value")
	ErrInvalidValue     = errors.New("command: invalid value")
)

// ParseError reports why one line was rejected. Kind is one of the Err*
// sentinels and is what errors.Is matches.
type ParseError struct {
	Kind       error
	Line       string
	Token      string
	Reason     string
	Suggestion string
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Token != "" {
		fmt.Fprintf(&sb, " %q", e.Token)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if e.Suggestion != "" {
		fmt.Fprintf(&sb, " (did you mean %q?)", e.Suggestion)
	}
	return sb.String()
}

func (e *ParseError) Unwrap() error {
	return e.Kind
}

func fail(kind error, token, reason string) *ParseError {
	return &ParseError{Kind: kind, Token: token, Reason: reason}
}

// KindName returns a stable label for err's kind, or "" for foreign errors.
func KindName(err error) string {
	switch {
	case errors.Is(err, ErrGrammar):
		return "grammar"
	case errors.Is(err, ErrUnknownParameter):
		return "unknown_parameter"
	case errors.Is(err, ErrUnknownSubfield):
		return "unknown_subfield"
	case errors.Is(err, ErrInvalidTarget):
		return "invalid_target"
	case errors.Is(err, ErrUnknownEnumValue):
		return "unknown_enum_value"
	case errors.Is(err, ErrInvalidValue):
		return "invalid_value"
	default:
		return ""
	}
}
