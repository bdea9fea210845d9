package command

import (
	"strconv"
	"strings"
)

// literal is one rung of a parse ladder. It reports ok=false instead of an
// error so ladders can fall through to the next rung.
type literal func(s string) (int64, bool)

var (
	// parameter and sub-target tokens
	integerLadder = []literal{parseDecimal, parseHex}
	// main values
	valueLadder = []literal{parseDecimal, parseHex, parseBinary}
)

func firstLiteral(s string, ladder []literal) (int64, bool) {
	for _, step := range ladder {
		if v, ok := step(s); ok {
			return v, true
		}
	}
	return 0, false
}

func parseDecimal(s string) (int64, bool) {
	v, err := strconv.ParseInt(s, 10, 64)
	return v, err == nil
}

// parseHex accepts digits with or without a 0x prefix. Text with a 0b
// prefix is left for parseBinary.
func parseHex(s string) (int64, bool) {
	neg, digits := splitSign(s)
	if hasPrefixFold(digits, "0b") {
		return 0, false
	}
	if hasPrefixFold(digits, "0x") {
		digits = digits[2:]
	}
	return parseUnsigned(neg, digits, 16)
}

func parseBinary(s string) (int64, bool) {
	neg, digits := splitSign(s)
	if !hasPrefixFold(digits, "0b") {
		return 0, false
	}
	return parseUnsigned(neg, digits[2:], 2)
}

func parseUnsigned(neg bool, digits string, base int) (int64, bool) {
	if digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, false
	}
	u, err := strconv.ParseUint(digits, base, 63)
	if err != nil {
		return 0, false
	}
	if neg {
		return -int64(u), true
	}
	return int64(u), true
}

func splitSign(s string) (bool, string) {
	switch {
	case strings.HasPrefix(s, "-"):
		return true, s[1:]
	case strings.HasPrefix(s, "+"):
		return false, s[1:]
	}
	return false, s
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
