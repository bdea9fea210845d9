package command

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danmuck/syfoh/internal/catalog"
	"github.com/danmuck/syfoh/internal/sysex"
	"golang.org/x/text/encoding/charmap"
)

// maxStringBytes is how many characters a string value packs.
const maxStringBytes = 4

// encodeValue fills cmd.Value from the text right of "to", following the
// parameter's declared kind.
func encodeValue(cmd *Command, desc catalog.Descriptor, text string) error {
	if desc.Kind == catalog.KindString {
		v, err := encodeString(text)
		if err != nil {
			return err
		}
		cmd.Value = v
		return nil
	}
	return encodeNumber(cmd, desc, text)
}

// encodeString packs up to four Latin-1 characters little-endian.
func encodeString(text string) (uint64, error) {
	runes := []rune(text)
	if len(runes) > maxStringBytes {
		runes = runes[:maxStringBytes]
	}
	encoded, err := charmap.ISO8859_1.NewEncoder().String(string(runes))
	if err != nil {
		return 0, fail(ErrInvalidValue, text, "string values must be Latin-1")
	}
	var v uint64
	for i := 0; i < len(encoded); i++ {
		v |= uint64(encoded[i]) << (8 * i)
	}
	return v, nil
}

// encodeNumber runs the numeric ladder: integer literals, the parameter's
// value names, then a float literal stored as float32 bits with the float
// flag raised on the parameter number.
func encodeNumber(cmd *Command, desc catalog.Descriptor, text string) error {
	compact := strings.ReplaceAll(text, " ", "")
	if compact == "" {
		return fail(ErrInvalidValue, text, "missing value")
	}

	if n, ok := firstLiteral(compact, valueLadder); ok {
		v, ok := payload32(n)
		if !ok {
			return fail(ErrInvalidValue, text, "does not fit in 32 bits")
		}
		cmd.Value = v
		return nil
	}

	if n, ok := lookupValueName(desc, text, compact); ok {
		v, ok := payload32(int64(n))
		if !ok {
			return fail(ErrInvalidValue, text, "enumerated value does not fit in 32 bits")
		}
		cmd.Value = v
		return nil
	}

	if bits, ok := parseFloat32(compact); ok {
		cmd.Value = uint64(bits)
		cmd.Parameter |= sysex.FloatFlag
		return nil
	}

	err := fail(ErrInvalidValue, text, fmt.Sprintf("not an integer, float or value name of a %s parameter", desc.Kind))
	err.Suggestion = suggest(compact, desc.ValueNames())
	return err
}

func lookupValueName(desc catalog.Descriptor, text, compact string) (int, bool) {
	if v, ok := desc.Value(compact); ok {
		return v, true
	}
	return desc.Value(strings.TrimSpace(text))
}

// payload32 maps a literal onto the 32-bit payload; negatives use two's
// complement.
func payload32(n int64) (uint64, bool) {
	if n < math.MinInt32 || n > math.MaxUint32 {
		return 0, false
	}
	return uint64(uint32(n)), true
}

func parseFloat32(s string) (uint32, bool) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return math.Float32bits(float32(f)), true
}
