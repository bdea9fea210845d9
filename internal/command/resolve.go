package command

import (
	"fmt"

	"github.com/danmuck/syfoh/internal/catalog"
	"github.com/rs/zerolog/log"
)

const (
	maxTargets  = 3
	allTargets  = "all"
	allValue    = "127"
	targetStart = 2
)

// target is one "NAME VAL" pair from the left side of a line.
type target struct {
	name string
	raw  string
}

// resolveParameter maps the parameter token onto a parameter number: a
// decimal literal, a hex literal, then a catalog alias.
func (p *Parser) resolveParameter(token string) (int, error) {
	n, ok := firstLiteral(token, integerLadder)
	if !ok {
		number, found := p.catalog.Number(token)
		if !found {
			err := fail(ErrUnknownParameter, token, "not a number or known alias")
			err.Suggestion = suggest(token, p.catalog.Names())
			return 0, err
		}
		return number, nil
	}
	if n < 0 || n > catalog.MaxParameter {
		return 0, fail(ErrUnknownParameter, token, fmt.Sprintf("outside 0..%d", catalog.MaxParameter))
	}
	return int(n), nil
}

// subTargets reads the "of|for NAME VAL [and NAME VAL [and NAME VAL]]" tail
// of the left tokens.
func subTargets(left []string) ([]target, error) {
	if len(left) <= targetStart {
		return nil, nil
	}
	intro := left[targetStart]
	if intro != "of" && intro != "for" {
		return nil, fail(ErrGrammar, intro, `expected "of" or "for" after the parameter`)
	}
	pos := targetStart + 1
	var out []target
	for {
		if pos+1 >= len(left) {
			return nil, fail(ErrGrammar, left[len(left)-1], "sub-target needs a name and a value")
		}
		out = append(out, target{name: left[pos], raw: left[pos+1]})
		pos += 2
		if pos >= len(left) {
			return out, nil
		}
		if len(out) == maxTargets {
			return nil, fail(ErrGrammar, left[pos], fmt.Sprintf("at most %d sub-targets", maxTargets))
		}
		if left[pos] != keywordAnd {
			return nil, fail(ErrGrammar, left[pos], `expected "and" between sub-targets`)
		}
		pos++
	}
}

// resolveTargets applies the sub-target pairs of st to cmd. desc is the
// subject parameter's descriptor; described is false when the catalog has
// none, in which case only the device target is accepted.
func (p *Parser) resolveTargets(st statement, cmd *Command, desc catalog.Descriptor, described bool) error {
	targets, err := subTargets(st.left)
	if err != nil {
		return err
	}
	for _, t := range targets {
		raw := t.raw
		if raw == allTargets {
			raw = allValue
		}

		if t.name == catalog.DeviceTarget {
			v, ok := firstLiteral(raw, integerLadder)
			if !ok {
				return fail(ErrInvalidTarget, t.raw, "device address must be a decimal or hex number")
			}
			if v < 0 || v > catalog.MaxField {
				return fail(ErrInvalidTarget, t.raw, fmt.Sprintf("device address outside 0..%d", catalog.MaxField))
			}
			cmd.Device = int(v)
			continue
		}

		if !described {
			return fail(ErrUnknownSubfield, t.name, "parameter declares no sub-targets")
		}
		slot, ok := desc.FieldSlot(t.name)
		if !ok {
			err := fail(ErrUnknownSubfield, t.name, fmt.Sprintf("parameter %d has no such sub-target", desc.Number))
			err.Suggestion = suggest(t.name, fieldNames(desc))
			return err
		}

		v, ok := firstLiteral(raw, integerLadder)
		if !ok {
			named, found := desc.FieldValue(slot, raw)
			if !found {
				err := fail(ErrUnknownEnumValue, t.raw, fmt.Sprintf("no %s value with this name", desc.FieldName(slot)))
				err.Suggestion = suggest(raw, desc.FieldValueNames(slot))
				return err
			}
			v = int64(named)
		}
		if v < 0 || v > catalog.MaxField {
			return fail(ErrInvalidTarget, t.raw, fmt.Sprintf("%s outside 0..%d", desc.FieldName(slot), catalog.MaxField))
		}
		if slot == catalog.SlotA {
			cmd.FieldA = int(v)
		} else {
			cmd.FieldB = int(v)
		}
		log.Debug().
			Int("parameter", desc.Number).
			Str("target", t.name).
			Str("slot", slot.String()).
			Int64("value", v).
			Msg("sub-target resolved")
	}
	return nil
}

func fieldNames(desc catalog.Descriptor) []string {
	out := []string{catalog.DeviceTarget}
	if desc.FieldAName != "" {
		out = append(out, desc.FieldAName)
	}
	if desc.FieldBName != "" {
		out = append(out, desc.FieldBName)
	}
	return out
}
