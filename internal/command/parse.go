package command

import (
	"errors"
	"fmt"

	"github.com/danmuck/syfoh/internal/catalog"
	"github.com/danmuck/syfoh/internal/sysex"
	"github.com/rs/zerolog/log"
)

// Options are the frame defaults applied before a line's own targets.
type Options struct {
	Device          int
	ProtocolVersion int
}

func DefaultOptions() Options {
	return Options{
		Device:          sysex.DefaultDevice,
		ProtocolVersion: sysex.DefaultProtocolVersion,
	}
}

// Validate checks that the defaults fit their 7-bit slots.
func (o Options) Validate() error {
	if o.Device < 0 || o.Device > catalog.MaxField {
		return fmt.Errorf("command: default device %d outside 0..%d", o.Device, catalog.MaxField)
	}
	if o.ProtocolVersion < 0 || o.ProtocolVersion > catalog.MaxField {
		return fmt.Errorf("command: protocol version %d outside 0..%d", o.ProtocolVersion, catalog.MaxField)
	}
	return nil
}

// Parser resolves lines against one catalog. It holds no mutable state and
// is safe for concurrent use.
type Parser struct {
	catalog *catalog.Catalog
	opts    Options
}

func NewParser(c *catalog.Catalog, opts Options) (*Parser, error) {
	if c == nil {
		return nil, errors.New("command: nil catalog")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Parser{catalog: c, opts: opts}, nil
}

// Parse resolves line against c with the default options.
func Parse(line string, c *catalog.Catalog) (Command, error) {
	p, err := NewParser(c, DefaultOptions())
	if err != nil {
		return Command{}, err
	}
	return p.Parse(line)
}

// Catalog returns the catalog p resolves against.
func (p *Parser) Catalog() *catalog.Catalog {
	return p.catalog
}

// Parse resolves one line into a Command. Failures are *ParseError values
// carrying the offending line.
func (p *Parser) Parse(line string) (Command, error) {
	cmd, err := p.parse(line)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.Line = line
		}
		log.Debug().Str("line", line).Err(err).Msg("command rejected")
		return Command{}, err
	}
	log.Debug().
		Str("line", line).
		Int("parameter", cmd.Parameter).
		Int("field_a", cmd.FieldA).
		Int("field_b", cmd.FieldB).
		Int("device", cmd.Device).
		Uint64("value", cmd.Value).
		Bool("query", cmd.IsQuery).
		Msg("command parsed")
	return cmd, nil
}

func (p *Parser) parse(line string) (Command, error) {
	st, err := classify(line)
	if err != nil {
		return Command{}, err
	}
	number, err := p.resolveParameter(st.parameterToken())
	if err != nil {
		return Command{}, err
	}
	desc, described := p.catalog.Descriptor(number)

	cmd := Command{
		Device:          p.opts.Device,
		ProtocolVersion: p.opts.ProtocolVersion,
	}
	if err := p.resolveTargets(st, &cmd, desc, described); err != nil {
		return Command{}, err
	}

	if st.query != QueryNone {
		return cmd.asQuery(number, st.query), nil
	}

	if !described {
		return Command{}, fail(ErrUnknownParameter, st.leftRaw[1], fmt.Sprintf("parameter %d has no declared value type", number))
	}
	cmd.Parameter = number
	if err := encodeValue(&cmd, desc, st.value); err != nil {
		return Command{}, err
	}
	return cmd, nil
}
