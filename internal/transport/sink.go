package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/danmuck/syfoh/internal/sysex"
)

// Sink ships frames to one destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, f sysex.Frame) error
	Close() error
}

// Mode selects a sink kind.
type Mode string

const (
	ModeSerial Mode = "SER"
	ModeHex    Mode = "HEX"
	ModeBinary Mode = "BIN"
)

var (
	ErrUnknownMode   = errors.New("transport: unknown mode")
	ErrPortRequired  = errors.New("transport: serial mode needs a port")
	ErrOutputNeeded  = errors.New("transport: binary mode needs an output file")
	ErrSinkClosed    = errors.New("transport: sink closed")
	defaultModeNames = []string{"SER/SERIAL", "HEX", "BIN"}
)

const DefaultBaudRate = 115200

// ParseMode accepts any spelling whose first three letters name a mode
// ("serial", "Hex", "bin").
func ParseMode(raw string) (Mode, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if len(s) > 3 {
		s = s[:3]
	}
	switch m := Mode(s); m {
	case ModeSerial, ModeHex, ModeBinary:
		return m, nil
	}
	return "", fmt.Errorf("%w %q: must be %s", ErrUnknownMode, raw, strings.Join(defaultModeNames, ", "))
}

// Options configure the sink built by Open.
type Options struct {
	Port     string
	BaudRate int
	// Output is the file HEX or BIN frames go to. HEX writes to Stdout when
	// it is empty.
	Output string
	Stdout io.Writer
}

// Factory builds a sink for one mode.
type Factory func(opts Options) (Sink, error)

var (
	mu       sync.RWMutex
	registry = map[Mode]Factory{}
)

func Register(mode Mode, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[mode] = f
}

func Modes() []Mode {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Mode, 0, len(registry))
	for m := range registry {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Open builds the sink registered for mode.
func Open(mode Mode, opts Options) (Sink, error) {
	mu.RLock()
	f, ok := registry[mode]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, mode)
	}
	return f(opts)
}

func init() {
	Register(ModeSerial, openSerial)
	Register(ModeHex, openHex)
	Register(ModeBinary, openBinary)
}
