package transport

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/danmuck/syfoh/internal/sysex"
)

// Port is the part of a serial port a SerialSink uses.
type Port interface {
	io.Writer
	Drain() error
	Close() error
}

// SerialSink writes frames to a serial line and waits for each to drain
// before returning.
type SerialSink struct {
	mu     sync.Mutex
	name   string
	port   Port
	closed bool
}

func NewSerialSink(name string, port Port) *SerialSink {
	return &SerialSink{name: name, port: port}
}

// OpenSerial opens path at baud with 8 data bits, no parity and one stop bit.
func OpenSerial(path string, baud int) (*SerialSink, error) {
	if path == "" {
		return nil, ErrPortRequired
	}
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	p, err := serial.Open(path, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: open serial port %s: %w", path, err)
	}
	log.Info().Str("port", path).Int("baud", baud).Msg("serial port opened")
	return NewSerialSink("ser:"+path, p), nil
}

func (s *SerialSink) Name() string {
	return s.name
}

func (s *SerialSink) Send(ctx context.Context, f sysex.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	b := f[:]
	for len(b) > 0 {
		n, err := s.port.Write(b)
		if err != nil {
			return fmt.Errorf("transport: serial write: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("transport: serial write: %w", io.ErrShortWrite)
		}
		b = b[n:]
	}
	if err := s.port.Drain(); err != nil {
		return fmt.Errorf("transport: serial drain: %w", err)
	}
	return nil
}

func (s *SerialSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.port.Close()
}

func openSerial(opts Options) (Sink, error) {
	return OpenSerial(opts.Port, opts.BaudRate)
}

// PortInfo describes one serial port found on the host.
type PortInfo struct {
	Name    string `json:"name"`
	USB     bool   `json:"usb"`
	VID     string `json:"vid,omitempty"`
	PID     string `json:"pid,omitempty"`
	Serial  string `json:"serial,omitempty"`
	Product string `json:"product,omitempty"`
}

func (p PortInfo) String() string {
	if !p.USB {
		return p.Name
	}
	s := fmt.Sprintf("%s [%s:%s]", p.Name, p.VID, p.PID)
	if p.Product != "" {
		s += " " + p.Product
	}
	return s
}

// Ports lists the serial ports on the host, with USB details where the
// platform reports them.
func Ports() ([]PortInfo, error) {
	detailed, err := enumerator.GetDetailedPortsList()
	if err == nil {
		out := make([]PortInfo, 0, len(detailed))
		for _, p := range detailed {
			out = append(out, PortInfo{
				Name:    p.Name,
				USB:     p.IsUSB,
				VID:     p.VID,
				PID:     p.PID,
				Serial:  p.SerialNumber,
				Product: p.Product,
			})
		}
		return out, nil
	}
	log.Debug().Err(err).Msg("detailed port enumeration failed")
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("transport: list serial ports: %w", err)
	}
	out := make([]PortInfo, 0, len(names))
	for _, n := range names {
		out = append(out, PortInfo{Name: n})
	}
	return out, nil
}
