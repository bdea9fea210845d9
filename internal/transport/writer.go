package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/danmuck/syfoh/internal/sysex"
)

// WriterSink renders frames onto an io.Writer, as hex lines or raw bytes.
type WriterSink struct {
	mu     sync.Mutex
	name   string
	w      io.Writer
	closer io.Closer
	binary bool
	closed bool
}

// NewHexSink writes one lower-case hex line per frame.
func NewHexSink(name string, w io.Writer) *WriterSink {
	return &WriterSink{name: name, w: w}
}

// NewBinarySink writes raw frame bytes back to back.
func NewBinarySink(name string, w io.Writer) *WriterSink {
	return &WriterSink{name: name, w: w, binary: true}
}

func (s *WriterSink) Name() string {
	return s.name
}

func (s *WriterSink) Send(ctx context.Context, f sysex.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if s.binary {
		return sysex.WriteFrame(s.w, f)
	}
	_, err := fmt.Fprintln(s.w, f.Hex())
	return err
}

func (s *WriterSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func openHex(opts Options) (Sink, error) {
	if opts.Output == "" {
		out := opts.Stdout
		if out == nil {
			out = os.Stdout
		}
		return NewHexSink("hex:stdout", out), nil
	}
	f, err := createOutput(opts.Output)
	if err != nil {
		return nil, err
	}
	s := NewHexSink("hex:"+opts.Output, f)
	s.closer = f
	return s, nil
}

func openBinary(opts Options) (Sink, error) {
	if opts.Output == "" {
		return nil, ErrOutputNeeded
	}
	f, err := createOutput(opts.Output)
	if err != nil {
		return nil, err
	}
	s := NewBinarySink("bin:"+opts.Output, f)
	s.closer = f
	return s, nil
}

func createOutput(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid output file (%s): %w", path, err)
	}
	return f, nil
}
