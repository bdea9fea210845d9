package shell

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/danmuck/syfoh/internal/batch"
	"github.com/danmuck/syfoh/internal/catalog"
	"github.com/danmuck/syfoh/internal/command"
	"github.com/danmuck/syfoh/internal/sysex"
	"github.com/danmuck/syfoh/internal/testutil/testlog"
)

type countingSink struct{ n int }

func (s *countingSink) Name() string                            { return "count" }
func (s *countingSink) Send(context.Context, sysex.Frame) error { s.n++; return nil }
func (s *countingSink) Close() error                            { return nil }

func testShell(t *testing.T) (*Shell, *countingSink, *bytes.Buffer) {
	t.Helper()
	c, err := catalog.New(
		map[string]int{"volume": 5, "mode": 0x23, "ontime": 0x21},
		map[int]catalog.Entry{
			5:    {Kind: "int"},
			0x21: {Kind: "float", FieldAName: "mode", FieldBName: "coil", FieldA: map[string]int{"simple": 1, "midilive": 2}},
			0x23: {Kind: "enum", Values: map[string]int{"Simple": 1, "Lightsaber": 3}},
		},
	)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	p, err := command.NewParser(c, command.DefaultOptions())
	if err != nil {
		t.Fatalf("parser: %v", err)
	}
	sink := &countingSink{}
	var out bytes.Buffer
	r, err := batch.NewRunner(batch.Config{Parser: p, Sink: sink, Echo: &out})
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	s, err := New(Config{Runner: r, Catalog: c, Out: &out})
	if err != nil {
		t.Fatalf("shell: %v", err)
	}
	return s, sink, &out
}

func TestHandle(t *testing.T) {
	testlog.Start(t)
	s, sink, out := testShell(t)
	ctx := context.Background()

	if quit, err := s.Handle(ctx, "set volume to 3"); quit || err != nil {
		t.Fatalf("unexpected result: %v %v", quit, err)
	}
	if quit, err := s.Handle(ctx, "set bogus to 3"); quit || err != nil {
		t.Fatalf("invalid commands must not stop the shell: %v %v", quit, err)
	}
	if !strings.Contains(out.String(), "Ignored invalid command") {
		t.Fatalf("missing rejection message: %q", out.String())
	}
	s.Handle(ctx, "params")
	if !strings.Contains(out.String(), "0x0021 float ontime [mode] [coil]") {
		t.Fatalf("unexpected params listing: %q", out.String())
	}
	if quit, _ := s.Handle(ctx, "EXIT"); !quit {
		t.Fatalf("expected quit")
	}
	if sink.n != 1 || s.Sent() != 1 {
		t.Fatalf("expected one frame sent, sink=%d shell=%d", sink.n, s.Sent())
	}
}

func TestComplete(t *testing.T) {
	testlog.Start(t)
	s, _, _ := testShell(t)
	cases := []struct {
		line string
		want []string
	}{
		{"ch", []string{"check"}},
		{"set vo", []string{"set volume"}},
		{"set m", []string{"set mode"}},
		{"set ontime of ", []string{"set ontime of device", "set ontime of mode", "set ontime of coil"}},
		{"set ontime of mode m", []string{"set ontime of mode midilive"}},
		{"set ontime of mode simple ", []string{"set ontime of mode simple and", "set ontime of mode simple to"}},
		{"set mode to L", []string{"set mode to Lightsaber"}},
		{"get 5 for device ", []string{"get 5 for device all"}},
	}
	for _, tc := range cases {
		if got := s.Complete(tc.line); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Complete(%q) = %q, want %q", tc.line, got, tc.want)
		}
	}
}
