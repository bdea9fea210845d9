package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/syfoh/internal/catalog"
	"github.com/danmuck/syfoh/internal/command"
	"github.com/danmuck/syfoh/internal/sysex"
	"github.com/danmuck/syfoh/internal/testutil/testlog"
	"github.com/danmuck/syfoh/internal/transport"
)

type recordingSink struct {
	frames []sysex.Frame
	err    error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Send(_ context.Context, f sysex.Frame) error {
	if s.err != nil {
		return s.err
	}
	s.frames = append(s.frames, f)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func testParser(t *testing.T) *command.Parser {
	t.Helper()
	c, err := catalog.New(
		map[string]int{"volume": 5, "name": 0x40},
		map[int]catalog.Entry{5: {Kind: "int"}, 0x40: {Kind: "str"}},
	)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	p, err := command.NewParser(c, command.DefaultOptions())
	if err != nil {
		t.Fatalf("parser: %v", err)
	}
	return p
}

func TestRunSkipsCommentsAndReportsInvalidLines(t *testing.T) {
	testlog.Start(t)
	sink := &recordingSink{}
	var echo, report bytes.Buffer
	r, err := NewRunner(Config{Parser: testParser(t), Sink: sink, Echo: &echo, Report: &report})
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	lines := []string{
		"# header",
		"set volume to 1",
		"",
		"   ",
		"set banana to 3",
		"set name to AB",
		"  # indented comment",
		"check 5",
	}
	rep, err := r.Run(context.Background(), lines)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.Lines != 4 || rep.Sent != 3 || len(rep.Failures) != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if rep.Failures[0].LineNo != 5 || rep.Failures[0].Line != "set banana to 3" {
		t.Fatalf("unexpected failure: %+v", rep.Failures[0])
	}
	if !errors.Is(rep.Failures[0].Err, command.ErrUnknownParameter) {
		t.Fatalf("unexpected failure kind: %v", rep.Failures[0].Err)
	}
	if !strings.Contains(report.String(), "Ignored invalid command: set banana to 3") {
		t.Fatalf("missing report line: %q", report.String())
	}
	if len(sink.frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(sink.frames))
	}
	echoed := strings.Split(strings.TrimSpace(echo.String()), "\n")
	if len(echoed) != 3 || echoed[0] != sink.frames[0].Hex() {
		t.Fatalf("echo mismatch: %q", echo.String())
	}
}

func TestRunStopsOnSinkFailure(t *testing.T) {
	testlog.Start(t)
	sink := &recordingSink{err: transport.ErrSinkClosed}
	r, err := NewRunner(Config{Parser: testParser(t), Sink: sink})
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	rep, err := r.Run(context.Background(), []string{"set volume to 1", "set volume to 2"})
	if !errors.Is(err, transport.ErrSinkClosed) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if rep.Sent != 0 || rep.Lines != 1 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestLinesReadsFileOrLiteral(t *testing.T) {
	testlog.Start(t)
	got, err := Lines("set volume to 1")
	if err != nil || len(got) != 1 || got[0] != "set volume to 1" {
		t.Fatalf("literal input: %v %v", got, err)
	}

	path := filepath.Join(t.TempDir(), "cmds.txt")
	if err := os.WriteFile(path, []byte("set volume to 1\r\n# c\nset volume to 2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err = Lines(path)
	if err != nil {
		t.Fatalf("file input: %v", err)
	}
	if len(got) != 3 || got[0] != "set volume to 1" || got[2] != "set volume to 2" {
		t.Fatalf("unexpected lines: %q", got)
	}
}

func TestSummary(t *testing.T) {
	cases := []struct {
		mode   transport.Mode
		output string
		want   string
	}{
		{transport.ModeSerial, "", "Sent 2 command(s) to serial port."},
		{transport.ModeHex, "", ""},
		{transport.ModeHex, "out.txt", "Wrote 2 command(s) as hex to file."},
		{transport.ModeBinary, "out.syx", "Wrote 2 command(s) as binary to file."},
	}
	for _, tc := range cases {
		if got := Summary(tc.mode, tc.output, 2); got != tc.want {
			t.Fatalf("Summary(%s, %q) = %q, want %q", tc.mode, tc.output, got, tc.want)
		}
	}
}

func TestNewRunnerRequiresCollaborators(t *testing.T) {
	if _, err := NewRunner(Config{Sink: &recordingSink{}}); err == nil {
		t.Fatalf("expected parser error")
	}
	if _, err := NewRunner(Config{Parser: testParser(t)}); err == nil {
		t.Fatalf("expected sink error")
	}
}
