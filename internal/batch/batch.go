// Package batch drives a list of command lines through the parser and into a
// transport sink.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/syfoh/internal/command"
	"github.com/danmuck/syfoh/internal/observability"
	"github.com/danmuck/syfoh/internal/sysex"
	"github.com/danmuck/syfoh/internal/transport"
)

const commentPrefix = "#"

// Config wires a Runner. Echo, when set, receives the hex rendering of every
// frame before it is sent.
type Config struct {
	Parser *command.Parser
	Sink   transport.Sink
	Echo   io.Writer
	// Report receives one line per rejected command.
	Report io.Writer
}

// Failure is one rejected line.
type Failure struct {
	LineNo int
	Line   string
	Err    error
}

func (f Failure) String() string {
	return fmt.Sprintf("Ignored invalid command: %s (%v)", f.Line, f.Err)
}

// Report summarizes one run.
type Report struct {
	Lines    int
	Sent     int
	Failures []Failure
}

type Runner struct {
	parser *command.Parser
	sink   transport.Sink
	echo   io.Writer
	report io.Writer
}

func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Parser == nil {
		return nil, errors.New("batch: parser required")
	}
	if cfg.Sink == nil {
		return nil, errors.New("batch: sink required")
	}
	return &Runner{parser: cfg.Parser, sink: cfg.Sink, echo: cfg.Echo, report: cfg.Report}, nil
}

// Lines reads input as a file of commands when it names a regular file, and
// as a single command otherwise.
func Lines(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil || !info.Mode().IsRegular() {
		return []string{input}, nil
	}
	f, err := os.Open(input)
	if err != nil {
		return nil, fmt.Errorf("batch: open %s: %w", input, err)
	}
	defer f.Close()
	return ReadLines(f)
}

// ReadLines splits r into lines, dropping line terminators.
func ReadLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out = append(out, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("batch: read lines: %w", err)
	}
	return out, nil
}

func skip(line string) bool {
	s := strings.TrimSpace(line)
	return s == "" || strings.HasPrefix(s, commentPrefix)
}

// Run parses every line and sends the valid ones in order. Invalid lines are
// reported and skipped. A sink failure stops the run.
func (r *Runner) Run(ctx context.Context, lines []string) (Report, error) {
	var rep Report
	for i, line := range lines {
		if skip(line) {
			continue
		}
		rep.Lines++
		f, err := r.Execute(ctx, line)
		if err != nil {
			var perr *command.ParseError
			if !errors.As(err, &perr) {
				return rep, err
			}
			fail := Failure{LineNo: i + 1, Line: line, Err: err}
			rep.Failures = append(rep.Failures, fail)
			log.Warn().Int("line_no", fail.LineNo).Str("line", line).Err(err).Msg("ignored invalid command")
			if r.report != nil {
				fmt.Fprintln(r.report, fail.String())
			}
			continue
		}
		rep.Sent++
		log.Debug().Str("sink", r.sink.Name()).Str("frame", f.Hex()).Msg("frame sent")
	}
	log.Info().
		Str("sink", r.sink.Name()).
		Int("lines", rep.Lines).
		Int("sent", rep.Sent).
		Int("rejected", len(rep.Failures)).
		Msg("batch complete")
	return rep, nil
}

// Execute parses one line and sends its frame. Parse failures come back as
// *command.ParseError; anything else is a sink failure.
func (r *Runner) Execute(ctx context.Context, line string) (sysex.Frame, error) {
	cmd, err := r.parser.Parse(line)
	if err != nil {
		observability.RecordCommand(command.KindName(err), "rejected")
		return sysex.Frame{}, err
	}
	observability.RecordCommand(commandKind(cmd), "ok")
	f := command.Pack(cmd)
	if r.echo != nil {
		fmt.Fprintln(r.echo, f.Hex())
	}
	if err := r.sink.Send(ctx, f); err != nil {
		observability.RecordFrameSent(r.sink.Name(), false)
		return f, fmt.Errorf("batch: send to %s: %w", r.sink.Name(), err)
	}
	observability.RecordFrameSent(r.sink.Name(), true)
	return f, nil
}

func commandKind(cmd command.Command) string {
	if cmd.IsQuery {
		return "query"
	}
	return "write"
}

// Summary is the closing line printed for a mode, or "" when the mode has
// nothing to report.
func Summary(mode transport.Mode, output string, sent int) string {
	switch mode {
	case transport.ModeSerial:
		return fmt.Sprintf("Sent %d command(s) to serial port.", sent)
	case transport.ModeHex:
		if output == "" {
			return ""
		}
		return fmt.Sprintf("Wrote %d command(s) as hex to file.", sent)
	case transport.ModeBinary:
		return fmt.Sprintf("Wrote %d command(s) as binary to file.", sent)
	}
	return ""
}
