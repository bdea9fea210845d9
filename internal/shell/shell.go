// Package shell is the interactive prompt: one command per line, completion
// on keywords and catalog names, and a persistent history file.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/syfoh/internal/batch"
	"github.com/danmuck/syfoh/internal/catalog"
	"github.com/danmuck/syfoh/internal/command"
)

const prompt = "syfoh> "

var (
	verbs       = []string{"set", "check", "read", "get"}
	builtins    = []string{"help", "params", "quit", "exit"}
	connectives = map[string]bool{"of": true, "for": true, "and": true}
)

type Config struct {
	Runner  *batch.Runner
	Catalog *catalog.Catalog
	Out     io.Writer
	// History is the history file path; empty disables persistence.
	History string
}

type Shell struct {
	runner  *batch.Runner
	catalog *catalog.Catalog
	out     io.Writer
	history string
	sent    int
}

func New(cfg Config) (*Shell, error) {
	if cfg.Runner == nil || cfg.Catalog == nil {
		return nil, errors.New("shell: runner and catalog required")
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}
	return &Shell{runner: cfg.Runner, catalog: cfg.Catalog, out: out, history: cfg.History}, nil
}

// Sent is the number of frames delivered so far.
func (s *Shell) Sent() int {
	return s.sent
}

// Run prompts until quit, Ctrl-C or Ctrl-D.
func (s *Shell) Run(ctx context.Context) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(s.Complete)

	if s.history != "" {
		if f, err := os.Open(s.history); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Fprintln(s.out, `Interactive mode: type "help" for usage, Ctrl-D to quit.`)
	for {
		if err := ctx.Err(); err != nil {
			break
		}
		input, err := line.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(s.out)
			break
		}
		if err != nil {
			return fmt.Errorf("shell: prompt: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		quit, err := s.Handle(ctx, input)
		if err != nil {
			return err
		}
		if quit {
			break
		}
	}

	if s.history != "" {
		if f, err := os.Create(s.history); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		} else {
			log.Warn().Str("path", s.history).Err(err).Msg("history not saved")
		}
	}
	return nil
}

// Handle runs one input line. It returns quit=true for quit/exit, and an
// error only when the sink fails.
func (s *Shell) Handle(ctx context.Context, input string) (bool, error) {
	switch strings.ToLower(input) {
	case "quit", "exit":
		return true, nil
	case "help":
		s.help()
		return false, nil
	case "params":
		s.params()
		return false, nil
	}
	if strings.HasPrefix(input, "#") {
		return false, nil
	}
	_, err := s.runner.Execute(ctx, input)
	if err != nil {
		var perr *command.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(s.out, "Ignored invalid command: %v\n", err)
			return false, nil
		}
		return false, err
	}
	s.sent++
	return false, nil
}

func (s *Shell) help() {
	fmt.Fprintln(s.out, "  set <parameter> [of <field> <value> [and ...]] to <value>")
	fmt.Fprintln(s.out, "  check|read|get <parameter> [of <field> <value> [and ...]]")
	fmt.Fprintln(s.out, "  params     list parameters")
	fmt.Fprintln(s.out, "  quit       leave the shell")
}

func (s *Shell) params() {
	for _, d := range s.catalog.Descriptors() {
		fmt.Fprintf(s.out, "  %#06x %-5s %s", d.Number, d.Kind, strings.Join(s.catalog.Aliases(d.Number), ", "))
		for _, slot := range []catalog.Slot{catalog.SlotA, catalog.SlotB} {
			if name := d.FieldName(slot); name != "" {
				fmt.Fprintf(s.out, " [%s]", name)
			}
		}
		fmt.Fprintln(s.out)
	}
}

// Complete proposes whole-line completions for the word under the cursor.
func (s *Shell) Complete(line string) []string {
	words := strings.Fields(line)
	trailing := strings.HasSuffix(line, " ")
	var partial string
	if !trailing && len(words) > 0 {
		partial = words[len(words)-1]
		words = words[:len(words)-1]
	}

	var candidates []string
	switch {
	case len(words) == 0:
		candidates = append(append([]string{}, verbs...), builtins...)
	case len(words) == 1:
		candidates = s.catalog.Names()
	default:
		candidates = s.contextual(words)
	}

	prefix := strings.Join(words, " ")
	if prefix != "" {
		prefix += " "
	}
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(partial)) {
			out = append(out, prefix+c)
		}
	}
	return out
}

func (s *Shell) contextual(words []string) []string {
	last := strings.ToLower(words[len(words)-1])
	d, ok := s.descriptor(words[1])
	switch {
	case connectives[last]:
		names := []string{catalog.DeviceTarget}
		if ok {
			for _, slot := range []catalog.Slot{catalog.SlotA, catalog.SlotB} {
				if name := d.FieldName(slot); name != "" {
					names = append(names, strings.ToLower(name))
				}
			}
		}
		return names
	case last == "to":
		if ok {
			return d.ValueNames()
		}
		return nil
	case last == catalog.DeviceTarget:
		return []string{"all"}
	}
	if ok {
		if slot, found := d.FieldSlot(last); found {
			return d.FieldValueNames(slot)
		}
	}
	return []string{"and", "to"}
}

func (s *Shell) descriptor(token string) (catalog.Descriptor, bool) {
	number, ok := s.catalog.Number(token)
	if !ok {
		n, err := catalog.ParseNumber(token)
		if err != nil {
			return catalog.Descriptor{}, false
		}
		number = n
	}
	return s.catalog.Descriptor(number)
}
