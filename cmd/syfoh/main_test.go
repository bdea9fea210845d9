package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/syfoh/internal/sysex"
)

var (
	namesFixture      = filepath.Join("..", "..", "internal", "catalog", "testdata", "names.json")
	propertiesFixture = filepath.Join("..", "..", "internal", "catalog", "testdata", "properties.json")
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	base := []string{"-names", namesFixture, "-properties", propertiesFixture, "-log-level", "off"}
	err := run(context.Background(), append(base, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestRunHexToStdout(t *testing.T) {
	out, err := runCLI(t, "-m", "hex", "-i", "set volume to 42")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "f0 00 26 05 01 7f 05 00 00 00 2a 00 00 00 00 f7\n" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRunHexFileFromCommandFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "cmds.txt")
	if err := os.WriteFile(in, []byte("# volume\nset volume to 1\nset nothing to 2\ncheck 5\n"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	outPath := filepath.Join(dir, "frames.txt")
	out, err := runCLI(t, "-m", "HEX", "-i", in, "-o", outPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out, "Ignored invalid command: set nothing to 2") {
		t.Fatalf("missing rejection: %q", out)
	}
	if !strings.HasSuffix(out, "Wrote 2 command(s) as hex to file.\n") {
		t.Fatalf("missing summary: %q", out)
	}
	text, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(string(text)), "\n"); len(lines) != 2 {
		t.Fatalf("unexpected hex file: %q", text)
	}
}

func TestRunBinary(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "frames.syx")
	out, err := runCLI(t, "-m", "bin", "-i", "set volume of device 4 to 7", "-o", outPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasSuffix(out, "Wrote 1 command(s) as binary to file.\n") {
		t.Fatalf("missing summary: %q", out)
	}
	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	m, err := sysex.Unpack(raw)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if m.Device != 4 || m.Parameter != 5 || m.Value != 7 {
		t.Fatalf("unexpected frame: %+v", m)
	}
}

func TestRunRejectsBadInvocations(t *testing.T) {
	cases := [][]string{
		{"-m", "midi", "-i", "set volume to 1"},
		{"-m", "bin", "-i", "set volume to 1"},
		{"-m", "ser", "-i", "set volume to 1"},
		{"-m", "hex", "-device", "200", "-i", "set volume to 1"},
	}
	for _, args := range cases {
		if _, err := runCLI(t, args...); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}
