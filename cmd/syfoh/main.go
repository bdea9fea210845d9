package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/syfoh/internal/batch"
	"github.com/danmuck/syfoh/internal/catalog"
	"github.com/danmuck/syfoh/internal/command"
	"github.com/danmuck/syfoh/internal/logging"
	"github.com/danmuck/syfoh/internal/observability"
	"github.com/danmuck/syfoh/internal/shell"
	"github.com/danmuck/syfoh/internal/transport"
)

const usage = `Convert human readable commands into MIDI SysEx frames and send them to a
serial port, a hex listing or a binary file.

`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "syfoh: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("syfoh", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", "", "TOML config file")
	input := fs.String("i", "", "command as string or path to a text file; starts the shell when empty")
	mode := fs.String("m", "", "output mode: SER/SERIAL, HEX or BIN")
	output := fs.String("o", "", "output file for hex or binary data")
	port := fs.String("p", "", "serial port, e.g. COM3 or /dev/ttyACM0")
	baud := fs.Int("b", transport.DefaultBaudRate, "serial baud rate")
	names := fs.String("names", "", "parameter name table (json, yaml or toml)")
	properties := fs.String("properties", "", "parameter properties table (json, yaml or toml)")
	device := fs.Int("device", -1, "default device id (0-127)")
	logLevel := fs.String("log-level", "", "log level: trace|debug|info|warn|error|off")
	listPorts := fs.Bool("list-ports", false, "list serial ports and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	observability.InitLogger("syfoh")

	cfg := defaultConfig()
	if *configPath != "" {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "m":
			cfg.Mode = *mode
		case "o":
			cfg.Output = *output
		case "p":
			cfg.Port = *port
		case "b":
			cfg.BaudRate = *baud
		case "names":
			cfg.Names = *names
		case "properties":
			cfg.Properties = *properties
		case "device":
			cfg.Device = *device
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if cfg.LogLevel != "" {
		lvl, ok := logging.ParseLevel(cfg.LogLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", cfg.LogLevel)
		}
		zerolog.SetGlobalLevel(lvl)
	}

	if *listPorts {
		return printPorts(stdout)
	}

	m, err := transport.ParseMode(cfg.Mode)
	if err != nil {
		return err
	}
	c, err := catalog.Load(cfg.Names, cfg.Properties)
	if err != nil {
		return err
	}
	parser, err := command.NewParser(c, command.Options{Device: cfg.Device, ProtocolVersion: cfg.ProtocolVersion})
	if err != nil {
		return err
	}

	sink, err := transport.Open(m, transport.Options{
		Port:     cfg.Port,
		BaudRate: cfg.BaudRate,
		Output:   cfg.Output,
		Stdout:   stdout,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Warn().Str("sink", sink.Name()).Err(err).Msg("sink close failed")
		}
	}()

	// HEX without a file already prints to stdout.
	var echo io.Writer = stdout
	if m == transport.ModeHex && cfg.Output == "" {
		echo = nil
	}
	runner, err := batch.NewRunner(batch.Config{Parser: parser, Sink: sink, Echo: echo, Report: stdout})
	if err != nil {
		return err
	}

	var sent int
	if *input == "" {
		sh, err := shell.New(shell.Config{Runner: runner, Catalog: c, Out: stdout, History: cfg.History})
		if err != nil {
			return err
		}
		if err := sh.Run(ctx); err != nil {
			return err
		}
		sent = sh.Sent()
	} else {
		lines, err := batch.Lines(*input)
		if err != nil {
			return err
		}
		rep, err := runner.Run(ctx, lines)
		if err != nil {
			return err
		}
		sent = rep.Sent
	}

	if summary := batch.Summary(m, cfg.Output, sent); summary != "" {
		fmt.Fprintln(stdout, summary)
	}
	return nil
}

func printPorts(w io.Writer) error {
	ports, err := transport.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Fprintln(w, "No serial ports found.")
		return nil
	}
	for _, p := range ports {
		fmt.Fprintln(w, p.String())
	}
	return nil
}
