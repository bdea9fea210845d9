package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/danmuck/syfoh/internal/catalog"
	"github.com/danmuck/syfoh/internal/logging"
	"github.com/danmuck/syfoh/internal/sysex"
	"github.com/danmuck/syfoh/internal/transport"
)

type fileConfig struct {
	Mode            string `toml:"mode"`
	Port            string `toml:"port"`
	BaudRate        int    `toml:"baud_rate"`
	Output          string `toml:"output"`
	Names           string `toml:"names"`
	Properties      string `toml:"properties"`
	Device          int    `toml:"device"`
	ProtocolVersion int    `toml:"protocol_version"`
	History         string `toml:"history"`
	LogLevel        string `toml:"log_level"`
}

type cliConfig struct {
	Mode            string
	Port            string
	BaudRate        int
	Output          string
	Names           string
	Properties      string
	Device          int
	ProtocolVersion int
	History         string
	LogLevel        string
}

func defaultConfig() cliConfig {
	return cliConfig{
		Mode:            string(transport.ModeHex),
		BaudRate:        transport.DefaultBaudRate,
		Names:           catalog.DefaultNamesFile,
		Properties:      catalog.DefaultPropertiesFile,
		Device:          sysex.DefaultDevice,
		ProtocolVersion: sysex.DefaultProtocolVersion,
		History:         ".syfoh_history",
	}
}

// loadConfig overlays the keys defined in path onto the defaults.
func loadConfig(path string) (cliConfig, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return cliConfig{}, fmt.Errorf("load syfoh config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cliConfig{}, fmt.Errorf("load syfoh config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("mode") {
		if _, err := transport.ParseMode(raw.Mode); err != nil {
			return cliConfig{}, err
		}
		cfg.Mode = strings.TrimSpace(raw.Mode)
	}
	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("baud_rate") {
		if raw.BaudRate <= 0 {
			return cliConfig{}, fmt.Errorf("baud_rate must be positive, got %d", raw.BaudRate)
		}
		cfg.BaudRate = raw.BaudRate
	}
	if meta.IsDefined("output") {
		cfg.Output = strings.TrimSpace(raw.Output)
	}
	if meta.IsDefined("names") {
		cfg.Names = strings.TrimSpace(raw.Names)
	}
	if meta.IsDefined("properties") {
		cfg.Properties = strings.TrimSpace(raw.Properties)
	}
	if meta.IsDefined("device") {
		cfg.Device = raw.Device
	}
	if meta.IsDefined("protocol_version") {
		cfg.ProtocolVersion = raw.ProtocolVersion
	}
	if meta.IsDefined("history") {
		cfg.History = strings.TrimSpace(raw.History)
	}
	if meta.IsDefined("log_level") {
		if _, ok := logging.ParseLevel(raw.LogLevel); !ok {
			return cliConfig{}, fmt.Errorf("unknown log_level %q", raw.LogLevel)
		}
		cfg.LogLevel = raw.LogLevel
	}
	return cfg, nil
}
