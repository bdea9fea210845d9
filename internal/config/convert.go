package config

import (
	"github.com/danmuck/syfoh/internal/command"
	"github.com/danmuck/syfoh/internal/transport"
)

// ParserOptions returns the frame defaults of cfg. Unset fields keep the
// package defaults.
func ParserOptions(cfg DaemonConfig) command.Options {
	opts := command.DefaultOptions()
	if cfg.Frame.Device != nil {
		opts.Device = *cfg.Frame.Device
	}
	if cfg.Frame.ProtocolVersion != nil {
		opts.ProtocolVersion = *cfg.Frame.ProtocolVersion
	}
	return opts
}

// SerialOptions returns the sink options for the configured serial port, and
// false when transmission is disabled.
func SerialOptions(cfg DaemonConfig) (transport.Options, bool) {
	if cfg.Serial.Port == "" {
		return transport.Options{}, false
	}
	return transport.Options{Port: cfg.Serial.Port, BaudRate: cfg.Serial.BaudRate}, true
}
