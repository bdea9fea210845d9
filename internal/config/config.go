package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/danmuck/syfoh/internal/catalog"
	"github.com/danmuck/syfoh/internal/sysex"
	"github.com/danmuck/syfoh/internal/transport"
)

// DaemonConfig is the syfohd configuration file.
type DaemonConfig struct {
	Name        string        `toml:"name"`
	Addr        string        `toml:"addr"`
	CorsOrigins []string      `toml:"cors_origins"`
	Catalog     CatalogConfig `toml:"catalog"`
	Frame       FrameConfig   `toml:"frame"`
	Serial      SerialConfig  `toml:"serial"`
}

type CatalogConfig struct {
	Names      string `toml:"names"`
	Properties string `toml:"properties"`
}

type FrameConfig struct {
	Device          *int `toml:"device"`
	ProtocolVersion *int `toml:"protocol_version"`
}

// SerialConfig names the port POST /frames transmits to. An empty port
// disables transmission.
type SerialConfig struct {
	Port     string `toml:"port"`
	BaudRate int    `toml:"baud_rate"`
}

func LoadDaemonConfig(path string) (DaemonConfig, error) {
	var cfg DaemonConfig
	if err := loadToml(path, &cfg); err != nil {
		return DaemonConfig{}, err
	}
	cfg = WithDefaults(cfg)
	if err := ValidateDaemonConfig(cfg); err != nil {
		return DaemonConfig{}, err
	}
	return cfg, nil
}

// WithDefaults fills every unset field.
func WithDefaults(cfg DaemonConfig) DaemonConfig {
	if cfg.Name == "" {
		cfg.Name = "syfohd"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9200"
	}
	if cfg.Catalog.Names == "" {
		cfg.Catalog.Names = catalog.DefaultNamesFile
	}
	if cfg.Catalog.Properties == "" {
		cfg.Catalog.Properties = catalog.DefaultPropertiesFile
	}
	if cfg.Frame.Device == nil {
		d := sysex.DefaultDevice
		cfg.Frame.Device = &d
	}
	if cfg.Frame.ProtocolVersion == nil {
		v := sysex.DefaultProtocolVersion
		cfg.Frame.ProtocolVersion = &v
	}
	if cfg.Serial.BaudRate == 0 {
		cfg.Serial.BaudRate = transport.DefaultBaudRate
	}
	return cfg
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateDaemonConfig(cfg DaemonConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("daemon config missing name")
	}
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("daemon config missing addr")
	}
	if strings.TrimSpace(cfg.Catalog.Names) == "" || strings.TrimSpace(cfg.Catalog.Properties) == "" {
		return fmt.Errorf("daemon config missing catalog paths")
	}
	if err := ParserOptions(cfg).Validate(); err != nil {
		return fmt.Errorf("frame invalid: %w", err)
	}
	if cfg.Serial.BaudRate < 0 {
		return fmt.Errorf("serial baud_rate must be positive")
	}
	return nil
}
