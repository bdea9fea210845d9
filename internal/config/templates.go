package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "daemon", "syfohd":
		return daemonTemplate, nil
	case "cli", "syfoh":
		return cliTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const daemonTemplate = `name = "syfohd"
addr = ":9200"
cors_origins = ["http://localhost:3000"]

[catalog]
names = "Sysex-Name-Number-Mapping.json"
properties = "Sysex-Properties-Mapping.json"

[frame]
device = 127
protocol_version = 1

[serial]
# port = "/dev/ttyACM0"
baud_rate = 115200
`

const cliTemplate = `mode = "HEX"
baud_rate = 115200
names = "Sysex-Name-Number-Mapping.json"
properties = "Sysex-Properties-Mapping.json"
device = 127
history = ".syfoh_history"
log_level = "info"
`
