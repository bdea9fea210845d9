package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Default file names shipped next to the device firmware.
const (
	DefaultNamesFile      = "Sysex-Name-Number-Mapping.json"
	DefaultPropertiesFile = "Sysex-Properties-Mapping.json"
)

// Property keys of a properties file entry.
const (
	keyType       = "type"
	keyFieldAName = "targetMSB-name"
	keyFieldBName = "targetLSB-name"
	keyFieldA     = "targetMSB"
	keyFieldB     = "targetLSB"
	keyValues     = "value"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the decoder from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Load reads the alias table and the properties table and builds a Catalog.
func Load(namesPath, propertiesPath string) (*Catalog, error) {
	names, err := LoadNames(namesPath)
	if err != nil {
		return nil, err
	}
	entries, err := LoadEntries(propertiesPath)
	if err != nil {
		return nil, err
	}
	c, err := New(names, entries)
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("names", namesPath).
		Str("properties", propertiesPath).
		Int("aliases", len(names)).
		Int("parameters", len(entries)).
		Msg("catalog loaded")
	return c, nil
}

func LoadNames(path string) (map[string]int, error) {
	var out map[string]int
	err := decodeFile(path, func(r io.Reader, format Format) error {
		var err error
		out, err = DecodeNames(r, format)
		return err
	})
	return out, err
}

func LoadEntries(path string) (map[int]Entry, error) {
	var out map[int]Entry
	err := decodeFile(path, func(r io.Reader, format Format) error {
		var err error
		out, err = DecodeEntries(r, format)
		return err
	})
	return out, err
}

func decodeFile(path string, decode func(io.Reader, Format) error) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("catalog load failed (%s): %w", path, err)
	}
	defer f.Close()
	if err := decode(f, format); err != nil {
		return fmt.Errorf("catalog parse failed (%s): %w", path, err)
	}
	return nil
}

// DecodeNames reads an alias table. Numbers may be integers or decimal/hex
// strings.
func DecodeNames(r io.Reader, format Format) (map[string]int, error) {
	doc, err := decodeDocument(r, format)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(doc))
	for name, raw := range doc {
		n, err := toInt(raw)
		if err != nil {
			return nil, fmt.Errorf("alias %q: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}

// DecodeEntries reads a properties table keyed by decimal or hex parameter
// number.
func DecodeEntries(r io.Reader, format Format) (map[int]Entry, error) {
	doc, err := decodeDocument(r, format)
	if err != nil {
		return nil, err
	}
	out := make(map[int]Entry, len(doc))
	for key, raw := range doc {
		number, err := ParseNumber(key)
		if err != nil {
			return nil, fmt.Errorf("parameter key %q: %w", key, err)
		}
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: parameter %q is not a table", ErrInvalidEntry, key)
		}
		entry, err := decodeEntry(obj)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", key, err)
		}
		out[number] = entry
	}
	return out, nil
}

func decodeEntry(obj map[string]any) (Entry, error) {
	var (
		entry Entry
		err   error
	)
	if entry.Kind, err = optionalString(obj[keyType]); err != nil {
		return Entry{}, fmt.Errorf("%s: %w", keyType, err)
	}
	if entry.FieldAName, err = optionalString(obj[keyFieldAName]); err != nil {
		return Entry{}, fmt.Errorf("%s: %w", keyFieldAName, err)
	}
	if entry.FieldBName, err = optionalString(obj[keyFieldBName]); err != nil {
		return Entry{}, fmt.Errorf("%s: %w", keyFieldBName, err)
	}
	if entry.FieldA, err = optionalTable(obj[keyFieldA]); err != nil {
		return Entry{}, fmt.Errorf("%s: %w", keyFieldA, err)
	}
	if entry.FieldB, err = optionalTable(obj[keyFieldB]); err != nil {
		return Entry{}, fmt.Errorf("%s: %w", keyFieldB, err)
	}
	if entry.Values, err = optionalTable(obj[keyValues]); err != nil {
		return Entry{}, fmt.Errorf("%s: %w", keyValues, err)
	}
	return entry, nil
}

func decodeDocument(r io.Reader, format Format) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var doc any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(&doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return map[string]any{}, nil
	}
	m, ok := normalize(doc).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %T, want a table", ErrInvalidEntry, doc)
	}
	return m, nil
}

// normalize turns the map[any]any tables yaml produces for non-string keys
// into map[string]any.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}

func optionalString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	default:
		return "", fmt.Errorf("%w: want string, got %T", ErrInvalidEntry, v)
	}
}

func optionalTable(v any) (map[string]int, error) {
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: want table, got %T", ErrInvalidEntry, v)
	}
	out := make(map[string]int, len(obj))
	for name, raw := range obj {
		n, err := toInt(raw)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		out[name] = n
	}
	return out, nil
}

func toInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case uint64:
		if t > math.MaxInt32 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidNumber, t)
		}
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("%w: %v is not integral", ErrInvalidNumber, t)
		}
		return int(t), nil
	case json.Number:
		return ParseNumber(t.String())
	case string:
		return ParseNumber(t)
	default:
		return 0, fmt.Errorf("%w: unsupported %T", ErrInvalidNumber, v)
	}
}

// ParseNumber reads a decimal number, or a hex number when the text contains
// an "x" ("0x1F", "x1F").
func ParseNumber(raw string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	var (
		n   int64
		err error
	)
	if i := strings.IndexByte(s, 'x'); i >= 0 {
		n, err = strconv.ParseInt(s[i+1:], 16, 32)
	} else {
		n, err = strconv.ParseInt(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return int(n), nil
}
