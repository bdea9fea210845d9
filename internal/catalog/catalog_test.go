package catalog

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/danmuck/syfoh/internal/testutil/testlog"
)

func loadFixture(t *testing.T, names, properties string) *Catalog {
	t.Helper()
	c, err := Load(filepath.Join("testdata", names), filepath.Join("testdata", properties))
	if err != nil {
		t.Fatalf("load %s/%s: %v", names, properties, err)
	}
	return c
}

func TestLoadJSONFixture(t *testing.T) {
	testlog.Start(t)
	c := loadFixture(t, "names.json", "properties.json")

	for name, want := range map[string]int{"volume": 5, "ontime": 0x21, "speed": 0x30, "name": 0x40} {
		got, ok := c.Number(name)
		if !ok || got != want {
			t.Fatalf("Number(%q) = (%d, %v), want %d", name, got, ok, want)
		}
	}
	if _, ok := c.Number("VOLUME"); !ok {
		t.Fatalf("expected alias lookup to be case-insensitive")
	}

	d, ok := c.Descriptor(0x21)
	if !ok {
		t.Fatalf("expected descriptor 0x21")
	}
	if d.Kind != KindFloat || d.FieldAName != "mode" || d.FieldBName != "coil" {
		t.Fatalf("unexpected descriptor: %+v", d)
	}
	if v, ok := d.FieldValue(SlotA, "midilive"); !ok || v != 2 {
		t.Fatalf("FieldValue(midilive) = (%d, %v)", v, ok)
	}

	name, ok := c.Descriptor(0x40)
	if !ok || name.Kind != KindString {
		t.Fatalf("expected string descriptor for 0x40, got %+v", name)
	}
	if name.FieldAName != "" || name.FieldBName != "" {
		t.Fatalf("null field names should load empty: %+v", name)
	}
}

func TestLoadYAMLAndTOMLFixtures(t *testing.T) {
	testlog.Start(t)
	for _, tc := range []struct{ names, props string }{
		{"names.yaml", "properties.yaml"},
		{"names.toml", "properties.toml"},
	} {
		c := loadFixture(t, tc.names, tc.props)
		if n, ok := c.Number("ontime"); !ok || n != 0x21 {
			t.Fatalf("%s: ontime = (%d, %v)", tc.names, n, ok)
		}
		d, ok := c.Descriptor(5)
		if !ok || d.Kind != KindInteger || d.FieldAName != "mode" {
			t.Fatalf("%s: unexpected descriptor 5: %+v", tc.props, d)
		}
		if v, ok := d.FieldValue(SlotA, "simple"); !ok || v != 1 {
			t.Fatalf("%s: FieldValue(simple) = (%d, %v)", tc.props, v, ok)
		}
		if d, ok := c.Descriptor(0x21); !ok || d.Kind != KindFloat {
			t.Fatalf("%s: expected float descriptor for 0x21", tc.props)
		}
	}
}

func TestDecodeNamesRejectsGarbage(t *testing.T) {
	testlog.Start(t)
	_, err := DecodeNames(strings.NewReader(`{"volume": "five"}`), FormatJSON)
	if !errors.Is(err, ErrInvalidNumber) {
		t.Fatalf("expected ErrInvalidNumber, got %v", err)
	}
	_, err = DecodeNames(strings.NewReader(`[1, 2]`), FormatJSON)
	if !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry for array document, got %v", err)
	}
}

func TestDecodeEntriesRejectsBadShapes(t *testing.T) {
	testlog.Start(t)
	cases := map[string]string{
		"bad key":        `{"five": {"type": "int"}}`,
		"not a table":    `{"5": 3}`,
		"bad field name": `{"5": {"targetMSB-name": 7}}`,
		"bad enum value": `{"5": {"value": {"on": "yes"}}}`,
	}
	for name, doc := range cases {
		if _, err := DecodeEntries(strings.NewReader(doc), FormatJSON); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNewValidatesEntries(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name    string
		names   map[string]int
		entries map[int]Entry
		want    error
	}{
		{"alias out of range", map[string]int{"x": MaxParameter + 1}, nil, ErrInvalidEntry},
		{"parameter out of range", nil, map[int]Entry{MaxParameter + 1: {}}, ErrInvalidEntry},
		{"unknown kind", nil, map[int]Entry{1: {Kind: "complex"}}, ErrUnknownKind},
		{"reserved field", nil, map[int]Entry{1: {FieldAName: DeviceTarget}}, ErrInvalidEntry},
		{"duplicate field", nil, map[int]Entry{1: {FieldAName: "coil", FieldBName: "coil"}}, ErrInvalidEntry},
		{"field enum out of range", nil, map[int]Entry{1: {FieldA: map[string]int{"big": 128}}}, ErrInvalidEntry},
	}
	for _, tc := range cases {
		if _, err := New(tc.names, tc.entries); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestDescriptorLookups(t *testing.T) {
	testlog.Start(t)
	c, err := New(map[string]int{"mode": 0x23, "Mode-Alt": 0x23}, map[int]Entry{
		0x23: {
			Kind:       "enum",
			FieldBName: "coil",
			FieldB:     map[string]int{"All": 127},
			Values:     map[string]int{"Simple": 1, "simple": 9, "MidiLive": 2},
		},
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	d, _ := c.Descriptor(0x23)
	if slot, ok := d.FieldSlot("coil"); !ok || slot != SlotB {
		t.Fatalf("FieldSlot(coil) = (%v, %v)", slot, ok)
	}
	if _, ok := d.FieldSlot(""); ok {
		t.Fatalf("empty name must not match an absent field")
	}
	if v, ok := d.FieldValue(SlotB, "ALL"); !ok || v != 127 {
		t.Fatalf("field enums should fold case, got (%d, %v)", v, ok)
	}
	if v, ok := d.Value("simple"); !ok || v != 9 {
		t.Fatalf("exact value match should win, got (%d, %v)", v, ok)
	}
	if v, ok := d.Value("midilive"); !ok || v != 2 {
		t.Fatalf("value lookup should fall back to case folding, got (%d, %v)", v, ok)
	}
	if got, want := c.Aliases(0x23), []string{"mode", "mode-alt"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Aliases = %v, want %v", got, want)
	}
	if got := d.ValueNames(); len(got) != 3 || got[0] != "MidiLive" {
		t.Fatalf("unexpected sorted value names: %v", got)
	}
}

func TestParseNumber(t *testing.T) {
	cases := map[string]int{"12": 12, "0x1F": 31, "0X10": 16, " 7 ": 7}
	for in, want := range cases {
		got, err := ParseNumber(in)
		if err != nil || got != want {
			t.Fatalf("ParseNumber(%q) = (%d, %v), want %d", in, got, err, want)
		}
	}
	if _, err := ParseNumber("0xZZ"); !errors.Is(err, ErrInvalidNumber) {
		t.Fatalf("expected ErrInvalidNumber, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	if f, err := FormatFromPath("a/b.YML"); err != nil || f != FormatYAML {
		t.Fatalf("unexpected format: %v %v", f, err)
	}
	if _, err := FormatFromPath("table.csv"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
