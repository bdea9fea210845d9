package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// MaxParameter is the largest parameter number two 7-bit groups can carry.
const MaxParameter = 0x3FFF

// MaxField is the largest raw sub-target or device byte.
const MaxField = 0x7F

// DeviceTarget is the sub-target name reserved for the device address.
const DeviceTarget = "device"

// Kind is the declared value type of a parameter.
type Kind int

const (
	KindInteger Kind = iota
	KindFloat
	KindString
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "str"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts the type tags used by properties files.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "int", "integer", "uint", "bool":
		return KindInteger, nil
	case "float", "float32":
		return KindFloat, nil
	case "str", "string":
		return KindString, nil
	case "enum", "enumeration":
		return KindEnum, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// Slot identifies one of the two sub-target fields of a parameter.
type Slot int

const (
	SlotA Slot = iota
	SlotB
)

func (s Slot) String() string {
	if s == SlotB {
		return "field_b"
	}
	return "field_a"
}

// Entry is one parameter record as authored in a properties file. Field A is
// the device's "targetMSB", field B its "targetLSB".
type Entry struct {
	Kind       string
	FieldAName string
	FieldBName string
	FieldA     map[string]int
	FieldB     map[string]int
	Values     map[string]int
}

// Descriptor is the read-only view of a catalog parameter.
type Descriptor struct {
	Number     int
	Kind       Kind
	FieldAName string
	FieldBName string

	fieldA map[string]int
	fieldB map[string]int
	values map[string]int
}

// FieldSlot matches a sub-target name against the declared field names.
// Matching is exact; callers pass the lower-cased token.
func (d Descriptor) FieldSlot(name string) (Slot, bool) {
	switch {
	case name == "":
		return 0, false
	case d.FieldAName != "" && name == d.FieldAName:
		return SlotA, true
	case d.FieldBName != "" && name == d.FieldBName:
		return SlotB, true
	}
	return 0, false
}

// FieldName returns the display name declared for slot.
func (d Descriptor) FieldName(slot Slot) string {
	if slot == SlotB {
		return d.FieldBName
	}
	return d.FieldAName
}

// FieldValue looks up an enumerated sub-target value.
func (d Descriptor) FieldValue(slot Slot, name string) (int, bool) {
	table := d.fieldA
	if slot == SlotB {
		table = d.fieldB
	}
	v, ok := table[strings.ToLower(name)]
	return v, ok
}

// FieldValueNames lists the enumerated names of slot, sorted.
func (d Descriptor) FieldValueNames(slot Slot) []string {
	if slot == SlotB {
		return sortedKeys(d.fieldB)
	}
	return sortedKeys(d.fieldA)
}

// Value looks up an enumerated main value. An exact match wins over a
// case-insensitive one.
func (d Descriptor) Value(name string) (int, bool) {
	if v, ok := d.values[name]; ok {
		return v, true
	}
	for k, v := range d.values {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return 0, false
}

// ValueNames lists the enumerated main value names, sorted.
func (d Descriptor) ValueNames() []string {
	return sortedKeys(d.values)
}

// Catalog is the immutable parameter table of one device. It is safe for
// concurrent use once built.
type Catalog struct {
	names  map[string]int
	params map[int]Descriptor
}

// New validates the alias table and parameter entries and builds a Catalog.
func New(names map[string]int, entries map[int]Entry) (*Catalog, error) {
	c := &Catalog{
		names:  make(map[string]int, len(names)),
		params: make(map[int]Descriptor, len(entries)),
	}
	for name, number := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return nil, fmt.Errorf("%w: empty alias", ErrInvalidEntry)
		}
		if number < 0 || number > MaxParameter {
			return nil, fmt.Errorf("%w: alias %q number %d out of range", ErrInvalidEntry, name, number)
		}
		c.names[key] = number
	}
	for number, entry := range entries {
		d, err := buildDescriptor(number, entry)
		if err != nil {
			return nil, err
		}
		c.params[number] = d
	}
	return c, nil
}

func buildDescriptor(number int, entry Entry) (Descriptor, error) {
	if number < 0 || number > MaxParameter {
		return Descriptor{}, fmt.Errorf("%w: parameter %d out of range", ErrInvalidEntry, number)
	}
	kind, err := ParseKind(entry.Kind)
	if err != nil {
		return Descriptor{}, fmt.Errorf("parameter %d: %w", number, err)
	}
	d := Descriptor{
		Number:     number,
		Kind:       kind,
		FieldAName: strings.TrimSpace(entry.FieldAName),
		FieldBName: strings.TrimSpace(entry.FieldBName),
		values:     copyTable(entry.Values, false),
	}
	if d.FieldAName == DeviceTarget || d.FieldBName == DeviceTarget {
		return Descriptor{}, fmt.Errorf("%w: parameter %d uses reserved field name %q", ErrInvalidEntry, number, DeviceTarget)
	}
	if d.FieldAName != "" && d.FieldAName == d.FieldBName {
		return Descriptor{}, fmt.Errorf("%w: parameter %d declares field %q twice", ErrInvalidEntry, number, d.FieldAName)
	}
	if d.fieldA, err = fieldTable(number, SlotA, entry.FieldA); err != nil {
		return Descriptor{}, err
	}
	if d.fieldB, err = fieldTable(number, SlotB, entry.FieldB); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

func fieldTable(number int, slot Slot, in map[string]int) (map[string]int, error) {
	for name, v := range in {
		if v < 0 || v > MaxField {
			return nil, fmt.Errorf("%w: parameter %d %s value %q=%d out of range", ErrInvalidEntry, number, slot, name, v)
		}
	}
	return copyTable(in, true), nil
}

func copyTable(in map[string]int, fold bool) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		if fold {
			k = strings.ToLower(k)
		}
		out[k] = v
	}
	return out
}

// Number resolves a parameter alias. Aliases are case-insensitive.
func (c *Catalog) Number(name string) (int, bool) {
	n, ok := c.names[strings.ToLower(name)]
	return n, ok
}

// Descriptor returns the declared properties of parameter number.
func (c *Catalog) Descriptor(number int) (Descriptor, bool) {
	d, ok := c.params[number]
	return d, ok
}

// Names lists every alias, sorted.
func (c *Catalog) Names() []string {
	return sortedKeys(c.names)
}

// Descriptors lists every described parameter ordered by number.
func (c *Catalog) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(c.params))
	for _, d := range c.params {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Aliases returns the aliases that resolve to number, sorted.
func (c *Catalog) Aliases(number int) []string {
	var out []string
	for name, n := range c.names {
		if n == number {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
