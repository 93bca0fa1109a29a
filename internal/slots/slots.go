package slots

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Attributes describes an image slot. An empty field means the attribute is absent.
type Attributes struct {
	Idiom                string `yaml:"idiom,omitempty" json:"idiom,omitempty"`
	Size                 string `yaml:"size,omitempty" json:"size,omitempty"`
	Scale                string `yaml:"scale,omitempty" json:"scale,omitempty"`
	Orientation          string `yaml:"orientation,omitempty" json:"orientation,omitempty"`
	Subtype              string `yaml:"subtype,omitempty" json:"subtype,omitempty"`
	MinimumSystemVersion string `yaml:"minimum-system-version,omitempty" json:"minimum-system-version,omitempty"`
	Extent               string `yaml:"extent,omitempty" json:"extent,omitempty"`
}

// Field is a single attribute key/value pair
type Field struct {
	Key   string
	Value string
}

// Fields returns the attributes in their canonical key order, including absent ones
func (a Attributes) Fields() []Field {
	return []Field{
		{"idiom", a.Idiom},
		{"size", a.Size},
		{"scale", a.Scale},
		{"orientation", a.Orientation},
		{"subtype", a.Subtype},
		{"minimum-system-version", a.MinimumSystemVersion},
		{"extent", a.Extent},
	}
}

// Matches reports whether every attribute present in want is present in a with the same value
func (a Attributes) Matches(want Attributes) bool {
	have := a.Fields()
	for i, f := range want.Fields() {
		if f.Value == "" {
			continue
		}
		if have[i].Value != f.Value {
			return false
		}
	}
	return true
}

// String renders the present attributes as key=value pairs
func (a Attributes) String() string {
	var parts []string
	for _, f := range a.Fields() {
		if f.Value != "" {
			parts = append(parts, f.Key+"="+f.Value)
		}
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Slot is a named entry of a slot config
type Slot struct {
	Name       string `yaml:"-"`
	Attributes `yaml:",inline"`
	Width      int `yaml:"width,omitempty"`
	Height     int `yaml:"height,omitempty"`
}

// Dimensions resolves the pixel size of the slot, either from explicit
// width/height or from size multiplied by scale.
func (s Slot) Dimensions() (int, int, error) {
	if s.Width > 0 && s.Height > 0 {
		return s.Width, s.Height, nil
	}
	if s.Size == "" {
		return 0, 0, fmt.Errorf("slot %q: no width/height and no size", s.Name)
	}

	w, h, err := parseSize(s.Size)
	if err != nil {
		return 0, 0, fmt.Errorf("slot %q: %w", s.Name, err)
	}
	scale, err := parseScale(s.Scale)
	if err != nil {
		return 0, 0, fmt.Errorf("slot %q: %w", s.Name, err)
	}

	return int(w * scale), int(h * scale), nil
}

// Placeholders returns the values available to filename templates, keyed without brackets.
// Dimensions are included only when they resolve.
func (s Slot) Placeholders() map[string]string {
	values := map[string]string{"name": s.Name}
	for _, f := range s.Fields() {
		values[f.Key] = f.Value
	}
	if w, h, err := s.Dimensions(); err == nil {
		values["width"] = strconv.Itoa(w)
		values["height"] = strconv.Itoa(h)
	}
	return values
}

func parseSize(size string) (float64, float64, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(size)), "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q: expected WxH", size)
	}
	w, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", size, err)
	}
	h, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", size, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid size %q: dimensions must be positive", size)
	}
	return w, h, nil
}

func parseScale(scale string) (float64, error) {
	if scale == "" {
		return 1, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(scale)), "x"), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid scale %q: %w", scale, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid scale %q: must be positive", scale)
	}
	return v, nil
}

// SanitizeName turns a slot name into a file name stem
func SanitizeName(name string) string {
	name = strings.ReplaceAll(name, `\`, "")
	name = strings.ReplaceAll(name, `"`, "")
	return strings.ReplaceAll(name, " ", "_")
}

// Config is a slot config in document order
type Config struct {
	Slots []Slot
}

// Load reads a slot config document. JSON is the usual format; YAML is accepted as well.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		cfg, err = parseYAML(data)
	default:
		cfg, err = Parse(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	slog.Debug("Loaded slot config", "path", path, "slots", len(cfg.Slots))
	return cfg, nil
}

// Parse decodes a slot config, keeping the order of its keys. Documents
// starting with { or [ are read as JSON, anything else as YAML.
func Parse(data []byte) (*Config, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return parseJSON(data)
	}
	return parseYAML(data)
}

func parseJSON(data []byte) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a mapping of slot names")
	}

	cfg := &Config{}
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name := tok.(string)
		if seen[name] {
			return nil, fmt.Errorf("duplicate slot %q", name)
		}
		seen[name] = true

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("slot %q: %w", name, err)
		}
		slot, err := slotFromJSON(name, raw)
		if err != nil {
			return nil, err
		}
		cfg.Slots = append(cfg.Slots, slot)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after the slot mapping")
	}
	return cfg, nil
}

func slotFromJSON(name string, data json.RawMessage) (Slot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return Slot{}, fmt.Errorf("slot %q is not a mapping", name)
	}

	slot := Slot{Name: name}
	targets := map[string]*string{
		"idiom":                  &slot.Idiom,
		"size":                   &slot.Size,
		"scale":                  &slot.Scale,
		"orientation":            &slot.Orientation,
		"subtype":                &slot.Subtype,
		"minimum-system-version": &slot.MinimumSystemVersion,
		"extent":                 &slot.Extent,
	}
	for key, target := range targets {
		value, ok := fields[key]
		if !ok {
			continue
		}
		str, err := jsonScalar(value)
		if err != nil {
			return Slot{}, fmt.Errorf("slot %q: %s: %w", name, key, err)
		}
		*target = str
	}

	for key, target := range map[string]*int{"width": &slot.Width, "height": &slot.Height} {
		value, ok := fields[key]
		if !ok {
			continue
		}
		n, err := jsonInt(value)
		if err != nil {
			return Slot{}, fmt.Errorf("slot %q: %s: %w", name, key, err)
		}
		*target = n
	}
	return slot, nil
}

func jsonScalar(value json.RawMessage) (string, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch v := v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("expected a scalar value, got %s", string(value))
	}
}

func jsonInt(value json.RawMessage) (int, error) {
	var num json.Number
	if err := json.Unmarshal(value, &num); err != nil {
		return 0, fmt.Errorf("expected a number, got %s", string(value))
	}
	if n, err := num.Int64(); err == nil {
		return int(n), nil
	}
	f, err := num.Float64()
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("expected an integer, got %s", num)
	}
	return int(f), nil
}

func parseYAML(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of slot names", root.Line)
	}

	cfg := &Config{Slots: make([]Slot, 0, len(root.Content)/2)}
	seen := make(map[string]bool, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if seen[key.Value] {
			return nil, fmt.Errorf("line %d: duplicate slot %q", key.Line, key.Value)
		}
		seen[key.Value] = true

		if value.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: slot %q is not a mapping", value.Line, key.Value)
		}

		var slot Slot
		if err := value.Decode(&slot); err != nil {
			return nil, fmt.Errorf("slot %q: %w", key.Value, err)
		}
		slot.Name = key.Value
		cfg.Slots = append(cfg.Slots, slot)
	}

	return cfg, nil
}

// Match returns every slot whose attributes match want, in document order
func (c *Config) Match(want Attributes) []Slot {
	var matches []Slot
	for _, s := range c.Slots {
		if s.Matches(want) {
			matches = append(matches, s)
		}
	}
	return matches
}
