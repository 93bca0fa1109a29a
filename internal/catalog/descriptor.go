package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/xcataloger/internal/slots"
)

// DescriptorName is the file name of a catalog descriptor inside an asset set directory
const DescriptorName = "Contents.json"

// ImageSlot is one entry of a descriptor's images array. Field order is the
// serialized key order; keys outside this set are dropped on read.
type ImageSlot struct {
	Extent               string `json:"extent,omitempty"`
	Idiom                string `json:"idiom,omitempty"`
	Size                 string `json:"size,omitempty"`
	Filename             string `json:"filename,omitempty"`
	Subtype              string `json:"subtype,omitempty"`
	MinimumSystemVersion string `json:"minimum-system-version,omitempty"`
	Orientation          string `json:"orientation,omitempty"`
	Scale                string `json:"scale,omitempty"`
}

// Attributes returns every descriptive attribute of the slot except the filename
func (s ImageSlot) Attributes() slots.Attributes {
	return slots.Attributes{
		Idiom:                s.Idiom,
		Size:                 s.Size,
		Scale:                s.Scale,
		Orientation:          s.Orientation,
		Subtype:              s.Subtype,
		MinimumSystemVersion: s.MinimumSystemVersion,
		Extent:               s.Extent,
	}
}

// Descriptor is a parsed Contents.json
type Descriptor struct {
	Images []ImageSlot     `json:"images"`
	Info   json.RawMessage `json:"info,omitempty"`
}

// UnmarshalJSON accepts attribute values of any JSON scalar type, since
// hand-edited descriptors sometimes carry unquoted versions like 7.0.
func (s *ImageSlot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	targets := map[string]*string{
		"extent":                 &s.Extent,
		"idiom":                  &s.Idiom,
		"size":                   &s.Size,
		"filename":               &s.Filename,
		"subtype":                &s.Subtype,
		"minimum-system-version": &s.MinimumSystemVersion,
		"orientation":            &s.Orientation,
		"scale":                  &s.Scale,
	}
	for key, target := range targets {
		value, ok := raw[key]
		if !ok {
			continue
		}
		str, err := scalarString(value)
		if err != nil {
			return fmt.Errorf("image key %q: %w", key, err)
		}
		*target = str
	}
	return nil
}

func scalarString(value json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(value, &str); err == nil {
		return str, nil
	}
	var num json.Number
	if err := json.Unmarshal(value, &num); err == nil {
		return num.String(), nil
	}
	var b bool
	if err := json.Unmarshal(value, &b); err == nil {
		return fmt.Sprint(b), nil
	}
	return "", fmt.Errorf("expected a scalar value, got %s", string(value))
}

// Read loads a descriptor from path
func Read(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse descriptor %s: %w", path, err)
	}
	return &d, nil
}

// ReadDir loads the Contents.json of an asset set directory
func ReadDir(dir string) (*Descriptor, error) {
	return Read(filepath.Join(dir, DescriptorName))
}

// Write serializes the descriptor with two-space indentation
func Write(path string, d *Descriptor) error {
	images := d.Images
	if images == nil {
		images = []ImageSlot{}
	}
	out := Descriptor{Images: images, Info: d.Info}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal descriptor: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	return nil
}

// Filenames returns every filename referenced by the descriptor, in order
func (d *Descriptor) Filenames() []string {
	var names []string
	for _, img := range d.Images {
		if img.Filename != "" {
			names = append(names, img.Filename)
		}
	}
	return names
}

// WithFilename returns a copy of the descriptor with slot i assigned filename
func (d *Descriptor) WithFilename(i int, filename string) (*Descriptor, error) {
	if i < 0 || i >= len(d.Images) {
		return nil, fmt.Errorf("image slot %d out of range (%d slots)", i, len(d.Images))
	}
	out := d.Clone()
	out.Images[i].Filename = filename
	return out, nil
}

// Clone returns a deep copy of the descriptor
func (d *Descriptor) Clone() *Descriptor {
	out := &Descriptor{
		Images: make([]ImageSlot, len(d.Images)),
		Info:   append(json.RawMessage(nil), d.Info...),
	}
	copy(out.Images, d.Images)
	return out
}
