package slots

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDimensions(t *testing.T) {
	tests := []struct {
		name     string
		slot     Slot
		expectW  int
		expectH  int
		expectOK bool
	}{
		{
			name:     "explicit width and height",
			slot:     Slot{Name: "Default-568h@2x", Width: 640, Height: 1136},
			expectW:  640,
			expectH:  1136,
			expectOK: true,
		},
		{
			name:     "size times scale",
			slot:     Slot{Name: "AppIcon-60x60@3x", Attributes: Attributes{Size: "60x60", Scale: "3x"}},
			expectW:  180,
			expectH:  180,
			expectOK: true,
		},
		{
			name:     "fractional size is truncated",
			slot:     Slot{Name: "AppIcon-83.5x83.5@2x", Attributes: Attributes{Size: "83.5x83.5", Scale: "2x"}},
			expectW:  167,
			expectH:  167,
			expectOK: true,
		},
		{
			name:     "missing scale defaults to 1x",
			slot:     Slot{Name: "Icon", Attributes: Attributes{Size: "29x29"}},
			expectW:  29,
			expectH:  29,
			expectOK: true,
		},
		{
			name:     "width alone falls back to size",
			slot:     Slot{Name: "Icon", Width: 10, Attributes: Attributes{Size: "20x20", Scale: "2x"}},
			expectW:  40,
			expectH:  40,
			expectOK: true,
		},
		{
			name:     "nothing to resolve",
			slot:     Slot{Name: "Broken", Attributes: Attributes{Idiom: "iphone"}},
			expectOK: false,
		},
		{
			name:     "malformed size",
			slot:     Slot{Name: "Broken", Attributes: Attributes{Size: "sixty"}},
			expectOK: false,
		},
		{
			name:     "malformed scale",
			slot:     Slot{Name: "Broken", Attributes: Attributes{Size: "60x60", Scale: "big"}},
			expectOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := tt.slot.Dimensions()
			if !tt.expectOK {
				if err == nil {
					t.Fatalf("Expected error, got %dx%d", w, h)
				}
				return
			}
			if err != nil {
				t.Fatalf("Dimensions failed: %v", err)
			}
			if w != tt.expectW || h != tt.expectH {
				t.Errorf("Expected %dx%d, got %dx%d", tt.expectW, tt.expectH, w, h)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	config := Attributes{Idiom: "iphone", Scale: "2x", Orientation: "portrait"}

	tests := []struct {
		name     string
		want     Attributes
		expected bool
	}{
		{"all shared keys equal", Attributes{Idiom: "iphone", Scale: "2x"}, true},
		{"empty request matches anything", Attributes{}, true},
		{"value differs", Attributes{Idiom: "ipad", Scale: "2x"}, false},
		{"config lacks requested key", Attributes{Idiom: "iphone", Subtype: "retina4"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := config.Matches(tt.want); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestSanitizeName(t *testing.T) {
	tests := map[string]string{
		"AppIcon-60x60@2x":          "AppIcon-60x60@2x",
		`Launch \"Image\" portrait`: "Launch_Image_portrait",
		"iPad Pro 12.9":             "iPad_Pro_12.9",
	}
	for in, expected := range tests {
		if got := SanitizeName(in); got != expected {
			t.Errorf("SanitizeName(%q): expected %q, got %q", in, expected, got)
		}
	}
}

func TestParseKeepsDocumentOrder(t *testing.T) {
	data := []byte(`{
  "Zeta": {"width": 10, "height": 20, "idiom": "iphone"},
  "Alpha": {"size": "60x60", "scale": "2x", "idiom": "iphone"},
  "Mid": {"width": 1, "height": 1, "minimum-system-version": 7.0}
}`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(cfg.Slots) != 3 {
		t.Fatalf("Expected 3 slots, got %d", len(cfg.Slots))
	}
	order := []string{"Zeta", "Alpha", "Mid"}
	for i, name := range order {
		if cfg.Slots[i].Name != name {
			t.Errorf("Slot %d: expected %s, got %s", i, name, cfg.Slots[i].Name)
		}
	}

	if cfg.Slots[0].Width != 10 || cfg.Slots[0].Height != 20 {
		t.Errorf("Expected 10x20, got %dx%d", cfg.Slots[0].Width, cfg.Slots[0].Height)
	}
	if cfg.Slots[1].Size != "60x60" || cfg.Slots[1].Scale != "2x" {
		t.Errorf("Unexpected attributes for Alpha: %s", cfg.Slots[1].Attributes)
	}
	if cfg.Slots[2].MinimumSystemVersion != "7.0" {
		t.Errorf("Expected minimum-system-version 7.0, got %q", cfg.Slots[2].MinimumSystemVersion)
	}

	matches := cfg.Match(Attributes{Idiom: "iphone"})
	if len(matches) != 2 || matches[0].Name != "Zeta" {
		t.Errorf("Expected Zeta first among iphone matches, got %+v", matches)
	}
}

func TestParseJSONEscapes(t *testing.T) {
	data := []byte(`{
	"Icon\/60": {"width": 120, "height": 120, "idiom": "iphone\/ipad"},
	"Caf\u00e9": {"size": "29x29", "scale": "3x", "extent": null}
}`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(cfg.Slots) != 2 {
		t.Fatalf("Expected 2 slots, got %d", len(cfg.Slots))
	}
	if cfg.Slots[0].Name != "Icon/60" || cfg.Slots[0].Idiom != "iphone/ipad" {
		t.Errorf("Expected escaped slash to decode, got %+v", cfg.Slots[0])
	}
	if cfg.Slots[1].Name != "Café" || cfg.Slots[1].Extent != "" {
		t.Errorf("Unexpected second slot: %+v", cfg.Slots[1])
	}
	if w, h, err := cfg.Slots[1].Dimensions(); err != nil || w != 87 || h != 87 {
		t.Errorf("Expected 87x87, got %dx%d (%v)", w, h, err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not a mapping", `["a", "b"]`},
		{"entry not a mapping", `{"Icon": 5}`},
		{"duplicate slot", `{"Icon": {"width": 1}, "Icon": {"width": 2}}`},
		{"bad width type", `{"Icon": {"width": "wide"}}`},
		{"malformed json", `{"Icon": `},
		{"null entry", `{"Icon": null}`},
		{"nested attribute", `{"Icon": {"idiom": ["iphone"]}}`},
		{"fractional width", `{"Icon": {"width": 1.5, "height": 2}}`},
		{"trailing data", `{"Icon": {"width": 1}} {}`},
		{"yaml entry not a mapping", "Icon: 5\n"},
		{"empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "slots.json")
	err := os.WriteFile(path, []byte(`{"AppIcon-60x60@2x": {"width":120,"height":120,"idiom":"iphone","scale":"2x"}}`), 0644)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Slots) != 1 || cfg.Slots[0].Name != "AppIcon-60x60@2x" {
		t.Fatalf("Expected slot AppIcon-60x60@2x, got %+v", cfg.Slots)
	}
	if slot := cfg.Slots[0]; slot.Idiom != "iphone" || slot.Scale != "2x" || slot.Width != 120 {
		t.Errorf("Unexpected slot: %+v", slot)
	}

	yamlPath := filepath.Join(tmpDir, "slots.yaml")
	err = os.WriteFile(yamlPath, []byte("Default@2x:\n  width: 640\n  height: 960\n  idiom: iphone\nDefault:\n  width: 320\n  height: 480\n"), 0644)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	cfg, err = Load(yamlPath)
	if err != nil {
		t.Fatalf("Load of YAML config failed: %v", err)
	}
	if len(cfg.Slots) != 2 || cfg.Slots[0].Name != "Default@2x" || cfg.Slots[1].Height != 480 {
		t.Errorf("Unexpected YAML slots: %+v", cfg.Slots)
	}

	if _, err := Load(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestPlaceholders(t *testing.T) {
	slot := Slot{Name: "AppIcon", Attributes: Attributes{Idiom: "ipad", Size: "76x76", Scale: "2x"}}
	values := slot.Placeholders()

	expected := map[string]string{
		"name":   "AppIcon",
		"idiom":  "ipad",
		"size":   "76x76",
		"scale":  "2x",
		"width":  "152",
		"height": "152",
		"extent": "",
	}
	for k, v := range expected {
		if values[k] != v {
			t.Errorf("Placeholder %s: expected %q, got %q", k, v, values[k])
		}
	}
}
