package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/xcataloger/internal/slots"
)

const launchImageContents = `{
  "images" : [
    {
      "orientation" : "portrait",
      "idiom" : "iphone",
      "extent" : "full-screen",
      "minimum-system-version" : "7.0",
      "filename" : "old.png",
      "scale" : "2x",
      "role" : "launch"
    },
    {
      "orientation" : "portrait",
      "idiom" : "iphone",
      "subtype" : "retina4",
      "minimum-system-version" : 7.0,
      "scale" : "2x"
    }
  ],
  "info" : {
    "version" : 1,
    "author" : "xcode"
  }
}`

func writeContents(t *testing.T, data string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, DescriptorName), []byte(data), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return dir
}

func TestReadDir(t *testing.T) {
	dir := writeContents(t, launchImageContents)

	d, err := ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	if len(d.Images) != 2 {
		t.Fatalf("Expected 2 images, got %d", len(d.Images))
	}

	first := d.Images[0]
	if first.Filename != "old.png" || first.Extent != "full-screen" || first.Scale != "2x" {
		t.Errorf("Unexpected first slot: %+v", first)
	}
	if d.Images[1].MinimumSystemVersion != "7.0" {
		t.Errorf("Expected unquoted version to read as 7.0, got %q", d.Images[1].MinimumSystemVersion)
	}

	want := slots.Attributes{
		Idiom:                "iphone",
		Scale:                "2x",
		Orientation:          "portrait",
		Subtype:              "retina4",
		MinimumSystemVersion: "7.0",
	}
	if got := d.Images[1].Attributes(); got != want {
		t.Errorf("Expected attributes %s, got %s", want, got)
	}

	if names := d.Filenames(); len(names) != 1 || names[0] != "old.png" {
		t.Errorf("Expected [old.png], got %v", names)
	}
}

func TestWriteDropsUnknownKeys(t *testing.T) {
	dir := writeContents(t, launchImageContents)
	path := filepath.Join(dir, DescriptorName)

	d, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if err := Write(path, d); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read back: %v", err)
	}
	out := string(data)

	if strings.Contains(out, "role") {
		t.Errorf("Expected role key to be dropped:\n%s", out)
	}
	if !strings.Contains(out, `"author": "xcode"`) {
		t.Errorf("Expected info to be preserved:\n%s", out)
	}

	// extent is serialized before idiom, filename before scale
	if strings.Index(out, `"extent"`) > strings.Index(out, `"idiom"`) {
		t.Errorf("Expected extent before idiom:\n%s", out)
	}
	if strings.Index(out, `"filename"`) > strings.Index(out, `"scale"`) {
		t.Errorf("Expected filename before scale:\n%s", out)
	}

	again, err := Read(path)
	if err != nil {
		t.Fatalf("Read after write failed: %v", err)
	}
	if len(again.Images) != len(d.Images) {
		t.Fatalf("Expected %d images, got %d", len(d.Images), len(again.Images))
	}
	for i := range d.Images {
		if again.Images[i] != d.Images[i] {
			t.Errorf("Slot %d changed: %+v vs %+v", i, d.Images[i], again.Images[i])
		}
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := ReadDir(t.TempDir()); err == nil {
		t.Error("Expected error for missing Contents.json, got nil")
	}

	dir := writeContents(t, `{"images": [{"idiom": ["iphone"]}]}`)
	if _, err := ReadDir(dir); err == nil {
		t.Error("Expected error for non-scalar attribute, got nil")
	}

	dir = writeContents(t, `{"images": `)
	if _, err := ReadDir(dir); err == nil {
		t.Error("Expected error for malformed JSON, got nil")
	}
}

func TestWithFilename(t *testing.T) {
	d := &Descriptor{Images: []ImageSlot{{Idiom: "iphone"}, {Idiom: "ipad"}}}

	updated, err := d.WithFilename(1, "pad.png")
	if err != nil {
		t.Fatalf("WithFilename failed: %v", err)
	}
	if updated.Images[1].Filename != "pad.png" {
		t.Errorf("Expected pad.png, got %q", updated.Images[1].Filename)
	}
	if d.Images[1].Filename != "" {
		t.Error("Expected original descriptor to be unchanged")
	}

	if _, err := d.WithFilename(2, "x.png"); err == nil {
		t.Error("Expected out of range error, got nil")
	}
}

func TestLock(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}

	if _, err := AcquireLock(dir); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked, got %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, LockName)); !os.IsNotExist(err) {
		t.Errorf("Expected lock file to be removed, got %v", err)
	}

	again, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("Expected lock to be free after release: %v", err)
	}
	_ = again.Release()
}
