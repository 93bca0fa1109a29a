package images

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Candidate is a PNG found in a source directory
type Candidate struct {
	Path   string
	Width  int
	Height int
}

// EqualSize reports whether the candidate is exactly width x height
func (c Candidate) EqualSize(width, height int) bool {
	return c.Width == width && c.Height == height
}

// Scan lists every *.png in dir, sorted by path, with its pixel dimensions
func Scan(dir string) ([]Candidate, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.png"))
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	sort.Strings(paths)

	candidates := make([]Candidate, 0, len(paths))
	for _, path := range paths {
		width, height, err := Dimensions(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image %s: %w", path, err)
		}
		candidates = append(candidates, Candidate{Path: path, Width: width, Height: height})
		slog.Debug("Found candidate image", "path", path, "width", width, "height", height)
	}

	return candidates, nil
}

// FindBySize returns the first candidate of the given size
func FindBySize(candidates []Candidate, width, height int) (Candidate, bool) {
	for _, c := range candidates {
		if c.EqualSize(width, height) {
			return c, true
		}
	}
	return Candidate{}, false
}

// Dimensions reads the pixel size of an image file without decoding it fully
func Dimensions(imagePath string) (int, int, error) {
	file, err := os.Open(imagePath)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	img, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}

	return img.Width, img.Height, nil
}
