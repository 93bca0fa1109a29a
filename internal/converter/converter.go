package converter

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lehigh-university-libraries/xcataloger/internal/images"
	"github.com/lehigh-university-libraries/xcataloger/internal/slots"
)

// DefaultDirName is the directory created for converted images
const DefaultDirName = "ConvertedImages"

// Orientation of an image or slot
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// ParseOrientation validates an orientation flag value. Empty means undeclared.
func ParseOrientation(s string) (Orientation, error) {
	switch o := Orientation(strings.ToLower(strings.TrimSpace(s))); o {
	case "", Portrait, Landscape:
		return o, nil
	default:
		return "", fmt.Errorf("invalid orientation %q (expected portrait or landscape)", s)
	}
}

// OrientationOf infers the orientation of a width x height box
func OrientationOf(width, height int) Orientation {
	if width > height {
		return Landscape
	}
	return Portrait
}

// Direction is the way an image is turned when orientations differ
type Direction string

const (
	// Left turns the image 90 degrees counter-clockwise
	Left Direction = "left"
	// Right turns the image 90 degrees clockwise
	Right Direction = "right"
)

// ParseDirection validates a rotate flag value. Empty disables rotation.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case "", Left, Right:
		return d, nil
	default:
		return "", fmt.Errorf("invalid rotate direction %q (expected left or right)", s)
	}
}

// Options controls conversion
type Options struct {
	OutputDir         string
	DirName           string
	SourceOrientation Orientation
	Rotate            Direction
	IgnoreAspectRatio bool
}

// Converter scales one source image to every slot of a config
type Converter struct {
	opts Options
}

// New creates a converter
func New(opts Options) *Converter {
	if opts.DirName == "" {
		opts.DirName = DefaultDirName
	}
	return &Converter{opts: opts}
}

// ConvertFile reads sourcePath and writes {width}x{height}.png for every slot
// into a new, uniquely named directory, whose path is returned.
func (c *Converter) ConvertFile(sourcePath string, cfg *slots.Config) (string, error) {
	src, err := imaging.Open(sourcePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to open source image: %w", err)
	}

	sourceOrientation := c.opts.SourceOrientation
	if sourceOrientation == "" {
		sourceOrientation = OrientationOf(src.Bounds().Dx(), src.Bounds().Dy())
	}
	slog.Info("Converting source image",
		"path", sourcePath,
		"width", src.Bounds().Dx(),
		"height", src.Bounds().Dy(),
		"orientation", sourceOrientation,
		"rotate", c.opts.Rotate)

	dir, err := images.UniqueDir(c.opts.OutputDir, c.opts.DirName)
	if err != nil {
		return "", err
	}

	written := make(map[string]bool, len(cfg.Slots))
	for _, slot := range cfg.Slots {
		width, height, err := slot.Dimensions()
		if err != nil {
			return dir, err
		}

		filename := fmt.Sprintf("%dx%d.png", width, height)
		if written[filename] {
			slog.Debug("Size already written", "slot", slot.Name, "file", filename)
			continue
		}

		slotOrientation := Orientation(slot.Orientation)
		if slotOrientation == "" {
			slotOrientation = OrientationOf(width, height)
		}

		img := c.Convert(src, sourceOrientation, width, height, slotOrientation)
		path := filepath.Join(dir, filename)
		if err := images.SavePNG(path, img); err != nil {
			return dir, err
		}
		written[filename] = true
		slog.Info("Created image", "slot", slot.Name, "path", path)
	}

	return dir, nil
}

// Convert produces a width x height version of src. The source is turned when
// rotation is enabled and the orientations differ, shrunk so its longer side
// fits the longer target side, then either stretched to the target or scaled
// to cover it and centre cropped.
func (c *Converter) Convert(src image.Image, srcOrientation Orientation, width, height int, slotOrientation Orientation) *image.NRGBA {
	img := src
	if c.opts.Rotate != "" && slotOrientation != srcOrientation {
		switch c.opts.Rotate {
		case Left:
			img = imaging.Rotate90(img)
		case Right:
			img = imaging.Rotate270(img)
		}
	}

	longer := max(width, height)
	img = imaging.Fit(img, longer, longer, imaging.Lanczos)

	if c.opts.IgnoreAspectRatio {
		return imaging.Resize(img, width, height, imaging.Lanczos)
	}
	return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
}
