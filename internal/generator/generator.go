package generator

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/lehigh-university-libraries/xcataloger/internal/images"
	"github.com/lehigh-university-libraries/xcataloger/internal/slots"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultDirName is the directory created for placeholder images
const DefaultDirName = "LaunchImages"

// logoRatio is the largest share of the longer image side the logo may cover
const logoRatio = 0.3

// Options controls placeholder generation
type Options struct {
	OutputDir  string
	DirName    string
	Background color.Color
	Logo       string
	LogoColor  color.Color
	FontPath   string
}

// Generator renders placeholder images for slot configs
type Generator struct {
	opts Options
	font *opentype.Font
}

// New prepares a generator, loading the logo font when a logo is requested
func New(opts Options) (*Generator, error) {
	if opts.DirName == "" {
		opts.DirName = DefaultDirName
	}
	if opts.Background == nil {
		opts.Background = color.Transparent
	}
	if opts.LogoColor == nil {
		opts.LogoColor = color.White
	}

	g := &Generator{opts: opts}
	if opts.Logo == "" {
		return g, nil
	}

	data := goregular.TTF
	if opts.FontPath != "" {
		var err error
		data, err = os.ReadFile(opts.FontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font: %w", err)
		}
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	g.font = f

	return g, nil
}

// Generate writes one PNG per slot into a new, uniquely named directory and returns its path
func (g *Generator) Generate(cfg *slots.Config) (string, error) {
	dir, err := images.UniqueDir(g.opts.OutputDir, g.opts.DirName)
	if err != nil {
		return "", err
	}
	slog.Info("Generating placeholder images", "dir", dir, "slots", len(cfg.Slots))

	written := make(map[string]string, len(cfg.Slots))
	for _, slot := range cfg.Slots {
		width, height, err := slot.Dimensions()
		if err != nil {
			return dir, err
		}

		img, err := g.Render(width, height)
		if err != nil {
			return dir, fmt.Errorf("slot %q: %w", slot.Name, err)
		}

		filename := slots.SanitizeName(slot.Name) + ".png"
		if prev, ok := written[filename]; ok {
			slog.Warn("Slot names collide after sanitizing", "file", filename, "slot", slot.Name, "previous", prev)
		}
		written[filename] = slot.Name

		path := filepath.Join(dir, filename)
		if err := images.SavePNG(path, img); err != nil {
			return dir, err
		}
		slog.Info("Created image", "slot", slot.Name, "path", path, "width", width, "height", height)
	}

	return dir, nil
}

// Render draws a single placeholder image
func (g *Generator) Render(width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image size %dx%d", width, height)
	}

	img := imaging.New(width, height, g.opts.Background)
	if g.font == nil {
		return img, nil
	}

	limit := int(logoRatio * float64(max(width, height)))
	if limit < 1 {
		slog.Warn("Image too small for a logo", "width", width, "height", height)
		return img, nil
	}

	face, bounds, err := fitFace(g.font, g.opts.Logo, limit)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	textW := (bounds.Max.X - bounds.Min.X).Ceil()
	textH := (bounds.Max.Y - bounds.Min.Y).Ceil()
	originX := (width-textW)/2 - bounds.Min.X.Floor()
	originY := (height-textH)/2 - bounds.Min.Y.Floor()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(g.opts.LogoColor),
		Face: face,
		Dot:  fixed.P(originX, originY),
	}
	d.DrawString(g.opts.Logo)

	return img, nil
}

// fitFace shrinks the font size one point at a time, starting at limit, until
// the rendered text fits in a limit x limit box.
func fitFace(f *opentype.Font, text string, limit int) (font.Face, fixed.Rectangle26_6, error) {
	for size := limit; size >= 1; size-- {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fixed.Rectangle26_6{}, fmt.Errorf("create font face: %w", err)
		}

		bounds, _ := font.BoundString(face, text)
		w := (bounds.Max.X - bounds.Min.X).Ceil()
		h := (bounds.Max.Y - bounds.Min.Y).Ceil()
		if (w <= limit && h <= limit) || size == 1 {
			if size == 1 && (w > limit || h > limit) {
				slog.Warn("Logo does not fit even at the smallest font size", "logo", text, "limit", limit)
			}
			return face, bounds, nil
		}
		face.Close()
	}
	return nil, fixed.Rectangle26_6{}, fmt.Errorf("invalid logo size limit %d", limit)
}
