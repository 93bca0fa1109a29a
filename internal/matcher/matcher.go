package matcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lehigh-university-libraries/xcataloger/internal/catalog"
	"github.com/lehigh-university-libraries/xcataloger/internal/images"
	"github.com/lehigh-university-libraries/xcataloger/internal/slots"
)

// Options controls how matched images are written into a catalog
type Options struct {
	// KeepExisting leaves files already referenced by the descriptor in place
	KeepExisting bool
	// NoRename keeps the source file name instead of deriving one from the slot
	NoRename bool
	// Format is a file name template with <key> placeholders
	Format string
	// DryRun plans the assignments without touching the catalog
	DryRun bool
}

// Assignment fills one descriptor slot with a candidate image
type Assignment struct {
	Index    int
	Image    catalog.ImageSlot
	Config   slots.Slot
	Width    int
	Height   int
	Source   string
	Filename string
}

// Unfilled is a descriptor slot that matched a config entry but had no image of its size
type Unfilled struct {
	Index  int
	Image  catalog.ImageSlot
	Config slots.Slot
	Width  int
	Height int
}

// Plan is the outcome of matching a descriptor against a config and candidate images
type Plan struct {
	Assignments []Assignment
	Unfilled    []Unfilled
}

// UnmatchedSlotError is returned when a descriptor slot matches no config entry
type UnmatchedSlotError struct {
	Index      int
	Attributes slots.Attributes
}

func (e *UnmatchedSlotError) Error() string {
	return fmt.Sprintf("image %d %s does not match any config slot", e.Index, e.Attributes)
}

// Build matches every descriptor slot, in order, against the config and the
// candidate images. It has no side effects, so an unmatched slot fails the
// whole run before anything on disk changes. When several config entries
// match, the first in document order wins.
func Build(cfg *slots.Config, desc *catalog.Descriptor, candidates []images.Candidate, opts Options) (*Plan, error) {
	plan := &Plan{}
	writers := make(map[string]string)

	for i, img := range desc.Images {
		want := img.Attributes()

		matches := cfg.Match(want)
		if len(matches) == 0 {
			return nil, &UnmatchedSlotError{Index: i, Attributes: want}
		}
		if len(matches) > 1 {
			names := make([]string, len(matches))
			for j, m := range matches {
				names[j] = m.Name
			}
			slog.Warn("Several config slots match, using the first", "image", i, "attributes", want.String(), "matches", names)
		}
		slot := matches[0]

		width, height, err := slot.Dimensions()
		if err != nil {
			return nil, err
		}

		candidate, ok := images.FindBySize(candidates, width, height)
		if !ok {
			slog.Warn("No image of the required size", "slot", slot.Name, "width", width, "height", height)
			plan.Unfilled = append(plan.Unfilled, Unfilled{
				Index:  i,
				Image:  img,
				Config: slot,
				Width:  width,
				Height: height,
			})
			continue
		}

		filename, err := Filename(slot, candidate.Path, opts)
		if err != nil {
			return nil, err
		}
		if prev, ok := writers[filename]; ok && prev != candidate.Path {
			return nil, fmt.Errorf("file name %q would be written from both %s and %s", filename, prev, candidate.Path)
		}
		writers[filename] = candidate.Path

		plan.Assignments = append(plan.Assignments, Assignment{
			Index:    i,
			Image:    img,
			Config:   slot,
			Width:    width,
			Height:   height,
			Source:   candidate.Path,
			Filename: filename,
		})
	}

	return plan, nil
}

// Apply carries out a plan in the asset set directory dir and returns the updated
// descriptor. Unless KeepExisting is set, every file the descriptor referenced is
// deleted first and slots left without an image lose their filename. Sources
// that an earlier copy would overwrite are read from a staged copy. Failures
// are not rolled back.
func Apply(dir string, desc *catalog.Descriptor, plan *Plan, opts Options) (*catalog.Descriptor, error) {
	out := desc.Clone()

	staged, err := stageSources(dir, plan)
	if err != nil {
		return nil, err
	}
	defer removeAll(staged)

	if !opts.KeepExisting {
		sources := make(map[string]bool, len(plan.Assignments))
		for _, a := range plan.Assignments {
			sources[absPath(a.Source)] = true
		}

		for _, name := range out.Filenames() {
			if filepath.Base(name) != name {
				slog.Warn("Skipping file outside the asset set", "file", name)
				continue
			}
			path := filepath.Join(dir, name)
			if sources[absPath(path)] {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			if err := os.Remove(path); err != nil {
				return nil, fmt.Errorf("failed to remove %s: %w", path, err)
			}
			slog.Info("Removed", "path", path)
		}
		for i := range out.Images {
			out.Images[i].Filename = ""
		}
	}

	for _, a := range plan.Assignments {
		src := a.Source
		if path, ok := staged[absPath(src)]; ok {
			src = path
		}
		dst := filepath.Join(dir, a.Filename)
		if absPath(dst) != absPath(a.Source) {
			if err := images.CopyFile(src, dst); err != nil {
				return nil, err
			}
		}

		out, err = out.WithFilename(a.Index, a.Filename)
		if err != nil {
			return nil, err
		}
		slog.Info("Set image", "source", a.Source, "slot", a.Config.Name, "file", a.Filename)
	}

	return out, nil
}

// stageSources copies aside every source file that another assignment writes
// over, keyed by the source's absolute path.
func stageSources(dir string, plan *Plan) (map[string]string, error) {
	writers := make(map[string]string, len(plan.Assignments))
	for _, a := range plan.Assignments {
		writers[absPath(filepath.Join(dir, a.Filename))] = absPath(a.Source)
	}

	staged := make(map[string]string)
	for _, a := range plan.Assignments {
		src := absPath(a.Source)
		writer, ok := writers[src]
		if !ok || writer == src {
			continue
		}
		if _, done := staged[src]; done {
			continue
		}

		tmp, err := os.CreateTemp(dir, ".xcataloger-*.png")
		if err != nil {
			removeAll(staged)
			return nil, fmt.Errorf("failed to stage %s: %w", a.Source, err)
		}
		tmp.Close()
		staged[src] = tmp.Name()

		if err := images.CopyFile(a.Source, tmp.Name()); err != nil {
			removeAll(staged)
			return nil, err
		}
		slog.Debug("Staged source", "source", a.Source, "path", tmp.Name())
	}
	return staged, nil
}

func removeAll(paths map[string]string) {
	for _, path := range paths {
		os.Remove(path)
	}
}

// Run matches the PNGs in srcDir against the asset set in assetsDir and
// rewrites its Contents.json. The catalog is locked for the duration.
func Run(srcDir, assetsDir string, cfg *slots.Config, opts Options) (*catalog.Descriptor, *Plan, error) {
	if !opts.DryRun {
		lock, err := catalog.AcquireLock(assetsDir)
		if err != nil {
			return nil, nil, err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				slog.Warn("Failed to release catalog lock", "err", err)
			}
		}()
	}

	desc, err := catalog.ReadDir(assetsDir)
	if err != nil {
		return nil, nil, err
	}

	candidates, err := images.Scan(srcDir)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("Matching images", "source", srcDir, "candidates", len(candidates), "slots", len(desc.Images))

	plan, err := Build(cfg, desc, candidates, opts)
	if err != nil {
		return nil, nil, err
	}
	if opts.DryRun {
		return desc, plan, nil
	}

	updated, err := Apply(assetsDir, desc, plan, opts)
	if err != nil {
		return nil, plan, err
	}

	if err := catalog.Write(filepath.Join(assetsDir, catalog.DescriptorName), updated); err != nil {
		return nil, plan, err
	}

	slog.Info("Catalog updated", "assigned", len(plan.Assignments), "unfilled", len(plan.Unfilled))
	return updated, plan, nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
