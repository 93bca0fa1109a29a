package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/lehigh-university-libraries/xcataloger/internal/slots"
)

var placeholderRe = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9_-]*)>`)

// Filename computes the catalog file name for an image copied into slot
func Filename(slot slots.Slot, source string, opts Options) (string, error) {
	switch {
	case opts.NoRename:
		return filepath.Base(source), nil
	case opts.Format != "":
		return expandFormat(opts.Format, slot)
	default:
		return slots.SanitizeName(slot.Name) + ".png", nil
	}
}

// expandFormat replaces <key> placeholders with the slot's values
func expandFormat(format string, slot slots.Slot) (string, error) {
	values := slot.Placeholders()

	var unknown []string
	name := placeholderRe.ReplaceAllStringFunc(format, func(m string) string {
		key := strings.ToLower(m[1 : len(m)-1])
		v, ok := values[key]
		if !ok {
			unknown = append(unknown, m)
			return m
		}
		return v
	})
	if len(unknown) > 0 {
		known := make([]string, 0, len(values))
		for k := range values {
			known = append(known, "<"+k+">")
		}
		sort.Strings(known)
		return "", fmt.Errorf("format %q: unknown placeholder %s (available: %s)",
			format, strings.Join(unknown, ", "), strings.Join(known, " "))
	}

	name = slots.SanitizeName(name)
	if strings.ContainsRune(name, filepath.Separator) || strings.Contains(name, "/") {
		return "", fmt.Errorf("format %q: file name %q must not contain a path separator", format, name)
	}
	if !strings.EqualFold(filepath.Ext(name), ".png") {
		name += ".png"
	}
	return name, nil
}
