package generator

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ParseColor accepts "transparent", an SVG colour name, or a hex colour in
// #RGB, #RRGGBB or #RRGGBBAA form. The leading # is optional.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "transparent" || s == "none" {
		return color.NRGBA{}, nil
	}
	if named, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, nil
	}

	hex := strings.TrimPrefix(s, "#")
	alpha := uint8(0xff)
	if len(hex) == 8 {
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	}
	if len(hex) != 3 && len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}
