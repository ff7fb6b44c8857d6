package render

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// Style controls how lane lines are drawn.
type Style struct {
	Color     color.Color
	Thickness int
}

// DefaultStyle draws 5 pixel wide pure green lines.
func DefaultStyle() Style {
	return Style{
		Color:     color.NRGBA{R: 0, G: 255, B: 0, A: 255},
		Thickness: 5,
	}
}

// ParseColor parses a "#RRGGBB" or "#RGB" hex color into an opaque color.
func ParseColor(hex string) (color.NRGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(err, "invalid color %q", hex)
	}
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
}

// Hex formats a color as "#rrggbb", dropping alpha.
func Hex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}
