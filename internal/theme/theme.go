// Package theme maps a sampled artwork color to the player palette.
package theme

import (
	"github.com/genricoloni/hueplay/internal/domain"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	fillBrightness   = 0.3
	fillSaturation   = 0.8
	borderBrightness = 0.7
)

// DefaultFill is the background used when a track has no artwork
var DefaultFill = domain.RGB(0x01, 0x05, 0x0a)

// Derive builds a theme from the top-band color of a track's artwork
func Derive(c domain.Color) domain.Theme {
	h, s, v := toColorful(c).Hsv()

	fill := colorful.Hsv(h, s*fillSaturation, v*fillBrightness)

	return domain.Theme{
		Fill:   fromColorful(fill),
		Border: Darker(fromColorful(fill)),
		Text:   Invert(c),
	}
}

// Default is the theme shown when no artwork is available
func Default() domain.Theme {
	return domain.Theme{
		Fill:    DefaultFill,
		Border:  Darker(DefaultFill),
		Text:    domain.MaxColor,
		Default: true,
	}
}

// Darker scales the HSV value of c by a fixed factor
func Darker(c domain.Color) domain.Color {
	h, s, v := toColorful(c).Hsv()
	return fromColorful(colorful.Hsv(h, s, v*borderBrightness))
}

// Invert returns the per-channel complement 255 - channel
func Invert(c domain.Color) domain.Color {
	return ^c & domain.MaxColor
}

func toColorful(c domain.Color) colorful.Color {
	return colorful.Color{
		R: float64(c.R()) / 255,
		G: float64(c.G()) / 255,
		B: float64(c.B()) / 255,
	}
}

func fromColorful(c colorful.Color) domain.Color {
	return domain.RGB(c.Clamped().RGB255())
}
