package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB value packed as 0xRRGGBB
type Color uint32

// MaxColor is the largest valid packed color
const MaxColor Color = 0xFFFFFF

// RGB packs three channels into a Color
func RGB(r, g, b uint8) Color {
	return Color(r)<<16 | Color(g)<<8 | Color(b)
}

func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// Hex renders the canonical #RRGGBB form
func (c Color) Hex() string {
	return fmt.Sprintf("#%06X", uint32(c&MaxColor))
}

func (c Color) String() string {
	return c.Hex()
}

// ParseHex parses #RRGGBB (the leading # is optional)
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return Color(v), nil
}
