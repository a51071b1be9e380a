package theme

import (
	"testing"

	"github.com/genricoloni/hueplay/internal/domain"
	colorful "github.com/lucasb-eyer/go-colorful"
)

func value(c domain.Color) float64 {
	_, _, v := toColorful(c).Hsv()
	return v
}

func TestInvert(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#000000", "#FFFFFF"},
		{"#FF0000", "#00FFFF"},
		{"#123456", "#EDCBA9"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := domain.ParseHex(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			got := Invert(c)
			if got.Hex() != tt.want {
				t.Errorf("want %s, got %s", tt.want, got.Hex())
			}
			if Invert(got) != c {
				t.Errorf("invert should be an involution for %s", tt.in)
			}
		})
	}
}

func TestDerive(t *testing.T) {
	samples := []domain.Color{
		domain.RGB(0xFF, 0, 0),
		domain.RGB(0x20, 0x80, 0xC0),
		domain.RGB(0xF0, 0xF0, 0xF0),
		domain.RGB(0x33, 0x66, 0x11),
	}

	for _, c := range samples {
		t.Run(c.Hex(), func(t *testing.T) {
			th := Derive(c)

			if th.Text != Invert(c) {
				t.Errorf("text should be the complement of the sample, got %s", th.Text)
			}
			if value(th.Fill) >= value(c) {
				t.Errorf("fill %s should be darker than sample %s", th.Fill, c)
			}
			if value(th.Border) >= value(th.Fill) {
				t.Errorf("border %s should be darker than fill %s", th.Border, th.Fill)
			}
			if th.Default {
				t.Error("derived theme must not be flagged default")
			}
			if Derive(c) != th {
				t.Error("derive should be deterministic")
			}
		})
	}
}

func TestDerive_ReducesSaturation(t *testing.T) {
	c := domain.RGB(0xFF, 0, 0)
	_, sIn, _ := toColorful(c).Hsv()
	_, sOut, _ := toColorful(Derive(c).Fill).Hsv()

	if sOut >= sIn {
		t.Errorf("fill saturation %v should be below %v", sOut, sIn)
	}
}

func TestDerive_Black(t *testing.T) {
	th := Derive(0)
	if th.Fill != 0 || th.Border != 0 {
		t.Errorf("black should stay black, got %s/%s", th.Fill, th.Border)
	}
	if th.Text != domain.MaxColor {
		t.Errorf("text on black should be white, got %s", th.Text)
	}
}

func TestDefault(t *testing.T) {
	th := Default()
	if !th.Default {
		t.Error("default theme should be flagged")
	}
	fill, _, text := th.Hex()
	if fill != "#01050A" || text != "#FFFFFF" {
		t.Errorf("unexpected default palette %s %s", fill, text)
	}
}

func TestColorfulRoundTrip(t *testing.T) {
	c := domain.RGB(0x12, 0x34, 0x56)
	if got := fromColorful(toColorful(c)); got != c {
		t.Errorf("round trip changed %s to %s", c, got)
	}
	// out of gamut input is clamped rather than wrapped
	if got := fromColorful(colorful.Color{R: 1.5, G: -0.2, B: 0.5}); got.R() != 0xFF || got.G() != 0 {
		t.Errorf("expected clamped channels, got %s", got)
	}
}
