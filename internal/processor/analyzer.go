package processor

import (
	"image"
	"image/color"

	"github.com/genricoloni/hueplay/internal/domain"
)

const (
	sampleStride = 5
	topBandRows  = 5
)

// sample returns the straight (non-premultiplied) RGB of the pixel at
// (x, y) with alpha dropped. ok is false for fully transparent pixels.
func sample(img image.Image, x, y int) (c domain.Color, ok bool) {
	px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	if px.A == 0 {
		return 0, false
	}
	return domain.RGB(px.R, px.G, px.B), true
}

// AverageColor returns the per-channel mean of the opaque pixels on a
// 5-pixel grid
func AverageColor(img image.Image) (domain.Color, error) {
	b := img.Bounds()
	var rs, gs, bs, n int

	for y := b.Min.Y; y < b.Max.Y; y += sampleStride {
		for x := b.Min.X; x < b.Max.X; x += sampleStride {
			c, ok := sample(img, x, y)
			if !ok {
				continue
			}
			rs += int(c.R())
			gs += int(c.G())
			bs += int(c.B())
			n++
		}
	}

	if n == 0 {
		return 0, domain.ErrEmptySample
	}
	return domain.RGB(uint8(rs/n), uint8(gs/n), uint8(bs/n)), nil
}

// modeCounter tracks color frequencies. On equal counts the color that
// reached the maximum first is kept, which makes the result depend only on
// scan order.
type modeCounter struct {
	counts map[domain.Color]int
	best   domain.Color
	max    int
}

func newModeCounter() *modeCounter {
	return &modeCounter{counts: make(map[domain.Color]int)}
}

func (m *modeCounter) add(c domain.Color) {
	m.counts[c]++
	if n := m.counts[c]; n > m.max {
		m.max = n
		m.best = c
	}
}

func (m *modeCounter) result() (domain.Color, error) {
	if m.max == 0 {
		return 0, domain.ErrEmptySample
	}
	return m.best, nil
}

// DominantColor returns the most frequent opaque color on a 5-pixel grid
func DominantColor(img image.Image) (domain.Color, error) {
	b := img.Bounds()
	m := newModeCounter()

	for y := b.Min.Y; y < b.Max.Y; y += sampleStride {
		for x := b.Min.X; x < b.Max.X; x += sampleStride {
			if c, ok := sample(img, x, y); ok {
				m.add(c)
			}
		}
	}
	return m.result()
}

// TopBandDominantColor is DominantColor restricted to the first five rows,
// sampling every pixel in the band
func TopBandDominantColor(img image.Image) (domain.Color, error) {
	b := img.Bounds()
	m := newModeCounter()

	maxY := min(b.Min.Y+topBandRows, b.Max.Y)
	for y := b.Min.Y; y < maxY; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c, ok := sample(img, x, y); ok {
				m.add(c)
			}
		}
	}
	return m.result()
}

// CombineColors blends two colors by per-channel arithmetic mean
func CombineColors(a, b domain.Color) domain.Color {
	mean := func(x, y uint8) uint8 { return uint8((int(x) + int(y)) / 2) }
	return domain.RGB(mean(a.R(), b.R()), mean(a.G(), b.G()), mean(a.B(), b.B()))
}
