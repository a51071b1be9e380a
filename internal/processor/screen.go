package processor

import (
	"github.com/genricoloni/hueplay/internal/domain"
	"github.com/kbinani/screenshot"
	"go.uber.org/zap"
)

const (
	fallbackWidth  = 1280
	fallbackHeight = 720
)

// NewScreenResolution detects the primary screen resolution the backdrop is
// rendered at
func NewScreenResolution(logger *zap.Logger) *domain.ScreenResolution {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		logger.Warn("No active displays detected, using fallback backdrop size",
			zap.Int("width", fallbackWidth),
			zap.Int("height", fallbackHeight))
		return &domain.ScreenResolution{Width: fallbackWidth, Height: fallbackHeight}
	}

	bounds := screenshot.GetDisplayBounds(0)
	res := &domain.ScreenResolution{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}

	logger.Info("Screen resolution detected",
		zap.Int("width", res.Width),
		zap.Int("height", res.Height))

	return res
}
