package processor

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/genricoloni/hueplay/internal/domain"
	colorful "github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
)

const (
	defaultBlurRadius = 30.0
	brightThreshold   = 0.8
	brightDarken      = -60.0
	dimDarken         = -70.0
	brightnessStride  = 10
	backdropFilename  = "backdrop.jpg"
)

// BackdropConfig holds the blur and darkening parameters
type BackdropConfig struct {
	BlurRadius float64
}

// BackdropProcessor renders a blurred, darkened player background from artwork
type BackdropProcessor struct {
	logger *zap.Logger
	res    *domain.ScreenResolution // Injected automatically by Fx
	config BackdropConfig
	appCfg domain.Config
}

// NewBackdropProcessor creates a new backdrop processor
func NewBackdropProcessor(logger *zap.Logger, res *domain.ScreenResolution, appCfg domain.Config) *BackdropProcessor {
	return &BackdropProcessor{
		logger: logger,
		res:    res,
		appCfg: appCfg,
		config: BackdropConfig{
			BlurRadius: defaultBlurRadius,
		},
	}
}

// Render fills img to the screen resolution, blurs it and darkens it
// according to its average brightness
func (p *BackdropProcessor) Render(img image.Image) (image.Image, error) {
	bounds := img.Bounds()
	if bounds.Dy() == 0 || bounds.Dx() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	darken := dimDarken
	if AverageBrightness(img) > brightThreshold {
		darken = brightDarken
	}

	p.logger.Debug("Rendering backdrop",
		zap.Int("w", p.res.Width),
		zap.Int("h", p.res.Height),
		zap.Float64("darken", darken))

	background := imaging.Fill(img, p.res.Width, p.res.Height, imaging.Center, imaging.Lanczos)
	background = imaging.Blur(background, p.config.BlurRadius)
	return imaging.AdjustBrightness(background, darken), nil
}

// Generate renders the backdrop for img and writes it into the artwork
// directory, replacing the previous one
func (p *BackdropProcessor) Generate(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	result, err := p.Render(img)
	if err != nil {
		return "", fmt.Errorf("failed to render backdrop: %w", err)
	}

	outputDir := p.appCfg.GetArtworkDir()
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(outputDir, backdropFilename)
	if err := imaging.Save(result, outputPath, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("failed to write backdrop: %w", err)
	}

	p.logger.Debug("Backdrop generated", zap.String("path", outputPath))

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return outputPath, nil
	}
	return absPath, nil
}

// AverageBrightness is the mean HSV value of the opaque pixels on a
// 10-pixel grid, in [0, 1]
func AverageBrightness(img image.Image) float64 {
	b := img.Bounds()
	var total float64
	n := 0

	for x := b.Min.X; x < b.Max.X; x += brightnessStride {
		for y := b.Min.Y; y < b.Max.Y; y += brightnessStride {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			_, _, v := c.Hsv()
			total += v
			n++
		}
	}

	if n == 0 {
		return 0
	}
	return total / float64(n)
}
