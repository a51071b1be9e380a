package artwork

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG cover support
	_ "image/png"  // PNG cover support
	"io"
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
	"github.com/disintegration/imaging"
	"github.com/genricoloni/hueplay/internal/domain"
	"go.uber.org/zap"
)

const artworkExt = ".png"

var errNoPicture = errors.New("no embedded picture")

// Store extracts embedded covers from native tracks into a PNG cache
type Store struct {
	logger  *zap.Logger
	dir     string
	readTag func(io.ReadSeeker) (tag.Metadata, error)
}

// NewStore creates an artwork store rooted at the configured artwork directory
func NewStore(logger *zap.Logger, cfg domain.Config) *Store {
	return &Store{
		logger:  logger,
		dir:     cfg.GetArtworkDir(),
		readTag: tag.ReadFrom,
	}
}

// ArtworkPath returns the cache location for a track base name
func (s *Store) ArtworkPath(baseName string) string {
	return filepath.Join(s.dir, baseName+artworkExt)
}

// Extract writes the track's embedded cover to the cache and returns its path.
// A cached file is returned without decoding the track again.
func (s *Store) Extract(ctx context.Context, track domain.Track) (string, error) {
	if !track.IsNative() {
		s.logger.Debug("Skipping artwork for non-native track", zap.String("track", track.Path))
		return "", nil
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create artwork directory: %w", err)
	}

	path := s.ArtworkPath(track.BaseName())
	if _, err := os.Stat(path); err == nil {
		s.logger.Debug("Artwork cache hit", zap.String("path", path))
		return path, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	img, err := s.decodeEmbedded(track.Path)
	if err != nil {
		s.logger.Info("No usable artwork",
			zap.String("track", track.Path),
			zap.Error(err))
		return "", nil
	}

	if err := imaging.Save(img, path); err != nil {
		s.logger.Warn("Failed to cache artwork",
			zap.String("path", path),
			zap.Error(err))
		_ = os.Remove(path)
		return "", nil
	}

	s.logger.Debug("Artwork extracted", zap.String("path", path))
	return path, nil
}

func (s *Store) decodeEmbedded(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta, err := s.readTag(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read tags: %w", err)
	}

	pic := meta.Picture()
	if pic == nil || len(pic.Data) == 0 {
		return nil, errNoPicture
	}

	img, _, err := image.Decode(bytes.NewReader(pic.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode picture: %w", err)
	}
	return img, nil
}
