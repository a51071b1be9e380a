package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/genricoloni/hueplay/internal/domain"
	"go.uber.org/zap"
)

// supportedExts lists the audio formats the catalog accepts
var supportedExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".flac": true,
}

// IsSupported reports whether name carries a recognized audio extension
func IsSupported(name string) bool {
	return supportedExts[strings.ToLower(filepath.Ext(name))]
}

// Scan lists the supported audio files directly inside dir, in directory
// listing order.
func Scan(dir string) ([]domain.Track, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read music directory: %w", err)
	}

	var tracks []domain.Track
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !IsSupported(entry.Name()) {
			continue
		}
		tracks = append(tracks, domain.NewTrack(filepath.Join(dir, entry.Name())))
	}
	return tracks, nil
}

// Catalog is the visible, ordered list of tracks
type Catalog struct {
	logger     *zap.Logger
	dir        string
	artworkDir string

	mu     sync.RWMutex
	tracks []domain.Track
}

// NewCatalog scans the configured music directory. A missing directory
// yields an empty catalog.
func NewCatalog(logger *zap.Logger, cfg domain.Config) *Catalog {
	c := &Catalog{
		logger:     logger,
		dir:        cfg.GetMusicDir(),
		artworkDir: cfg.GetArtworkDir(),
	}
	if err := c.Refresh(); err != nil {
		logger.Warn("Music directory unavailable, catalog is empty",
			zap.String("dir", c.dir),
			zap.Error(err))
	}
	return c
}

// Refresh rescans the music directory
func (c *Catalog) Refresh() error {
	tracks, err := Scan(c.dir)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.tracks = tracks
	c.mu.Unlock()

	c.logger.Info("Catalog scanned",
		zap.String("dir", c.dir),
		zap.Int("tracks", len(tracks)))
	return nil
}

// Tracks returns a copy of the catalog in display order
func (c *Catalog) Tracks() []domain.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// Find looks a track up by path
func (c *Catalog) Find(path string) (domain.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.tracks {
		if t.Path == path {
			return t, true
		}
	}
	return domain.Track{}, false
}

// Replace swaps the entry at oldPath for track, keeping its position
func (c *Catalog) Replace(oldPath string, track domain.Track) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.tracks {
		if t.Path == oldPath {
			c.tracks[i] = track
			return true
		}
	}
	return false
}
