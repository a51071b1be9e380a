package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultMusicDir         = "~/Music"
	defaultTranscoder       = "ffmpeg"
	defaultTranscodeTimeout = 10 * time.Minute
	artworkSubdir           = "artwork"
)

// AppConfig holds application configuration
type AppConfig struct {
	logger           *zap.Logger
	musicDir         string
	transcoder       string
	transcodeTimeout time.Duration
	autoplay         bool
	mpris            bool
	backdrop         bool
}

// NewAppConfig creates a new application configuration instance
func NewAppConfig(logger *zap.Logger) *AppConfig {
	// Read from environment variables or use defaults
	musicDir := expandPath(envStr("HUEPLAY_MUSIC_DIR", defaultMusicDir))
	transcoder := envStr("HUEPLAY_TRANSCODER", defaultTranscoder)

	timeout := defaultTranscodeTimeout
	if v := os.Getenv("HUEPLAY_TRANSCODE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			logger.Warn("Invalid transcode timeout, using default",
				zap.String("value", v),
				zap.Duration("default", defaultTranscodeTimeout))
		} else {
			timeout = d
		}
	}

	cfg := &AppConfig{
		logger:           logger,
		musicDir:         musicDir,
		transcoder:       transcoder,
		transcodeTimeout: timeout,
		autoplay:         envBool("HUEPLAY_AUTOPLAY", true),
		mpris:            envBool("HUEPLAY_MPRIS", true),
		backdrop:         envBool("HUEPLAY_BACKDROP", true),
	}

	logger.Info("Configuration loaded",
		zap.String("musicDir", cfg.musicDir),
		zap.String("transcoder", cfg.transcoder),
		zap.Duration("transcodeTimeout", cfg.transcodeTimeout),
		zap.Bool("autoplay", cfg.autoplay),
		zap.Bool("mpris", cfg.mpris),
		zap.Bool("backdrop", cfg.backdrop))

	return cfg
}

// GetMusicDir returns the catalog directory
func (c *AppConfig) GetMusicDir() string {
	return c.musicDir
}

// GetArtworkDir returns <music-dir>/artwork
func (c *AppConfig) GetArtworkDir() string {
	return filepath.Join(c.musicDir, artworkSubdir)
}

// GetTranscoder returns the transcoder binary
func (c *AppConfig) GetTranscoder() string {
	return c.transcoder
}

// GetTranscodeTimeout returns the bound on a single conversion
func (c *AppConfig) GetTranscodeTimeout() time.Duration {
	return c.transcodeTimeout
}

// Autoplay reports whether the first catalog track starts at launch
func (c *AppConfig) Autoplay() bool {
	return c.autoplay
}

// MPRISEnabled reports whether the MPRIS surface is exported
func (c *AppConfig) MPRISEnabled() bool {
	return c.mpris
}

// BackdropEnabled reports whether blurred backdrops are rendered
func (c *AppConfig) BackdropEnabled() bool {
	return c.backdrop
}

// expandPath expands environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.ToLower(os.Getenv(key))
	switch v {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
