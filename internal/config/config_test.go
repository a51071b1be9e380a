package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

var envVars = []string{
	"HUEPLAY_MUSIC_DIR", "HUEPLAY_TRANSCODER", "HUEPLAY_TRANSCODE_TIMEOUT",
	"HUEPLAY_AUTOPLAY", "HUEPLAY_MPRIS", "HUEPLAY_BACKDROP",
}

func TestNewAppConfig_Defaults(t *testing.T) {
	for _, k := range envVars {
		t.Setenv(k, "")
	}

	cfg := NewAppConfig(zap.NewNop())

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	if want := filepath.Join(home, "Music"); cfg.GetMusicDir() != want {
		t.Errorf("GetMusicDir = %q, want %q", cfg.GetMusicDir(), want)
	}
	if want := filepath.Join(home, "Music", "artwork"); cfg.GetArtworkDir() != want {
		t.Errorf("GetArtworkDir = %q, want %q", cfg.GetArtworkDir(), want)
	}
	if cfg.GetTranscoder() != "ffmpeg" {
		t.Errorf("GetTranscoder = %q, want ffmpeg", cfg.GetTranscoder())
	}
	if cfg.GetTranscodeTimeout() != 10*time.Minute {
		t.Errorf("GetTranscodeTimeout = %v, want 10m", cfg.GetTranscodeTimeout())
	}
	if !cfg.Autoplay() || !cfg.MPRISEnabled() || !cfg.BackdropEnabled() {
		t.Error("feature toggles should default to true")
	}
}

func TestNewAppConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HUEPLAY_MUSIC_DIR", dir)
	t.Setenv("HUEPLAY_TRANSCODER", "/opt/bin/ffmpeg")
	t.Setenv("HUEPLAY_TRANSCODE_TIMEOUT", "90s")
	t.Setenv("HUEPLAY_AUTOPLAY", "no")
	t.Setenv("HUEPLAY_MPRIS", "0")
	t.Setenv("HUEPLAY_BACKDROP", "off")

	cfg := NewAppConfig(zap.NewNop())

	if cfg.GetMusicDir() != dir {
		t.Errorf("GetMusicDir = %q, want %q", cfg.GetMusicDir(), dir)
	}
	if cfg.GetArtworkDir() != filepath.Join(dir, "artwork") {
		t.Errorf("GetArtworkDir = %q", cfg.GetArtworkDir())
	}
	if cfg.GetTranscoder() != "/opt/bin/ffmpeg" {
		t.Errorf("GetTranscoder = %q", cfg.GetTranscoder())
	}
	if cfg.GetTranscodeTimeout() != 90*time.Second {
		t.Errorf("GetTranscodeTimeout = %v, want 90s", cfg.GetTranscodeTimeout())
	}
	if cfg.Autoplay() || cfg.MPRISEnabled() || cfg.BackdropEnabled() {
		t.Error("feature toggles should be disabled")
	}
}

func TestNewAppConfig_InvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("HUEPLAY_TRANSCODE_TIMEOUT", "soon")

	cfg := NewAppConfig(zap.NewNop())
	if cfg.GetTranscodeTimeout() != defaultTranscodeTimeout {
		t.Errorf("GetTranscodeTimeout = %v, want default", cfg.GetTranscodeTimeout())
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HUEPLAY_TEST_ROOT", "/srv/audio")

	if got := expandPath("$HUEPLAY_TEST_ROOT/lib"); got != "/srv/audio/lib" {
		t.Errorf("expandPath env = %q", got)
	}
	if got := expandPath("/plain"); got != "/plain" {
		t.Errorf("expandPath plain = %q", got)
	}
}
