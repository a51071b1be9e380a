package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// MaxDisplayNameLength is the number of runes kept in a track's display name
const MaxDisplayNameLength = 80

// NativeExt is the extension of the format the player accepts directly
const NativeExt = ".mp3"

// PlayerStatus represents the status reported by the underlying audio player
type PlayerStatus string

const (
	// StatusPlaying indicates the media is currently playing
	StatusPlaying PlayerStatus = "Playing"
	// StatusPaused indicates the media is paused
	StatusPaused PlayerStatus = "Paused"
	// StatusStopped indicates the media is stopped
	StatusStopped PlayerStatus = "Stopped"
)

// PlaybackState is the state of the playback controller
type PlaybackState string

const (
	StateIdle    PlaybackState = "Idle"
	StateLoading PlaybackState = "Loading"
	StatePlaying PlaybackState = "Playing"
	StatePaused  PlaybackState = "Paused"
	StateEnded   PlaybackState = "Ended"
	StateError   PlaybackState = "Error"
)

// Track identifies a playable file by absolute path
type Track struct {
	Path string
}

// NewTrack builds a Track, resolving path to an absolute path when possible
func NewTrack(path string) Track {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return Track{Path: path}
}

// IsZero reports whether the track is unset
func (t Track) IsZero() bool {
	return t.Path == ""
}

// Ext returns the lowercased file extension, including the dot
func (t Track) Ext() string {
	return strings.ToLower(filepath.Ext(t.Path))
}

// BaseName is the filename without its extension. It joins a track to its
// artwork cache entry and to converted siblings.
func (t Track) BaseName() string {
	name := filepath.Base(t.Path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Dir returns the directory holding the track
func (t Track) Dir() string {
	return filepath.Dir(t.Path)
}

// IsNative reports whether the track is already in the player's native format
func (t Track) IsNative() bool {
	return t.Ext() == NativeExt
}

// DisplayName is the base name truncated for list display
func (t Track) DisplayName() string {
	runes := []rune(t.BaseName())
	if len(runes) <= MaxDisplayNameLength {
		return string(runes)
	}
	return string(runes[:MaxDisplayNameLength]) + "..."
}

// Theme is the palette derived from one sampled artwork color
type Theme struct {
	// Fill colors the top bar and player background
	Fill Color
	// Border is a darker variant of Fill used for the window border and frame
	Border Color
	// Text is the complement of the sampled color
	Text Color
	// Default is set when no artwork was available
	Default bool
}

// Hex returns the three theme colors as #RRGGBB strings
func (t Theme) Hex() (fill, border, text string) {
	return t.Fill.Hex(), t.Border.Hex(), t.Text.Hex()
}

// TranscodeJob describes one external conversion. It is never persisted.
type TranscodeJob struct {
	Binary   string
	Input    string
	Output   string
	Args     []string
	ExitCode int
}

// Normalized is the outcome of making a track playable
type Normalized struct {
	// Track is the playable track
	Track Track
	// Replaced is true when the source was transcoded and Track supersedes
	// it in the catalog and queue
	Replaced bool
}

// Snapshot is an immutable view of the controller published to subscribers
type Snapshot struct {
	State      PlaybackState
	Track      Track
	Theme      Theme
	// Artwork is the cached cover image, Backdrop the blurred render of it
	Artwork    string
	Backdrop   string
	Position   time.Duration
	Duration   time.Duration
	QueueIndex int
	QueueLen   int
	Err        error
}

// Progress returns the playback position as a fraction of the duration
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Position) / float64(s.Duration)
}

// FormatDuration renders d as MM:SS
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ScreenResolution holds the primary display dimensions the backdrop is sized to
type ScreenResolution struct {
	Width  int
	Height int
}
