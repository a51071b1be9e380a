package domain

import (
	"context"
	"image"
	"time"
)

//go:generate mockgen -destination=mocks/domain_mock.go -package=mocks github.com/genricoloni/hueplay/internal/domain Executor,Normalizer,ArtworkStore,Fetcher,Processor,PlayerFactory,Player,Library,Transport

// Executor runs external commands on behalf of the pipeline
type Executor interface {
	// Run starts the job's binary, streams its combined output to the log
	// and blocks until it exits. The exit code is stored in job.ExitCode.
	// A non-nil error means the process could not be run at all.
	Run(ctx context.Context, job *TranscodeJob) error
}

// Normalizer guarantees a track is in the player's native format
type Normalizer interface {
	// Normalize returns a playable equivalent of track, transcoding at most
	// once per source file. On failure the original track is returned with
	// the error.
	Normalize(ctx context.Context, track Track) (Normalized, error)
}

// ArtworkStore extracts and caches embedded cover images
type ArtworkStore interface {
	// Extract returns the cached artwork path for track, or "" when the
	// track has no usable artwork. Only a failure to create the cache
	// directory is reported as an error.
	Extract(ctx context.Context, track Track) (string, error)

	// ArtworkPath is the deterministic cache location for a base name
	ArtworkPath(baseName string) string
}

// Fetcher reads image data from a local path
type Fetcher interface {
	// Fetch returns the raw image bytes, bounded in size
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Processor renders the blurred player backdrop from artwork
type Processor interface {
	// Generate writes a backdrop for img and returns its path
	Generate(ctx context.Context, img image.Image) (string, error)
}

// PlayerEvents are the asynchronous notifications a Player raises. They may
// fire from any goroutine.
type PlayerEvents struct {
	OnReady      func(total time.Duration)
	OnPosition   func(pos time.Duration)
	OnEndOfMedia func()
	OnError      func(err error)
}

// Player is one loaded media file in the underlying audio engine
type Player interface {
	Play() error
	Pause() error
	Seek(pos time.Duration) error
	Stop() error
	Status() PlayerStatus
	Position() time.Duration
	Duration() time.Duration
}

// PlayerFactory constructs a Player bound to a local file
type PlayerFactory interface {
	Open(path string, events PlayerEvents) (Player, error)
}

// Library is the visible catalog the queue is rebuilt from
type Library interface {
	Tracks() []Track
	Replace(oldPath string, track Track) bool
	// Rename moves a track file to a sanitized, collision-free name
	Rename(oldPath, proposedName string) (Track, error)
}

// Transport is the command surface of the playback controller
type Transport interface {
	SelectTrack(ctx context.Context, path string) error
	TogglePlayPause(ctx context.Context) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, fraction float64) error
	SkipNext(ctx context.Context) error
	SkipPrevious(ctx context.Context) error
	RenameTrack(ctx context.Context, path, proposedName string) (Track, error)
	Snapshot() Snapshot
	Subscribe() <-chan Snapshot
}

// Config defines the interface for application configuration
type Config interface {
	// GetMusicDir returns the catalog directory
	GetMusicDir() string

	// GetArtworkDir returns the artwork cache directory
	GetArtworkDir() string

	// GetTranscoder returns the transcoder binary name or path
	GetTranscoder() string

	// GetTranscodeTimeout bounds a single conversion; zero disables the bound
	GetTranscodeTimeout() time.Duration

	// Autoplay reports whether the first track is selected at startup
	Autoplay() bool

	// MPRISEnabled reports whether the MPRIS surface is exported
	MPRISEnabled() bool

	// BackdropEnabled reports whether blurred backdrops are rendered
	BackdropEnabled() bool
}
