package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for extensions the pipeline cannot handle
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	// ErrTranscodeFailed wraps every failed conversion
	ErrTranscodeFailed = errors.New("transcode failed")
	// ErrNoPlayer is returned by transport commands when nothing is loaded
	ErrNoPlayer = errors.New("no active player")
	// ErrEmptySample is returned when an image has no opaque pixel on the sampling grid
	ErrEmptySample = errors.New("no opaque pixels sampled")
	// ErrTrackNotFound is returned when a path is not part of the catalog
	ErrTrackNotFound = errors.New("track not found")
)

// TranscodeError reports a transcoder that ran and exited non-zero
type TranscodeError struct {
	Input    string
	ExitCode int
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("transcoder exited with code %d for %s", e.ExitCode, e.Input)
}

// Unwrap lets callers match ErrTranscodeFailed
func (e *TranscodeError) Unwrap() error {
	return ErrTranscodeFailed
}
