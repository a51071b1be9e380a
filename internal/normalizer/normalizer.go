package normalizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/genricoloni/hueplay/internal/domain"
	"go.uber.org/zap"
)

// playableExts pass through without conversion
var playableExts = map[string]bool{
	domain.NativeExt: true,
	".wav":           true,
}

// argBuilders hold the fixed transcoder arguments per source format
var argBuilders = map[string]func(in, out string) []string{
	// lossless source: constant 320k with tags carried into ID3v2.3
	".flac": func(in, out string) []string {
		return []string{
			"-i", in,
			"-ab", "320k",
			"-map_metadata", "0",
			"-id3v2_version", "3",
			out,
		}
	},
	// lossy source: keep the cover stream, VBR quality 4
	".m4a": func(in, out string) []string {
		return []string{
			"-i", in,
			"-c:v", "copy",
			"-c:a", "libmp3lame",
			"-q:a", "4",
			out,
		}
	},
}

// NeedsConversion reports whether ext must be transcoded before playback
func NeedsConversion(ext string) bool {
	_, ok := argBuilders[ext]
	return ok
}

// BuildArgs returns the transcoder arguments for converting in to out
func BuildArgs(in, out string) ([]string, error) {
	ext := domain.Track{Path: in}.Ext()
	build, ok := argBuilders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}
	return build(in, out), nil
}

// ConvertedPath is where the native-format sibling of track lives
func ConvertedPath(track domain.Track) string {
	return filepath.Join(track.Dir(), track.BaseName()+domain.NativeExt)
}

// Normalizer converts tracks into the player's native format with an external transcoder
type Normalizer struct {
	logger *zap.Logger
	exec   domain.Executor
	cfg    domain.Config
}

// NewNormalizer creates a new format normalizer
func NewNormalizer(logger *zap.Logger, exec domain.Executor, cfg domain.Config) *Normalizer {
	return &Normalizer{
		logger: logger,
		exec:   exec,
		cfg:    cfg,
	}
}

// Normalize returns a playable equivalent of track. A same-named native
// file next to the source is reused as the converted result, so a source
// is transcoded at most once. On failure the original track is returned.
func (n *Normalizer) Normalize(ctx context.Context, track domain.Track) (domain.Normalized, error) {
	unchanged := domain.Normalized{Track: track}

	ext := track.Ext()
	if playableExts[ext] {
		return unchanged, nil
	}
	if !NeedsConversion(ext) {
		return unchanged, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, ext)
	}

	out := ConvertedPath(track)
	if _, err := os.Stat(out); err == nil {
		n.logger.Info("Converted file already present, skipping transcode",
			zap.String("source", track.Path),
			zap.String("converted", out))
		return domain.Normalized{Track: domain.NewTrack(out)}, nil
	}

	if _, err := os.Stat(track.Path); err != nil {
		return unchanged, fmt.Errorf("source not readable: %w", err)
	}

	args, err := BuildArgs(track.Path, out)
	if err != nil {
		return unchanged, err
	}

	job := &domain.TranscodeJob{
		Binary: n.cfg.GetTranscoder(),
		Input:  track.Path,
		Output: out,
		Args:   args,
	}

	if timeout := n.cfg.GetTranscodeTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	n.logger.Info("Transcoding track",
		zap.String("source", track.Path),
		zap.String("output", out))

	if err := n.exec.Run(ctx, job); err != nil {
		n.removePartial(out)
		return unchanged, fmt.Errorf("%w: %w", domain.ErrTranscodeFailed, err)
	}

	if job.ExitCode != 0 {
		n.removePartial(out)
		n.logger.Error("Transcoder failed",
			zap.String("source", track.Path),
			zap.Int("exitCode", job.ExitCode))
		return unchanged, &domain.TranscodeError{Input: track.Path, ExitCode: job.ExitCode}
	}

	n.logger.Info("Conversion successful", zap.String("output", out))

	if err := os.Remove(track.Path); err != nil {
		n.logger.Warn("Failed to delete original file",
			zap.String("path", track.Path),
			zap.Error(err))
	} else {
		n.logger.Info("Deleted original file", zap.String("path", track.Path))
	}

	return domain.Normalized{Track: domain.NewTrack(out), Replaced: true}, nil
}

// removePartial deletes output left behind by a failed conversion so the
// next attempt does not mistake it for a finished one
func (n *Normalizer) removePartial(out string) {
	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		n.logger.Warn("Failed to remove partial output",
			zap.String("path", out),
			zap.Error(err))
	}
}
