package normalizer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/genricoloni/hueplay/internal/domain"
	"github.com/genricoloni/hueplay/internal/domain/mocks"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type mockConfig struct {
	timeout time.Duration
}

func (m *mockConfig) GetMusicDir() string                { return "" }
func (m *mockConfig) GetArtworkDir() string              { return "" }
func (m *mockConfig) GetTranscoder() string              { return "ffmpeg" }
func (m *mockConfig) GetTranscodeTimeout() time.Duration { return m.timeout }
func (m *mockConfig) Autoplay() bool                     { return false }
func (m *mockConfig) MPRISEnabled() bool                 { return false }
func (m *mockConfig) BackdropEnabled() bool              { return false }

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// succeed simulates a transcoder that writes the output and exits 0
func succeed(_ context.Context, job *domain.TranscodeJob) error {
	if err := os.WriteFile(job.Output, []byte("mp3"), 0644); err != nil {
		return err
	}
	job.ExitCode = 0
	return nil
}

func TestNormalize_Passthrough(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"Native MP3", "song.mp3"},
		{"Playable WAV", "song.wav"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			// No EXPECT: any executor call fails the test
			exec := mocks.NewMockExecutor(ctrl)

			n := NewNormalizer(zap.NewNop(), exec, &mockConfig{})
			track := domain.Track{Path: filepath.Join(t.TempDir(), tt.file)}

			got, err := n.Normalize(context.Background(), track)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Track != track || got.Replaced {
				t.Errorf("expected pass-through, got %+v", got)
			}
		})
	}
}

func TestNormalize_ExistingConvertedSkipsTranscoder(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)

	dir := t.TempDir()
	src := filepath.Join(dir, "album.flac")
	writeFile(t, src)
	writeFile(t, filepath.Join(dir, "album.mp3"))

	n := NewNormalizer(zap.NewNop(), exec, &mockConfig{})
	got, err := n.Normalize(context.Background(), domain.Track{Path: src})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Track.Path != filepath.Join(dir, "album.mp3") {
		t.Errorf("expected switch to converted file, got %s", got.Track.Path)
	}
	if got.Replaced {
		t.Error("pre-existing conversion should not replace the source entry")
	}
	if !exists(src) {
		t.Error("source must not be deleted when no transcode ran")
	}
}

func TestNormalize_TranscodeSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)

	dir := t.TempDir()
	src := filepath.Join(dir, "live.flac")
	writeFile(t, src)
	out := filepath.Join(dir, "live.mp3")

	exec.EXPECT().Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, job *domain.TranscodeJob) error {
			if job.Binary != "ffmpeg" {
				t.Errorf("unexpected binary %s", job.Binary)
			}
			if job.Input != src || job.Output != out {
				t.Errorf("unexpected job paths %s -> %s", job.Input, job.Output)
			}
			return succeed(ctx, job)
		})

	n := NewNormalizer(zap.NewNop(), exec, &mockConfig{timeout: time.Minute})
	got, err := n.Normalize(context.Background(), domain.Track{Path: src})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Track.Path != out || !got.Replaced {
		t.Errorf("expected replaced track at %s, got %+v", out, got)
	}
	if exists(src) {
		t.Error("source should be deleted after a successful transcode")
	}
}

func TestNormalize_NonZeroExit(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)

	dir := t.TempDir()
	src := filepath.Join(dir, "bad.m4a")
	writeFile(t, src)
	out := filepath.Join(dir, "bad.mp3")

	exec.EXPECT().Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, job *domain.TranscodeJob) error {
			// partial output left by a crashing encoder
			writeFile(t, job.Output)
			job.ExitCode = 1
			return nil
		})

	n := NewNormalizer(zap.NewNop(), exec, &mockConfig{})
	track := domain.Track{Path: src}
	got, err := n.Normalize(context.Background(), track)

	var te *domain.TranscodeError
	if !errors.As(err, &te) || te.ExitCode != 1 {
		t.Fatalf("expected TranscodeError with exit code 1, got %v", err)
	}
	if got.Track != track || got.Replaced {
		t.Errorf("original track should be returned unchanged, got %+v", got)
	}
	if !exists(src) {
		t.Error("source must survive a failed transcode")
	}
	if exists(out) {
		t.Error("partial output should be removed")
	}
}

func TestNormalize_ExecutorError(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)

	dir := t.TempDir()
	src := filepath.Join(dir, "x.flac")
	writeFile(t, src)

	exec.EXPECT().Run(gomock.Any(), gomock.Any()).Return(errors.New("executable not found"))

	n := NewNormalizer(zap.NewNop(), exec, &mockConfig{})
	_, err := n.Normalize(context.Background(), domain.Track{Path: src})
	if !errors.Is(err, domain.ErrTranscodeFailed) {
		t.Errorf("expected ErrTranscodeFailed, got %v", err)
	}
}

func TestNormalize_TranscodesOnlyOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)

	dir := t.TempDir()
	src := filepath.Join(dir, "once.flac")
	writeFile(t, src)

	exec.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(succeed).Times(1)

	n := NewNormalizer(zap.NewNop(), exec, &mockConfig{})
	track := domain.Track{Path: src}

	first, err := n.Normalize(context.Background(), track)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := n.Normalize(context.Background(), track)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first.Track != second.Track {
		t.Errorf("both calls should resolve to the same file: %s vs %s", first.Track.Path, second.Track.Path)
	}
}

func TestNormalize_MissingSource(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)

	n := NewNormalizer(zap.NewNop(), exec, &mockConfig{})
	_, err := n.Normalize(context.Background(), domain.Track{Path: filepath.Join(t.TempDir(), "gone.flac")})
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestNormalize_UnsupportedFormat(t *testing.T) {
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)

	n := NewNormalizer(zap.NewNop(), exec, &mockConfig{})
	_, err := n.Normalize(context.Background(), domain.Track{Path: "/m/tune.ogg"})
	if !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestBuildArgs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "FLAC",
			in:   "/m/a.flac",
			want: []string{"-i", "/m/a.flac", "-ab", "320k", "-map_metadata", "0", "-id3v2_version", "3", "/m/a.mp3"},
		},
		{
			name: "M4A",
			in:   "/m/a.M4A",
			want: []string{"-i", "/m/a.M4A", "-c:v", "copy", "-c:a", "libmp3lame", "-q:a", "4", "/m/a.mp3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildArgs(tt.in, "/m/a.mp3")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("want %v, got %v", tt.want, got)
			}
		})
	}

	if _, err := BuildArgs("/m/a.ogg", "/m/a.mp3"); !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestConvertedPath(t *testing.T) {
	got := ConvertedPath(domain.Track{Path: "/m/Some Album.flac"})
	if got != "/m/Some Album.mp3" {
		t.Errorf("unexpected converted path %s", got)
	}
}
