package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/genricoloni/hueplay/internal/domain"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type mockConfig struct {
	transcoder string
}

func (m *mockConfig) GetMusicDir() string                { return "" }
func (m *mockConfig) GetArtworkDir() string              { return "" }
func (m *mockConfig) GetTranscoder() string              { return m.transcoder }
func (m *mockConfig) GetTranscodeTimeout() time.Duration { return 0 }
func (m *mockConfig) Autoplay() bool                     { return false }
func (m *mockConfig) MPRISEnabled() bool                 { return false }
func (m *mockConfig) BackdropEnabled() bool              { return false }

func requireShell(t *testing.T) {
	t.Helper()
	if !commandExists("sh") {
		t.Skip("sh not available")
	}
}

func TestNewExecutor_ReportsTranscoder(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name       string
		transcoder string
		wantLevel  zapcore.Level
		wantMsg    string
	}{
		{"Found", "sh", zapcore.InfoLevel, "Transcoder detected"},
		{"Missing", "hueplay-no-such-transcoder", zapcore.WarnLevel, "Transcoder not found, non-native formats will fail to play"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			NewExecutor(zap.New(core), &mockConfig{transcoder: tt.transcoder})

			entries := logs.FilterMessage(tt.wantMsg).All()
			if len(entries) != 1 {
				t.Fatalf("expected one %q entry, got %d", tt.wantMsg, len(entries))
			}
			if entries[0].Level != tt.wantLevel {
				t.Errorf("want level %s, got %s", tt.wantLevel, entries[0].Level)
			}
		})
	}
}

func TestCommandExecutor_Run(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name         string
		script       string
		wantExitCode int
		wantLine     string
	}{
		{
			name:         "Success - Zero Exit",
			script:       "echo converting; exit 0",
			wantExitCode: 0,
			wantLine:     "converting",
		},
		{
			name:         "Failure - Non Zero Exit",
			script:       "echo broken >&2; exit 3",
			wantExitCode: 3,
			wantLine:     "broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			exec := &CommandExecutor{logger: zap.New(core)}

			job := &domain.TranscodeJob{Binary: "sh", Args: []string{"-c", tt.script}}
			if err := exec.Run(context.Background(), job); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if job.ExitCode != tt.wantExitCode {
				t.Errorf("exit code: want %d, got %d", tt.wantExitCode, job.ExitCode)
			}

			found := false
			for _, entry := range logs.FilterMessage("Command output").All() {
				if strings.Contains(entry.ContextMap()["line"].(string), tt.wantLine) {
					found = true
				}
			}
			if !found {
				t.Errorf("expected output line %q to be logged", tt.wantLine)
			}
		})
	}
}

func TestCommandExecutor_MissingBinary(t *testing.T) {
	exec := &CommandExecutor{logger: zap.NewNop()}
	job := &domain.TranscodeJob{Binary: "hueplay-definitely-not-installed"}

	err := exec.Run(context.Background(), job)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !strings.Contains(err.Error(), "failed to start") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCommandExecutor_EmptyBinary(t *testing.T) {
	exec := &CommandExecutor{logger: zap.NewNop()}
	if err := exec.Run(context.Background(), &domain.TranscodeJob{Input: "x.flac"}); err == nil {
		t.Fatal("expected error for empty binary")
	}
}

func TestCommandExecutor_ContextTimeout(t *testing.T) {
	requireShell(t)

	exec := &CommandExecutor{logger: zap.NewNop()}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	job := &domain.TranscodeJob{Binary: "sh", Args: []string{"-c", "exec sleep 5"}}
	err := exec.Run(ctx, job)
	if err == nil {
		t.Fatal("expected interruption error")
	}
	if !strings.Contains(err.Error(), "interrupted") {
		t.Errorf("unexpected error: %v", err)
	}
	if job.ExitCode != -1 {
		t.Errorf("exit code should be -1 after interruption, got %d", job.ExitCode)
	}
}
