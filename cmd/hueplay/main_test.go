package main

import (
	"context"
	"testing"
	"time"

	"github.com/genricoloni/hueplay/internal/domain"
	"github.com/genricoloni/hueplay/internal/domain/mocks"
	"go.uber.org/fx"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// TestAppGraphValidity fails when a constructor's dependency is not provided
func TestAppGraphValidity(t *testing.T) {
	if err := fx.ValidateApp(AppOptions); err != nil {
		t.Errorf("Dependency graph is not valid: %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name  string
		debug string
	}{
		{"Production", ""},
		{"Development", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HUEPLAY_DEBUG", tt.debug)
			logger, err := newLogger()
			if err != nil {
				t.Fatalf("Failed to create logger: %v", err)
			}
			if logger == nil {
				t.Fatal("Logger should not be nil")
			}
			if got := logger.Core().Enabled(zap.DebugLevel); got != (tt.debug != "") {
				t.Errorf("debug level enabled = %v", got)
			}
		})
	}
}

func TestAutoplay(t *testing.T) {
	t.Run("Selects First Track", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		transport := mocks.NewMockTransport(ctrl)
		transport.EXPECT().SelectTrack(gomock.Any(), "/music/a.mp3").Return(nil)

		tracks := []domain.Track{{Path: "/music/a.mp3"}, {Path: "/music/b.mp3"}}
		autoplay(context.Background(), zap.NewNop(), tracks, transport)
	})

	t.Run("Empty Catalog", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		transport := mocks.NewMockTransport(ctrl)

		autoplay(context.Background(), zap.NewNop(), nil, transport)
	})
}

func TestLogSnapshots(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	updates := make(chan domain.Snapshot, 3)

	track := domain.Track{Path: "/music/Song.mp3"}
	updates <- domain.Snapshot{State: domain.StateLoading, Track: track}
	updates <- domain.Snapshot{State: domain.StateLoading, Track: track, Position: time.Second}
	updates <- domain.Snapshot{State: domain.StatePlaying, Track: track, Duration: time.Minute}
	close(updates)

	logSnapshots(context.Background(), zap.New(core), updates)

	entries := logs.FilterMessage("Playback").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if got := entries[1].ContextMap()["duration"]; got != "01:00" {
		t.Errorf("duration field = %v", got)
	}
}
