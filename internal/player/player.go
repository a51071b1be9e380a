package player

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/genricoloni/hueplay/internal/domain"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"
)

const (
	defaultTick     = 250 * time.Millisecond
	resampleQuality = 4
)

type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decodeFunc{
	".mp3": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	".wav": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
}

// Factory opens beep-backed players on the shared speaker
type Factory struct {
	logger *zap.Logger
	out    output
	tick   time.Duration
}

// NewFactory creates a player factory bound to the system speaker
func NewFactory(logger *zap.Logger) *Factory {
	return &Factory{
		logger: logger,
		out:    &speakerOutput{},
		tick:   defaultTick,
	}
}

// Open decodes path and returns a paused player. OnReady fires once the
// stream is decoded and its duration is known.
func (f *Factory) Open(path string, events domain.PlayerEvents) (domain.Player, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filepath.Ext(path))
	}

	if err := f.out.Init(SampleRate); err != nil {
		return nil, fmt.Errorf("failed to initialize speaker: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open track: %w", err)
	}

	stream, format, err := decode(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to decode track: %w", err)
	}

	p := &Player{
		logger: f.logger.With(zap.String("track", path)),
		out:    f.out,
		events: events,
		stream: stream,
		format: format,
		status: domain.StatusPaused,
		done:   make(chan struct{}),
	}
	p.ctrl = &beep.Ctrl{
		Streamer: beep.Seq(stream, beep.Callback(p.finished)),
		Paused:   true,
	}
	p.output = beep.Resample(resampleQuality, format.SampleRate, SampleRate, p.ctrl)

	f.logger.Debug("Track decoded",
		zap.String("path", path),
		zap.Int("sampleRate", int(format.SampleRate)),
		zap.Duration("duration", p.Duration()))

	go p.positionLoop(f.tick)
	if events.OnReady != nil {
		go events.OnReady(p.Duration())
	}

	return p, nil
}

// Player plays one decoded stream through the shared output
type Player struct {
	logger *zap.Logger
	out    output
	events domain.PlayerEvents

	stream beep.StreamSeekCloser
	format beep.Format
	ctrl   *beep.Ctrl
	output beep.Streamer

	mu       sync.Mutex
	status   domain.PlayerStatus
	started  bool
	done     chan struct{}
	stopOnce sync.Once
}

// Play starts or resumes playback
func (p *Player) Play() error {
	p.mu.Lock()
	if p.status == domain.StatusStopped {
		p.mu.Unlock()
		return domain.ErrNoPlayer
	}
	first := !p.started
	p.started = true
	p.status = domain.StatusPlaying
	p.mu.Unlock()

	p.out.Lock()
	p.ctrl.Paused = false
	p.out.Unlock()

	if first {
		p.out.Play(p.output)
	}
	return nil
}

// Pause suspends playback, keeping the position
func (p *Player) Pause() error {
	p.mu.Lock()
	if p.status == domain.StatusStopped {
		p.mu.Unlock()
		return domain.ErrNoPlayer
	}
	p.status = domain.StatusPaused
	p.mu.Unlock()

	p.out.Lock()
	p.ctrl.Paused = true
	p.out.Unlock()
	return nil
}

// Seek moves the playhead, clamped to the stream bounds
func (p *Player) Seek(pos time.Duration) error {
	if p.Status() == domain.StatusStopped {
		return domain.ErrNoPlayer
	}

	p.out.Lock()
	defer p.out.Unlock()

	n := p.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if last := p.stream.Len() - 1; n > last {
		n = max(last, 0)
	}
	if err := p.stream.Seek(n); err != nil {
		return fmt.Errorf("failed to seek: %w", err)
	}
	return nil
}

// Stop detaches the stream from the output and releases the decoder.
// It is safe to call more than once.
func (p *Player) Stop() error {
	var err error
	p.stopOnce.Do(func() {
		p.out.Lock()
		p.ctrl.Streamer = nil
		p.out.Unlock()

		p.mu.Lock()
		p.status = domain.StatusStopped
		p.mu.Unlock()

		close(p.done)
		err = p.stream.Close()
	})
	return err
}

// Status reports the player state
func (p *Player) Status() domain.PlayerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Position returns the current playhead
func (p *Player) Position() time.Duration {
	p.out.Lock()
	defer p.out.Unlock()
	return p.format.SampleRate.D(p.stream.Position())
}

// Duration returns the total length of the stream
func (p *Player) Duration() time.Duration {
	return p.format.SampleRate.D(p.stream.Len())
}

// finished runs on the output goroutine with the output locked
func (p *Player) finished() {
	p.mu.Lock()
	p.status = domain.StatusStopped
	p.mu.Unlock()

	p.logger.Debug("End of media")
	if p.events.OnEndOfMedia != nil {
		go p.events.OnEndOfMedia()
	}
}

func (p *Player) positionLoop(tick time.Duration) {
	if p.events.OnPosition == nil || tick <= 0 {
		return
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			if p.Status() == domain.StatusPlaying {
				p.events.OnPosition(p.Position())
			}
		}
	}
}
