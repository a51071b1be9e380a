package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG artwork support
	_ "image/png"  // PNG artwork support
	"sync"
	"time"

	"github.com/genricoloni/hueplay/internal/domain"
	"github.com/genricoloni/hueplay/internal/processor"
	"github.com/genricoloni/hueplay/internal/queue"
	"github.com/genricoloni/hueplay/internal/theme"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const inboxSize = 64

var _ domain.Transport = (*Controller)(nil)

// ErrStopped is returned by transport commands after the controller has shut down
var ErrStopped = errors.New("controller stopped")

// message is either a caller command or a player event. Both travel through
// the same inbox so they are handled in arrival order.
type message struct {
	ctx   context.Context
	run   func(ctx context.Context) error
	reply chan error

	event *playerEvent
}

type eventKind int

const (
	eventReady eventKind = iota
	eventPosition
	eventEnd
	eventError
)

type playerEvent struct {
	gen  uint64
	kind eventKind
	at   time.Duration
	err  error
}

// Controller is the playback state machine. A single goroutine owns the
// queue, the active player, the generation counter and the theme; every
// public method is executed on that goroutine.
type Controller struct {
	logger     *zap.Logger
	cfg        domain.Config
	library    domain.Library
	normalizer domain.Normalizer
	artwork    domain.ArtworkStore
	fetcher    domain.Fetcher
	backdrop   domain.Processor
	players    domain.PlayerFactory

	inbox  chan message
	done   chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// owned by runLoop
	queue      *queue.Queue
	player     domain.Player
	generation uint64
	state      domain.PlaybackState
	track      domain.Track
	theme      domain.Theme
	cover      string
	background string
	position   time.Duration
	duration   time.Duration
	lastErr    error

	mu      sync.RWMutex
	current domain.Snapshot
	subs    []chan domain.Snapshot
	closed  bool
}

// NewController creates a playback controller. The backdrop processor may
// be nil.
func NewController(
	logger *zap.Logger,
	cfg domain.Config,
	library domain.Library,
	normalizer domain.Normalizer,
	artwork domain.ArtworkStore,
	fetcher domain.Fetcher,
	backdrop domain.Processor,
	players domain.PlayerFactory,
) *Controller {
	c := &Controller{
		logger:     logger,
		cfg:        cfg,
		library:    library,
		normalizer: normalizer,
		artwork:    artwork,
		fetcher:    fetcher,
		backdrop:   backdrop,
		players:    players,
		inbox:      make(chan message, inboxSize),
		done:       make(chan struct{}),
		queue:      queue.New(),
		state:      domain.StateIdle,
		theme:      theme.Default(),
	}
	c.current = c.snapshot()
	return c
}

// Start launches the controller loop. It returns immediately.
func (c *Controller) Start(_ context.Context) error {
	loopCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(loopCtx)

	c.logger.Info("Playback controller started")
	return nil
}

// Stop ends the loop and releases the active player
func (c *Controller) Stop(ctx context.Context) error {
	c.logger.Info("Playback controller stopping...")

	if c.cancel != nil {
		c.cancel()
	}

	exited := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(exited)
	}()

	select {
	case <-exited:
	case <-ctx.Done():
		return fmt.Errorf("controller loop did not exit: %w", ctx.Err())
	}

	var errs error
	if c.player != nil {
		errs = multierr.Append(errs, c.player.Stop())
		c.player = nil
	}
	return errs
}

func (c *Controller) runLoop(ctx context.Context) {
	defer c.wg.Done()
	defer c.closeSubscribers()
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Controller loop stopped")
			return

		case msg := <-c.inbox:
			if msg.event != nil {
				c.handleEvent(ctx, *msg.event)
				continue
			}
			msg.reply <- msg.run(msg.ctx)
		}
	}
}

// do runs fn on the loop and waits for its result
func (c *Controller) do(ctx context.Context, fn func(ctx context.Context) error) error {
	msg := message{ctx: ctx, run: fn, reply: make(chan error, 1)}

	select {
	case c.inbox <- msg:
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}

	select {
	case err := <-msg.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return ErrStopped
	}
}

// post delivers a player event. Position updates are dropped when the
// inbox is full; the next tick replaces them anyway.
func (c *Controller) post(ev playerEvent) {
	msg := message{event: &ev}
	if ev.kind == eventPosition {
		select {
		case c.inbox <- msg:
		default:
		}
		return
	}

	select {
	case c.inbox <- msg:
	case <-c.done:
	}
}

func (c *Controller) eventsFor(gen uint64) domain.PlayerEvents {
	return domain.PlayerEvents{
		OnReady: func(total time.Duration) {
			c.post(playerEvent{gen: gen, kind: eventReady, at: total})
		},
		OnPosition: func(pos time.Duration) {
			c.post(playerEvent{gen: gen, kind: eventPosition, at: pos})
		},
		OnEndOfMedia: func() {
			c.post(playerEvent{gen: gen, kind: eventEnd})
		},
		OnError: func(err error) {
			c.post(playerEvent{gen: gen, kind: eventError, err: err})
		},
	}
}

// SelectTrack rebuilds the queue from the library around path and loads it
func (c *Controller) SelectTrack(ctx context.Context, path string) error {
	return c.do(ctx, func(ctx context.Context) error {
		track := domain.NewTrack(path)
		c.queue = queue.Rebuild(c.library.Tracks(), track)
		if c.queue.Index() < 0 {
			c.logger.Warn("Selected track is not in the catalog", zap.String("path", track.Path))
		}
		return c.load(ctx, track)
	})
}

// TogglePlayPause switches between Playing and Paused
func (c *Controller) TogglePlayPause(ctx context.Context) error {
	return c.do(ctx, func(context.Context) error {
		switch c.state {
		case domain.StatePlaying:
			return c.pause()
		case domain.StatePaused:
			return c.resume()
		default:
			return nil
		}
	})
}

// Play resumes a paused track
func (c *Controller) Play(ctx context.Context) error {
	return c.do(ctx, func(context.Context) error {
		if c.state != domain.StatePaused {
			return nil
		}
		return c.resume()
	})
}

// Pause pauses a playing track
func (c *Controller) Pause(ctx context.Context) error {
	return c.do(ctx, func(context.Context) error {
		if c.state != domain.StatePlaying {
			return nil
		}
		return c.pause()
	})
}

// Seek moves to fraction of the track duration. Playback is suspended
// while seeking and resumed only if it was playing when the seek began.
func (c *Controller) Seek(ctx context.Context, fraction float64) error {
	return c.do(ctx, func(context.Context) error {
		return c.seekTo(time.Duration(clamp01(fraction) * float64(c.duration)))
	})
}

// SkipNext loads the next queued track, wrapping at the end
func (c *Controller) SkipNext(ctx context.Context) error {
	return c.do(ctx, c.next)
}

// SkipPrevious loads the previous queued track, wrapping at the start
func (c *Controller) SkipPrevious(ctx context.Context) error {
	return c.do(ctx, func(ctx context.Context) error {
		if c.queue.IsEmpty() {
			return nil
		}
		c.queue.Previous()
		track, _ := c.queue.Current()
		return c.load(ctx, track)
	})
}

// RenameTrack renames a catalog track and keeps the queue and the current
// track pointing at the new file
func (c *Controller) RenameTrack(ctx context.Context, path, proposedName string) (domain.Track, error) {
	var renamed domain.Track
	err := c.do(ctx, func(context.Context) error {
		old := domain.NewTrack(path)
		var err error
		renamed, err = c.library.Rename(old.Path, proposedName)
		if renamed.IsZero() || renamed.Path == old.Path {
			return err
		}

		c.queue.Replace(old.Path, renamed)
		if c.track.Path == old.Path {
			c.track = renamed
			c.publish()
		}
		return err
	})
	return renamed, err
}

// Snapshot returns the latest published state
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Subscribe returns a channel carrying every published snapshot. A slow
// reader only sees the most recent one. The channel is closed on Stop.
func (c *Controller) Subscribe() <-chan domain.Snapshot {
	ch := make(chan domain.Snapshot, 1)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		close(ch)
		return ch
	}
	ch <- c.current
	c.subs = append(c.subs, ch)
	return ch
}

func (c *Controller) next(ctx context.Context) error {
	if c.queue.IsEmpty() {
		return nil
	}
	c.queue.Next()
	track, _ := c.queue.Current()
	return c.load(ctx, track)
}

// load runs the selection pipeline for track. The generation is bumped
// first so callbacks from the previous player are ignored from here on.
func (c *Controller) load(ctx context.Context, track domain.Track) error {
	c.generation++
	gen := c.generation

	c.state = domain.StateLoading
	c.track = track
	c.position, c.duration = 0, 0
	c.theme, c.cover, c.background = theme.Default(), "", ""
	c.lastErr = nil
	c.publish()

	c.logger.Info("Loading track",
		zap.String("track", track.Path),
		zap.Int("index", c.queue.Index()),
		zap.Uint64("generation", gen))

	norm, err := c.normalizer.Normalize(ctx, track)
	if err != nil {
		return c.fail(fmt.Errorf("failed to normalize %s: %w", track.BaseName(), err))
	}
	if norm.Replaced {
		c.library.Replace(track.Path, norm.Track)
		c.queue.Replace(track.Path, norm.Track)
	}
	track = norm.Track
	c.track = track

	c.theme, c.cover, c.background = c.deriveTheme(ctx, track)

	c.stopPlayer()

	player, err := c.players.Open(track.Path, c.eventsFor(gen))
	if err != nil {
		return c.fail(fmt.Errorf("failed to open player: %w", err))
	}
	c.player = player
	c.duration = player.Duration()
	c.publish()
	return nil
}

// deriveTheme returns the theme, the cover path and the backdrop path. It
// never fails: missing or unusable artwork yields the default theme and
// empty paths.
func (c *Controller) deriveTheme(ctx context.Context, track domain.Track) (domain.Theme, string, string) {
	artPath, err := c.artwork.Extract(ctx, track)
	if err != nil {
		c.logger.Warn("Artwork extraction failed", zap.String("track", track.Path), zap.Error(err))
		return theme.Default(), "", ""
	}
	if artPath == "" {
		return theme.Default(), "", ""
	}

	data, err := c.fetcher.Fetch(ctx, artPath)
	if err != nil {
		c.logger.Warn("Failed to read artwork", zap.String("path", artPath), zap.Error(err))
		return theme.Default(), "", ""
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		c.logger.Warn("Failed to decode artwork", zap.String("path", artPath), zap.Error(err))
		return theme.Default(), "", ""
	}

	color, err := processor.TopBandDominantColor(img)
	if err != nil {
		c.logger.Warn("No color sampled from artwork", zap.String("path", artPath), zap.Error(err))
		return theme.Default(), "", ""
	}
	th := theme.Derive(color)

	var backdrop string
	if c.backdrop != nil && c.cfg.BackdropEnabled() {
		backdrop, err = c.backdrop.Generate(ctx, img)
		if err != nil {
			c.logger.Warn("Failed to generate backdrop", zap.Error(err))
			backdrop = ""
		}
	}

	fill, border, text := th.Hex()
	c.logger.Debug("Theme derived",
		zap.String("sample", color.Hex()),
		zap.String("fill", fill),
		zap.String("border", border),
		zap.String("text", text))

	return th, artPath, backdrop
}

func (c *Controller) handleEvent(ctx context.Context, ev playerEvent) {
	if ev.gen != c.generation || c.player == nil {
		c.logger.Debug("Dropping stale player event",
			zap.Uint64("event", ev.gen),
			zap.Uint64("current", c.generation))
		return
	}

	switch ev.kind {
	case eventReady:
		if c.state != domain.StateLoading {
			return
		}
		c.duration = ev.at
		if err := c.player.Play(); err != nil {
			_ = c.fail(fmt.Errorf("failed to start playback: %w", err))
			return
		}
		c.state = domain.StatePlaying
		c.logger.Info("Playing", zap.String("track", c.track.Path), zap.Duration("duration", c.duration))
		c.publish()

	case eventPosition:
		c.position = ev.at
		c.publish()

	case eventEnd:
		c.state = domain.StateEnded
		c.position = c.duration
		c.publish()

		if c.queue.IsEmpty() {
			c.stopPlayer()
			c.state = domain.StateIdle
			c.publish()
			return
		}
		if err := c.next(ctx); err != nil {
			c.logger.Error("Auto-advance failed", zap.Error(err))
		}

	case eventError:
		_ = c.fail(fmt.Errorf("player error: %w", ev.err))
	}
}

func (c *Controller) pause() error {
	if err := c.player.Pause(); err != nil {
		return fmt.Errorf("failed to pause: %w", err)
	}
	c.state = domain.StatePaused
	c.publish()
	return nil
}

func (c *Controller) resume() error {
	if err := c.player.Play(); err != nil {
		return fmt.Errorf("failed to resume: %w", err)
	}
	c.state = domain.StatePlaying
	c.publish()
	return nil
}

func (c *Controller) seekTo(target time.Duration) error {
	if c.player == nil || c.duration <= 0 {
		return nil
	}

	wasPlaying := c.state == domain.StatePlaying
	if wasPlaying {
		if err := c.player.Pause(); err != nil {
			return fmt.Errorf("failed to pause for seek: %w", err)
		}
	}

	err := c.player.Seek(target)
	if err == nil {
		c.position = target
	}

	if wasPlaying {
		if perr := c.player.Play(); perr != nil {
			err = multierr.Append(err, fmt.Errorf("failed to resume after seek: %w", perr))
		}
	}
	c.publish()
	return err
}

// fail stops playback, publishes Error and settles in Idle. The queue
// cursor is left where it was.
func (c *Controller) fail(err error) error {
	c.logger.Error("Playback failed", zap.String("track", c.track.Path), zap.Error(err))

	c.stopPlayer()
	c.lastErr = err
	c.state = domain.StateError
	c.publish()

	c.state = domain.StateIdle
	c.publish()
	return err
}

func (c *Controller) stopPlayer() {
	if c.player == nil {
		return
	}
	if err := c.player.Stop(); err != nil {
		c.logger.Warn("Failed to stop player", zap.Error(err))
	}
	c.player = nil
}

func (c *Controller) snapshot() domain.Snapshot {
	return domain.Snapshot{
		State:      c.state,
		Track:      c.track,
		Theme:      c.theme,
		Artwork:    c.cover,
		Backdrop:   c.background,
		Position:   c.position,
		Duration:   c.duration,
		QueueIndex: c.queue.Index(),
		QueueLen:   c.queue.Len(),
		Err:        c.lastErr,
	}
}

// publish stores the current state and hands it to subscribers, replacing
// any snapshot they have not read yet
func (c *Controller) publish() {
	snap := c.snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = snap
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (c *Controller) closeSubscribers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, ch := range c.subs {
		close(ch)
	}
	c.subs = nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
