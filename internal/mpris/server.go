//go:build linux

package mpris

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/genricoloni/hueplay/internal/domain"
	"github.com/godbus/dbus/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	busName     = "org.mpris.MediaPlayer2.hueplay"
	objectPath  = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootIface   = "org.mpris.MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"
	propsIface  = "org.freedesktop.DBus.Properties"

	noTrack     = dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")
	trackPrefix = "/org/hueplay/track/"

	defaultCallTimeout = 2 * time.Second
)

// Server exposes the playback controller as an MPRIS2 media player
type Server struct {
	logger      *zap.Logger
	cfg         domain.Config
	transport   domain.Transport
	dial        func() (DBusClient, error)
	callTimeout time.Duration

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	conn    DBusClient
	wg      sync.WaitGroup
}

// NewServer creates a new MPRIS server instance
func NewServer(logger *zap.Logger, cfg domain.Config, transport domain.Transport) *Server {
	return &Server{
		logger:    logger,
		cfg:       cfg,
		transport: transport,
		dial: func() (DBusClient, error) {
			return NewStdDBusClient()
		},
		callTimeout: defaultCallTimeout,
	}
}

// Start connects to the session bus, exports the player and begins
// forwarding controller snapshots as PropertiesChanged signals
func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.MPRISEnabled() {
		s.logger.Info("MPRIS surface disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	conn, err := s.dial()
	if err != nil {
		s.logger.Error("Failed to connect to session bus", zap.Error(err))
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("session bus connection failed: %w", err)
	}

	if err := s.export(conn); err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return multierr.Append(err, conn.Close())
	}

	watchCtx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.conn = conn
	s.cancel = cancel
	s.mu.Unlock()

	updates := s.transport.Subscribe()
	s.wg.Add(1)
	go s.watch(watchCtx, updates)

	s.logger.Info("MPRIS server started", zap.String("name", busName))
	return nil
}

func (s *Server) export(conn DBusClient) error {
	objects := []struct {
		v     any
		iface string
	}{
		{&rootObject{s}, rootIface},
		{&playerObject{s}, playerIface},
		{&propsObject{s}, propsIface},
	}
	for _, o := range objects {
		if err := conn.Export(o.v, objectPath, o.iface); err != nil {
			return fmt.Errorf("failed to export %s: %w", o.iface, err)
		}
	}

	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return fmt.Errorf("failed to request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return fmt.Errorf("bus name %s already taken", busName)
	}
	return nil
}

// Stop releases the bus name and closes the connection
func (s *Server) Stop(_ context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	conn := s.conn
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	var errs error
	if conn != nil {
		if _, err := conn.ReleaseName(busName); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to release bus name: %w", err))
		}
		errs = multierr.Append(errs, conn.Close())
	}

	s.mu.Lock()
	s.conn = nil
	s.cancel = nil
	s.mu.Unlock()

	s.logger.Info("MPRIS server stopped")
	return errs
}

// watch emits PropertiesChanged whenever the state, track or theme changes.
// Position-only updates are not signalled; clients poll Position.
func (s *Server) watch(ctx context.Context, updates <-chan domain.Snapshot) {
	defer s.wg.Done()

	var last domain.Snapshot
	first := true
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if !first && !changed(last, snap) {
				continue
			}
			first = false
			last = snap
			if err := s.emitChanged(snap); err != nil {
				s.logger.Warn("Failed to emit PropertiesChanged", zap.Error(err))
			}
		}
	}
}

func changed(a, b domain.Snapshot) bool {
	return a.State != b.State || a.Track != b.Track || a.Theme != b.Theme ||
		a.Artwork != b.Artwork || a.Backdrop != b.Backdrop || a.Duration != b.Duration
}

func (s *Server) emitChanged(snap domain.Snapshot) error {
	conn := s.client()
	if conn == nil {
		return nil
	}
	props := map[string]dbus.Variant{
		"PlaybackStatus": dbus.MakeVariant(playbackStatus(snap.State)),
		"Metadata":       dbus.MakeVariant(metadata(snap)),
	}
	return conn.Emit(objectPath, propsIface+".PropertiesChanged", playerIface, props, []string{})
}

func (s *Server) emitSeeked(pos time.Duration) {
	conn := s.client()
	if conn == nil {
		return
	}
	if err := conn.Emit(objectPath, playerIface+".Seeked", pos.Microseconds()); err != nil {
		s.logger.Warn("Failed to emit Seeked", zap.Error(err))
	}
}

func (s *Server) client() DBusClient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// dispatch runs a transport command for a bus method call. Commands that
// outlast callTimeout keep running; the caller gets an early success.
func (s *Server) dispatch(method string, fn func(ctx context.Context) error) *dbus.Error {
	s.logger.Debug("MPRIS call", zap.String("method", method))

	errc := make(chan error, 1)
	go func() { errc <- fn(context.Background()) }()

	timer := time.NewTimer(s.callTimeout)
	defer timer.Stop()

	select {
	case err := <-errc:
		if err != nil {
			s.logger.Warn("MPRIS call failed", zap.String("method", method), zap.Error(err))
			return dbus.MakeFailedError(err)
		}
		return nil
	case <-timer.C:
		go func() {
			if err := <-errc; err != nil {
				s.logger.Warn("MPRIS call failed", zap.String("method", method), zap.Error(err))
			}
		}()
		return nil
	}
}

func playbackStatus(state domain.PlaybackState) domain.PlayerStatus {
	switch state {
	case domain.StatePlaying, domain.StateLoading:
		return domain.StatusPlaying
	case domain.StatePaused:
		return domain.StatusPaused
	default:
		return domain.StatusStopped
	}
}

func trackID(snap domain.Snapshot) dbus.ObjectPath {
	if snap.Track.IsZero() || snap.QueueIndex < 0 {
		return noTrack
	}
	return dbus.ObjectPath(fmt.Sprintf("%s%d", trackPrefix, snap.QueueIndex))
}

func metadata(snap domain.Snapshot) map[string]dbus.Variant {
	md := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackID(snap)),
	}
	if snap.Track.IsZero() {
		return md
	}

	fill, border, text := snap.Theme.Hex()
	md["mpris:length"] = dbus.MakeVariant(snap.Duration.Microseconds())
	md["xesam:title"] = dbus.MakeVariant(snap.Track.DisplayName())
	md["xesam:url"] = dbus.MakeVariant((&url.URL{Scheme: "file", Path: snap.Track.Path}).String())
	md["hueplay:fill"] = dbus.MakeVariant(fill)
	md["hueplay:border"] = dbus.MakeVariant(border)
	md["hueplay:text"] = dbus.MakeVariant(text)
	if snap.Artwork != "" {
		md["mpris:artUrl"] = dbus.MakeVariant((&url.URL{Scheme: "file", Path: snap.Artwork}).String())
	}
	if snap.Backdrop != "" {
		md["hueplay:backdrop"] = dbus.MakeVariant((&url.URL{Scheme: "file", Path: snap.Backdrop}).String())
	}
	return md
}
