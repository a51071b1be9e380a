//go:build linux

package mpris

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/godbus/dbus/v5"
)

const identity = "hueplay"

var supportedMimeTypes = []string{"audio/mpeg", "audio/wav", "audio/flac", "audio/mp4"}

// rootObject implements org.mpris.MediaPlayer2
type rootObject struct {
	s *Server
}

func (r *rootObject) Raise() *dbus.Error { return nil }
func (r *rootObject) Quit() *dbus.Error  { return nil }

// playerObject implements org.mpris.MediaPlayer2.Player
type playerObject struct {
	s *Server
}

func (p *playerObject) Next() *dbus.Error {
	return p.s.dispatch("Next", p.s.transport.SkipNext)
}

func (p *playerObject) Previous() *dbus.Error {
	return p.s.dispatch("Previous", p.s.transport.SkipPrevious)
}

func (p *playerObject) Pause() *dbus.Error {
	return p.s.dispatch("Pause", p.s.transport.Pause)
}

func (p *playerObject) PlayPause() *dbus.Error {
	return p.s.dispatch("PlayPause", p.s.transport.TogglePlayPause)
}

func (p *playerObject) Stop() *dbus.Error {
	return p.s.dispatch("Stop", p.s.transport.Pause)
}

func (p *playerObject) Play() *dbus.Error {
	return p.s.dispatch("Play", p.s.transport.Play)
}

// Seek moves by offset microseconds. Seeking past the end skips to the
// next track.
func (p *playerObject) Seek(offset int64) *dbus.Error {
	snap := p.s.transport.Snapshot()
	if snap.Duration <= 0 {
		return nil
	}

	target := snap.Position + time.Duration(offset)*time.Microsecond
	if target > snap.Duration {
		return p.Next()
	}
	target = max(target, 0)
	return p.seek(snap.Duration, target)
}

// SetPosition moves to an absolute position in microseconds. Calls for a
// stale track id or an out of range position are ignored.
func (p *playerObject) SetPosition(id dbus.ObjectPath, position int64) *dbus.Error {
	snap := p.s.transport.Snapshot()
	if id != trackID(snap) || snap.Duration <= 0 {
		return nil
	}

	target := time.Duration(position) * time.Microsecond
	if target < 0 || target > snap.Duration {
		return nil
	}
	return p.seek(snap.Duration, target)
}

func (p *playerObject) seek(total, target time.Duration) *dbus.Error {
	fraction := float64(target) / float64(total)
	if derr := p.s.dispatch("Seek", func(ctx context.Context) error {
		return p.s.transport.Seek(ctx, fraction)
	}); derr != nil {
		return derr
	}
	p.s.emitSeeked(target)
	return nil
}

// OpenUri selects a local file given as a file:// URI
func (p *playerObject) OpenUri(uri string) *dbus.Error {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" || u.Path == "" {
		return dbus.MakeFailedError(fmt.Errorf("unsupported uri %q", uri))
	}
	return p.s.dispatch("OpenUri", func(ctx context.Context) error {
		return p.s.transport.SelectTrack(ctx, u.Path)
	})
}

// propsObject implements org.freedesktop.DBus.Properties
type propsObject struct {
	s *Server
}

func (o *propsObject) Get(iface, property string) (dbus.Variant, *dbus.Error) {
	props, derr := o.GetAll(iface)
	if derr != nil {
		return dbus.Variant{}, derr
	}
	v, ok := props[property]
	if !ok {
		return dbus.Variant{}, dbus.MakeFailedError(fmt.Errorf("unknown property %s.%s", iface, property))
	}
	return v, nil
}

func (o *propsObject) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	switch iface {
	case rootIface:
		return map[string]dbus.Variant{
			"CanQuit":             dbus.MakeVariant(false),
			"CanRaise":            dbus.MakeVariant(false),
			"HasTrackList":        dbus.MakeVariant(false),
			"Identity":            dbus.MakeVariant(identity),
			"SupportedUriSchemes": dbus.MakeVariant([]string{"file"}),
			"SupportedMimeTypes":  dbus.MakeVariant(supportedMimeTypes),
		}, nil

	case playerIface:
		snap := o.s.transport.Snapshot()
		hasTrack := snap.QueueLen > 0
		return map[string]dbus.Variant{
			"PlaybackStatus": dbus.MakeVariant(playbackStatus(snap.State)),
			"LoopStatus":     dbus.MakeVariant("Playlist"),
			"Rate":           dbus.MakeVariant(1.0),
			"Shuffle":        dbus.MakeVariant(false),
			"Metadata":       dbus.MakeVariant(metadata(snap)),
			"Volume":         dbus.MakeVariant(1.0),
			"Position":       dbus.MakeVariant(snap.Position.Microseconds()),
			"MinimumRate":    dbus.MakeVariant(1.0),
			"MaximumRate":    dbus.MakeVariant(1.0),
			"CanGoNext":      dbus.MakeVariant(hasTrack),
			"CanGoPrevious":  dbus.MakeVariant(hasTrack),
			"CanPlay":        dbus.MakeVariant(!snap.Track.IsZero()),
			"CanPause":       dbus.MakeVariant(!snap.Track.IsZero()),
			"CanSeek":        dbus.MakeVariant(snap.Duration > 0),
			"CanControl":     dbus.MakeVariant(true),
		}, nil
	}
	return nil, dbus.MakeFailedError(fmt.Errorf("unknown interface %s", iface))
}

func (o *propsObject) Set(iface, property string, _ dbus.Variant) *dbus.Error {
	return dbus.MakeFailedError(fmt.Errorf("property %s.%s is read-only", iface, property))
}

