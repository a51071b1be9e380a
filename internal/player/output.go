package player

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// SampleRate is the rate the speaker is opened at. Tracks are resampled to it.
const SampleRate beep.SampleRate = 44100

// output is the audio sink players mix into
type output interface {
	Init(rate beep.SampleRate) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
}

// speakerOutput initializes the global beep speaker once
type speakerOutput struct {
	once sync.Once
	err  error
}

func (o *speakerOutput) Init(rate beep.SampleRate) error {
	o.once.Do(func() {
		o.err = speaker.Init(rate, rate.N(time.Second/10))
	})
	return o.err
}

func (o *speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (o *speakerOutput) Lock()                { speaker.Lock() }
func (o *speakerOutput) Unlock()              { speaker.Unlock() }
