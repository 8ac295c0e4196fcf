package audio

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
)

const (
	sampleRate = beep.SampleRate(48000)
)

// Clips looks up decoded sound clips by key.
type Clips interface {
	Get(key string) (any, bool)
}

// Speaker plays sounds on the default output device through one mixer.
// Clips decoded with DecodeWAV are preferred; keys without a clip use a
// synthesized voice.
type Speaker struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	music       *beep.Ctrl
	clips       Clips
	log         *log.Logger
	initialized bool
}

// NewSpeaker creates a speaker. clips and logger may be nil.
func NewSpeaker(clips Clips, logger *log.Logger) *Speaker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Speaker{
		mixer: &beep.Mixer{},
		clips: clips,
		log:   logger,
	}
}

// Init opens the output device. Callers fall back to Nop on error.
func (s *Speaker) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}

	// Initialize speaker with sample rate and buffer size
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Close stops all sounds.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.music = nil
	s.initialized = false
}

func (s *Speaker) PlaySound(key string, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}

	var stream beep.Streamer
	if buf, ok := s.clip(key); ok {
		stream = buf.Streamer(0, buf.Len())
	} else if v, ok := voices[key]; ok {
		stream = beep.Take(sampleRate.N(v.length), v.build(sampleRate))
	} else {
		s.log.Debug("No sound for key", "key", key)
		return
	}

	speaker.Lock()
	s.mixer.Add(withVolume(stream, volume))
	speaker.Unlock()
}

func (s *Speaker) PlayMusic(key string, volume float64, loop bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	s.stopMusicLocked()

	var stream beep.Streamer
	if buf, ok := s.clip(key); ok {
		if loop {
			stream = beep.Loop(-1, buf.Streamer(0, buf.Len()))
		} else {
			stream = buf.Streamer(0, buf.Len())
		}
	} else if key == musicKey {
		// The synthesized track never ends
		stream = NewThemeGenerator(sampleRate)
		if !loop {
			stream = beep.Take(sampleRate.N(themeLength), stream)
		}
	} else {
		s.log.Debug("No music for key", "key", key)
		return
	}

	ctrl := &beep.Ctrl{Streamer: withVolume(stream, volume), Paused: false}
	s.music = ctrl
	speaker.Lock()
	s.mixer.Add(ctrl)
	speaker.Unlock()
}

func (s *Speaker) StopMusic() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopMusicLocked()
}

func (s *Speaker) stopMusicLocked() {
	if s.music == nil {
		return
	}
	speaker.Lock()
	// A nil streamer drains the Ctrl so the mixer drops it
	s.music.Streamer = nil
	speaker.Unlock()
	s.music = nil
}

func (s *Speaker) clip(key string) (*beep.Buffer, bool) {
	if s.clips == nil {
		return nil, false
	}
	v, ok := s.clips.Get(key)
	if !ok {
		return nil, false
	}
	buf, ok := v.(*beep.Buffer)
	return buf, ok
}

// withVolume scales a stream by a linear volume in [0, 1].
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(min(vol, 1)), Silent: false}
}

// DecodeWAV reads a wav file into a buffer at the speaker sample rate.
// It has the asset.DecoderFunc signature.
func DecodeWAV(path string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	stream, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer stream.Close()

	var src beep.Streamer = stream
	if format.SampleRate != sampleRate {
		src = beep.Resample(4, format.SampleRate, sampleRate, stream)
	}

	buf := beep.NewBuffer(beep.Format{SampleRate: sampleRate, NumChannels: 2, Precision: 2})
	buf.Append(src)
	return buf, nil
}
