// Package audio provides sound sinks for the game: a beep-backed speaker,
// a silent sink and a wrapper that adds muting to any sink.
package audio

import "sync"

// Sink plays keyed sounds and background music. Calls never block and
// never fail; sinks log and drop what they cannot play.
type Sink interface {
	PlaySound(key string, volume float64)
	PlayMusic(key string, volume float64, loop bool)
	StopMusic()
}

// Nop discards everything.
type Nop struct{}

func (Nop) PlaySound(string, float64)       {}
func (Nop) PlayMusic(string, float64, bool) {}
func (Nop) StopMusic()                      {}

type track struct {
	key    string
	volume float64
	loop   bool
}

// Muter drops sounds while muted. Music started while muted, or cut by
// muting, resumes from the start when unmuted.
type Muter struct {
	mu    sync.Mutex
	sink  Sink
	muted bool
	music *track
}

// NewMuter wraps sink.
func NewMuter(sink Sink) *Muter {
	return &Muter{sink: sink}
}

func (m *Muter) PlaySound(key string, volume float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.muted {
		return
	}
	m.sink.PlaySound(key, volume)
}

func (m *Muter) PlayMusic(key string, volume float64, loop bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.music = &track{key: key, volume: volume, loop: loop}
	if m.muted {
		return
	}
	m.sink.PlayMusic(key, volume, loop)
}

func (m *Muter) StopMusic() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.music = nil
	m.sink.StopMusic()
}

// SetMuted mutes or unmutes the sink.
func (m *Muter) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setMutedLocked(muted)
}

// ToggleMute flips the mute state and returns the new state.
func (m *Muter) ToggleMute() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setMutedLocked(!m.muted)
	return m.muted
}

func (m *Muter) setMutedLocked(muted bool) {
	if muted == m.muted {
		return
	}
	m.muted = muted

	if m.music == nil {
		return
	}
	if muted {
		m.sink.StopMusic()
	} else {
		m.sink.PlayMusic(m.music.key, m.music.volume, m.music.loop)
	}
}

// Muted reports whether the sink is muted.
func (m *Muter) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}
