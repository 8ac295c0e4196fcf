package web

import "github.com/tomz197/spacedefender/internal/audio"

type soundEvent struct {
	Key    string  `json:"key"`
	Volume float64 `json:"vol"`
}

type musicEvent struct {
	Play   bool    `json:"play"`
	Key    string  `json:"key,omitempty"`
	Volume float64 `json:"vol,omitempty"`
	Loop   bool    `json:"loop,omitempty"`
}

// sink collects audio calls until the next frame is sent; the page plays them.
type sink struct {
	sounds []soundEvent
	music  []musicEvent
}

var _ audio.Sink = (*sink)(nil)

func (s *sink) PlaySound(key string, volume float64) {
	s.sounds = append(s.sounds, soundEvent{Key: key, Volume: volume})
}

func (s *sink) PlayMusic(key string, volume float64, loop bool) {
	s.music = append(s.music, musicEvent{Play: true, Key: key, Volume: volume, Loop: loop})
}

func (s *sink) StopMusic() {
	s.music = append(s.music, musicEvent{})
}

// drain returns and forgets the queued events.
func (s *sink) drain() ([]soundEvent, []musicEvent) {
	sounds, music := s.sounds, s.music
	s.sounds, s.music = nil, nil
	return sounds, music
}
