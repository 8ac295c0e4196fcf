package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
)

const (
	musicKey    = "background-music"
	themeLength = 30 * time.Second
)

// voice is a synthesized fallback for a sound key.
type voice struct {
	length time.Duration
	build  func(sr beep.SampleRate) beep.Streamer
}

var voices = map[string]voice{
	"shoot": {120 * time.Millisecond, func(sr beep.SampleRate) beep.Streamer {
		return &sweepGenerator{sr: sr, from: 1400, to: 300, length: sr.N(120 * time.Millisecond)}
	}},
	"enemy-hit": {80 * time.Millisecond, func(sr beep.SampleRate) beep.Streamer {
		return &noiseGenerator{sr: sr, decay: 40, rumble: 220, seed: 7}
	}},
	"explosion": {500 * time.Millisecond, func(sr beep.SampleRate) beep.Streamer {
		return &noiseGenerator{sr: sr, decay: 6, rumble: 60, seed: time.Now().UnixNano()}
	}},
	"level-complete": {600 * time.Millisecond, func(sr beep.SampleRate) beep.Streamer {
		return &arpeggioGenerator{sr: sr, notes: []float64{523.25, 659.25, 783.99, 1046.5}, step: sr.N(150 * time.Millisecond)}
	}},
	"game-over": {1200 * time.Millisecond, func(sr beep.SampleRate) beep.Streamer {
		return &arpeggioGenerator{sr: sr, notes: []float64{392, 329.63, 261.63, 196}, step: sr.N(300 * time.Millisecond)}
	}},
}

// sweepGenerator glides a square-ish tone between two frequencies.
type sweepGenerator struct {
	sr       beep.SampleRate
	from, to float64
	length   int
	pos      int
	phase    float64
}

func (g *sweepGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		progress := math.Min(float64(g.pos)/float64(g.length), 1)
		freq := g.from + (g.to-g.from)*progress
		g.phase += freq / float64(g.sr)

		sample := 0.3 * math.Sin(2*math.Pi*g.phase)
		sample += 0.1 * math.Sin(6*math.Pi*g.phase)
		sample *= 1 - progress

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *sweepGenerator) Err() error {
	return nil
}

// noiseGenerator produces decaying noise over a low rumble.
type noiseGenerator struct {
	sr     beep.SampleRate
	decay  float64
	rumble float64
	seed   int64
	pos    int
}

func (g *noiseGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		envelope := math.Exp(-t * g.decay)

		g.seed = (g.seed*1103515245 + 12345) & 0x7fffffff
		noise := float64(g.seed)/float64(0x7fffffff)*2 - 1
		rumble := 0.3 * math.Sin(2*math.Pi*g.rumble*t)

		sample := envelope * (0.3*noise + rumble)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *noiseGenerator) Err() error {
	return nil
}

// arpeggioGenerator plays notes in sequence, each for step samples.
type arpeggioGenerator struct {
	sr    beep.SampleRate
	notes []float64
	step  int
	pos   int
}

func (g *arpeggioGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		idx := min(g.pos/g.step, len(g.notes)-1)
		within := float64(g.pos%g.step) / float64(g.step)
		t := float64(g.pos) / float64(g.sr)

		envelope := 1 - within*0.7
		sample := 0.25 * envelope * math.Sin(2*math.Pi*g.notes[idx]*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *arpeggioGenerator) Err() error {
	return nil
}

// ThemeGenerator is an endless bass-and-lead loop used when no music clip
// is available.
type ThemeGenerator struct {
	sr   beep.SampleRate
	pos  int
	beat int
}

// NewThemeGenerator creates the background theme at sample rate sr.
func NewThemeGenerator(sr beep.SampleRate) *ThemeGenerator {
	return &ThemeGenerator{
		sr:   sr,
		beat: sr.N(time.Millisecond * 250), // 120 BPM eighth notes
	}
}

var themeBass = []float64{55, 55, 65.41, 49}
var themeLead = []float64{220, 261.63, 329.63, 261.63, 196, 246.94, 293.66, 246.94}

func (g *ThemeGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		beat := g.pos / g.beat
		within := float64(g.pos%g.beat) / float64(g.beat)

		bass := themeBass[(beat/8)%len(themeBass)]
		lead := themeLead[beat%len(themeLead)]

		sample := 0.12 * math.Sin(2*math.Pi*bass*t)
		sample += 0.06 * (1 - within) * math.Sin(2*math.Pi*lead*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ThemeGenerator) Err() error {
	return nil
}
