// Package game implements the Space Defender simulation: one run of timed
// levels in which the player ship shoots down descending enemies.
//
// The Simulation is single-threaded. Every method must be called from the
// goroutine that drives the frame loop.
package game

import (
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/spacedefender/internal/clock"
	"github.com/tomz197/spacedefender/internal/loop/config"
	"github.com/tomz197/spacedefender/internal/object"
)

// Audio is the sound sink the simulation reports events to.
// Implementations must not block and must swallow their own failures.
type Audio interface {
	PlaySound(key string, volume float64)
	PlayMusic(key string, volume float64, loop bool)
	StopMusic()
}

// HighScoreStore persists the best score across runs.
type HighScoreStore interface {
	Load() (int, error)
	Save(score int) error
}

// Options configures a Simulation. Zero values are replaced with defaults.
type Options struct {
	Audio  Audio
	Store  HighScoreStore
	Clock  clock.Clock
	Rand   *rand.Rand
	Field  object.Field
	Logger *log.Logger
}

// RunState is a snapshot of the counters shown in the HUD.
type RunState struct {
	Level         int
	Score         int
	HighScore     int
	Lives         int
	TimeLeft      float64 // Seconds left on the level countdown
	LevelComplete bool
	GameOver      bool
	NextLevelIn   time.Duration // Time until the pending level advance, zero if none
}

// Simulation owns all entities, particles and run counters.
type Simulation struct {
	audio Audio
	store HighScoreStore
	clock clock.Clock
	rng   *rand.Rand
	field object.Field
	log   *log.Logger

	level         int
	score         int
	highScore     int
	timeLeft      float64
	levelComplete bool
	gameOver      bool
	spawnTimer    float64
	background    float64

	player    *object.Player
	entities  []object.Entity
	particles particleList
	advance   clock.Deferred
}

// particleList collects particles emitted by the burst helpers.
type particleList []*object.Particle

func (l *particleList) Emit(p *object.Particle) {
	*l = append(*l, p)
}

type nopAudio struct{}

func (nopAudio) PlaySound(string, float64)       {}
func (nopAudio) PlayMusic(string, float64, bool) {}
func (nopAudio) StopMusic()                      {}

// New creates a simulation and reads the stored high score.
// Call Init to start a run.
func New(opts Options) *Simulation {
	s := &Simulation{
		audio: opts.Audio,
		store: opts.Store,
		clock: opts.Clock,
		rng:   opts.Rand,
		field: opts.Field,
		log:   opts.Logger,
		level: 1,
	}
	if s.audio == nil {
		s.audio = nopAudio{}
	}
	if s.clock == nil {
		s.clock = clock.Real{}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.field == (object.Field{}) {
		s.field = object.DefaultField
	}
	if s.log == nil {
		s.log = log.New(io.Discard)
	}

	if s.store != nil {
		score, err := s.store.Load()
		if err != nil {
			s.log.Warn("Failed to load high score", "err", err)
		} else if score > 0 {
			s.highScore = score
		}
	}
	return s
}

// Init resets the run and starts level 1.
func (s *Simulation) Init() {
	s.level = 1
	s.score = 0
	s.gameOver = false
	s.background = 0
	s.timeLeft = config.LevelSeconds
	s.levelComplete = false
	s.spawnTimer = 0
	s.advance.Cancel()

	s.releaseParticles(s.particles)
	s.particles = s.particles[:0]

	s.player = object.NewPlayer(
		s.field.Width/2-config.PlayerStartOffsetX,
		s.field.Height-config.PlayerStartOffsetY,
	)
	s.entities = []object.Entity{s.player}

	s.StartLevel(1)
}

// StartLevel enters level n. Enemies and particles are cleared; the player
// and bullets in flight carry over.
func (s *Simulation) StartLevel(n int) {
	s.level = n
	s.spawnTimer = 0
	s.timeLeft = config.LevelSeconds
	s.levelComplete = false

	kept := s.entities[:0]
	for _, e := range s.entities {
		switch e.(type) {
		case *object.Player, *object.Bullet:
			kept = append(kept, e)
		}
	}
	clear(s.entities[len(kept):])
	s.entities = kept

	s.releaseParticles(s.particles)
	s.particles = s.particles[:0]

	cx, cy := s.field.Center()
	object.SpawnLevelStart(cx, cy, n, s.rng, &s.particles)
	s.audio.PlaySound(config.SoundLevelComplete, config.VolumeLevelComplete)

	if n == 1 {
		s.audio.PlayMusic(config.MusicBackground, config.VolumeBackgroundLoop, true)
	}
	s.log.Debug("Level started", "level", n)
}

// Poll runs the pending level advance once its wall-clock deadline passes.
// It is independent of Update so the advance still happens while paused.
func (s *Simulation) Poll() {
	s.advance.Poll(s.clock.Now())
}

// State returns a snapshot of the run counters.
func (s *Simulation) State() RunState {
	st := RunState{
		Level:         s.level,
		Score:         s.score,
		HighScore:     s.highScore,
		TimeLeft:      s.timeLeft,
		LevelComplete: s.levelComplete,
		GameOver:      s.gameOver,
	}
	if s.player != nil {
		st.Lives = s.player.Lives
	}
	if s.advance.Pending() {
		if d := s.advance.Due().Sub(s.clock.Now()); d > 0 {
			st.NextLevelIn = d
		}
	}
	return st
}

// Player returns the player ship, or nil before the first Init.
func (s *Simulation) Player() *object.Player {
	return s.player
}

// Entities returns the live entities in draw order. The slice is owned by
// the simulation and is only valid until the next Update.
func (s *Simulation) Entities() []object.Entity {
	return s.entities
}

// Particles returns the live particles. The slice is owned by the simulation.
func (s *Simulation) Particles() []*object.Particle {
	return s.particles
}

// BackgroundOffset returns the vertical scroll of the background in [0, field height).
func (s *Simulation) BackgroundOffset() float64 {
	return s.background
}

// Field returns the play area.
func (s *Simulation) Field() object.Field {
	return s.field
}

// SpawnInterval returns the seconds between enemy spawns on a level.
func SpawnInterval(level int) float64 {
	interval := config.SpawnIntervalBase - float64(level-1)*config.SpawnIntervalStep
	return max(config.SpawnIntervalFloor, interval)
}

// TimeBonus returns the points awarded for the seconds left on a level.
func TimeBonus(timeLeft float64) int {
	bonus := int(math.Floor(timeLeft * 10 * config.TimeBonusPerTenth))
	return max(0, bonus)
}

func (s *Simulation) releaseParticles(ps []*object.Particle) {
	for i, p := range ps {
		p.Release()
		ps[i] = nil
	}
}
