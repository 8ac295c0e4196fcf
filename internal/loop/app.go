// Package loop wires a Simulation into the menu, playing, paused and
// game-over screens, and runs the terminal frame loop.
package loop

import (
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tomz197/spacedefender/internal/asset"
	"github.com/tomz197/spacedefender/internal/audio"
	"github.com/tomz197/spacedefender/internal/fsm"
	"github.com/tomz197/spacedefender/internal/game"
	"github.com/tomz197/spacedefender/internal/input"
	"github.com/tomz197/spacedefender/internal/loop/config"
	"github.com/tomz197/spacedefender/internal/render"
)

// Screen names.
const (
	StateLoading  = "loading"
	StateMenu     = "menu"
	StatePlaying  = "playing"
	StatePaused   = "paused"
	StateGameOver = "gameover"
)

// AppOptions configures an App.
type AppOptions struct {
	Game game.Options // Game.Audio is wrapped so the player can mute it

	// Assets supplies sprites; nil draws everything procedurally.
	Assets render.Assets

	// Loader, when set, shows a loading screen until it is done.
	Loader *asset.Loader

	// Muted starts the game with sound off.
	Muted bool
}

// App is one player's game: a Simulation behind a screen state machine.
// It is driven by a single goroutine.
type App struct {
	sim      *game.Simulation
	renderer *render.Renderer
	audio    *audio.Muter
	loader   *asset.Loader
	machine  *fsm.Machine[render.Surface]
	log      *log.Logger

	in   input.Input
	prev input.Input
	quit bool
}

// NewApp creates an App showing the menu, or the loading screen while
// opts.Loader is busy.
func NewApp(opts AppOptions) *App {
	logger := opts.Game.Logger
	if logger == nil {
		logger = log.New(io.Discard)
		opts.Game.Logger = logger
	}

	var sink audio.Sink = audio.Nop{}
	if opts.Game.Audio != nil {
		sink = opts.Game.Audio
	}
	muter := audio.NewMuter(sink)
	muter.SetMuted(opts.Muted)
	opts.Game.Audio = muter

	if opts.Game.Rand == nil {
		opts.Game.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	sim := game.New(opts.Game)
	a := &App{
		sim:      sim,
		renderer: render.NewRenderer(opts.Assets, sim.Field(), opts.Game.Rand),
		audio:    muter,
		loader:   opts.Loader,
		machine:  fsm.NewMachine[render.Surface](),
		log:      logger,
	}

	a.machine.Add(StateLoading, fsm.State[render.Surface]{
		Update: a.updateLoading,
		Render: func(s render.Surface) {
			a.renderer.DrawLoading(s, a.loader.Progress())
		},
	})
	a.machine.Add(StateMenu, fsm.State[render.Surface]{
		Update: a.updateMenu,
		Render: func(s render.Surface) {
			a.renderer.DrawMenu(s, a.sim.State().HighScore, a.machine.TimeInState())
		},
	})
	a.machine.Add(StatePlaying, fsm.State[render.Surface]{
		Update: a.updatePlaying,
		Render: func(s render.Surface) {
			a.renderer.DrawScene(s, a.sim)
		},
	})
	a.machine.Add(StatePaused, fsm.State[render.Surface]{
		Update: a.updatePaused,
		Render: func(s render.Surface) {
			a.renderer.DrawPaused(s, a.sim)
		},
	})
	a.machine.Add(StateGameOver, fsm.State[render.Surface]{
		OnEnter: func() {
			st := a.sim.State()
			a.log.Info("Run ended", "score", st.Score, "level", st.Level, "record", st.HighScore)
		},
		Update: a.updateGameOver,
		Render: func(s render.Surface) {
			a.renderer.DrawScene(s, a.sim)
		},
	})

	if a.loader != nil && !a.loader.Done() {
		a.machine.Set(StateLoading)
	} else {
		a.machine.Set(StateMenu)
	}
	return a
}

// FrameDelta converts the wall time between two frames into the step fed
// to the simulation. Stalls longer than config.MaxFrameDelta (a hidden tab,
// a suspended terminal) count as one nominal frame.
func FrameDelta(elapsed time.Duration) time.Duration {
	if elapsed > config.MaxFrameDelta || elapsed < 0 {
		return config.FallbackFrameDelta
	}
	return elapsed
}

// Frame applies one frame of input and advances the active screen by dt.
func (a *App) Frame(dt time.Duration, in input.Input) {
	a.prev, a.in = a.in, in

	if in.Quit {
		a.quit = true
	}
	if a.pressed(func(i input.Input) bool { return i.Mute }) {
		muted := a.audio.ToggleMute()
		a.log.Debug("Toggled mute", "muted", muted)
	}

	a.sim.Poll()

	screen := a.machine.Current()
	a.machine.Update(dt)
	if a.machine.Current() != screen {
		a.log.Debug("Screen changed", "from", a.machine.Previous(), "to", a.machine.Current())
	}
}

// Draw renders the active screen.
func (a *App) Draw(s render.Surface) {
	a.machine.Render(s)
}

// Screen returns the active screen name.
func (a *App) Screen() string {
	return a.machine.Current()
}

// Quit reports whether the player asked to leave.
func (a *App) Quit() bool {
	return a.quit
}

// Muted reports whether audio is muted.
func (a *App) Muted() bool {
	return a.audio.Muted()
}

// Simulation exposes the running game.
func (a *App) Simulation() *game.Simulation {
	return a.sim
}

// pressed reports a key that is down this frame but was not on the last one.
func (a *App) pressed(key func(input.Input) bool) bool {
	return key(a.in) && !key(a.prev)
}

func (a *App) confirmPressed() bool {
	return a.pressed(func(i input.Input) bool { return i.Enter }) ||
		a.pressed(func(i input.Input) bool { return i.Fire })
}

func (a *App) escapePressed() bool {
	return a.pressed(func(i input.Input) bool { return i.Escape })
}

func (a *App) pausePressed() bool {
	return a.pressed(func(i input.Input) bool { return i.Pause })
}

func (a *App) startRun() {
	a.sim.Init()
	a.log.Info("Run started", "record", a.sim.State().HighScore)
	a.machine.Set(StatePlaying)
}

func (a *App) updateLoading(time.Duration) {
	if a.loader.Done() {
		a.machine.Set(StateMenu)
	}
}

func (a *App) updateMenu(time.Duration) {
	if a.confirmPressed() {
		a.startRun()
	}
}

func (a *App) updatePlaying(dt time.Duration) {
	if a.pausePressed() {
		a.machine.Set(StatePaused)
		return
	}

	a.sim.HandleInput(game.Input{
		Left:  a.in.Left,
		Right: a.in.Right,
		Fire:  a.in.Fire,
	})
	a.sim.Update(dt.Seconds())

	if a.sim.State().GameOver {
		a.machine.Set(StateGameOver)
	}
}

func (a *App) updatePaused(time.Duration) {
	switch {
	case a.pausePressed():
		a.machine.Set(StatePlaying)
	case a.escapePressed():
		a.audio.StopMusic()
		a.machine.Set(StateMenu)
	}
}

func (a *App) updateGameOver(time.Duration) {
	switch {
	case a.confirmPressed():
		a.audio.StopMusic()
		a.startRun()
	case a.escapePressed():
		a.audio.StopMusic()
		a.machine.Set(StateMenu)
	}
}
