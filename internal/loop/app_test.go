package loop

import (
	"image/color"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/tomz197/spacedefender/internal/asset"
	"github.com/tomz197/spacedefender/internal/clock"
	"github.com/tomz197/spacedefender/internal/game"
	"github.com/tomz197/spacedefender/internal/input"
	"github.com/tomz197/spacedefender/internal/loop/config"
	"github.com/tomz197/spacedefender/internal/object"
	"github.com/tomz197/spacedefender/internal/render"
	"github.com/tomz197/spacedefender/internal/store"
)

const frame = 16 * time.Millisecond

type recordingAudio struct {
	sounds []string
	music  []string
	stops  int
}

func (a *recordingAudio) PlaySound(key string, volume float64) {
	a.sounds = append(a.sounds, key)
}

func (a *recordingAudio) PlayMusic(key string, volume float64, loop bool) {
	a.music = append(a.music, key)
}

func (a *recordingAudio) StopMusic() {
	a.stops++
}

func (a *recordingAudio) played(key string) int {
	n := 0
	for _, s := range a.sounds {
		if s == key {
			n++
		}
	}
	return n
}

// textSurface records text runs and ignores shapes.
type textSurface struct {
	texts []string
}

func (s *textSurface) Size() (float64, float64)                           { return 960, 540 }
func (s *textSurface) Clear(color.NRGBA)                                  {}
func (s *textSurface) FillRect(x, y, w, h float64, c color.NRGBA)         {}
func (s *textSurface) StrokeRect(x, y, w, h, lw float64, c color.NRGBA)   {}
func (s *textSurface) FillCircle(cx, cy, r float64, c color.NRGBA)        {}
func (s *textSurface) FillPolygon(points []render.Point, c color.NRGBA)   {}
func (s *textSurface) Image(img any, x, y, w, h, alpha float64)           {}
func (s *textSurface) Text(x, y float64, str string, size float64, align render.Align, c color.NRGBA) {
	s.texts = append(s.texts, str)
}

func (s *textSurface) contains(sub string) bool {
	for _, t := range s.texts {
		if strings.Contains(t, sub) {
			return true
		}
	}
	return false
}

type fixture struct {
	app   *App
	audio *recordingAudio
	clock *clock.Mock
	store *store.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		audio: &recordingAudio{},
		clock: clock.NewMock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		store: &store.Memory{},
	}
	f.app = NewApp(AppOptions{
		Game: game.Options{
			Audio: f.audio,
			Store: f.store,
			Clock: f.clock,
			Rand:  rand.New(rand.NewSource(7)),
		},
	})
	return f
}

func (f *fixture) step(in input.Input) {
	f.clock.Advance(frame)
	f.app.Frame(frame, in)
}

func (f *fixture) start(t *testing.T) {
	t.Helper()
	f.step(input.Input{Enter: true})
	f.step(input.Input{})
	if got := f.app.Screen(); got != StatePlaying {
		t.Fatalf("expected playing after start, got %s", got)
	}
}

func (f *fixture) playUntilGameOver(t *testing.T) {
	t.Helper()
	for i := 0; i < 200000 && f.app.Screen() != StateGameOver; i++ {
		f.step(input.Input{})
	}
	if f.app.Screen() != StateGameOver {
		t.Fatal("run never ended")
	}
}

func bullets(sim *game.Simulation) int {
	n := 0
	for _, e := range sim.Entities() {
		if _, ok := e.(*object.Bullet); ok {
			n++
		}
	}
	return n
}

func TestAppStartsAtMenu(t *testing.T) {
	f := newFixture(t)
	f.step(input.Input{})

	if got := f.app.Screen(); got != StateMenu {
		t.Errorf("expected menu, got %s", got)
	}
	if len(f.audio.music) != 0 {
		t.Errorf("expected no music on the menu, got %v", f.audio.music)
	}
}

func TestMenuStartsRun(t *testing.T) {
	tests := []struct {
		name string
		in   input.Input
	}{
		{"enter", input.Input{Enter: true}},
		{"fire", input.Input{Fire: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.step(tt.in)

			if got := f.app.Screen(); got != StatePlaying {
				t.Fatalf("expected playing, got %s", got)
			}
			st := f.app.Simulation().State()
			if st.Level != 1 || st.Lives != object.PlayerLives || st.Score != 0 {
				t.Errorf("unexpected run state %+v", st)
			}
			if len(f.audio.music) != 1 || f.audio.music[0] != config.MusicBackground {
				t.Errorf("expected background music, got %v", f.audio.music)
			}
		})
	}
}

func TestPauseIsEdgeTriggered(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.step(input.Input{Pause: true})
	if got := f.app.Screen(); got != StatePaused {
		t.Fatalf("expected paused, got %s", got)
	}

	// Still held: no toggle
	f.step(input.Input{Pause: true})
	if got := f.app.Screen(); got != StatePaused {
		t.Fatalf("held key toggled pause, got %s", got)
	}

	f.step(input.Input{})
	f.step(input.Input{Pause: true})
	if got := f.app.Screen(); got != StatePlaying {
		t.Errorf("expected playing after second press, got %s", got)
	}
}

func TestPausedFreezesSimulation(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.step(input.Input{Pause: true})

	sim := f.app.Simulation()
	x := sim.Player().X
	timeLeft := sim.State().TimeLeft

	for i := 0; i < 30; i++ {
		f.step(input.Input{Left: true, Fire: true})
	}

	if sim.Player().X != x {
		t.Errorf("player moved while paused: %v -> %v", x, sim.Player().X)
	}
	if sim.State().TimeLeft != timeLeft {
		t.Errorf("countdown ran while paused: %v -> %v", timeLeft, sim.State().TimeLeft)
	}
	if bullets(sim) != 0 {
		t.Error("fired while paused")
	}
}

func TestEscapeFromPauseReturnsToMenu(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.step(input.Input{Pause: true})
	f.step(input.Input{})
	f.step(input.Input{Escape: true})

	if got := f.app.Screen(); got != StateMenu {
		t.Errorf("expected menu, got %s", got)
	}
	if f.audio.stops != 1 {
		t.Errorf("expected music stopped once, got %d", f.audio.stops)
	}
}

func TestLevelAdvancesWhilePaused(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	// One long frame runs the countdown out
	f.app.Frame(time.Duration(config.LevelSeconds+1)*time.Second, input.Input{})
	sim := f.app.Simulation()
	if st := sim.State(); !st.LevelComplete || st.Level != 1 {
		t.Fatalf("expected level 1 complete, got level %d complete=%v", st.Level, st.LevelComplete)
	}

	f.step(input.Input{Pause: true})
	if got := f.app.Screen(); got != StatePaused {
		t.Fatalf("expected paused, got %s", got)
	}

	f.clock.Advance(config.LevelAdvanceDelay)
	f.step(input.Input{})

	if got := f.app.Screen(); got != StatePaused {
		t.Errorf("expected to stay paused, got %s", got)
	}
	st := sim.State()
	if st.Level != 2 || st.LevelComplete {
		t.Errorf("expected level 2 in progress, got level %d complete=%v", st.Level, st.LevelComplete)
	}
}

func TestPlayingMovesAndFires(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	sim := f.app.Simulation()
	x := sim.Player().X

	f.step(input.Input{Left: true, Fire: true})

	if sim.Player().X >= x {
		t.Errorf("expected player to move left from %v, got %v", x, sim.Player().X)
	}
	if bullets(sim) != 1 {
		t.Errorf("expected one bullet, got %d", bullets(sim))
	}
	if f.audio.played(config.SoundShoot) != 1 {
		t.Errorf("expected shoot sound, got %v", f.audio.sounds)
	}
}

func TestMuteToggle(t *testing.T) {
	f := newFixture(t)
	f.start(t)

	f.step(input.Input{Mute: true})
	if !f.app.Muted() {
		t.Fatal("expected muted")
	}
	if f.audio.stops != 1 {
		t.Errorf("expected music cut by mute, got %d stops", f.audio.stops)
	}

	f.step(input.Input{Mute: true, Fire: true})
	if !f.app.Muted() {
		t.Fatal("held mute key toggled again")
	}
	if bullets(f.app.Simulation()) != 1 {
		t.Fatal("expected a bullet while muted")
	}
	if f.audio.played(config.SoundShoot) != 0 {
		t.Error("sound played while muted")
	}

	f.step(input.Input{})
	f.step(input.Input{Mute: true})
	if f.app.Muted() {
		t.Fatal("expected unmuted")
	}
	if len(f.audio.music) != 2 {
		t.Errorf("expected music to resume on unmute, got %v", f.audio.music)
	}
}

func TestStartsMuted(t *testing.T) {
	rec := &recordingAudio{}
	app := NewApp(AppOptions{
		Game:  game.Options{Audio: rec, Rand: rand.New(rand.NewSource(7))},
		Muted: true,
	})
	if !app.Muted() {
		t.Fatal("expected muted app")
	}

	app.Frame(frame, input.Input{Enter: true})
	app.Frame(frame, input.Input{})
	if len(rec.music) != 0 || len(rec.sounds) != 0 {
		t.Errorf("expected silence, got music %v sounds %v", rec.music, rec.sounds)
	}

	app.Frame(frame, input.Input{Mute: true})
	if app.Muted() {
		t.Fatal("expected unmuted")
	}
	if len(rec.music) != 1 || rec.music[0] != config.MusicBackground {
		t.Errorf("expected background music on unmute, got %v", rec.music)
	}
}

func TestQuit(t *testing.T) {
	f := newFixture(t)
	f.step(input.Input{})
	if f.app.Quit() {
		t.Fatal("quit before asked")
	}
	f.step(input.Input{Quit: true})
	if !f.app.Quit() {
		t.Error("expected quit")
	}
}

func TestGameOverRestart(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.playUntilGameOver(t)

	st := f.app.Simulation().State()
	if !st.GameOver || st.Lives > 0 {
		t.Fatalf("unexpected final state %+v", st)
	}
	if f.audio.played(config.SoundGameOver) != 1 {
		t.Errorf("expected game-over sound once, got %d", f.audio.played(config.SoundGameOver))
	}

	stops := f.audio.stops
	f.step(input.Input{Enter: true})

	if got := f.app.Screen(); got != StatePlaying {
		t.Fatalf("expected playing after restart, got %s", got)
	}
	if f.audio.stops != stops+1 {
		t.Errorf("expected music stopped before restart")
	}
	st = f.app.Simulation().State()
	if st.GameOver || st.Score != 0 || st.Level != 1 || st.Lives != object.PlayerLives {
		t.Errorf("expected a fresh run, got %+v", st)
	}
}

func TestGameOverEscapeToMenu(t *testing.T) {
	f := newFixture(t)
	f.start(t)
	f.playUntilGameOver(t)

	f.step(input.Input{Escape: true})
	if got := f.app.Screen(); got != StateMenu {
		t.Errorf("expected menu, got %s", got)
	}
}

func TestDrawFollowsScreen(t *testing.T) {
	f := newFixture(t)

	s := &textSurface{}
	f.app.Draw(s)
	if !s.contains("SPACE DEFENDER") {
		t.Errorf("expected title on the menu, got %v", s.texts)
	}

	f.start(t)
	s = &textSurface{}
	f.app.Draw(s)
	if !s.contains("SCORE:") {
		t.Errorf("expected HUD while playing, got %v", s.texts)
	}

	f.step(input.Input{Pause: true})
	s = &textSurface{}
	f.app.Draw(s)
	if !s.contains("PAUSED") {
		t.Errorf("expected pause banner, got %v", s.texts)
	}
}

func TestLoadingScreenWaitsForAssets(t *testing.T) {
	release := make(chan struct{})
	loader := asset.NewLoader(asset.DecoderFunc(func(path string) (any, error) {
		<-release
		return path, nil
	}), nil)
	done := make(chan struct{})
	loader.OnComplete(func() { close(done) })
	loader.Start([]asset.Entry{{Key: render.SpritePlayer, Path: "player.png"}})

	a := NewApp(AppOptions{Assets: loader, Loader: loader})
	if got := a.Screen(); got != StateLoading {
		t.Fatalf("expected loading, got %s", got)
	}

	s := &textSurface{}
	a.Draw(s)
	if !s.contains("LOADING") {
		t.Errorf("expected loading screen, got %v", s.texts)
	}

	a.Frame(frame, input.Input{Enter: true})
	if got := a.Screen(); got != StateLoading {
		t.Fatalf("left loading early: %s", got)
	}

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loader did not finish")
	}

	a.Frame(frame, input.Input{})
	if got := a.Screen(); got != StateMenu {
		t.Errorf("expected menu after loading, got %s", got)
	}
}

func TestFrameDelta(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    time.Duration
	}{
		{16 * time.Millisecond, 16 * time.Millisecond},
		{config.MaxFrameDelta, config.MaxFrameDelta},
		{config.MaxFrameDelta + time.Millisecond, config.FallbackFrameDelta},
		{5 * time.Second, config.FallbackFrameDelta},
		{-time.Millisecond, config.FallbackFrameDelta},
	}
	for _, tt := range tests {
		if got := FrameDelta(tt.elapsed); got != tt.want {
			t.Errorf("FrameDelta(%v) = %v, want %v", tt.elapsed, got, tt.want)
		}
	}
}
