package desktop

import (
	"fmt"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tomz197/spacedefender/internal/asset"
	"github.com/tomz197/spacedefender/internal/input"
	"github.com/tomz197/spacedefender/internal/loop"
	"github.com/tomz197/spacedefender/internal/render"
)

// Options configures a desktop game.
type Options struct {
	App loop.AppOptions

	// ShowFPS prints the frame rate in the corner.
	ShowFPS bool
}

// Game adapts a loop.App to ebiten.Game.
type Game struct {
	app     *loop.App
	surface *Surface
	showFPS bool
}

var _ ebiten.Game = (*Game)(nil)

// NewGame creates a desktop game.
func NewGame(opts Options) (*Game, error) {
	app := loop.NewApp(opts.App)
	field := app.Simulation().Field()

	surface, err := NewSurface(field.Width, field.Height)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return &Game{
		app:     app,
		surface: surface,
		showFPS: opts.ShowFPS,
	}, nil
}

// ImageDecoder loads sprites as ebiten images.
var ImageDecoder = asset.DecoderFunc(func(path string) (any, error) {
	img, _, err := ebitenutil.NewImageFromFile(path)
	if err != nil {
		return nil, err
	}
	return img, nil
})

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) ||
		(inpututil.IsKeyJustPressed(ebiten.KeyEnter) && ebiten.IsKeyPressed(ebiten.KeyAlt)) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}

	dt := time.Second / time.Duration(ebiten.TPS())
	g.app.Frame(dt, readInput())
	if g.app.Quit() {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.surface.Target = screen
	g.app.Draw(g.surface)

	if g.app.Muted() {
		w, h := g.surface.Size()
		g.surface.Text(w-10, h-10, "MUTED", 14, render.AlignRight, render.ColorWarning)
	}
	if g.showFPS {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("FPS: %.0f  TPS: %.0f", ebiten.ActualFPS(), ebiten.ActualTPS()), 10, 520)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.surface.Size()
	return int(w), int(h)
}

func anyPressed(keys ...ebiten.Key) bool {
	for _, k := range keys {
		if ebiten.IsKeyPressed(k) {
			return true
		}
	}
	return false
}

// readInput reports held keys; the App detects presses itself.
func readInput() input.Input {
	return input.Input{
		Left:   anyPressed(ebiten.KeyArrowLeft, ebiten.KeyA),
		Right:  anyPressed(ebiten.KeyArrowRight, ebiten.KeyD),
		Fire:   anyPressed(ebiten.KeySpace, ebiten.KeyArrowUp, ebiten.KeyW),
		Pause:  anyPressed(ebiten.KeyP),
		Mute:   anyPressed(ebiten.KeyM),
		Enter:  anyPressed(ebiten.KeyEnter, ebiten.KeyNumpadEnter) && !ebiten.IsKeyPressed(ebiten.KeyAlt),
		Escape: anyPressed(ebiten.KeyEscape),
		Quit:   anyPressed(ebiten.KeyQ),
	}
}
