package render

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/tomz197/spacedefender/internal/game"
	"github.com/tomz197/spacedefender/internal/loop/config"
)

const (
	hudText   = 14
	smallText = 12
	bodyText  = 24
	titleText = 36
	bigText   = 48
)

func (r *Renderer) drawHUD(s Surface, st game.RunState) {
	s.FillRect(10, 10, 200, 100, ColorPanel)
	s.StrokeRect(10, 10, 200, 100, 2, ColorAccent)

	s.Text(20, 30, fmt.Sprintf("LEVEL: %d", st.Level), hudText, AlignLeft, ColorWhite)
	s.Text(20, 50, fmt.Sprintf("SCORE: %d", st.Score), hudText, AlignLeft, ColorWhite)
	s.Text(20, 70, fmt.Sprintf("RECORD: %d", st.HighScore), hudText, AlignLeft, ColorWhite)
	s.Text(20, 90, fmt.Sprintf("LIVES: %d", st.Lives), hudText, AlignLeft, ColorWhite)

	const barW, barH = 200.0, 8.0
	x := r.field.Width - barW - 10
	y := 20.0
	progress := max(0, min(1, st.TimeLeft/config.LevelSeconds))

	s.FillRect(x, y, barW, barH, ColorBarTrack)
	s.FillRect(x, y, barW*progress, barH, TimeBarColor(progress))
	s.Text(x, y-5, fmt.Sprintf("TIME: %ds", int(math.Ceil(st.TimeLeft))), smallText, AlignLeft, ColorWhite)
}

// TimeBarColor returns the countdown bar colour for the fraction of time left.
func TimeBarColor(progress float64) color.NRGBA {
	switch {
	case progress > 0.5:
		return ColorAccent
	case progress > 0.2:
		return ColorWarning
	default:
		return ColorDanger
	}
}

func (r *Renderer) shade(s Surface) {
	s.FillRect(0, 0, r.field.Width, r.field.Height, ColorShade)
}

func (r *Renderer) drawLevelComplete(s Surface, st game.RunState) {
	cx, cy := r.field.Center()
	r.shade(s)
	s.Text(cx, cy-50, fmt.Sprintf("LEVEL %d COMPLETE!", st.Level), titleText, AlignCenter, ColorAccent)

	next := int(math.Ceil(st.NextLevelIn.Seconds()))
	s.Text(cx, cy+20, fmt.Sprintf("Next level in %d...", next), bodyText, AlignCenter, ColorWhite)
}

func (r *Renderer) drawGameOver(s Surface, st game.RunState) {
	cx, cy := r.field.Center()
	r.shade(s)
	s.Text(cx, cy-50, "GAME OVER", bigText, AlignCenter, ColorDanger)
	s.Text(cx, cy, fmt.Sprintf("Final score: %d", st.Score), bodyText, AlignCenter, ColorWhite)
	s.Text(cx, cy+40, fmt.Sprintf("Record: %d", st.HighScore), bodyText, AlignCenter, ColorWhite)
	s.Text(cx, cy+90, "ENTER play again   ESC menu", hudText, AlignCenter, ColorAccent)
}

// DrawMenu draws the title screen. elapsed drives the prompt blink and the
// star scroll.
func (r *Renderer) DrawMenu(s Surface, highScore int, elapsed time.Duration) {
	cx, cy := r.field.Center()
	offset := math.Mod(elapsed.Seconds()*config.BackgroundScrollSpeed, r.field.Height)
	r.drawBackground(s, offset)

	s.Text(cx, cy-80, "SPACE DEFENDER", bigText, AlignCenter, ColorAccent)
	s.Text(cx, cy-20, fmt.Sprintf("Record: %d", highScore), bodyText, AlignCenter, ColorWhite)

	if int(elapsed.Seconds()*2)%2 == 0 {
		s.Text(cx, cy+40, "Press ENTER or SPACE to start", bodyText, AlignCenter, ColorWhite)
	}
	s.Text(cx, cy+100, "A/D or arrows move   SPACE fire   P pause   M mute   Q quit", hudText, AlignCenter, ColorAccent)
}

// DrawPaused draws the frozen scene under a pause banner.
func (r *Renderer) DrawPaused(s Surface, sc Scene) {
	cx, cy := r.field.Center()
	r.DrawScene(s, sc)
	r.shade(s)
	s.Text(cx, cy-20, "PAUSED", bigText, AlignCenter, ColorAccent)
	s.Text(cx, cy+40, "P resume   ESC menu", bodyText, AlignCenter, ColorWhite)
}

// DrawLoading draws the asset loading progress bar.
func (r *Renderer) DrawLoading(s Surface, progress float64) {
	cx, cy := r.field.Center()
	progress = max(0, min(1, progress))

	s.Clear(ColorSpace)
	s.Text(cx, cy-30, "LOADING", titleText, AlignCenter, ColorAccent)
	s.FillRect(cx-150, cy, 300, 10, ColorBarTrack)
	s.FillRect(cx-150, cy, 300*progress, 10, ColorAccent)
	s.Text(cx, cy+40, fmt.Sprintf("%d%%", int(progress*100)), hudText, AlignCenter, ColorWhite)
}
