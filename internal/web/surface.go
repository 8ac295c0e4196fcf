// Package web serves the game to browsers over a websocket. The server runs
// the game and streams each frame as a list of canvas draw commands; the
// page replays them and sends key state back.
package web

import (
	"fmt"
	"image/color"
	"math"

	"github.com/tomz197/spacedefender/internal/render"
)

// Command opcodes understood by the page.
const (
	opClear      = "c"
	opFillRect   = "r"
	opStrokeRect = "s"
	opCircle     = "o"
	opPolygon    = "p"
	opText       = "t"
	opImage      = "i"
)

// command is one draw call: an opcode followed by its arguments.
type command []any

// Surface records draw calls as commands for one frame.
type Surface struct {
	width, height float64
	cmds          []command
}

var _ render.Surface = (*Surface)(nil)

// NewSurface creates a surface with the given logical size.
func NewSurface(width, height float64) *Surface {
	return &Surface{width: width, height: height}
}

// Reset drops the recorded commands, keeping capacity.
func (s *Surface) Reset() {
	clear(s.cmds)
	s.cmds = s.cmds[:0]
}

// Commands returns the commands recorded since the last Reset.
func (s *Surface) Commands() []command {
	return s.cmds
}

func (s *Surface) Size() (float64, float64) {
	return s.width, s.height
}

func (s *Surface) Clear(bg color.NRGBA) {
	// Clear discards everything queued before it
	s.Reset()
	s.cmds = append(s.cmds, command{opClear, css(bg)})
}

func (s *Surface) FillRect(x, y, w, h float64, c color.NRGBA) {
	s.cmds = append(s.cmds, command{opFillRect, round(x), round(y), round(w), round(h), css(c)})
}

func (s *Surface) StrokeRect(x, y, w, h, lineWidth float64, c color.NRGBA) {
	s.cmds = append(s.cmds, command{opStrokeRect, round(x), round(y), round(w), round(h), round(lineWidth), css(c)})
}

func (s *Surface) FillCircle(cx, cy, r float64, c color.NRGBA) {
	s.cmds = append(s.cmds, command{opCircle, round(cx), round(cy), round(r), css(c)})
}

func (s *Surface) FillPolygon(points []render.Point, c color.NRGBA) {
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, round(p.X), round(p.Y))
	}
	s.cmds = append(s.cmds, command{opPolygon, flat, css(c)})
}

func (s *Surface) Text(x, y float64, str string, size float64, align render.Align, c color.NRGBA) {
	s.cmds = append(s.cmds, command{opText, round(x), round(y), str, size, alignName(align), css(c)})
}

// Image draws a sprite the page has loaded. img must be the sprite key
// handed out by Assets.
func (s *Surface) Image(img any, x, y, w, h, alpha float64) {
	key, ok := img.(string)
	if !ok {
		return
	}
	s.cmds = append(s.cmds, command{opImage, key, round(x), round(y), round(w), round(h), round(alpha)})
}

func alignName(a render.Align) string {
	switch a {
	case render.AlignCenter:
		return "center"
	case render.AlignRight:
		return "right"
	default:
		return "left"
	}
}

// css formats a colour as #rrggbbaa.
func css(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// round keeps one decimal; the page draws at field resolution.
func round(v float64) float64 {
	return math.Round(v*10) / 10
}
