// Package render draws a running game onto an abstract Surface.
//
// Surfaces work in field coordinates (960x540 by default) and scale to their
// own output: terminal half-blocks, a browser canvas or a desktop window.
package render

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Point is a position in field coordinates.
type Point struct {
	X, Y float64
}

// Align is the horizontal anchor of a text run.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Surface is a 2D drawing target with a fixed logical resolution.
// Colours are non-premultiplied; A carries the draw opacity.
type Surface interface {
	Size() (width, height float64)
	Clear(bg color.NRGBA)
	FillRect(x, y, w, h float64, c color.NRGBA)
	StrokeRect(x, y, w, h, lineWidth float64, c color.NRGBA)
	FillCircle(cx, cy, r float64, c color.NRGBA)
	FillPolygon(points []Point, c color.NRGBA)
	Text(x, y float64, s string, size float64, align Align, c color.NRGBA)
	// Image draws an asset returned by Assets.Get. Surfaces ignore values
	// they cannot draw.
	Image(img any, x, y, w, h, alpha float64)
}

// Assets looks up decoded sprites by key. A missing or unready sprite
// makes the renderer fall back to procedural shapes.
type Assets interface {
	Get(key string) (any, bool)
}

// Sprite keys.
const (
	SpritePlayer      = "player"
	SpriteEnemyBasic  = "enemy-basic"
	SpriteEnemyStrong = "enemy-strong"
	SpriteEnemyElite  = "enemy-elite"
	SpriteBullet      = "bullet"
	SpriteBackground  = "background"
)

// Fade returns c with its opacity scaled by alpha in [0, 1].
func Fade(c color.NRGBA, alpha float64) color.NRGBA {
	alpha = max(0, min(1, alpha))
	c.A = uint8(float64(c.A)*alpha + 0.5)
	return c
}

// Blend mixes two opaque colours; t=0 gives a, t=1 gives b.
func Blend(a, b color.NRGBA, t float64) color.NRGBA {
	ca, _ := colorful.MakeColor(a)
	cb, _ := colorful.MakeColor(b)
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: bl, A: 0xff}
}

func rgb(hex uint32) color.NRGBA {
	return color.NRGBA{R: uint8(hex >> 16), G: uint8(hex >> 8), B: uint8(hex), A: 0xff}
}

// Palette.
var (
	ColorSpace      = rgb(0x0a0a1a)
	ColorWhite      = rgb(0xffffff)
	ColorAccent     = rgb(0x44bbdd)
	ColorHull       = rgb(0x22aa99)
	ColorThruster   = rgb(0xff6b35)
	ColorBarTrack   = rgb(0x333333)
	ColorWarning    = rgb(0xffa500)
	ColorDanger     = rgb(0xff4444)
	ColorHealth     = rgb(0x44ff44)
	ColorEliteBar   = rgb(0xff44ff)
	ColorBulletTip  = rgb(0xffff00)
	ColorBulletMid  = rgb(0xffa500)
	ColorBulletTail = rgb(0xff4444)
	ColorShade      = color.NRGBA{A: 0xcc}
	ColorPanel      = color.NRGBA{A: 0xb3}
)
