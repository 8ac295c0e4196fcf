// Package desktop runs the game in a window with ebiten.
package desktop

import (
	"bytes"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tomz197/spacedefender/internal/render"
	"golang.org/x/image/font/gofont/gobold"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Surface draws onto an ebiten image. Set Target before each frame.
type Surface struct {
	Target *ebiten.Image

	width, height float64
	fonts         *text.GoTextFaceSource
	faces         map[float64]*text.GoTextFace
	path          vector.Path
	vertices      []ebiten.Vertex
	indices       []uint16
}

var _ render.Surface = (*Surface)(nil)

// NewSurface creates a surface with the given logical size using the Go Bold font.
func NewSurface(width, height float64) (*Surface, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF))
	if err != nil {
		return nil, err
	}
	return &Surface{
		width:  width,
		height: height,
		fonts:  src,
		faces:  make(map[float64]*text.GoTextFace),
	}, nil
}

func (s *Surface) Size() (float64, float64) {
	return s.width, s.height
}

func (s *Surface) Clear(bg color.NRGBA) {
	s.Target.Fill(bg)
}

func (s *Surface) FillRect(x, y, w, h float64, c color.NRGBA) {
	vector.DrawFilledRect(s.Target, float32(x), float32(y), float32(w), float32(h), c, false)
}

func (s *Surface) StrokeRect(x, y, w, h, lineWidth float64, c color.NRGBA) {
	half := lineWidth / 2
	vector.StrokeRect(s.Target, float32(x+half), float32(y+half), float32(w-lineWidth), float32(h-lineWidth), float32(lineWidth), c, false)
}

func (s *Surface) FillCircle(cx, cy, r float64, c color.NRGBA) {
	vector.DrawFilledCircle(s.Target, float32(cx), float32(cy), float32(r), c, true)
}

func (s *Surface) FillPolygon(points []render.Point, c color.NRGBA) {
	if len(points) < 3 {
		return
	}
	s.path.Reset()
	s.path.MoveTo(float32(points[0].X), float32(points[0].Y))
	for _, p := range points[1:] {
		s.path.LineTo(float32(p.X), float32(p.Y))
	}
	s.path.Close()

	s.vertices, s.indices = s.path.AppendVerticesAndIndicesForFilling(s.vertices[:0], s.indices[:0])
	r, g, b, a := float32(c.R)/0xff, float32(c.G)/0xff, float32(c.B)/0xff, float32(c.A)/0xff
	for i := range s.vertices {
		s.vertices[i].SrcX = 1
		s.vertices[i].SrcY = 1
		s.vertices[i].ColorR = r
		s.vertices[i].ColorG = g
		s.vertices[i].ColorB = b
		s.vertices[i].ColorA = a
	}

	op := &ebiten.DrawTrianglesOptions{}
	op.FillRule = ebiten.FillRuleNonZero
	op.AntiAlias = true
	s.Target.DrawTriangles(s.vertices, s.indices, whiteSubImage, op)
}

// Text draws s with y as the baseline.
func (s *Surface) Text(x, y float64, str string, size float64, align render.Align, c color.NRGBA) {
	face := s.face(size)

	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y-face.Metrics().HAscent)
	op.ColorScale.ScaleWithColor(c)
	switch align {
	case render.AlignCenter:
		op.PrimaryAlign = text.AlignCenter
	case render.AlignRight:
		op.PrimaryAlign = text.AlignEnd
	}
	text.Draw(s.Target, str, face, op)
}

func (s *Surface) Image(img any, x, y, w, h, alpha float64) {
	src, ok := img.(*ebiten.Image)
	if !ok {
		return
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleAlpha(float32(alpha))
	op.Filter = ebiten.FilterLinear
	s.Target.DrawImage(src, op)
}

func (s *Surface) face(size float64) *text.GoTextFace {
	if f, ok := s.faces[size]; ok {
		return f
	}
	f := &text.GoTextFace{Source: s.fonts, Size: size}
	s.faces[size] = f
	return f
}
