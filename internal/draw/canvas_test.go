package draw

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/tomz197/spacedefender/internal/render"
)

var (
	black = color.NRGBA{A: 0xff}
	red   = color.NRGBA{R: 0xff, A: 0xff}
	white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// newTestCanvas returns a 10x5 terminal canvas with one logical unit per sub-pixel.
func newTestCanvas() *Canvas {
	c := NewScaledCanvas(10, 5, 10, 10)
	c.Clear(black)
	return c
}

func TestFillRectPaintsPixels(t *testing.T) {
	c := newTestCanvas()
	c.FillRect(2, 3, 2, 2, red)

	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			want := black
			if x >= 2 && x <= 3 && y >= 3 && y <= 4 {
				want = red
			}
			if got := c.pixels[y*10+x]; got != want {
				t.Fatalf("pixel(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestFillRectSmallerThanPixel(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.Clear(black)
	c.FillRect(55, 55, 1, 1, red)

	if got := c.pixels[5*10+5]; got != red {
		t.Errorf("sub-pixel rect not painted, got %v", got)
	}
}

func TestTranslucentFillBlends(t *testing.T) {
	c := newTestCanvas()
	c.FillRect(0, 0, 1, 1, render.Fade(white, 0.5))

	got := c.pixels[0]
	if got.R < 120 || got.R > 135 || got.R != got.G || got.G != got.B {
		t.Errorf("blended pixel = %v, want mid grey", got)
	}
}

func TestFillCircle(t *testing.T) {
	c := newTestCanvas()
	c.FillCircle(5, 5, 3, red)

	if c.pixels[5*10+5] != red {
		t.Error("circle centre not filled")
	}
	if c.pixels[0] != black {
		t.Error("circle leaked into corner")
	}

	c.Clear(black)
	c.FillCircle(7.5, 2.5, 0.2, red)
	if c.pixels[2*10+7] != red {
		t.Error("tiny circle should paint its centre pixel")
	}
}

func TestFillPolygon(t *testing.T) {
	c := newTestCanvas()
	c.FillPolygon([]Point{{X: 5, Y: 1}, {X: 9, Y: 9}, {X: 1, Y: 9}}, red)

	if c.pixels[6*10+5] != red {
		t.Error("triangle interior not filled")
	}
	if c.pixels[1*10+0] != black {
		t.Error("triangle leaked outside its bounds")
	}
}

func TestRenderFirstFrameClearsAndDraws(t *testing.T) {
	c := newTestCanvas()
	c.FillRect(0, 0, 1, 1, red)

	var buf bytes.Buffer
	c.Render(&buf)
	out := buf.String()

	if !strings.HasPrefix(out, "\033[0m\033[H\033[2J") {
		t.Errorf("first frame should clear the screen, got %q", out)
	}
	if !strings.Contains(out, "\033[1;1H\033[38;2;255;0;0m\033[49m▀") {
		t.Errorf("missing upper half block for red pixel in %q", out)
	}
}

func TestRenderSendsOnlyChanges(t *testing.T) {
	c := newTestCanvas()
	c.FillRect(0, 0, 1, 2, red)

	var buf bytes.Buffer
	c.Render(&buf)

	buf.Reset()
	c.Clear(black)
	c.FillRect(0, 0, 1, 2, red)
	c.Render(&buf)
	if buf.Len() != 0 {
		t.Errorf("unchanged frame wrote %q", buf.String())
	}

	buf.Reset()
	c.Clear(black)
	c.Render(&buf)
	if got := buf.String(); !strings.Contains(got, "\033[1;1H") || !strings.Contains(got, " ") {
		t.Errorf("erased cell not blanked, got %q", got)
	}

	buf.Reset()
	c.ForceRedraw()
	c.Render(&buf)
	if !strings.Contains(buf.String(), "\033[2J") {
		t.Error("ForceRedraw should clear the screen")
	}
}

func TestRenderFullBlockAndOffset(t *testing.T) {
	c := newTestCanvas()
	c.SetOffset(2, 3)
	c.FillRect(0, 0, 1, 2, red)

	var buf bytes.Buffer
	c.Render(&buf)

	if !strings.Contains(buf.String(), "\033[4;3H\033[38;2;255;0;0m\033[49m█") {
		t.Errorf("expected full block at offset position, got %q", buf.String())
	}
}

func TestRenderTwoColourCell(t *testing.T) {
	c := newTestCanvas()
	c.FillRect(0, 0, 1, 1, red)
	c.FillRect(0, 1, 1, 1, white)

	var buf bytes.Buffer
	c.Render(&buf)

	if !strings.Contains(buf.String(), "\033[38;2;255;0;0m\033[48;2;255;255;255m▀") {
		t.Errorf("expected red over white half blocks, got %q", buf.String())
	}
}

func TestTextOverlaysPixels(t *testing.T) {
	c := newTestCanvas()
	c.FillRect(0, 0, 10, 10, red)
	c.Text(0, 0, "HI", 16, render.AlignLeft, white)
	c.Text(5, 4, "ABCD", 16, render.AlignCenter, white)
	c.Text(10, 8, "Z", 16, render.AlignRight, white)
	c.compose()

	checks := []struct {
		row, col int
		want     rune
	}{
		{0, 0, 'H'},
		{0, 1, 'I'},
		{0, 2, BlockFull},
		{2, 3, 'A'},
		{2, 6, 'D'},
		{4, 9, 'Z'},
	}
	for _, tc := range checks {
		if got := c.cells[tc.row*10+tc.col].ch; got != tc.want {
			t.Errorf("cell(%d,%d) = %q, want %q", tc.row, tc.col, got, tc.want)
		}
	}
}

func TestTextOutsideCanvasIsClipped(t *testing.T) {
	c := newTestCanvas()
	c.Text(9, 0, "LONG TEXT", 16, render.AlignLeft, white)
	c.Text(0, 40, "BELOW", 16, render.AlignLeft, white)
	c.compose()

	if got := c.cells[9].ch; got != 'L' {
		t.Errorf("cell(0,9) = %q, want 'L'", got)
	}
}

func TestClearDropsText(t *testing.T) {
	c := newTestCanvas()
	c.Text(0, 0, "X", 16, render.AlignLeft, white)
	c.Clear(black)
	c.compose()

	if c.cells[0].ch != 0 {
		t.Errorf("text survived Clear: %q", c.cells[0].ch)
	}
}

func TestNearBackgroundPixelsStayEmpty(t *testing.T) {
	c := newTestCanvas()
	c.FillRect(0, 0, 1, 2, color.NRGBA{R: 1, G: 1, B: 1, A: 0xff})
	c.compose()

	if c.cells[0].ch != 0 {
		t.Errorf("near-background pixel produced %q", c.cells[0].ch)
	}
}

type chunkRecorder struct {
	sizes []int
}

func (r *chunkRecorder) Write(p []byte) (int, error) {
	r.sizes = append(r.sizes, len(p))
	return len(p), nil
}

func TestRenderChunksOutput(t *testing.T) {
	c := NewScaledCanvas(120, 40, 120, 80)
	c.Clear(black)
	for x := 0; x < 120; x += 2 {
		c.FillRect(float64(x), 0, 1, 80, red)
		c.FillRect(float64(x+1), 0, 1, 80, white)
	}

	rec := &chunkRecorder{}
	c.Render(rec)
	if len(rec.sizes) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(rec.sizes))
	}
	for i, n := range rec.sizes {
		if n > maxChunkSize {
			t.Errorf("chunk %d is %d bytes, max %d", i, n, maxChunkSize)
		}
	}
}

func TestResizeRescales(t *testing.T) {
	c := newTestCanvas()
	c.Resize(20, 10)

	if c.TerminalWidth() != 20 || c.TerminalHeight() != 10 {
		t.Fatalf("terminal size = %dx%d", c.TerminalWidth(), c.TerminalHeight())
	}
	if col, row := c.LogicalToTerminal(5, 5); col != 11 || row != 6 {
		t.Errorf("LogicalToTerminal(5,5) = (%d,%d), want (11,6)", col, row)
	}
	if w, h := c.Size(); w != 10 || h != 10 {
		t.Errorf("logical size changed to %vx%v", w, h)
	}
}

func TestFitCanvas(t *testing.T) {
	tests := []struct {
		name               string
		termW, termH       int
		w, h, offCol, offR int
	}{
		{"wide terminal", 200, 50, 177, 50, 11, 0},
		{"tall terminal", 80, 60, 80, 22, 0, 19},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, oc, or := FitCanvas(tt.termW, tt.termH, 960, 540)
			if w != tt.w || h != tt.h || oc != tt.offCol || or != tt.offR {
				t.Errorf("FitCanvas = (%d,%d,%d,%d), want (%d,%d,%d,%d)",
					w, h, oc, or, tt.w, tt.h, tt.offCol, tt.offR)
			}
		})
	}
}

func TestRenderBorder(t *testing.T) {
	c := newTestCanvas()
	c.SetOffset(2, 2)

	var buf bytes.Buffer
	c.RenderBorder(&buf)
	out := buf.String()

	if !strings.Contains(out, "\033[2;2H┌──────────┐") {
		t.Errorf("missing top border in %q", out)
	}
	if strings.Count(out, "│") != 10 {
		t.Errorf("side bars = %d, want 10", strings.Count(out, "│"))
	}

	buf.Reset()
	c.SetOffset(0, 0)
	c.RenderBorder(&buf)
	if buf.Len() != 0 {
		t.Errorf("no room for a border, wrote %q", buf.String())
	}
}

func TestChunkWriterFlush(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out)
	cw.WriteString("a")
	cw.WriteAt(3, 2, "b")

	if out.Len() != 0 {
		t.Fatal("ChunkWriter wrote before Flush")
	}
	if err := cw.Flush(); err != nil {
		t.Fatal(err)
	}
	if got := out.String(); got != "a\033[2;3Hb" {
		t.Errorf("flushed %q", got)
	}
	if cw.Len() != 0 {
		t.Error("buffer not reset after Flush")
	}
}
