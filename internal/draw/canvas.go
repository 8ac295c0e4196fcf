// Package draw renders to ANSI terminals using half-block characters.
package draw

import (
	"image/color"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/tomz197/spacedefender/internal/render"
)

// Point represents a 2D coordinate.
type Point = render.Point

// Block characters for drawing.
const (
	BlockFull      = '█'
	BlockUpperHalf = '▀'
	BlockLowerHalf = '▄'
)

// emptyDistance is how close to the background a colour must be to be
// treated as background. Skipping those cells keeps frames small over SSH.
const emptyDistance = 0.04

// cell is one terminal character. The zero value is an untouched cell.
type cell struct {
	ch rune
	fg color.NRGBA
	bg color.NRGBA // A == 0 means the terminal default background
}

type textRun struct {
	col, row int
	s        string
	fg       color.NRGBA
}

// Canvas is a drawing buffer with 2x vertical resolution using half-block characters.
// Supports scaling from logical coordinates to actual terminal pixels and
// implements render.Surface.
type Canvas struct {
	termWidth      int           // Actual terminal columns
	termHeight     int           // Actual terminal rows
	subPixelHeight int           // termHeight * 2
	pixels         []color.NRGBA // Flat slice: [y * termWidth + x]
	bg             color.NRGBA
	texts          []textRun

	// Scaling from logical to pixel coordinates
	logicalWidth  float64 // Target/logical width
	logicalHeight float64 // Target/logical height
	scaleX        float64 // termWidth / logicalWidth
	scaleY        float64 // (termHeight*2) / logicalHeight

	// Offset for centering the render area when terminal is larger than max resolution.
	// These are 0-based terminal offsets (columns/rows to skip).
	offsetCol int
	offsetRow int

	// Last frame written to the terminal, for sending only changed cells
	cells       []cell
	prev        []cell
	forceRedraw bool

	// Reusable buffers to reduce allocations
	renderBuf       strings.Builder // Buffer for batching render output
	numBuf          [20]byte
	scaledBuf       []Point   // Reusable buffer for fillPolygon scaled points
	intersectionBuf []float64 // Reusable buffer for scanline intersections
}

var _ render.Surface = (*Canvas)(nil)

// NewScaledCanvas creates a canvas that scales from logical coordinates to terminal pixels.
// logicalWidth/Height define the coordinate space used by the game.
// termWidth/Height are the actual terminal dimensions.
func NewScaledCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) *Canvas {
	c := &Canvas{
		logicalWidth:  logicalWidth,
		logicalHeight: logicalHeight,
	}
	c.Resize(termWidth, termHeight)
	return c
}

// Resize updates the canvas for new terminal dimensions while keeping logical size.
func (c *Canvas) Resize(termWidth, termHeight int) {
	termWidth = max(1, termWidth)
	termHeight = max(1, termHeight)
	subPixelHeight := termHeight * 2

	// Reallocate if size changed
	if termWidth != c.termWidth || termHeight != c.termHeight {
		c.pixels = make([]color.NRGBA, subPixelHeight*termWidth)
		c.cells = make([]cell, termWidth*termHeight)
		c.prev = make([]cell, termWidth*termHeight)
		c.termWidth = termWidth
		c.termHeight = termHeight
		c.subPixelHeight = subPixelHeight
		c.forceRedraw = true
	}

	// Update scale factors
	c.scaleX = float64(termWidth) / c.logicalWidth
	c.scaleY = float64(subPixelHeight) / c.logicalHeight
}

// FitCanvas returns the largest canvas with the logical aspect ratio that fits
// in a terminal, and the offsets that centre it. Sub-pixels are treated as square.
func FitCanvas(termWidth, termHeight int, logicalWidth, logicalHeight float64) (width, height, offsetCol, offsetRow int) {
	aspect := logicalWidth / logicalHeight
	width = termWidth
	height = int(float64(width) / aspect / 2)
	if height > termHeight {
		height = termHeight
		width = int(float64(height*2) * aspect)
	}
	width = max(1, width)
	height = max(1, height)
	return width, height, (termWidth - width) / 2, (termHeight - height) / 2
}

// SetOffset sets the column and row offset for centering the canvas.
// Offsets are 0-based terminal positions: the canvas starts at (offsetCol+1, offsetRow+1).
func (c *Canvas) SetOffset(col, row int) {
	if col != c.offsetCol || row != c.offsetRow {
		c.forceRedraw = true
	}
	c.offsetCol = col
	c.offsetRow = row
}

// ForceRedraw makes the next Render clear the terminal and repaint every cell.
func (c *Canvas) ForceRedraw() {
	c.forceRedraw = true
}

// Size returns the logical size.
func (c *Canvas) Size() (float64, float64) {
	return c.logicalWidth, c.logicalHeight
}

// Clear fills the canvas with bg and drops queued text.
func (c *Canvas) Clear(bg color.NRGBA) {
	bg.A = 0xff
	c.bg = bg
	for i := range c.pixels {
		c.pixels[i] = bg
	}
	c.texts = c.texts[:0]
}

// setPixel paints a pixel at actual terminal coordinates (no scaling),
// blending translucent colours over what is already there.
func (c *Canvas) setPixel(x, y int, col color.NRGBA) {
	if x < 0 || x >= c.termWidth || y < 0 || y >= c.subPixelHeight || col.A == 0 {
		return
	}
	i := y*c.termWidth + x
	if col.A == 0xff {
		c.pixels[i] = col
		return
	}
	under := c.pixels[i]
	if under.A == 0 {
		under = c.bg
	}
	opaque := col
	opaque.A = 0xff
	c.pixels[i] = render.Blend(under, opaque, float64(col.A)/0xff)
}

// span converts a logical interval to an inclusive pixel range with at least one pixel.
func span(from, length, scale float64) (int, int) {
	start := int(math.Floor(from * scale))
	end := int(math.Ceil((from+length)*scale)) - 1
	return start, max(start, end)
}

// FillRect fills an axis-aligned rectangle.
func (c *Canvas) FillRect(x, y, w, h float64, col color.NRGBA) {
	if w <= 0 || h <= 0 {
		return
	}
	x0, x1 := span(x, w, c.scaleX)
	y0, y1 := span(y, h, c.scaleY)
	for py := max(0, y0); py <= min(y1, c.subPixelHeight-1); py++ {
		for px := max(0, x0); px <= min(x1, c.termWidth-1); px++ {
			c.setPixel(px, py, col)
		}
	}
}

// StrokeRect outlines a rectangle.
func (c *Canvas) StrokeRect(x, y, w, h, lineWidth float64, col color.NRGBA) {
	c.FillRect(x, y, w, lineWidth, col)
	c.FillRect(x, y+h-lineWidth, w, lineWidth, col)
	c.FillRect(x, y+lineWidth, lineWidth, h-2*lineWidth, col)
	c.FillRect(x+w-lineWidth, y+lineWidth, lineWidth, h-2*lineWidth, col)
}

// FillCircle fills a disc. Discs smaller than a pixel still paint their centre.
func (c *Canvas) FillCircle(cx, cy, r float64, col color.NRGBA) {
	rx, ry := r*c.scaleX, r*c.scaleY
	pcx, pcy := cx*c.scaleX, cy*c.scaleY
	if rx < 1 || ry < 1 {
		c.setPixel(int(math.Floor(pcx)), int(math.Floor(pcy)), col)
		return
	}
	for py := int(math.Floor(pcy - ry)); py <= int(math.Ceil(pcy+ry)); py++ {
		dy := (float64(py) + 0.5 - pcy) / ry
		for px := int(math.Floor(pcx - rx)); px <= int(math.Ceil(pcx+rx)); px++ {
			dx := (float64(px) + 0.5 - pcx) / rx
			if dx*dx+dy*dy <= 1 {
				c.setPixel(px, py, col)
			}
		}
	}
}

// FillPolygon fills a polygon and draws its outline.
func (c *Canvas) FillPolygon(points []Point, col color.NRGBA) {
	if len(points) < 3 {
		return
	}
	c.fillPolygon(points, col)

	// Outline keeps thin shapes visible at low resolution
	n := len(points)
	for i := 0; i < n; i++ {
		c.DrawLine(points[i], points[(i+1)%n], col)
	}
}

// Text queues a string drawn over the pixels in terminal cells.
// size is ignored; the terminal has one font size.
func (c *Canvas) Text(x, y float64, s string, size float64, align render.Align, col color.NRGBA) {
	if s == "" {
		return
	}
	colNum, row := c.LogicalToTerminal(x, y)
	// Baseline sits at the bottom of the text; lift it onto the row above
	if size >= 20 {
		row--
	}
	n := len([]rune(s))
	switch align {
	case render.AlignCenter:
		colNum -= n / 2
	case render.AlignRight:
		colNum -= n
	}
	if col.A != 0xff {
		opaque := col
		opaque.A = 0xff
		col = render.Blend(c.bg, opaque, float64(col.A)/0xff)
	}
	c.texts = append(c.texts, textRun{col: colNum, row: row, s: s, fg: col})
}

// Image is a no-op: terminals draw every sprite procedurally.
func (c *Canvas) Image(img any, x, y, w, h, alpha float64) {}

// DrawLine draws a line on the canvas using Bresenham's algorithm.
// Coordinates are in logical space and get scaled to pixels.
func (c *Canvas) DrawLine(p1, p2 Point, col color.NRGBA) {
	// Scale to pixel coordinates for drawing
	x1 := int(math.Floor(p1.X * c.scaleX))
	y1 := int(math.Floor(p1.Y * c.scaleY))
	x2 := int(math.Floor(p2.X * c.scaleX))
	y2 := int(math.Floor(p2.Y * c.scaleY))

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		c.setPixel(x1, y1, col)

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// fillPolygon fills a polygon using scanline algorithm.
// Works in pixel space for proper scaling.
func (c *Canvas) fillPolygon(points []Point, col color.NRGBA) {
	// Reuse or grow scaled points buffer
	if cap(c.scaledBuf) < len(points) {
		c.scaledBuf = make([]Point, len(points))
	}
	scaled := c.scaledBuf[:len(points)]

	// Scale points to pixel coordinates
	for i, p := range points {
		scaled[i] = Point{
			X: p.X * c.scaleX,
			Y: p.Y * c.scaleY,
		}
	}

	// Find bounding box in pixel space
	minY, maxY := scaled[0].Y, scaled[0].Y
	for _, p := range scaled {
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	yStart := max(0, int(math.Floor(minY)))
	yEnd := min(c.subPixelHeight-1, int(math.Ceil(maxY)))

	// Scanline fill in pixel space
	for y := yStart; y <= yEnd; y++ {
		scanY := float64(y) + 0.5

		// Reuse intersection buffer
		intersections := c.intersectionBuf[:0]

		// Find intersections with all edges
		n := len(scaled)
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]

			if (p1.Y <= scanY && p2.Y > scanY) || (p2.Y <= scanY && p1.Y > scanY) {
				t := (scanY - p1.Y) / (p2.Y - p1.Y)
				x := p1.X + t*(p2.X-p1.X)
				intersections = append(intersections, x)
			}
		}

		// Store back in case it grew
		c.intersectionBuf = intersections

		sort.Float64s(intersections)

		for i := 0; i+1 < len(intersections); i += 2 {
			xStart := int(math.Ceil(intersections[i] - 0.5))
			xEnd := int(math.Floor(intersections[i+1] - 0.5))
			for x := xStart; x <= xEnd; x++ {
				c.setPixel(x, y, col)
			}
		}
	}
}

// maxChunkSize is the maximum bytes to write at once for optimal network flow.
// 1500 bytes matches typical MTU size for smooth SSH/network transmission.
const maxChunkSize = 1400

// isBackground reports whether a pixel can be left to the terminal background.
func (c *Canvas) isBackground(p color.NRGBA) bool {
	if p.A == 0 || p == c.bg {
		return true
	}
	a, _ := colorful.MakeColor(p)
	b, ok := colorful.MakeColor(c.bg)
	if !ok {
		return false
	}
	return a.DistanceRgb(b) < emptyDistance
}

// compose turns pixels and queued text into terminal cells.
func (c *Canvas) compose() {
	for row := 0; row < c.termHeight; row++ {
		topOffset := row * 2 * c.termWidth
		bottomOffset := topOffset + c.termWidth

		for col := 0; col < c.termWidth; col++ {
			top := c.pixels[topOffset+col]
			bottom := c.pixels[bottomOffset+col]
			topSet := !c.isBackground(top)
			bottomSet := !c.isBackground(bottom)

			var cl cell
			switch {
			case topSet && bottomSet && top == bottom:
				cl = cell{ch: BlockFull, fg: top}
			case topSet && bottomSet:
				cl = cell{ch: BlockUpperHalf, fg: top, bg: bottom}
			case topSet:
				cl = cell{ch: BlockUpperHalf, fg: top}
			case bottomSet:
				cl = cell{ch: BlockLowerHalf, fg: bottom}
			}
			c.cells[row*c.termWidth+col] = cl
		}
	}

	for _, t := range c.texts {
		row := t.row - 1
		if row < 0 || row >= c.termHeight {
			continue
		}
		col := t.col - 1
		for _, r := range t.s {
			if col >= 0 && col < c.termWidth {
				c.cells[row*c.termWidth+col] = cell{ch: r, fg: t.fg}
			}
			col++
		}
	}
}

// Render outputs the cells that changed since the last frame.
func (c *Canvas) Render(w io.Writer) {
	c.compose()

	// Reset and pre-grow buffer for better performance
	c.renderBuf.Reset()
	c.renderBuf.Grow(c.termWidth * c.termHeight * 4)

	if c.forceRedraw {
		c.renderBuf.WriteString("\033[0m\033[H\033[2J")
		clear(c.prev)
		c.forceRedraw = false
	}

	var fg, bg color.NRGBA
	sgrValid := false
	cursorRow, cursorCol := -1, -1

	for row := 0; row < c.termHeight; row++ {
		for col := 0; col < c.termWidth; col++ {
			i := row*c.termWidth + col
			cur := c.cells[i]
			if cur == c.prev[i] {
				continue
			}
			c.prev[i] = cur

			if row != cursorRow || col != cursorCol {
				c.moveCursor(row+1+c.offsetRow, col+1+c.offsetCol)
			}

			ch := cur.ch
			if ch == 0 {
				ch = ' '
			}
			if !sgrValid || cur.fg != fg {
				c.writeColor(38, cur.fg)
				fg = cur.fg
			}
			if !sgrValid || cur.bg != bg {
				c.writeColor(48, cur.bg)
				bg = cur.bg
			}
			sgrValid = true

			c.renderBuf.WriteRune(ch)
			cursorRow, cursorCol = row, col+1
		}
	}
	if sgrValid {
		c.renderBuf.WriteString("\033[0m")
	}

	// Write output in chunks for optimal network flow
	data := c.renderBuf.String()
	for len(data) > 0 {
		chunk := data
		if len(chunk) > maxChunkSize {
			chunk = data[:maxChunkSize]
		}
		io.WriteString(w, chunk)
		data = data[len(chunk):]
	}
}

func (c *Canvas) moveCursor(row, col int) {
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(row), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col), 10))
	c.renderBuf.WriteByte('H')
}

// writeColor emits a 24-bit SGR colour. Transparent means the terminal default.
func (c *Canvas) writeColor(layer int, col color.NRGBA) {
	if col.A == 0 {
		if layer == 38 {
			c.renderBuf.WriteString("\033[39m")
		} else {
			c.renderBuf.WriteString("\033[49m")
		}
		return
	}
	c.renderBuf.WriteString("\033[")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(layer), 10))
	c.renderBuf.WriteString(";2;")
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col.R), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col.G), 10))
	c.renderBuf.WriteByte(';')
	c.renderBuf.Write(strconv.AppendInt(c.numBuf[:0], int64(col.B), 10))
	c.renderBuf.WriteByte('m')
}

// RenderBorder draws a box border around the canvas area when the terminal
// is larger than the canvas on either axis.
func (c *Canvas) RenderBorder(w io.Writer) {
	hasH := c.offsetCol >= 1 // Room for left/right vertical bars
	hasV := c.offsetRow >= 1 // Room for top/bottom horizontal bars

	// Border positions (1-based terminal coordinates)
	left := c.offsetCol
	right := c.offsetCol + c.termWidth + 1
	top := c.offsetRow
	bottom := c.offsetRow + c.termHeight + 1

	var buf strings.Builder
	buf.Grow((c.termWidth+2)*2 + c.termHeight*2*12) // Estimate buffer size

	if hasV {
		line := strings.Repeat("─", c.termWidth)
		if hasH {
			buf.WriteString("\033[" + strconv.Itoa(top) + ";" + strconv.Itoa(left) + "H┌" + line + "┐")
			buf.WriteString("\033[" + strconv.Itoa(bottom) + ";" + strconv.Itoa(left) + "H└" + line + "┘")
		} else {
			buf.WriteString("\033[" + strconv.Itoa(top) + ";" + strconv.Itoa(c.offsetCol+1) + "H" + line)
			buf.WriteString("\033[" + strconv.Itoa(bottom) + ";" + strconv.Itoa(c.offsetCol+1) + "H" + line)
		}
	}

	if hasH {
		// Side borders span the canvas rows
		for row := c.offsetRow + 1; row <= c.offsetRow+c.termHeight; row++ {
			buf.WriteString("\033[" + strconv.Itoa(row) + ";" + strconv.Itoa(left) + "H│")
			buf.WriteString("\033[" + strconv.Itoa(row) + ";" + strconv.Itoa(right) + "H│")
		}
	}

	io.WriteString(w, buf.String())
}

// TerminalWidth returns the actual terminal column count.
func (c *Canvas) TerminalWidth() int {
	return c.termWidth
}

// TerminalHeight returns the actual terminal row count.
func (c *Canvas) TerminalHeight() int {
	return c.termHeight
}

// LogicalToTerminal converts logical coordinates to 1-based canvas position (col, row).
// This is useful for placing text overlays at positions matching canvas-drawn objects.
func (c *Canvas) LogicalToTerminal(x, y float64) (col, row int) {
	px := int(math.Floor(x * c.scaleX))
	py := int(math.Floor(y * c.scaleY))
	return px + 1, py/2 + 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
