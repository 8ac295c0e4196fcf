package loop

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/tomz197/spacedefender/internal/draw"
	"github.com/tomz197/spacedefender/internal/input"
	"github.com/tomz197/spacedefender/internal/loop/config"
	"github.com/tomz197/spacedefender/internal/render"
)

// ErrIdle is returned by Session.Run when the player stops pressing keys
// for longer than the idle timeout.
var ErrIdle = errors.New("session idle")

// SessionOptions configures a terminal session.
type SessionOptions struct {
	App          AppOptions
	TermSizeFunc draw.TermSizeFunc

	// IdleTimeout ends the session after this long without input. Zero disables it.
	IdleTimeout time.Duration
}

// Session runs one App in a terminal: it reads keys, steps the game at
// the target frame rate and redraws the changed cells.
type Session struct {
	app          *App
	canvas       *draw.Canvas
	out          *draw.ChunkWriter
	writer       io.Writer
	stream       *input.Stream
	termSizeFunc draw.TermSizeFunc
	idleTimeout  time.Duration
	lastInput    time.Time

	layout      [4]int // width, height, offsetCol, offsetRow
	borderDirty bool
}

// NewSession creates a session reading keys from r and drawing to w.
func NewSession(r *bufio.Reader, w io.Writer, opts SessionOptions) *Session {
	termSizeFunc := opts.TermSizeFunc
	if termSizeFunc == nil {
		termSizeFunc = draw.DefaultTermSizeFunc
	}

	app := NewApp(opts.App)
	field := app.Simulation().Field()

	return &Session{
		app:          app,
		canvas:       draw.NewScaledCanvas(config.ViewWidth, config.ViewHeight/2, field.Width, field.Height),
		out:          draw.NewChunkWriter(w),
		writer:       w,
		stream:       input.StartStream(r),
		termSizeFunc: termSizeFunc,
		idleTimeout:  opts.IdleTimeout,
	}
}

// App returns the game driven by the session.
func (s *Session) App() *App {
	return s.app
}

// Run starts the frame loop. It blocks until the player quits, the input
// ends, ctx is cancelled or the session goes idle (ErrIdle).
func (s *Session) Run(ctx context.Context) error {
	draw.EnterAltScreen(s.writer)
	draw.HideCursor(s.writer)
	defer func() {
		draw.ShowCursor(s.writer)
		draw.ExitAltScreen(s.writer)
	}()

	lastTime := time.Now()
	s.lastInput = lastTime

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frameStart := time.Now()
		dt := FrameDelta(frameStart.Sub(lastTime))
		lastTime = frameStart

		// ===== INPUT PHASE =====
		in := input.ReadInput(s.stream)
		if s.stream.Closed() {
			return nil
		}
		if in != (input.Input{}) {
			s.lastInput = frameStart
		}
		idleFor := frameStart.Sub(s.lastInput)
		if s.idleTimeout > 0 && idleFor >= s.idleTimeout {
			return ErrIdle
		}

		// ===== UPDATE PHASE =====
		s.updateScreen()
		s.app.Frame(dt, in)
		if s.app.Quit() {
			return nil
		}

		// ===== DRAW PHASE =====
		if err := s.drawFrame(idleFor); err != nil {
			return fmt.Errorf("draw frame: %w", err)
		}

		// ===== FRAME TIMING =====
		elapsed := time.Since(frameStart)
		if elapsed < config.ClientTargetFrameTime {
			time.Sleep(config.ClientTargetFrameTime - elapsed)
		}
	}
}

// updateScreen fits the canvas to the terminal, keeping the field's aspect ratio.
func (s *Session) updateScreen() {
	termWidth, termHeight, err := s.termSizeFunc()
	if err != nil {
		return
	}
	width, height := s.canvas.Size()
	w, h, offCol, offRow := draw.FitCanvas(termWidth, termHeight, width, height)

	layout := [4]int{w, h, offCol, offRow}
	if layout == s.layout {
		return
	}
	s.layout = layout
	s.canvas.Resize(w, h)
	s.canvas.SetOffset(offCol, offRow)
	s.canvas.ForceRedraw()
	s.borderDirty = true
}

func (s *Session) drawFrame(idleFor time.Duration) error {
	s.app.Draw(s.canvas)

	width, height := s.canvas.Size()
	if s.app.Muted() {
		s.canvas.Text(width-10, height-10, "MUTED", 14, render.AlignRight, render.ColorWarning)
	}
	if s.idleTimeout > 0 && s.idleTimeout-idleFor <= config.IdleWarnBefore {
		left := int(math.Ceil((s.idleTimeout - idleFor).Seconds()))
		msg := fmt.Sprintf("Idle: disconnecting in %ds, press any key", left)
		s.canvas.Text(width/2, height-10, msg, 14, render.AlignCenter, render.ColorDanger)
	}

	s.canvas.Render(s.out)
	if s.borderDirty {
		s.canvas.RenderBorder(s.out)
		s.borderDirty = false
	}
	return s.out.Flush()
}
