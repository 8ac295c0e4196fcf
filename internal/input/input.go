// Package input turns a raw terminal byte stream into per-frame key state.
package input

import (
	"bufio"
	"time"
)

// keyHoldDuration is how long a key is considered "held" after its last press.
// Terminals only report presses, so a held key is seen as a stream of
// auto-repeats; the window bridges the gap between them.
const keyHoldDuration = 80 * time.Millisecond

// Input represents the current frame's input state.
type Input struct {
	Left   bool
	Right  bool
	Fire   bool
	Pause  bool
	Mute   bool
	Enter  bool
	Escape bool
	Quit   bool
}

// keyState tracks the last time each key was pressed.
type keyState struct {
	left   time.Time
	right  time.Time
	fire   time.Time
	pause  time.Time
	mute   time.Time
	enter  time.Time
	escape time.Time
	quit   time.Time
}

// Stream delivers input bytes via a channel and tracks key state for combinations.
type Stream struct {
	ch     chan byte
	state  keyState
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 128),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader has ended.
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadInput drains all available bytes from the stream (non-blocking).
// Handles escape sequences for arrow keys and accumulates all pressed keys.
// Uses key state persistence to allow detecting simultaneous key combinations.
func ReadInput(s *Stream) Input {
	return s.read(time.Now())
}

func (s *Stream) read(now time.Time) Input {
	var buf []byte

	// Drain all available bytes
drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	parse(&s.state, buf, now)

	// Keys are "pressed" if seen within hold duration
	return Input{
		Left:   now.Sub(s.state.left) < keyHoldDuration,
		Right:  now.Sub(s.state.right) < keyHoldDuration,
		Fire:   now.Sub(s.state.fire) < keyHoldDuration,
		Pause:  now.Sub(s.state.pause) < keyHoldDuration,
		Mute:   now.Sub(s.state.mute) < keyHoldDuration,
		Enter:  now.Sub(s.state.enter) < keyHoldDuration,
		Escape: now.Sub(s.state.escape) < keyHoldDuration,
		Quit:   now.Sub(s.state.quit) < keyHoldDuration,
	}
}

// parse updates the key state timestamps from a chunk of terminal bytes.
func parse(state *keyState, buf []byte, now time.Time) {
	for i := 0; i < len(buf); i++ {
		b := buf[i]

		// Check for escape sequences (arrow keys, etc.)
		if b == '\x1b' && i+2 < len(buf) && (buf[i+1] == '[' || buf[i+1] == 'O') {
			// CSI or SS3 sequence: ESC [ <code>
			switch buf[i+2] {
			case 'A': // Up arrow
				state.fire = now
				i += 2
				continue
			case 'C': // Right arrow
				state.right = now
				i += 2
				continue
			case 'D': // Left arrow
				state.left = now
				i += 2
				continue
			case 'B': // Down arrow, unused
				i += 2
				continue
			}
		}

		applyByteToState(state, b, now)
	}
}

// applyByteToState updates the key state timestamps based on the pressed byte.
func applyByteToState(state *keyState, b byte, now time.Time) {
	switch b {
	case 'q', 'Q', '\x03':
		state.quit = now
	case 'a', 'A':
		state.left = now
	case 'd', 'D':
		state.right = now
	case 'w', 'W', ' ':
		state.fire = now
	case 'p', 'P':
		state.pause = now
	case 'm', 'M':
		state.mute = now
	case '\n', '\r':
		state.enter = now
	case '\x1b':
		state.escape = now
	}
}
