package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/tomz197/spacedefender/internal/clock"
	"github.com/tomz197/spacedefender/internal/game"
	"github.com/tomz197/spacedefender/internal/input"
	"github.com/tomz197/spacedefender/internal/loop"
	"github.com/tomz197/spacedefender/internal/loop/config"
)

const (
	DefaultPingInterval = 25 * time.Second
	DefaultReadTimeout  = 60 * time.Second
	writeTimeout        = 10 * time.Second
	maxMessageSize      = 1 << 16
)

// Message types.
const (
	MessageTypeFrame  = "frame"
	MessageTypeInput  = "input"
	MessageTypeAssets = "assets"
)

// Keys is the key state a page reports. Keys stay down until released.
type Keys struct {
	Left   bool `json:"left"`
	Right  bool `json:"right"`
	Fire   bool `json:"fire"`
	Pause  bool `json:"pause"`
	Mute   bool `json:"mute"`
	Enter  bool `json:"enter"`
	Escape bool `json:"escape"`
}

// ClientMessage is sent by the page.
type ClientMessage struct {
	Type   string   `json:"type"`
	Keys   Keys     `json:"keys"`
	Assets []string `json:"assets,omitempty"`
}

// FrameMessage is sent to the page once per frame.
type FrameMessage struct {
	Type   string       `json:"type"`
	Cmds   []command    `json:"cmds"`
	Sounds []soundEvent `json:"sounds,omitempty"`
	Music  []musicEvent `json:"music,omitempty"`
	Muted  bool         `json:"muted"`
}

// Options configures the websocket handler.
type Options struct {
	Store  game.HighScoreStore
	Logger *log.Logger
	Clock  clock.Clock

	FrameInterval time.Duration // Defaults to the client target frame time
	PingInterval  time.Duration
	ReadTimeout   time.Duration
}

// Handler upgrades requests to websockets and runs one game per connection.
type Handler struct {
	upgrader websocket.Upgrader
	opts     Options
	log      *log.Logger
}

// NewHandler creates a handler.
func NewHandler(opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = config.ClientTargetFrameTime
	}
	if opts.PingInterval <= 0 {
		opts.PingInterval = DefaultPingInterval
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return &Handler{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		opts: opts,
		log:  opts.Logger,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	h.log.Info("Web session started", "remote", conn.RemoteAddr())
	s := newSession(conn, h.opts)
	if err := s.run(r.Context()); err != nil {
		h.log.Warn("Web session failed", "remote", conn.RemoteAddr(), "err", err)
	}
	h.log.Info("Web session ended", "remote", conn.RemoteAddr())
}

type session struct {
	conn    *websocket.Conn
	opts    Options
	app     *loop.App
	surface *Surface
	sink    *sink
	assets  *Assets

	mu   sync.Mutex
	keys Keys
}

func newSession(conn *websocket.Conn, opts Options) *session {
	s := &session{
		conn:   conn,
		opts:   opts,
		sink:   &sink{},
		assets: NewAssets(),
	}
	s.app = loop.NewApp(loop.AppOptions{
		Game: game.Options{
			Audio:  s.sink,
			Store:  opts.Store,
			Clock:  opts.Clock,
			Logger: opts.Logger,
		},
		Assets: s.assets,
	})
	field := s.app.Simulation().Field()
	s.surface = NewSurface(field.Width, field.Height)
	return s
}

func (s *session) run(ctx context.Context) error {
	readErr := make(chan error, 1)
	go func() { readErr <- s.readLoop() }()

	frames := time.NewTicker(s.opts.FrameInterval)
	defer frames.Stop()
	pings := time.NewTicker(s.opts.PingInterval)
	defer pings.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		case <-pings.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		case now := <-frames.C:
			dt := loop.FrameDelta(now.Sub(last))
			last = now

			s.app.Frame(dt, s.input())
			if err := s.sendFrame(); err != nil {
				return fmt.Errorf("write frame: %w", err)
			}
		}
	}
}

func (s *session) sendFrame() error {
	s.surface.Reset()
	s.app.Draw(s.surface)
	sounds, music := s.sink.drain()

	msg := FrameMessage{
		Type:   MessageTypeFrame,
		Cmds:   s.surface.Commands(),
		Sounds: sounds,
		Music:  music,
		Muted:  s.app.Muted(),
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(msg)
}

func (s *session) readLoop() error {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.opts.Logger.Debug("Dropped malformed message", "err", err)
			continue
		}

		switch msg.Type {
		case MessageTypeInput:
			s.mu.Lock()
			s.keys = msg.Keys
			s.mu.Unlock()
		case MessageTypeAssets:
			s.assets.Set(msg.Assets)
		}
	}
}

func (s *session) input() input.Input {
	s.mu.Lock()
	defer s.mu.Unlock()
	return input.Input{
		Left:   s.keys.Left,
		Right:  s.keys.Right,
		Fire:   s.keys.Fire,
		Pause:  s.keys.Pause,
		Mute:   s.keys.Mute,
		Enter:  s.keys.Enter,
		Escape: s.keys.Escape,
	}
}
