package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/tomz197/spacedefender/internal/config"
	"github.com/tomz197/spacedefender/internal/draw"
	"github.com/tomz197/spacedefender/internal/game"
	"github.com/tomz197/spacedefender/internal/loop"
	loopconfig "github.com/tomz197/spacedefender/internal/loop/config"
	"github.com/tomz197/spacedefender/internal/store"
)

const (
	defaultHost        = "::"
	defaultPort        = "2222"
	defaultHostKeyPath = "/app/keys/host_key"
	defaultHighScore   = "/app/data/highscore.msgpack"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal("Failed to read .env", "err", err)
	}

	host := config.GetEnv("SSH_HOST", defaultHost)
	port := config.GetEnv("SSH_PORT", defaultPort)
	hostKeyPath := config.GetEnv("SSH_HOST_KEY", defaultHostKeyPath)
	scorePath := config.GetEnv("SPACEDEFENDER_HIGHSCORE", defaultHighScore)
	idleTimeout := config.GetEnvDuration("SSH_IDLE_TIMEOUT", loopconfig.IdleTimeout)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ssh",
	})
	if config.GetEnvBool("SPACEDEFENDER_DEBUG", false) {
		logger.SetLevel(log.DebugLevel)
	}
	logger.Info("SSH config", "host", host, "port", port, "hostKeyPath", hostKeyPath, "highscore", scorePath)

	// One record shared by every session
	scores := store.NewFile(scorePath)

	// Cancelled on shutdown so running games end cleanly
	games, stopGames := context.WithCancel(context.Background())
	defer stopGames()

	gh := &gameHandler{
		scores:      scores,
		logger:      logger,
		idleTimeout: idleTimeout,
		root:        games,
	}

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(host, port)),
		wish.WithMiddleware(
			gh.middleware,
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if hostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(hostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("Failed to create server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("Starting SSH server", "addr", net.JoinHostPort(host, port))
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("Server error", "err", err)
		}
	}()

	<-done
	logger.Info("Shutting down server...")

	stopGames()
	gh.wait(10 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error", "err", err)
	}
}

// gameHandler runs an independent game for every SSH session.
type gameHandler struct {
	scores      game.HighScoreStore
	logger      *log.Logger
	idleTimeout time.Duration
	root        context.Context
	active      sync.WaitGroup
}

func (h *gameHandler) middleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		h.active.Add(1)
		defer h.active.Done()

		h.logger.Info("New game session", "user", sess.User(), "term", pty.Term,
			"width", pty.Window.Width, "height", pty.Window.Height)

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		// Listen for window size changes in a goroutine
		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		ctx, cancel := context.WithCancel(sess.Context())
		defer cancel()
		stop := context.AfterFunc(h.root, cancel)
		defer stop()

		session := loop.NewSession(bufio.NewReader(sess), sess, loop.SessionOptions{
			App: loop.AppOptions{
				Game: game.Options{
					Store:  h.scores,
					Logger: h.logger.With("user", sess.User()),
				},
			},
			TermSizeFunc: sizeTracker.getSize,
			IdleTimeout:  h.idleTimeout,
		})

		err := session.Run(ctx)
		switch {
		case errors.Is(err, loop.ErrIdle):
			fmt.Fprintln(sess, "Disconnected after inactivity. Thanks for playing!")
		case err != nil:
			h.logger.Error("Game error", "user", sess.User(), "err", err)
		case h.root.Err() != nil:
			fmt.Fprintln(sess, "Server is shutting down. Thanks for playing!")
		}

		h.logger.Info("Session ended", "user", sess.User())
		next(sess)
	}
}

// wait blocks until every session has ended or the timeout passes.
func (h *gameHandler) wait(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		h.active.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		h.logger.Warn("Sessions still running after shutdown timeout")
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
