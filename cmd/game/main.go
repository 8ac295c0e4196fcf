package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/tomz197/spacedefender/internal/asset"
	"github.com/tomz197/spacedefender/internal/audio"
	"github.com/tomz197/spacedefender/internal/config"
	"github.com/tomz197/spacedefender/internal/game"
	"github.com/tomz197/spacedefender/internal/loop"
	"github.com/tomz197/spacedefender/internal/store"
	"golang.org/x/term"
)

const (
	defaultHighScore = "highscore.msgpack"
	defaultAssets    = "assets"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("read .env: %w", err)
	}

	// stdout is the game screen, so logs go to a file or nowhere
	logger := log.New(io.Discard)
	if path := config.GetEnv("SPACEDEFENDER_LOG", ""); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		defer f.Close()
		logger = log.NewWithOptions(f, log.Options{ReportTimestamp: true})
		if config.GetEnvBool("SPACEDEFENDER_DEBUG", false) {
			logger.SetLevel(log.DebugLevel)
		}
	}

	var sink audio.Sink = audio.Nop{}
	if config.GetEnvBool("SPACEDEFENDER_AUDIO", true) {
		clips := asset.NewLoader(asset.DecoderFunc(audio.DecodeWAV), logger)
		clips.LoadAll(asset.Sounds(config.GetEnv("SPACEDEFENDER_ASSETS", defaultAssets)))

		sp := audio.NewSpeaker(clips, logger)
		if err := sp.Init(); err != nil {
			logger.Warn("Audio unavailable, playing silently", "err", err)
		} else {
			defer sp.Close()
			sink = sp
		}
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	session := loop.NewSession(bufio.NewReader(os.Stdin), os.Stdout, loop.SessionOptions{
		App: loop.AppOptions{
			Game: game.Options{
				Audio:  sink,
				Store:  store.NewFile(config.GetEnv("SPACEDEFENDER_HIGHSCORE", defaultHighScore)),
				Logger: logger,
			},
			Muted: config.GetEnvBool("SPACEDEFENDER_MUTE", false),
		},
	})

	logger.Info("Game started")
	if err := session.Run(ctx); err != nil {
		return err
	}
	logger.Info("Game closed")
	return nil
}
