package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tomz197/spacedefender/internal/asset"
	"github.com/tomz197/spacedefender/internal/audio"
	"github.com/tomz197/spacedefender/internal/config"
	"github.com/tomz197/spacedefender/internal/desktop"
	"github.com/tomz197/spacedefender/internal/game"
	"github.com/tomz197/spacedefender/internal/loop"
	"github.com/tomz197/spacedefender/internal/store"
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

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "desktop",
	})
	if config.GetEnvBool("SPACEDEFENDER_DEBUG", false) {
		logger.SetLevel(log.DebugLevel)
	}

	assetDir := config.GetEnv("SPACEDEFENDER_ASSETS", defaultAssets)

	var sink audio.Sink = audio.Nop{}
	if config.GetEnvBool("SPACEDEFENDER_AUDIO", true) {
		clips := asset.NewLoader(asset.DecoderFunc(audio.DecodeWAV), logger)
		clips.LoadAll(asset.Sounds(assetDir))

		sp := audio.NewSpeaker(clips, logger)
		if err := sp.Init(); err != nil {
			logger.Warn("Audio unavailable, playing silently", "err", err)
		} else {
			defer sp.Close()
			sink = sp
		}
	}

	sprites := asset.NewLoader(desktop.ImageDecoder, logger)
	sprites.OnProgress(func(progress float64) {
		logger.Debug("Loading sprites", "progress", fmt.Sprintf("%.0f%%", progress*100))
	})
	sprites.OnComplete(func() {
		logger.Info("Sprites loaded")
	})
	sprites.Start(asset.Sprites(assetDir))

	g, err := desktop.NewGame(desktop.Options{
		App: loop.AppOptions{
			Game: game.Options{
				Audio:  sink,
				Store:  store.NewFile(config.GetEnv("SPACEDEFENDER_HIGHSCORE", defaultHighScore)),
				Logger: logger,
			},
			Assets: sprites,
			Loader: sprites,
			Muted:  config.GetEnvBool("SPACEDEFENDER_MUTE", false),
		},
		ShowFPS: config.GetEnvBool("SPACEDEFENDER_FPS", false),
	})
	if err != nil {
		return fmt.Errorf("create game: %w", err)
	}

	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Space Defender")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	// The game steps by 1/TPS, so ebiten.SyncWithFPS is not allowed
	if tps := config.GetEnvInt("SPACEDEFENDER_TPS", ebiten.DefaultTPS); tps > 0 {
		ebiten.SetTPS(tps)
	}

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("run game: %w", err)
	}
	return nil
}
