package main

import (
	_ "embed"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tomz197/spacedefender/internal/config"
	"github.com/tomz197/spacedefender/internal/store"
	"github.com/tomz197/spacedefender/internal/web"
)

const (
	defaultHost      = "0.0.0.0"
	defaultPort      = "8080"
	defaultHighScore = "highscore.msgpack"
	defaultAssets    = "assets"
)

//go:embed index.html
var htmlPage string

func main() {
	if err := config.Load(); err != nil {
		log.Fatal("Failed to read .env", "err", err)
	}

	host := config.GetEnv("WEB_HOST", defaultHost)
	port := config.GetEnv("WEB_PORT", defaultPort)
	sshHost := config.GetEnv("SSH_DISPLAY_HOST", "your-server.com")
	sshPort := config.GetEnv("SSH_PORT", "2222")
	assetDir := config.GetEnv("SPACEDEFENDER_ASSETS", defaultAssets)
	scorePath := config.GetEnv("SPACEDEFENDER_HIGHSCORE", defaultHighScore)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "web",
	})
	if config.GetEnvBool("SPACEDEFENDER_DEBUG", false) {
		logger.SetLevel(log.DebugLevel)
	}

	page := strings.NewReplacer("{{.SSHHost}}", sshHost, "{{.SSHPort}}", sshPort).Replace(htmlPage)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})
	mux.Handle("/ws", web.NewHandler(web.Options{
		Store:  store.NewFile(scorePath),
		Logger: logger,
	}))
	if info, err := os.Stat(assetDir); err == nil && info.IsDir() {
		mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(filepath.Clean(assetDir)))))
	} else {
		logger.Warn("Asset directory missing, drawing procedurally", "dir", assetDir)
	}

	addr := net.JoinHostPort(host, port)
	logger.Info("Starting web server", "addr", "http://"+addr, "highscore", scorePath)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server error", "err", err)
	}
}
