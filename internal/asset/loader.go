// Package asset loads sprites and sounds by key and reports progress.
package asset

import (
	"io"
	"path/filepath"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
)

// Decoder turns a file into a frontend-specific asset value.
type Decoder interface {
	Decode(path string) (any, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(path string) (any, error)

// Decode calls f(path).
func (f DecoderFunc) Decode(path string) (any, error) {
	return f(path)
}

// Entry is one asset to load.
type Entry struct {
	Key  string
	Path string
}

// Loader decodes assets and keeps the ones that loaded. Failed assets count
// as loaded so progress always reaches 1; lookups for them miss and the
// caller falls back.
type Loader struct {
	mu       sync.RWMutex
	decoder  Decoder
	log      *log.Logger
	assets   map[string]any
	loaded   int
	total    int
	progress []func(float64)
	complete []func()
}

// NewLoader creates a loader. logger may be nil.
func NewLoader(decoder Decoder, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Loader{
		decoder: decoder,
		log:     logger,
		assets:  make(map[string]any),
	}
}

// OnProgress registers a callback receiving the loaded fraction after each asset.
// Callbacks run on the goroutine that decoded the asset, which is the
// loader's own goroutine for entries queued with Start.
func (l *Loader) OnProgress(fn func(progress float64)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.progress = append(l.progress, fn)
}

// OnComplete registers a callback run each time the last queued asset
// finishes. It runs on the decoding goroutine, like OnProgress. A callback
// registered after loading has already finished is never called; check
// Done first.
func (l *Loader) OnComplete(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.complete = append(l.complete, fn)
}

// LoadAll queues and decodes every entry in order.
func (l *Loader) LoadAll(entries []Entry) {
	l.queue(len(entries))
	for _, e := range entries {
		l.load(e.Key, e.Path)
	}
}

// Start queues every entry and decodes them on a new goroutine, so Done
// and Progress account for them as soon as Start returns.
func (l *Loader) Start(entries []Entry) {
	l.queue(len(entries))
	go func() {
		for _, e := range entries {
			l.load(e.Key, e.Path)
		}
	}()
}

func (l *Loader) queue(n int) {
	l.mu.Lock()
	l.total += n
	l.mu.Unlock()
}

// Load decodes a single asset.
func (l *Loader) Load(key, path string) {
	l.queue(1)
	l.load(key, path)
}

func (l *Loader) load(key, path string) {
	v, err := l.decoder.Decode(path)

	l.mu.Lock()
	if err != nil {
		l.log.Warn("Failed to load asset", "key", key, "path", path, "err", err)
	} else {
		l.assets[key] = v
	}
	l.loaded++
	progress := l.progressLocked()
	done := l.loaded == l.total
	onProgress := slices.Clone(l.progress)
	var onComplete []func()
	if done {
		onComplete = slices.Clone(l.complete)
	}
	l.mu.Unlock()

	// Callbacks run unlocked so they may call back into the loader
	for _, fn := range onProgress {
		fn(progress)
	}
	for _, fn := range onComplete {
		fn()
	}
}

// Get returns a loaded asset.
func (l *Loader) Get(key string) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.assets[key]
	return v, ok
}

// Progress returns the fraction of queued assets that finished, 1 if none were queued.
func (l *Loader) Progress() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.progressLocked()
}

func (l *Loader) progressLocked() float64 {
	if l.total == 0 {
		return 1
	}
	return float64(l.loaded) / float64(l.total)
}

// Done reports whether every queued asset has finished.
func (l *Loader) Done() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded == l.total
}

// Sprites lists the sprite files expected under dir/images.
func Sprites(dir string) []Entry {
	images := filepath.Join(dir, "images")
	return []Entry{
		{Key: "player", Path: filepath.Join(images, "player.png")},
		{Key: "enemy-basic", Path: filepath.Join(images, "enemy-basic.png")},
		{Key: "enemy-strong", Path: filepath.Join(images, "enemy-strong.png")},
		{Key: "enemy-elite", Path: filepath.Join(images, "enemy-elite.png")},
		{Key: "bullet", Path: filepath.Join(images, "bullet.png")},
		{Key: "background", Path: filepath.Join(images, "background.jpg")},
	}
}

// Sounds lists the sound files expected under dir/audio.
func Sounds(dir string) []Entry {
	audio := filepath.Join(dir, "audio")
	return []Entry{
		{Key: "shoot", Path: filepath.Join(audio, "shoot.wav")},
		{Key: "explosion", Path: filepath.Join(audio, "explosion.wav")},
		{Key: "enemy-hit", Path: filepath.Join(audio, "enemy-hit.wav")},
		{Key: "level-complete", Path: filepath.Join(audio, "level-complete.wav")},
		{Key: "game-over", Path: filepath.Join(audio, "game-over.wav")},
		{Key: "background-music", Path: filepath.Join(audio, "background-music.wav")},
	}
}
