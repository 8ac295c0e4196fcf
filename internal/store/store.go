// Package store persists the high score.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Record is the on-disk high score.
type Record struct {
	HighScore int       `msgpack:"high_score"`
	UpdatedAt time.Time `msgpack:"updated_at"`
}

// File keeps the high score in a msgpack file. It is safe for concurrent
// use, so one File can back every session of a server.
type File struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewFile creates a store at path. The file is created on the first Save.
func NewFile(path string) *File {
	return &File{path: path, now: time.Now}
}

// Load returns the stored high score, 0 if the file does not exist yet.
func (f *File) Load() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.read()
	if err != nil {
		return 0, err
	}
	return rec.HighScore, nil
}

// Save writes score if it beats the stored one. Concurrent sessions can
// only raise the record.
func (f *File) Save(score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, err := f.read()
	if err != nil {
		return err
	}
	if score <= rec.HighScore {
		return nil
	}
	return f.write(Record{HighScore: score, UpdatedAt: f.now().UTC()})
}

func (f *File) read() (Record, error) {
	var rec Record
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return rec, nil
	}
	if err != nil {
		return rec, fmt.Errorf("read high score: %w", err)
	}
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("decode high score: %w", err)
	}
	return rec, nil
}

func (f *File) write(rec Record) error {
	data, err := msgpack.Marshal(&rec)
	if err != nil {
		return fmt.Errorf("encode high score: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".highscore-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write high score: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace high score: %w", err)
	}
	return nil
}

// Memory keeps the high score for the lifetime of the process.
type Memory struct {
	mu    sync.Mutex
	score int
}

func (m *Memory) Load() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score, nil
}

func (m *Memory) Save(score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.score = max(m.score, score)
	return nil
}
