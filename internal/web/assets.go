package web

import (
	"sync"

	"github.com/tomz197/spacedefender/internal/render"
)

// Assets tracks the sprites a page reports as loaded. Lookups return the
// sprite key, which Surface.Image sends back for the page to draw.
type Assets struct {
	mu     sync.RWMutex
	loaded map[string]bool
}

var _ render.Assets = (*Assets)(nil)

// NewAssets creates an empty sprite set.
func NewAssets() *Assets {
	return &Assets{loaded: make(map[string]bool)}
}

// Set replaces the loaded sprite keys.
func (a *Assets) Set(keys []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.loaded)
	for _, k := range keys {
		a.loaded[k] = true
	}
}

func (a *Assets) Get(key string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.loaded[key] {
		return nil, false
	}
	return key, true
}
