package svgicon

import (
	"context"
	"path/filepath"

	"github.com/benoitkugler/svgtree/svgcache"
)

// Library shares the icons read from the same file.
// The icons of a library use one transaction lock.
type Library struct {
	cfg   Config
	cache *svgcache.Cache[*SvgIcon]
}

// NewLibrary returns an empty library reading icons with cfg.
func NewLibrary(cfg Config) *Library {
	return &Library{cfg: cfg, cache: svgcache.New[*SvgIcon](nil)}
}

func cacheKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Open returns the icon stored in the given file, reading it on the
// first request only. Concurrent calls for the same file read it once.
// Every successful Open must be balanced by a Close.
func (lib *Library) Open(ctx context.Context, path string) (*SvgIcon, error) {
	return lib.cache.Acquire(ctx, cacheKey(path), func(context.Context) (*SvgIcon, error) {
		icon, err := ReadIcon(path, lib.cfg)
		if err != nil {
			return nil, err
		}
		icon.lock = lib.cache.Lock()
		return icon, nil
	})
}

// Close releases one reference to the icon read from path.
// It returns false if the file is not opened.
func (lib *Library) Close(path string) bool { return lib.cache.Release(cacheKey(path)) }

// Len returns the number of opened files.
func (lib *Library) Len() int { return lib.cache.Len() }

// Stats returns the activity counters of the library.
func (lib *Library) Stats() svgcache.Stats { return lib.cache.Stats() }
