package imagegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lox/skyglass/internal/forecast"
)

// Cache provides file-based caching for generated banners, one per gradient.
type Cache struct {
	dir    string
	maxAge time.Duration
}

// NewCache creates a new image cache in dir. Images are regenerated after
// maxAge for variety.
func NewCache(dir string, maxAge time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create image cache dir: %w", err)
	}
	return &Cache{
		dir:    dir,
		maxAge: maxAge,
	}, nil
}

func (c *Cache) path(g forecast.Gradient) string {
	return filepath.Join(c.dir, fmt.Sprintf("banner_%s.png", g))
}

// Get returns a cached banner if present and not stale.
func (c *Cache) Get(g forecast.Gradient) ([]byte, bool) {
	path := c.path(g)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}

	if c.maxAge > 0 && time.Since(info.ModTime()) > c.maxAge {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *Cache) Set(g forecast.Gradient, data []byte) error {
	return os.WriteFile(c.path(g), data, 0644)
}

// GetAny returns any cached banner, stale or not, as a fallback.
func (c *Cache) GetAny() ([]byte, bool) {
	for _, g := range c.List() {
		data, err := os.ReadFile(c.path(g))
		if err == nil {
			return data, true
		}
	}
	return nil, false
}

// List returns the gradients with a cached banner.
func (c *Cache) List() []forecast.Gradient {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil
	}

	var gradients []forecast.Gradient
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "banner_") || filepath.Ext(name) != ".png" {
			continue
		}
		g := strings.TrimSuffix(strings.TrimPrefix(name, "banner_"), ".png")
		gradients = append(gradients, forecast.Gradient(g))
	}
	return gradients
}
