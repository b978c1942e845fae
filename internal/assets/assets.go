// Package assets supplies map asset bytes from extracted game data
// folders. It implements the texture-lookup collaborator the terrain
// builder needs: a logical path in, raw file bytes out.
package assets

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/CrowSerainance/Ragnarok-Editor-sub001/internal/logger"
)

// Source loads files from one or more data roots. Roots are searched
// in reverse order so the last added takes priority, matching how the
// game layers patch archives over the base data.
type Source struct {
	mu    sync.RWMutex
	roots []string
	cache *Cache
}

// NewSource creates a Source over the given data root directories.
func NewSource(roots ...string) *Source {
	s := &Source{cache: NewCache()}
	s.roots = append(s.roots, roots...)
	return s
}

// AddRoot appends a data root with highest priority.
func (s *Source) AddRoot(root string) {
	s.mu.Lock()
	s.roots = append(s.roots, root)
	s.mu.Unlock()
}

// Load returns the bytes for a logical path, consulting the cache
// first. Logical paths use either slash style and are matched
// case-insensitively on the final path element.
func (s *Source) Load(path string) ([]byte, bool) {
	normalized := Normalize(path)
	if data, ok := s.cache.Get(normalized); ok {
		return data, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.roots) - 1; i >= 0; i-- {
		candidate := filepath.Join(s.roots[i], filepath.FromSlash(normalized))
		data, err := os.ReadFile(candidate)
		if err != nil {
			continue
		}
		logger.Debug("asset loaded",
			zap.String("path", normalized),
			zap.String("root", s.roots[i]),
			zap.Int("bytes", len(data)))
		s.cache.Set(normalized, data)
		return data, true
	}
	return nil, false
}

// Resolve adapts Load to the plain func collaborator shape the terrain
// builder takes.
func (s *Source) Resolve(path string) ([]byte, bool) {
	return s.Load(path)
}

// CacheStats returns the cache hit/miss counters.
func (s *Source) CacheStats() (hits, misses int) {
	return s.cache.Stats()
}

// Normalize converts backslash paths from map files to slash form and
// lowercases them for consistent cache keys.
func Normalize(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.ToLower(path)
}

// Cache is an in-memory byte cache keyed by normalized path.
type Cache struct {
	mu     sync.RWMutex
	data   map[string][]byte
	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{data: make(map[string][]byte)}
}

// Get retrieves an entry.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an entry.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Stats returns hit/miss counters.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
