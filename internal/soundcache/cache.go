package soundcache

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/RenatoCabral2022/tonegrid/internal/metrics"
	"github.com/RenatoCabral2022/tonegrid/internal/synth"
	"github.com/RenatoCabral2022/tonegrid/internal/wave"
)

// Key identifies a rendered sound. Two events with the same frequencies in
// any order share a key.
type Key struct {
	Frequencies string
	Duration    float64
	Format      wave.Format
}

// KeyFor builds the cache key for rendering e in format f.
func KeyFor(e synth.NoteEvent, f wave.Format) Key {
	freqs := append([]float64(nil), e.Frequencies...)
	sort.Float64s(freqs)

	parts := make([]string, len(freqs))
	for i, v := range freqs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return Key{
		Frequencies: strings.Join(parts, ","),
		Duration:    e.Duration,
		Format:      f,
	}
}

// Cache holds encoded sounds up to a fixed number of entries. Once full it
// stops admitting new sounds; existing entries stay valid for the process
// lifetime since renders are deterministic.
type Cache struct {
	mu         sync.RWMutex
	entries    map[Key]*wave.EncodedWave
	maxEntries int
}

// New creates a cache holding at most maxEntries sounds. Zero disables caching.
func New(maxEntries int) *Cache {
	return &Cache{
		entries:    make(map[Key]*wave.EncodedWave),
		maxEntries: maxEntries,
	}
}

// Get returns the cached sound for k.
func (c *Cache) Get(k Key) (*wave.EncodedWave, bool) {
	c.mu.RLock()
	w, ok := c.entries[k]
	c.mu.RUnlock()

	if ok {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	} else {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}
	return w, ok
}

// Put stores w under k and reports whether it was admitted.
func (c *Cache) Put(k Key, w *wave.EncodedWave) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[k]; !exists && len(c.entries) >= c.maxEntries {
		return false
	}
	c.entries[k] = w
	metrics.CachedSounds.Set(float64(len(c.entries)))
	return true
}

// Len returns the number of cached sounds.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
