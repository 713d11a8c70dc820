package curve

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/crypto/cryptobyte"
)

// DefaultRegistrySize bounds the number of decoded curves kept in memory
const DefaultRegistrySize = 64

// Registry caches decoded curves by their wire encoding so that repeated
// key and curve parsing skips primality testing and base point
// precomputation
type Registry struct {
	cache *lru.Cache[string, *Curve]
}

var defaultRegistry = mustRegistry(DefaultRegistrySize)

func mustRegistry(size int) *Registry {
	r, err := NewRegistry(size)
	if err != nil {
		panic(err)
	}
	return r
}

// NewRegistry creates a registry holding at most size curves
func NewRegistry(size int) (*Registry, error) {
	cache, err := lru.New[string, *Curve](size)
	if err != nil {
		return nil, fmt.Errorf("curve registry: %w", err)
	}
	return &Registry{cache: cache}, nil
}

// Read consumes one encoded curve from s, returning the cached instance
// when the same encoding was decoded before
func (r *Registry) Read(s *cryptobyte.String) (*Curve, error) {
	f, raw, err := readCurveFields(s)
	if err != nil {
		return nil, err
	}

	key := string(raw)
	if c, ok := r.cache.Get(key); ok {
		return c, nil
	}

	c, err := f.build()
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, c)
	return c, nil
}

// Len returns the number of cached curves
func (r *Registry) Len() int {
	return r.cache.Len()
}

// Purge drops all cached curves
func (r *Registry) Purge() {
	r.cache.Purge()
}
