package similarity

import "sync"

// PairKey identifies an unordered pair of documents by their IDs.
// A is always the smaller ID, so (x, y) and (y, x) build the same key.
type PairKey struct {
	A, B string
}

// NewPairKey orders the two IDs.
func NewPairKey(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// Cache stores pair scores. The lock is held for a single map access only.
type Cache struct {
	mu     sync.RWMutex
	scores map[PairKey]float64
}

// NewCache creates an empty score cache.
func NewCache() *Cache {
	return &Cache{scores: make(map[PairKey]float64)}
}

// Get returns the score for a pair in either order.
func (c *Cache) Get(a, b string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	score, ok := c.scores[NewPairKey(a, b)]
	return score, ok
}

// Has reports whether the pair has been scored.
func (c *Cache) Has(key PairKey) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.scores[key]
	return ok
}

// Store records the score of a pair.
func (c *Cache) Store(key PairKey, score float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scores[key] = score
}

// Len returns the number of scored pairs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.scores)
}

// All returns a copy of every stored score.
func (c *Cache) All() map[PairKey]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[PairKey]float64, len(c.scores))
	for k, v := range c.scores {
		out[k] = v
	}
	return out
}
