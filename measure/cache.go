package measure

import (
	"math"
	"strings"

	"token-distance-overlay/scene"
)

type cacheEntry struct {
	dx, dy, dz float64
	result     Result
}

// Cache memoizes measurements per unordered token pair. An entry stays valid
// while the pair's absolute delta vector (|Δx|, |Δy|, |Δelevation|) is
// unchanged, so a bulk move that shifts both tokens by the same vector still
// hits. Keys use base identities: a drag preview and its live counterpart
// share entries.
type Cache struct {
	entries map[string]cacheEntry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// Measurement returns the cached result for the pair when the current delta
// vector matches the stored one, recomputing and storing otherwise.
func (c *Cache) Measurement(grid *scene.Grid, source, target *scene.Token) Result {
	key := pairKey(source.BaseID(), target.BaseID())
	dx := math.Abs(target.X - source.X)
	dy := math.Abs(target.Y - source.Y)
	dz := math.Abs(target.Elevation - source.Elevation)

	if e, ok := c.entries[key]; ok && e.dx == dx && e.dy == dy && e.dz == dz {
		return e.result
	}

	result := Between(grid, source, target)
	c.entries[key] = cacheEntry{dx: dx, dy: dy, dz: dz, result: result}
	return result
}

// InvalidateToken removes every entry that mentions the token's base
// identity in either slot. Entries between other tokens survive.
func (c *Cache) InvalidateToken(id string) {
	base := scene.BaseID(id)
	for key := range c.entries {
		a, b, ok := strings.Cut(key, keySeparator)
		if ok && (a == base || b == base) {
			delete(c.entries, key)
		}
	}
}

// Clear drops all entries. Called at the canvas lifecycle boundary.
func (c *Cache) Clear() {
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of cached pairs.
func (c *Cache) Len() int {
	return len(c.entries)
}

const keySeparator = "\x00"

func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + keySeparator + b
}
