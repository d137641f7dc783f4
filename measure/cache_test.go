package measure

import (
	"testing"

	"token-distance-overlay/scene"
)

func TestCacheSymmetricPairSharesEntry(t *testing.T) {
	c := NewCache()
	g := gridlessGrid()
	a := &scene.Token{ID: "a", X: 0, Y: 0}
	b := &scene.Token{ID: "b", X: 30, Y: 40}

	ab := c.Measurement(g, a, b)
	ba := c.Measurement(g, b, a)

	if ab.Distance != ba.Distance {
		t.Errorf("expected identical distances, got %v and %v", ab.Distance, ba.Distance)
	}
	if c.Len() != 1 {
		t.Errorf("expected a single shared entry, got %d", c.Len())
	}
}

func TestCacheHitsUnderTranslation(t *testing.T) {
	c := NewCache()
	g := gridlessGrid()
	a := &scene.Token{ID: "a", X: 0, Y: 0}
	b := &scene.Token{ID: "b", X: 30, Y: 40}

	first := c.Measurement(g, a, b)
	if first.Distance != 50 {
		t.Fatalf("expected 50, got %v", first.Distance)
	}

	// Move both tokens by the same vector, then change the grid scale. A
	// recomputation would see the new scale; a cache hit cannot.
	a.X, a.Y = 100, 100
	b.X, b.Y = 130, 140
	g.Distance = 2

	second := c.Measurement(g, a, b)
	if second.Distance != 50 {
		t.Errorf("expected cached 50 after a group move, got %v", second.Distance)
	}
}

func TestCacheRecomputesWhenOneTokenMoves(t *testing.T) {
	c := NewCache()
	g := gridlessGrid()
	a := &scene.Token{ID: "a", X: 0, Y: 0}
	b := &scene.Token{ID: "b", X: 30, Y: 40}

	c.Measurement(g, a, b)

	b.X, b.Y = 60, 80

	got := c.Measurement(g, a, b)
	if got.Distance != 100 {
		t.Errorf("expected recomputed 100, got %v", got.Distance)
	}
}

func TestCacheRecomputesWhenElevationChanges(t *testing.T) {
	c := NewCache()
	g := gridlessGrid()
	a := &scene.Token{ID: "a", X: 0, Y: 0, Elevation: 0}
	b := &scene.Token{ID: "b", X: 3, Y: 4, Elevation: 0}

	c.Measurement(g, a, b)

	b.Elevation = 12

	got := c.Measurement(g, a, b)
	if got.Distance != 13 {
		t.Errorf("expected recomputed 13, got %v", got.Distance)
	}
}

func TestCachePreviewSharesEntryWithLiveToken(t *testing.T) {
	c := NewCache()
	g := gridlessGrid()
	a := &scene.Token{ID: "a", X: 0, Y: 0}
	b := &scene.Token{ID: "b", X: 30, Y: 40}

	c.Measurement(g, a, b)

	// A drag preview at the same offsets hits the live entry.
	preview := &scene.Token{ID: scene.PreviewID("a"), X: 0, Y: 0}
	c.Measurement(g, preview, b)

	if c.Len() != 1 {
		t.Errorf("expected preview to share the live entry, got %d entries", c.Len())
	}
}

func TestInvalidateTokenDropsOnlyItsEntries(t *testing.T) {
	c := NewCache()
	g := gridlessGrid()
	a := &scene.Token{ID: "a", X: 0, Y: 0}
	b := &scene.Token{ID: "b", X: 30, Y: 40}
	d := &scene.Token{ID: "d", X: 5, Y: 5}

	c.Measurement(g, a, b)
	c.Measurement(g, a, d)
	c.Measurement(g, b, d)

	c.InvalidateToken("a")

	if c.Len() != 1 {
		t.Errorf("expected only the b/d entry to survive, got %d entries", c.Len())
	}
}

func TestInvalidateTokenNormalizesPreviewIDs(t *testing.T) {
	c := NewCache()
	g := gridlessGrid()
	a := &scene.Token{ID: "a", X: 0, Y: 0}
	b := &scene.Token{ID: "b", X: 30, Y: 40}

	c.Measurement(g, a, b)

	c.InvalidateToken(scene.PreviewID("a"))

	if c.Len() != 0 {
		t.Errorf("expected the shared entry to be dropped, got %d entries", c.Len())
	}
}

func TestClear(t *testing.T) {
	c := NewCache()
	g := gridlessGrid()
	a := &scene.Token{ID: "a", X: 0, Y: 0}
	b := &scene.Token{ID: "b", X: 30, Y: 40}

	c.Measurement(g, a, b)
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}
