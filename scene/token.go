package scene

import "strings"

// PreviewSuffix marks the identifier of a drag-preview instance. A preview
// shares its base identity with the live token it was cloned from.
const PreviewSuffix = ".drag-preview"

// BaseID strips the preview suffix from a token identifier, if present.
func BaseID(id string) string {
	return strings.TrimSuffix(id, PreviewSuffix)
}

// PreviewID returns the preview identifier for a base token identifier.
func PreviewID(id string) string {
	return BaseID(id) + PreviewSuffix
}

// IsPreviewID reports whether id names a drag-preview instance.
func IsPreviewID(id string) bool {
	return strings.HasSuffix(id, PreviewSuffix)
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Point3 is a planar point with an elevation in grid units.
type Point3 struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Elevation float64 `json:"elevation"`
}

// GridOffset addresses one grid cell by column and row.
type GridOffset struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// Token is a placeable game piece. X and Y are the center of the token in
// scene pixels; Width and Height are the footprint in grid cells. Elevation
// is in grid distance units.
type Token struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Elevation  float64 `json:"elevation"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	OwnerID    string  `json:"ownerId"`
	Controlled bool    `json:"controlled"`
}

func (t *Token) Center() Point {
	return Point{X: t.X, Y: t.Y}
}

func (t *Token) BaseID() string {
	return BaseID(t.ID)
}

func (t *Token) IsPreview() bool {
	return IsPreviewID(t.ID)
}

// FootprintOffsets returns the grid cells covered by the token's footprint.
// The anchor cell is derived from the token's top-left corner in pixels.
func (t *Token) FootprintOffsets(g *Grid) []GridOffset {
	w, h := t.Width, t.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	size := g.Size
	if size <= 0 {
		size = 1
	}
	anchorCol := int(roundHalfAway((t.X - float64(w)*size/2) / size))
	anchorRow := int(roundHalfAway((t.Y - float64(h)*size/2) / size))

	offsets := make([]GridOffset, 0, w*h)
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			offsets = append(offsets, GridOffset{Col: anchorCol + col, Row: anchorRow + row})
		}
	}
	return offsets
}

func roundHalfAway(v float64) float64 {
	if v < 0 {
		return -roundHalfAway(-v)
	}
	return float64(int(v + 0.5))
}
