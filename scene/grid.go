package scene

import "math"

// Grid describes the scene's grid: cell size in pixels, distance per cell in
// scene units, and the unit label appended to formatted measurements.
type Grid struct {
	Gridless bool    `json:"gridless"`
	Size     float64 `json:"size"`
	Distance float64 `json:"distance"`
	Units    string  `json:"units"`
}

// IsGridless reports whether the scene has no grid.
func (g *Grid) IsGridless() bool {
	return g.Gridless
}

// CenterPoint returns the pixel center of the cell at the given offset.
func (g *Grid) CenterPoint(o GridOffset) Point {
	return Point{
		X: (float64(o.Col) + 0.5) * g.Size,
		Y: (float64(o.Row) + 0.5) * g.Size,
	}
}

// MeasurePath measures the total distance of a path in scene units.
//
// Gridless paths are straight 3D segments: planar pixel deltas are scaled to
// units through the cell size, elevation deltas are already in units.
// Gridded paths are measured in cell steps with diagonals costing one step,
// so a segment costs the largest of its per-axis cell deltas.
func (g *Grid) MeasurePath(points []Point3) float64 {
	size := g.Size
	if size <= 0 {
		size = 1
	}
	total := 0.0
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		dx := (b.X - a.X) / size * g.Distance
		dy := (b.Y - a.Y) / size * g.Distance
		dz := b.Elevation - a.Elevation
		if g.Gridless {
			total += math.Sqrt(dx*dx + dy*dy + dz*dz)
		} else {
			total += math.Max(math.Abs(dx), math.Max(math.Abs(dy), math.Abs(dz)))
		}
	}
	return total
}
