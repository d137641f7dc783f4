// Package measure computes and caches grid-aware distances between tokens.
package measure

import (
	"math"
	"strconv"
	"strings"

	"token-distance-overlay/scene"
)

// Result is one computed measurement: the raw distance in scene units and
// the formatted text shown on a label.
type Result struct {
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
}

// Between measures the distance between two tokens.
//
// On a gridless scene it is a single straight path between token centers,
// with elevation as a third axis. On a gridded scene every occupied-cell
// pairing between the two footprints is measured and the minimum wins; an
// overlapping pair short-circuits at zero.
func Between(grid *scene.Grid, source, target *scene.Token) Result {
	if grid.IsGridless() {
		d := grid.MeasurePath([]scene.Point3{
			{X: source.X, Y: source.Y, Elevation: source.Elevation},
			{X: target.X, Y: target.Y, Elevation: target.Elevation},
		})
		return makeResult(d, grid.Units)
	}

	sourcePoints := cellCenters(grid, source)
	targetPoints := cellCenters(grid, target)

	best := math.Inf(1)
	for _, sp := range sourcePoints {
		for _, tp := range targetPoints {
			d := grid.MeasurePath([]scene.Point3{sp, tp})
			if d < best {
				best = d
				if best == 0 {
					return makeResult(0, grid.Units)
				}
			}
		}
	}
	return makeResult(best, grid.Units)
}

func cellCenters(grid *scene.Grid, t *scene.Token) []scene.Point3 {
	offsets := t.FootprintOffsets(grid)
	points := make([]scene.Point3, len(offsets))
	for i, o := range offsets {
		c := grid.CenterPoint(o)
		points[i] = scene.Point3{X: c.X, Y: c.Y, Elevation: t.Elevation}
	}
	return points
}

func makeResult(distance float64, units string) Result {
	rounded := math.Round(distance*100) / 100
	text := strings.TrimSpace(strconv.FormatFloat(rounded, 'f', -1, 64) + " " + units)
	return Result{Distance: rounded, Text: text}
}
