package raster

import (
	"fmt"
	"math"

	"github.com/surftemp/landsat-importer/internal/geo"
)

// edgeSamples is the number of points taken along each bbox edge before
// projecting it, so curved edges in the native CRS are still covered.
const edgeSamples = 21

// WindowFor returns the pixel window of a width x height raster with
// transform gt that covers bbox. The bbox is projected to the raster CRS
// with p. An empty overlap is an *EmptyIntersectionError with Path unset.
func WindowFor(width, height int, gt GeoTransform, p Projector, bbox geo.BoundingBox) (Window, error) {
	if !gt.NorthUp() {
		return Window{}, fmt.Errorf("rotated geotransform %v is not supported", gt)
	}
	lons, lats := bbox.EdgePoints(edgeSamples)
	xs, ys, err := p.FromLonLat(lons, lats)
	if err != nil {
		return Window{}, fmt.Errorf("projecting bounding box: %w", err)
	}

	minCol, minRow := math.Inf(1), math.Inf(1)
	maxCol, maxRow := math.Inf(-1), math.Inf(-1)
	for i := range xs {
		col, row := gt.Invert(xs[i], ys[i])
		if math.IsNaN(col) || math.IsNaN(row) || math.IsInf(col, 0) || math.IsInf(row, 0) {
			continue
		}
		minCol, maxCol = min(minCol, col), max(maxCol, col)
		minRow, maxRow = min(minRow, row), max(maxRow, row)
	}
	if math.IsInf(minCol, 1) {
		return Window{}, &EmptyIntersectionError{Box: bbox}
	}

	c0 := clamp(int(math.Floor(minCol)), 0, width)
	c1 := clamp(int(math.Ceil(maxCol)), 0, width)
	r0 := clamp(int(math.Floor(minRow)), 0, height)
	r1 := clamp(int(math.Ceil(maxRow)), 0, height)
	w := Window{Col: c0, Row: r0, Width: c1 - c0, Height: r1 - r0}
	if w.Empty() {
		return Window{}, &EmptyIntersectionError{Box: bbox}
	}
	return w, nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
