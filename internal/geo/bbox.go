// Package geo holds the geographic (EPSG:4326) shapes used to filter and describe scenes.
package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// BoundingBox is a lon/lat rectangle. Min is the south-west corner.
type BoundingBox struct {
	orb.Bound
}

func NewBoundingBox(minLat, maxLat, minLon, maxLon float64) (BoundingBox, error) {
	if minLat < -90 || maxLat > 90 {
		return BoundingBox{}, fmt.Errorf("latitude range [%g, %g] outside [-90, 90]", minLat, maxLat)
	}
	if minLon < -180 || maxLon > 180 {
		return BoundingBox{}, fmt.Errorf("longitude range [%g, %g] outside [-180, 180]", minLon, maxLon)
	}
	if minLat >= maxLat || minLon >= maxLon {
		return BoundingBox{}, fmt.Errorf("empty bounding box lat [%g, %g] lon [%g, %g]", minLat, maxLat, minLon, maxLon)
	}
	return BoundingBox{orb.Bound{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}}, nil
}

func (b BoundingBox) MinLat() float64 { return b.Min.Lat() }
func (b BoundingBox) MaxLat() float64 { return b.Max.Lat() }
func (b BoundingBox) MinLon() float64 { return b.Min.Lon() }
func (b BoundingBox) MaxLon() float64 { return b.Max.Lon() }

// Intersection returns the overlap of b and other, and false when they do not overlap.
func (b BoundingBox) Intersection(other orb.Bound) (BoundingBox, bool) {
	if !b.Bound.Intersects(other) {
		return BoundingBox{}, false
	}
	out := orb.Bound{
		Min: orb.Point{max(b.Min.X(), other.Min.X()), max(b.Min.Y(), other.Min.Y())},
		Max: orb.Point{min(b.Max.X(), other.Max.X()), min(b.Max.Y(), other.Max.Y())},
	}
	if out.Min.X() >= out.Max.X() || out.Min.Y() >= out.Max.Y() {
		return BoundingBox{}, false
	}
	return BoundingBox{out}, true
}

// EdgePoints samples n points along each edge of the box, so that a reprojected
// box still covers curved edges in a projected CRS.
func (b BoundingBox) EdgePoints(n int) (lons, lats []float64) {
	if n < 2 {
		n = 2
	}
	step := func(lo, hi float64, i int) float64 {
		return lo + (hi-lo)*float64(i)/float64(n-1)
	}
	for i := 0; i < n; i++ {
		lon := step(b.MinLon(), b.MaxLon(), i)
		lat := step(b.MinLat(), b.MaxLat(), i)
		lons = append(lons, lon, lon, b.MinLon(), b.MaxLon())
		lats = append(lats, b.MinLat(), b.MaxLat(), lat, lat)
	}
	return lons, lats
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("lat [%g, %g] lon [%g, %g]", b.MinLat(), b.MaxLat(), b.MinLon(), b.MaxLon())
}

// Footprint is the scene outline given by the four product corners.
type Footprint struct {
	UL, UR, LL, LR orb.Point
}

func (f Footprint) Polygon() orb.Polygon {
	return orb.Polygon{orb.Ring{f.UL, f.UR, f.LR, f.LL, f.UL}}
}

func (f Footprint) Bound() orb.Bound {
	return f.Polygon().Bound()
}

// WKT renders the footprint for the geospatial_bounds attribute.
func (f Footprint) WKT() string {
	return wkt.MarshalString(f.Polygon())
}

// BoundWKT renders a lon/lat bound as a WKT polygon.
func BoundWKT(b orb.Bound) string {
	return wkt.MarshalString(b.ToPolygon())
}
