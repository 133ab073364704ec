// Package raster holds the in-memory band grids and the raster I/O used to fill them.
package raster

import (
	"fmt"
	"math"
)

// GeoTransform is the GDAL affine pixel to CRS mapping:
// x = g[0] + col*g[1] + row*g[2], y = g[3] + col*g[4] + row*g[5].
type GeoTransform [6]float64

func (g GeoTransform) NorthUp() bool {
	return g[2] == 0 && g[4] == 0 && g[1] != 0 && g[5] != 0
}

// Apply maps a (fractional) pixel position to CRS coordinates.
func (g GeoTransform) Apply(col, row float64) (x, y float64) {
	return g[0] + col*g[1] + row*g[2], g[3] + col*g[4] + row*g[5]
}

// Invert maps CRS coordinates to a fractional pixel position. Only north-up
// transforms are supported.
func (g GeoTransform) Invert(x, y float64) (col, row float64) {
	return (x - g[0]) / g[1], (y - g[3]) / g[5]
}

// Crop returns the transform of the window w of g.
func (g GeoTransform) Crop(w Window) GeoTransform {
	x, y := g.Apply(float64(w.Col), float64(w.Row))
	return GeoTransform{x, g[1], g[2], y, g[4], g[5]}
}

// Grid is a 2-D band of samples with a validity mask. Invalid samples carry
// no meaning; Data holds 0 for them.
type Grid struct {
	Width, Height int
	Data          []float64
	Valid         []bool
	Transform     GeoTransform
	CRS           string
}

func NewGrid(width, height int, transform GeoTransform, crs string) *Grid {
	return &Grid{
		Width:     width,
		Height:    height,
		Data:      make([]float64, width*height),
		Valid:     make([]bool, width*height),
		Transform: transform,
		CRS:       crs,
	}
}

// FromValues wraps values as a grid where every sample is valid.
func FromValues(width, height int, values []float64, transform GeoTransform, crs string) (*Grid, error) {
	if len(values) != width*height {
		return nil, fmt.Errorf("got %d samples for a %dx%d grid", len(values), width, height)
	}
	g := &Grid{Width: width, Height: height, Data: values, Valid: make([]bool, len(values)), Transform: transform, CRS: crs}
	for i := range g.Valid {
		g.Valid[i] = true
	}
	return g, nil
}

func (g *Grid) At(col, row int) (float64, bool) {
	i := row*g.Width + col
	return g.Data[i], g.Valid[i]
}

// Mask invalidates every sample equal to v.
func (g *Grid) Mask(v float64) {
	for i, d := range g.Data {
		if d == v {
			g.Valid[i] = false
			g.Data[i] = 0
		}
	}
}

// Map applies f to every valid sample and returns a new grid. Results that
// are not finite become invalid.
func (g *Grid) Map(f func(float64) float64) *Grid {
	out := NewGrid(g.Width, g.Height, g.Transform, g.CRS)
	for i, ok := range g.Valid {
		if !ok {
			continue
		}
		v := f(g.Data[i])
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out.Data[i] = v
		out.Valid[i] = true
	}
	return out
}

// Range returns the minimum and maximum valid sample. ok is false when the
// grid has no valid sample.
func (g *Grid) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i, valid := range g.Valid {
		if !valid {
			continue
		}
		v := g.Data[i]
		lo = min(lo, v)
		hi = max(hi, v)
		ok = true
	}
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}

func (g *Grid) ValidCount() int {
	n := 0
	for _, v := range g.Valid {
		if v {
			n++
		}
	}
	return n
}

func (g *Grid) SameShape(o *Grid) bool {
	return g.Width == o.Width && g.Height == o.Height
}

// Coordinates returns the CRS coordinates of the pixel centres along each axis.
func (g *Grid) Coordinates() (xs, ys []float64) {
	xs = make([]float64, g.Width)
	ys = make([]float64, g.Height)
	for c := range xs {
		xs[c], _ = g.Transform.Apply(float64(c)+0.5, 0.5)
	}
	for r := range ys {
		_, ys[r] = g.Transform.Apply(0.5, float64(r)+0.5)
	}
	return xs, ys
}

// LonLat projects every pixel centre to longitude and latitude.
func (g *Grid) LonLat(p Projector) (lons, lats []float64, err error) {
	xs := make([]float64, 0, g.Width*g.Height)
	ys := make([]float64, 0, g.Width*g.Height)
	for r := 0; r < g.Height; r++ {
		for c := 0; c < g.Width; c++ {
			x, y := g.Transform.Apply(float64(c)+0.5, float64(r)+0.5)
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return p.ToLonLat(xs, ys)
}
