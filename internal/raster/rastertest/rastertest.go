// Package rastertest provides in-memory raster sources for tests.
package rastertest

import (
	"fmt"
	"os"
	"sync"

	"github.com/surftemp/landsat-importer/internal/raster"
)

// Dataset is an in-memory single-band raster.
type Dataset struct {
	W, H      int
	Values    []float64
	Transform raster.GeoTransform
	WKT       string
	Fill      *float64
}

func (d *Dataset) Width() int                                 { return d.W }
func (d *Dataset) Height() int                                { return d.H }
func (d *Dataset) GeoTransform() (raster.GeoTransform, error) { return d.Transform, nil }
func (d *Dataset) CRS() (string, error)                       { return d.WKT, nil }
func (d *Dataset) Close() error                               { return nil }

func (d *Dataset) NoData() (float64, bool) {
	if d.Fill == nil {
		return 0, false
	}
	return *d.Fill, true
}

func (d *Dataset) Read(w raster.Window) ([]float64, error) {
	if w.Empty() || w.Col < 0 || w.Row < 0 || w.Col+w.Width > d.W || w.Row+w.Height > d.H {
		return nil, fmt.Errorf("window %s outside %dx%d raster", w, d.W, d.H)
	}
	out := make([]float64, 0, w.Width*w.Height)
	for r := w.Row; r < w.Row+w.Height; r++ {
		out = append(out, d.Values[r*d.W+w.Col:r*d.W+w.Col+w.Width]...)
	}
	return out, nil
}

// Source serves Datasets by path. Paths must also exist on disk when
// RequireFiles is set, so file resolution can be tested.
type Source struct {
	mu           sync.Mutex
	Datasets     map[string]*Dataset
	RequireFiles bool
	Opened       []string
}

func NewSource() *Source {
	return &Source{Datasets: map[string]*Dataset{}}
}

func (s *Source) Add(path string, d *Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Datasets[path] = d
}

func (s *Source) Open(path string) (raster.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.RequireFiles {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
	}
	d, ok := s.Datasets[path]
	if !ok {
		return nil, fmt.Errorf("no dataset registered for %s", path)
	}
	s.Opened = append(s.Opened, path)
	return d, nil
}

func (s *Source) Projector(string) (raster.Projector, error) {
	return Degrees{}, nil
}

// Degrees treats the native CRS as lon/lat scaled by 1000, so a geotransform
// in "metres" of 1000 per degree maps directly onto geographic boxes.
type Degrees struct{}

func (Degrees) FromLonLat(lons, lats []float64) ([]float64, []float64, error) {
	return scale(lons, 1000), scale(lats, 1000), nil
}

func (Degrees) ToLonLat(xs, ys []float64) ([]float64, []float64, error) {
	return scale(xs, 0.001), scale(ys, 0.001), nil
}

func (Degrees) Close() error { return nil }

func scale(v []float64, f float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * f
	}
	return out
}
