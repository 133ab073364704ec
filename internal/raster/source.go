package raster

import (
	"fmt"

	"github.com/surftemp/landsat-importer/internal/geo"
)

// Window is a pixel rectangle of a raster.
type Window struct {
	Col, Row      int
	Width, Height int
}

func (w Window) Empty() bool {
	return w.Width <= 0 || w.Height <= 0
}

func (w Window) String() string {
	return fmt.Sprintf("cols [%d, %d) rows [%d, %d)", w.Col, w.Col+w.Width, w.Row, w.Row+w.Height)
}

// Source opens single-band rasters and builds projectors between their CRS and lon/lat.
type Source interface {
	Open(path string) (Dataset, error)
	Projector(crs string) (Projector, error)
}

// Dataset is an open raster. Read returns the samples of the first band in
// row-major order.
type Dataset interface {
	Width() int
	Height() int
	GeoTransform() (GeoTransform, error)
	CRS() (string, error)
	NoData() (float64, bool)
	Read(w Window) ([]float64, error)
	Close() error
}

// Projector converts between a projected CRS and EPSG:4326 longitude/latitude.
type Projector interface {
	FromLonLat(lons, lats []float64) (xs, ys []float64, err error)
	ToLonLat(xs, ys []float64) (lons, lats []float64, err error)
	Close() error
}

// EmptyIntersectionError means a bounding box does not overlap a raster or scene.
type EmptyIntersectionError struct {
	Path string
	Box  geo.BoundingBox
}

func (e *EmptyIntersectionError) Error() string {
	return fmt.Sprintf("%s: bounding box %s does not intersect the scene", e.Path, e.Box)
}

// Read loads the window w of ds as a grid. Samples equal to the raster's
// nodata value are invalid.
func Read(ds Dataset, w Window) (*Grid, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return nil, fmt.Errorf("reading geotransform: %w", err)
	}
	crs, err := ds.CRS()
	if err != nil {
		return nil, fmt.Errorf("reading spatial reference: %w", err)
	}
	values, err := ds.Read(w)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", w, err)
	}
	g, err := FromValues(w.Width, w.Height, values, gt.Crop(w), crs)
	if err != nil {
		return nil, err
	}
	if nodata, ok := ds.NoData(); ok {
		g.Mask(nodata)
	}
	return g, nil
}

// FullWindow covers all of ds.
func FullWindow(ds Dataset) Window {
	return Window{Width: ds.Width(), Height: ds.Height()}
}
