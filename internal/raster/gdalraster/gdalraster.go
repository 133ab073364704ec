// Package gdalraster implements raster.Source on top of GDAL.
package gdalraster

import (
	"errors"
	"fmt"
	"sync"

	"github.com/airbusgeo/godal"
	"github.com/sirupsen/logrus"

	"github.com/surftemp/landsat-importer/internal/raster"
)

var registerOnce sync.Once

var _ raster.Source = (*Source)(nil)

// Source reads GeoTIFF bands through GDAL.
type Source struct {
	log logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Source {
	registerOnce.Do(godal.RegisterAll)
	return &Source{log: log}
}

// errLogger drops GDAL warnings to debug level and turns everything else into errors.
func (s *Source) errLogger(path string) godal.ErrorHandler {
	return func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			s.log.WithField("path", path).Debugf("gdal warning %d: %s", code, msg)
			return nil
		}
		return fmt.Errorf("gdal error %d: %s", code, msg)
	}
}

func (s *Source) Open(path string) (raster.Dataset, error) {
	ds, err := godal.Open(path, godal.ErrLogger(s.errLogger(path)))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	if len(ds.Bands()) == 0 {
		ds.Close()
		return nil, fmt.Errorf("%s has no raster band", path)
	}
	return &gdalDataset{ds: ds, path: path}, nil
}

type gdalDataset struct {
	ds   *godal.Dataset
	path string
}

func (d *gdalDataset) Width() int  { return d.ds.Structure().SizeX }
func (d *gdalDataset) Height() int { return d.ds.Structure().SizeY }

func (d *gdalDataset) GeoTransform() (raster.GeoTransform, error) {
	gt, err := d.ds.GeoTransform()
	if err != nil {
		return raster.GeoTransform{}, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	return raster.GeoTransform(gt), nil
}

func (d *gdalDataset) CRS() (string, error) {
	sr := d.ds.SpatialRef()
	if sr == nil {
		return "", fmt.Errorf("%s has no spatial reference", d.path)
	}
	defer sr.Close()
	return sr.WKT()
}

func (d *gdalDataset) NoData() (float64, bool) {
	return d.ds.Bands()[0].NoData()
}

func (d *gdalDataset) Read(w raster.Window) ([]float64, error) {
	if w.Empty() || w.Col < 0 || w.Row < 0 || w.Col+w.Width > d.Width() || w.Row+w.Height > d.Height() {
		return nil, fmt.Errorf("window %s outside %dx%d raster", w, d.Width(), d.Height())
	}
	buf := make([]float64, w.Width*w.Height)
	if err := d.ds.Bands()[0].Read(w.Col, w.Row, buf, w.Width, w.Height); err != nil {
		return nil, fmt.Errorf("failed to read raster data: %w", err)
	}
	return buf, nil
}

func (d *gdalDataset) Close() error {
	return d.ds.Close()
}

// Projector builds forward and inverse transforms between crs (WKT) and EPSG:4326.
func (s *Source) Projector(crs string) (raster.Projector, error) {
	native, err := godal.NewSpatialRefFromWKT(crs)
	if err != nil {
		return nil, fmt.Errorf("parsing spatial reference: %w", err)
	}
	wgs84, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		native.Close()
		return nil, fmt.Errorf("creating EPSG:4326: %w", err)
	}
	toNative, err := godal.NewTransform(wgs84, native)
	if err != nil {
		native.Close()
		wgs84.Close()
		return nil, fmt.Errorf("creating transform to native CRS: %w", err)
	}
	toLonLat, err := godal.NewTransform(native, wgs84)
	if err != nil {
		toNative.Close()
		native.Close()
		wgs84.Close()
		return nil, fmt.Errorf("creating transform to EPSG:4326: %w", err)
	}
	return &gdalProjector{native: native, wgs84: wgs84, toNative: toNative, toLonLat: toLonLat}, nil
}

// gdalProjector uses traditional GIS axis order: x is longitude, y latitude.
type gdalProjector struct {
	native, wgs84      *godal.SpatialRef
	toNative, toLonLat *godal.Transform
}

func transform(tr *godal.Transform, xs, ys []float64) ([]float64, []float64, error) {
	if len(xs) != len(ys) {
		return nil, nil, errors.New("coordinate slices differ in length")
	}
	outX := append([]float64(nil), xs...)
	outY := append([]float64(nil), ys...)
	if err := tr.TransformEx(outX, outY, nil, nil); err != nil {
		return nil, nil, fmt.Errorf("transform error: %w", err)
	}
	return outX, outY, nil
}

func (p *gdalProjector) FromLonLat(lons, lats []float64) ([]float64, []float64, error) {
	return transform(p.toNative, lons, lats)
}

func (p *gdalProjector) ToLonLat(xs, ys []float64) ([]float64, []float64, error) {
	return transform(p.toLonLat, xs, ys)
}

func (p *gdalProjector) Close() error {
	p.toNative.Close()
	p.toLonLat.Close()
	p.native.Close()
	p.wgs84.Close()
	return nil
}
