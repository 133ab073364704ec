package raster_test

import (
	"go/build"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surftemp/landsat-importer/internal/geo"
	"github.com/surftemp/landsat-importer/internal/raster"
	"github.com/surftemp/landsat-importer/internal/raster/rastertest"
)

// 10x10 pixels of 100 "metres", origin at lon 0 lat 1 under rastertest.Degrees.
var testTransform = raster.GeoTransform{0, 100, 0, 1000, 0, -100}

func testDataset() *rastertest.Dataset {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	fill := 0.0
	return &rastertest.Dataset{W: 10, H: 10, Values: values, Transform: testTransform, WKT: "LOCAL_CS[\"test\"]", Fill: &fill}
}

func TestGridMapKeepsMask(t *testing.T) {
	g, err := raster.FromValues(3, 1, []float64{1, 2, 3}, testTransform, "")
	require.NoError(t, err)
	g.Mask(2)

	out := g.Map(func(v float64) float64 { return v * 10 })
	assert.Equal(t, []bool{true, false, true}, out.Valid)
	assert.Equal(t, []float64{10, 0, 30}, out.Data)

	nan := g.Map(func(v float64) float64 { return math.Log(v - 2) })
	assert.Equal(t, []bool{false, false, true}, nan.Valid)

	lo, hi, ok := out.Range()
	require.True(t, ok)
	assert.Equal(t, 10.0, lo)
	assert.Equal(t, 30.0, hi)
	assert.Equal(t, 2, out.ValidCount())
}

func TestGridRangeEmpty(t *testing.T) {
	g := raster.NewGrid(2, 2, testTransform, "")
	_, _, ok := g.Range()
	assert.False(t, ok)
}

func TestFromValuesLengthMismatch(t *testing.T) {
	_, err := raster.FromValues(2, 2, []float64{1}, testTransform, "")
	assert.Error(t, err)
}

func TestReadMasksNoData(t *testing.T) {
	g, err := raster.Read(testDataset(), raster.Window{Col: 0, Row: 0, Width: 2, Height: 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 10, 11}, g.Data)
	assert.Equal(t, []bool{false, true, true, true}, g.Valid)
}

func TestReadCropsTransform(t *testing.T) {
	g, err := raster.Read(testDataset(), raster.Window{Col: 2, Row: 3, Width: 4, Height: 2})
	require.NoError(t, err)
	assert.Equal(t, raster.GeoTransform{200, 100, 0, 700, 0, -100}, g.Transform)
	assert.Equal(t, 32.0, g.Data[0])

	xs, ys := g.Coordinates()
	assert.Equal(t, []float64{250, 350, 450, 550}, xs)
	assert.Equal(t, []float64{650, 550}, ys)
}

func TestWindowFor(t *testing.T) {
	box, err := geo.NewBoundingBox(0.25, 0.55, 0.15, 0.45)
	require.NoError(t, err)

	w, err := raster.WindowFor(10, 10, testTransform, rastertest.Degrees{}, box)
	require.NoError(t, err)
	// lon 0.15..0.45 -> cols 1.5..4.5, lat 0.55..0.25 -> rows 4.5..7.5
	assert.Equal(t, raster.Window{Col: 1, Row: 4, Width: 4, Height: 4}, w)
}

func TestWindowForClampsToRaster(t *testing.T) {
	box, err := geo.NewBoundingBox(-5, 5, -5, 0.5)
	require.NoError(t, err)
	w, err := raster.WindowFor(10, 10, testTransform, rastertest.Degrees{}, box)
	require.NoError(t, err)
	assert.Equal(t, raster.Window{Col: 0, Row: 0, Width: 5, Height: 10}, w)
}

func TestWindowForOutside(t *testing.T) {
	box, err := geo.NewBoundingBox(10, 20, 10, 20)
	require.NoError(t, err)
	_, err = raster.WindowFor(10, 10, testTransform, rastertest.Degrees{}, box)
	var empty *raster.EmptyIntersectionError
	require.ErrorAs(t, err, &empty)
}

func TestWindowForRejectsRotation(t *testing.T) {
	box, err := geo.NewBoundingBox(0, 1, 0, 1)
	require.NoError(t, err)
	_, err = raster.WindowFor(10, 10, raster.GeoTransform{0, 100, 5, 1000, 0, -100}, rastertest.Degrees{}, box)
	assert.Error(t, err)
}

func TestLonLat(t *testing.T) {
	g, err := raster.Read(testDataset(), raster.Window{Col: 0, Row: 0, Width: 2, Height: 1})
	require.NoError(t, err)
	lons, lats, err := g.LonLat(rastertest.Degrees{})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.05, 0.15}, lons, 1e-12)
	assert.InDeltaSlice(t, []float64{0.95, 0.95}, lats, 1e-12)
}

func TestCorePackageHasNoCgoDependencies(t *testing.T) {
	pkg, err := build.ImportDir(".", 0)
	require.NoError(t, err)
	assert.NotContains(t, pkg.Imports, "github.com/airbusgeo/godal")
	assert.Empty(t, pkg.CgoFiles)
}
