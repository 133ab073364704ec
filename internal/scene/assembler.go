// Package scene turns one parsed Landsat scene into an output dataset: it
// loads and converts the selected bands, plans their encoding and attaches
// coordinates and CF/ACDD attributes.
package scene

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/surftemp/landsat-importer/internal/geo"
	"github.com/surftemp/landsat-importer/internal/gridded"
	"github.com/surftemp/landsat-importer/internal/metadata"
	"github.com/surftemp/landsat-importer/internal/quantize"
	"github.com/surftemp/landsat-importer/internal/radiometry"
	"github.com/surftemp/landsat-importer/internal/raster"
)

// Options control what is exported from a scene.
type Options struct {
	Bands         []string // empty selects the scene defaults
	IncludeAngles bool
	Mode          radiometry.Mode
	BBox          *geo.BoundingBox
	Encodings     []quantize.Spec
	Pattern       Pattern
	LatLon        bool

	InjectMetadata [][2]string
	History        string
	Version        string
	Creator        string
}

// Result is an assembled scene ready to be written.
type Result struct {
	Dataset   *gridded.Dataset
	FileName  string
	Variables []string
	Grids     map[string]*raster.Grid
	Decisions []quantize.Decision
	Skipped   []string
}

type Assembler struct {
	Loader *Loader
	Log    logrus.FieldLogger
	Now    func() time.Time
}

func NewAssembler(src raster.Source, log logrus.FieldLogger) *Assembler {
	return &Assembler{
		Loader: &Loader{Source: src, Log: log},
		Log:    log,
		Now:    time.Now,
	}
}

// QAFillValue marks no-data pixels of quality bands.
const QAFillValue int32 = -999

type band struct {
	cal  metadata.BandCalibration
	grid *raster.Grid
	desc radiometry.Description
}

// SelectBands returns the bands to export: the requested ones, or the scene
// defaults, plus the angle bands when includeAngles is set. A requested band
// the scene does not have is a *metadata.BandRequestError.
func SelectBands(m *metadata.SceneMetadata, requested []string, includeAngles bool) ([]string, error) {
	if len(requested) == 0 {
		return m.DefaultBands(includeAngles), nil
	}
	names := slices.Clone(requested)
	if includeAngles {
		for _, a := range m.AngleBands() {
			if !slices.Contains(names, a) {
				names = append(names, a)
			}
		}
	}
	for _, name := range names {
		if _, err := m.Calibration(name); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// Assemble loads, converts and encodes the scene's bands into a dataset.
func (a *Assembler) Assemble(m *metadata.SceneMetadata, opts Options) (*Result, error) {
	log := a.Log.WithField("scene", m.Path)

	if opts.BBox != nil {
		if footprint, ok := m.Bound(); ok && !opts.BBox.Intersects(footprint) {
			return nil, &raster.EmptyIntersectionError{Path: m.Path, Box: *opts.BBox}
		}
	}

	names, err := SelectBands(m, opts.Bands, opts.IncludeAngles)
	if err != nil {
		return nil, err
	}

	res := &Result{FileName: opts.Pattern.Render(m), Grids: map[string]*raster.Grid{}}
	var bands []band
	for _, name := range names {
		cal, err := m.Calibration(name)
		if err != nil {
			return nil, err
		}
		blog := log.WithField("band", name)

		raw, err := a.Loader.Load(m, cal, opts.BBox)
		if errors.Is(err, ErrAngleBandAbsent) {
			blog.WithField("stage", "load").Warnf("skipping: %v", err)
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if err != nil {
			return nil, err
		}

		grid, err := radiometry.Convert(raw, cal, opts.Mode, m.SunElevation)
		if errors.Is(err, radiometry.ErrCalibrationAbsent) {
			blog.WithField("stage", "convert").Warnf("skipping: %v", err)
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scene %s: converting to %s: %w", m.Path, opts.Mode, err)
		}

		if len(bands) > 0 && !grid.SameShape(bands[0].grid) {
			ref := bands[0]
			return nil, &ShapeMismatchError{
				Scene:     m.Path,
				Band:      name,
				Reference: ref.cal.Name,
				Got:       [2]int{grid.Width, grid.Height},
				Want:      [2]int{ref.grid.Width, ref.grid.Height},
			}
		}
		bands = append(bands, band{cal: cal, grid: grid, desc: radiometry.Describe(cal, opts.Mode)})
	}
	if len(bands) == 0 {
		return nil, fmt.Errorf("scene %s: none of the bands %v could be exported", m.Path, names)
	}

	ds := &gridded.Dataset{}
	ref := bands[0].grid
	ds.AddDim("time", 1)
	ds.AddDim("y", ref.Height)
	ds.AddDim("x", ref.Width)

	bounds, err := a.addCoordinates(ds, m, ref, opts.LatLon)
	if err != nil {
		return nil, fmt.Errorf("scene %s: coordinates: %w", m.Path, err)
	}

	encodings := map[string]quantize.Spec{}
	for _, e := range opts.Encodings {
		encodings[e.Band] = e
	}
	encodingNotes := gridded.Attrs{}
	for _, b := range bands {
		v, decision, err := a.variable(m, b, encodings, opts.LatLon)
		if err != nil {
			return nil, err
		}
		if decision != nil {
			decision.Report(log)
			res.Decisions = append(res.Decisions, *decision)
			delete(encodings, b.cal.Name)
			delete(encodings, b.cal.VariableName())
		}
		encodingNotes.Set("encoding_"+v.Name, encodingNote(v))
		ds.AddVar(v)
		res.Variables = append(res.Variables, v.Name)
		res.Grids[v.Name] = b.grid
	}
	for name := range encodings {
		log.WithField("band", name).Warn("int16 encoding requested for a band that is not exported")
	}

	ds.Attrs = a.globalAttrs(m, opts, ref, bounds)
	ds.Attrs = append(ds.Attrs, encodingNotes...)
	for _, kv := range opts.InjectMetadata {
		ds.Attrs.Set(kv[0], kv[1])
	}
	res.Dataset = ds
	return res, nil
}

// variable builds the output variable of a band, planning int16 encoding
// when one was requested for it.
func (a *Assembler) variable(m *metadata.SceneMetadata, b band, encodings map[string]quantize.Spec, latlon bool) (*gridded.Variable, *quantize.Decision, error) {
	v := &gridded.Variable{
		Name:     b.cal.VariableName(),
		Dims:     []string{"time", "y", "x"},
		Compress: true,
	}
	var decision *quantize.Decision

	switch b.cal.Kind {
	case metadata.KindQuality:
		data := make([]int32, len(b.grid.Data))
		for i, d := range b.grid.Data {
			if !b.grid.Valid[i] {
				data[i] = QAFillValue
				continue
			}
			data[i] = int32(d)
		}
		v.Data = data
		v.Attrs.Set("_FillValue", QAFillValue)
		if b.cal.Name == m.QABand() {
			var masks, values []int32
			var meanings []string
			for _, f := range m.QAFlags() {
				masks = append(masks, f.Mask)
				values = append(values, f.Value)
				meanings = append(meanings, strings.ReplaceAll(f.Meaning, " ", "_"))
			}
			v.Attrs.Set("flag_masks", masks)
			v.Attrs.Set("flag_values", values)
			v.Attrs.Set("flag_meanings", strings.Join(meanings, " "))
		}

	case metadata.KindAngle:
		// angle rasters hold hundredths of a degree and are kept as such
		data := make([]int16, len(b.grid.Data))
		for i, d := range b.grid.Data {
			if !b.grid.Valid[i] || d < quantize.EncodedMin || d > quantize.EncodedMax {
				data[i] = quantize.FillValue
				continue
			}
			data[i] = int16(d)
		}
		v.Data = data
		v.Attrs.Set("_FillValue", quantize.FillValue)
		v.Attrs.Set("scale_factor", 0.01)
		v.Attrs.Set("add_offset", 0.0)

	default:
		spec, ok := encodings[b.cal.Name]
		if !ok {
			spec, ok = encodings[b.cal.VariableName()]
		}
		if ok {
			d := quantize.Plan(b.cal.Name, b.grid, spec.Scale, spec.Offset)
			decision = &d
		}
		if decision != nil && decision.Enabled {
			codes, err := quantize.Encode(b.grid, *decision)
			if err != nil {
				return nil, nil, fmt.Errorf("scene %s: %w", m.Path, err)
			}
			v.Data = codes
			v.Attrs.Set("_FillValue", quantize.FillValue)
			v.Attrs.Set("scale_factor", decision.Scale)
			v.Attrs.Set("add_offset", decision.Offset)
			break
		}
		data := make([]float32, len(b.grid.Data))
		nan := float32(math.NaN())
		for i, d := range b.grid.Data {
			if b.grid.Valid[i] {
				data[i] = float32(d)
			} else {
				data[i] = nan
			}
		}
		v.Data = data
		v.Attrs.Set("_FillValue", nan)
	}

	for _, at := range [][2]string{
		{"units", b.desc.Units},
		{"standard_name", b.desc.StandardName},
		{"long_name", b.desc.LongName},
		{"comment", b.desc.Comment},
	} {
		if at[1] != "" {
			v.Attrs.Set(at[0], at[1])
		}
	}
	v.Attrs.Set("grid_mapping", "spatial_ref")
	if latlon {
		v.Attrs.Set("coordinates", "lon lat")
	}
	return v, decision, nil
}

func encodingNote(v *gridded.Variable) string {
	switch v.Data.(type) {
	case []int16:
		scale, _ := v.Attrs.Get("scale_factor")
		offset, _ := v.Attrs.Get("add_offset")
		return fmt.Sprintf("int16 scale_factor=%v add_offset=%v", scale, offset)
	case []int32:
		return "int32"
	}
	return "float32"
}

// epoch is the origin of the time coordinate.
var epoch = time.Date(1978, 1, 1, 0, 0, 0, 0, time.UTC)

// addCoordinates adds time, x, y, the spatial_ref grid mapping and, with
// latlon, per-pixel lat and lon. It returns the lon/lat bound of the grid
// when lat/lon were derived.
func (a *Assembler) addCoordinates(ds *gridded.Dataset, m *metadata.SceneMetadata, ref *raster.Grid, latlon bool) (*geoBound, error) {
	tv := &gridded.Variable{Name: "time", Dims: []string{"time"}, Data: []int32{int32(m.Acquired.Sub(epoch) / time.Second)}}
	tv.Attrs.Set("standard_name", "time")
	tv.Attrs.Set("long_name", "reference time of satellite image")
	tv.Attrs.Set("units", "seconds since 1978-01-01 00:00:00")
	tv.Attrs.Set("calendar", "gregorian")
	tv.Attrs.Set("axis", "T")
	ds.AddVar(tv)

	xs, ys := ref.Coordinates()
	xv := &gridded.Variable{Name: "x", Dims: []string{"x"}, Data: xs}
	xv.Attrs.Set("standard_name", "projection_x_coordinate")
	xv.Attrs.Set("long_name", "x coordinate of projection")
	xv.Attrs.Set("units", "m")
	xv.Attrs.Set("axis", "X")
	ds.AddVar(xv)

	yv := &gridded.Variable{Name: "y", Dims: []string{"y"}, Data: ys}
	yv.Attrs.Set("standard_name", "projection_y_coordinate")
	yv.Attrs.Set("long_name", "y coordinate of projection")
	yv.Attrs.Set("units", "m")
	yv.Attrs.Set("axis", "Y")
	ds.AddVar(yv)

	sr := &gridded.Variable{Name: "spatial_ref", Data: []int32{0}}
	sr.Attrs.Set("crs_wkt", ref.CRS)
	sr.Attrs.Set("spatial_ref", ref.CRS)
	gt := ref.Transform
	sr.Attrs.Set("GeoTransform", fmt.Sprintf("%v %v %v %v %v %v", gt[0], gt[1], gt[2], gt[3], gt[4], gt[5]))
	ds.AddVar(sr)

	if !latlon {
		return nil, nil
	}
	proj, err := a.Loader.Source.Projector(ref.CRS)
	if err != nil {
		return nil, err
	}
	defer proj.Close()
	lons, lats, err := ref.LonLat(proj)
	if err != nil {
		return nil, err
	}

	bound := &geoBound{minLat: math.Inf(1), maxLat: math.Inf(-1), minLon: math.Inf(1), maxLon: math.Inf(-1)}
	lat32 := make([]float32, len(lats))
	lon32 := make([]float32, len(lons))
	for i := range lats {
		lat32[i], lon32[i] = float32(lats[i]), float32(lons[i])
		if math.IsNaN(lats[i]) || math.IsNaN(lons[i]) {
			continue
		}
		bound.minLat, bound.maxLat = min(bound.minLat, lats[i]), max(bound.maxLat, lats[i])
		bound.minLon, bound.maxLon = min(bound.minLon, lons[i]), max(bound.maxLon, lons[i])
	}

	lat := &gridded.Variable{Name: "lat", Dims: []string{"y", "x"}, Data: lat32, Compress: true}
	lat.Attrs.Set("standard_name", "latitude")
	lat.Attrs.Set("long_name", "latitude")
	lat.Attrs.Set("units", "degrees_north")
	ds.AddVar(lat)

	lon := &gridded.Variable{Name: "lon", Dims: []string{"y", "x"}, Data: lon32, Compress: true}
	lon.Attrs.Set("standard_name", "longitude")
	lon.Attrs.Set("long_name", "longitude")
	lon.Attrs.Set("units", "degrees_east")
	ds.AddVar(lon)

	if math.IsInf(bound.minLat, 1) {
		return nil, nil
	}
	return bound, nil
}

type geoBound struct {
	minLat, maxLat, minLon, maxLon float64
}
