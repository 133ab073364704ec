// Package metadata parses Landsat MTL metadata files into calibration parameters.
package metadata

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"github.com/surftemp/landsat-importer/internal/geo"
)

type Satellite int

const (
	Landsat7 Satellite = 7
	Landsat8 Satellite = 8
	Landsat9 Satellite = 9
)

// Product is the label used in output file names, e.g. "Landsat8".
func (s Satellite) Product() string {
	return fmt.Sprintf("Landsat%d", int(s))
}

func (s Satellite) String() string {
	return fmt.Sprintf("LANDSAT_%d", int(s))
}

// SceneMetadata is the parsed content of one scene's MTL file.
type SceneMetadata struct {
	Path string

	Satellite       Satellite
	SpacecraftID    string
	SensorID        string
	ProcessingLevel string
	Level           int
	Collection      int
	Acquired        time.Time

	// SunElevation is NaN when the metadata does not carry it.
	SunElevation     float64
	SunAzimuth       float64
	EarthSunDistance float64

	Footprint *geo.Footprint

	ProductID  string
	SceneID    string
	DOI        string
	Origin     string
	SoftwareL1 string
	SoftwareL2 string

	bands []BandCalibration
	index map[string]int
}

// Dir is the folder holding the metadata file and the band rasters.
func (m *SceneMetadata) Dir() string {
	return filepath.Dir(m.Path)
}

// Stem is the metadata file name without the _MTL suffix and extension.
func (m *SceneMetadata) Stem() string {
	base := filepath.Base(m.Path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if i := strings.LastIndex(strings.ToUpper(base), "_MTL"); i > 0 {
		return base[:i]
	}
	return base
}

// ID identifies the product in the output "source" attribute.
func (m *SceneMetadata) ID() string {
	if m.ProductID != "" {
		return m.ProductID
	}
	return m.Stem()
}

// Bands returns the calibrated bands in catalogue order.
func (m *SceneMetadata) Bands() []BandCalibration {
	out := make([]BandCalibration, len(m.bands))
	copy(out, m.bands)
	return out
}

// Calibration returns the calibration of a band, or a BandRequestError when
// the scene has no such band.
func (m *SceneMetadata) Calibration(band string) (BandCalibration, error) {
	i, ok := m.index[band]
	if !ok {
		return BandCalibration{}, &BandRequestError{Path: m.Path, Band: band}
	}
	return m.bands[i], nil
}

// DefaultBands lists the bands exported when none are requested: everything
// except the panchromatic band, and angle bands unless includeAngles is set.
func (m *SceneMetadata) DefaultBands(includeAngles bool) []string {
	var names []string
	for _, b := range m.bands {
		if b.Panchromatic || b.Kind == KindAngle {
			continue
		}
		names = append(names, b.Name)
	}
	if includeAngles {
		names = append(names, m.AngleBands()...)
	}
	return names
}

func (m *SceneMetadata) AngleBands() []string {
	var names []string
	for _, b := range m.bands {
		if b.Kind == KindAngle {
			names = append(names, b.Name)
		}
	}
	return names
}

// Bound is the lon/lat bound of the scene footprint.
func (m *SceneMetadata) Bound() (orb.Bound, bool) {
	if m.Footprint == nil {
		return orb.Bound{}, false
	}
	return m.Footprint.Bound(), true
}

var productInfo = map[string]struct{ title, summary string }{
	"https://doi.org/10.5066/P975CC9B": {
		"Landsat 8-9 Operational Land Imager and Thermal Infrared Sensor Collection 2 Level-1 Data",
		"Landsat 8-9 Operational Land Imager (OLI) and Thermal Infrared Sensor (TIRS) Collection 2 Level-1 15- to 30-meter multispectral data.",
	},
	"https://doi.org/10.5066/P9OGBGM6": {
		"Landsat 8-9 OLI/TIRS Collection 2 Level-2 Science Products",
		"Landsat 8-9 Operational Land Imager (OLI) and Thermal Infrared (TIRS) Collection 2 Level-2 Science Products 30-meter multispectral data.",
	},
}

func (m *SceneMetadata) Title() string {
	if info, ok := productInfo[m.DOI]; ok {
		return info.title
	}
	return fmt.Sprintf("%s %s data", m.SpacecraftID, m.ProcessingLevel)
}

func (m *SceneMetadata) Summary() string {
	return productInfo[m.DOI].summary
}

// layout names the groups holding each field in one collection's MTL schema.
type layout struct {
	root       string
	collection int

	attributes string // spacecraft, sensor, acquisition date and time
	sun        string
	level      string
	levelField string
	files      string
	corners    string
	info       string // product id, collection number, doi, origin
	scene      string
	software   string
	software2  string
	rescaling  string
	thermal    []string
	minMaxRad  string
	minMaxRef  string
	minMaxDN   string
	l2Reflect  string
	l2Temp     string
}

var collection1 = layout{
	root:       "L1_METADATA_FILE",
	collection: 1,
	attributes: "PRODUCT_METADATA",
	sun:        "IMAGE_ATTRIBUTES",
	level:      "PRODUCT_METADATA",
	levelField: "DATA_TYPE",
	files:      "PRODUCT_METADATA",
	corners:    "PRODUCT_METADATA",
	info:       "METADATA_FILE_INFO",
	scene:      "METADATA_FILE_INFO",
	software:   "METADATA_FILE_INFO",
	rescaling:  "RADIOMETRIC_RESCALING",
	thermal:    []string{"TIRS_THERMAL_CONSTANTS", "THERMAL_CONSTANTS"},
	minMaxRad:  "MIN_MAX_RADIANCE",
	minMaxRef:  "MIN_MAX_REFLECTANCE",
	minMaxDN:   "MIN_MAX_PIXEL_VALUE",
}

var collection2 = layout{
	root:       "LANDSAT_METADATA_FILE",
	collection: 2,
	attributes: "IMAGE_ATTRIBUTES",
	sun:        "IMAGE_ATTRIBUTES",
	level:      "PRODUCT_CONTENTS",
	levelField: "PROCESSING_LEVEL",
	files:      "PRODUCT_CONTENTS",
	corners:    "PROJECTION_ATTRIBUTES",
	info:       "PRODUCT_CONTENTS",
	scene:      "LEVEL1_PROCESSING_RECORD",
	software:   "LEVEL1_PROCESSING_RECORD",
	software2:  "LEVEL2_PROCESSING_RECORD",
	rescaling:  "LEVEL1_RADIOMETRIC_RESCALING",
	thermal:    []string{"LEVEL1_THERMAL_CONSTANTS"},
	minMaxRad:  "LEVEL1_MIN_MAX_RADIANCE",
	minMaxRef:  "LEVEL1_MIN_MAX_REFLECTANCE",
	minMaxDN:   "LEVEL1_MIN_MAX_PIXEL_VALUE",
	l2Reflect:  "LEVEL2_SURFACE_REFLECTANCE_PARAMETERS",
	l2Temp:     "LEVEL2_SURFACE_TEMPERATURE_PARAMETERS",
}

// Parse reads and interprets the MTL file at path.
func Parse(path string) (*SceneMetadata, error) {
	tree, err := ReadTree(path)
	if err != nil {
		return nil, &FormatError{Path: path, Field: "document", Err: err}
	}
	return FromTree(path, tree)
}

// FromTree interprets an already decoded MTL tree. path is used for error
// messages and to resolve band files.
func FromTree(path string, tree Tree) (*SceneMetadata, error) {
	p := &parser{path: path}
	switch {
	case tree.Has(collection2.root):
		p.l = collection2
	case tree.Has(collection1.root):
		p.l = collection1
	default:
		return nil, &FormatError{Path: path, Field: "LANDSAT_METADATA_FILE or L1_METADATA_FILE"}
	}
	p.tree, _ = tree.Group(p.l.root)

	m := &SceneMetadata{Path: path, index: map[string]int{}}

	var err error
	if m.SpacecraftID, err = p.required(p.l.attributes, "SPACECRAFT_ID"); err != nil {
		return nil, err
	}
	switch m.SpacecraftID {
	case "LANDSAT_7":
		m.Satellite = Landsat7
	case "LANDSAT_8":
		m.Satellite = Landsat8
	case "LANDSAT_9":
		m.Satellite = Landsat9
	default:
		return nil, &UnsupportedSensorError{Path: path, SpacecraftID: m.SpacecraftID}
	}

	if m.ProcessingLevel, err = p.required(p.l.level, p.l.levelField); err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(m.ProcessingLevel, "L1"):
		m.Level = 1
	case strings.HasPrefix(m.ProcessingLevel, "L2SP"):
		m.Level = 2
	default:
		return nil, &FormatError{Path: path, Field: p.l.levelField, Err: fmt.Errorf("unsupported processing level %q", m.ProcessingLevel)}
	}

	if m.Acquired, err = p.acquired(); err != nil {
		return nil, err
	}

	m.Collection = p.l.collection
	if n, ok, err := p.number(p.l.info, "COLLECTION_NUMBER"); err != nil {
		return nil, err
	} else if ok {
		m.Collection = int(n)
	}

	m.SensorID, _ = p.str(p.l.attributes, "SENSOR_ID")
	m.ProductID, _ = p.str(p.l.info, "LANDSAT_PRODUCT_ID")
	m.SceneID, _ = p.str(p.l.scene, "LANDSAT_SCENE_ID")
	m.DOI, _ = p.str(p.l.info, "DIGITAL_OBJECT_IDENTIFIER")
	m.Origin, _ = p.str(p.l.info, "ORIGIN")
	m.SoftwareL1, _ = p.str(p.l.software, "PROCESSING_SOFTWARE_VERSION")
	if m.Level == 2 && p.l.software2 != "" {
		m.SoftwareL2, _ = p.str(p.l.software2, "PROCESSING_SOFTWARE_VERSION")
	}

	if m.SunElevation, err = p.optional(p.l.sun, "SUN_ELEVATION"); err != nil {
		return nil, err
	}
	if m.SunAzimuth, err = p.optional(p.l.sun, "SUN_AZIMUTH"); err != nil {
		return nil, err
	}
	if m.EarthSunDistance, err = p.optional(p.l.sun, "EARTH_SUN_DISTANCE"); err != nil {
		return nil, err
	}
	if m.Footprint, err = p.footprint(); err != nil {
		return nil, err
	}

	var specs []bandSpec
	if m.Level == 1 {
		specs = l1Bands(m.Satellite, m.Collection)
	} else {
		specs = l2Bands(m.Satellite)
	}
	calibrated := 0
	for _, s := range specs {
		cal, ok, err := p.calibrate(m.Satellite, s)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if cal.Radiance != nil || cal.Reflectance != nil || cal.Decode != nil {
			calibrated++
		}
		m.index[cal.Name] = len(m.bands)
		m.bands = append(m.bands, cal)
	}
	if calibrated == 0 {
		return nil, &FormatError{Path: path, Field: "band calibration"}
	}
	return m, nil
}

type parser struct {
	path string
	tree Tree
	l    layout
}

func (p *parser) str(group, field string) (string, bool) {
	return p.tree.Get(group + "/" + field)
}

func (p *parser) required(group, field string) (string, error) {
	v, ok := p.str(group, field)
	if !ok || v == "" {
		return "", &FormatError{Path: p.path, Field: group + "/" + field}
	}
	return v, nil
}

func (p *parser) number(group, field string) (float64, bool, error) {
	v, ok := p.str(group, field)
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, &FormatError{Path: p.path, Field: group + "/" + field, Err: err}
	}
	return f, true, nil
}

// optional returns NaN for an absent field.
func (p *parser) optional(group, field string) (float64, error) {
	f, ok, err := p.number(group, field)
	if err != nil {
		return 0, err
	}
	if !ok {
		return math.NaN(), nil
	}
	return f, nil
}

func (p *parser) acquired() (time.Time, error) {
	date, err := p.required(p.l.attributes, "DATE_ACQUIRED")
	if err != nil {
		return time.Time{}, err
	}
	clock, err := p.required(p.l.attributes, "SCENE_CENTER_TIME")
	if err != nil {
		return time.Time{}, err
	}
	// SCENE_CENTER_TIME carries sub-second digits and a Z suffix, only HH:MM:SS is kept
	if len(clock) > 8 {
		clock = clock[:8]
	}
	t, err := time.Parse("2006-01-02 15:04:05", strings.TrimSpace(date)+" "+clock)
	if err != nil {
		return time.Time{}, &FormatError{Path: p.path, Field: "DATE_ACQUIRED/SCENE_CENTER_TIME", Err: err}
	}
	return t.UTC(), nil
}

func (p *parser) footprint() (*geo.Footprint, error) {
	corner := func(name string) (orb.Point, bool, error) {
		lat, okLat, err := p.number(p.l.corners, "CORNER_"+name+"_LAT_PRODUCT")
		if err != nil {
			return orb.Point{}, false, err
		}
		lon, okLon, err := p.number(p.l.corners, "CORNER_"+name+"_LON_PRODUCT")
		if err != nil {
			return orb.Point{}, false, err
		}
		return orb.Point{lon, lat}, okLat && okLon, nil
	}
	var f geo.Footprint
	for _, c := range []struct {
		name string
		dst  *orb.Point
	}{{"UL", &f.UL}, {"UR", &f.UR}, {"LL", &f.LL}, {"LR", &f.LR}} {
		pt, ok, err := corner(c.name)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		*c.dst = pt
	}
	return &f, nil
}

// linear reads a MULT/ADD pair, returning nil when either is absent.
func (p *parser) linear(group, mult, add string) (*Linear, error) {
	if group == "" {
		return nil, nil
	}
	m, okM, err := p.number(group, mult)
	if err != nil {
		return nil, err
	}
	a, okA, err := p.number(group, add)
	if err != nil {
		return nil, err
	}
	if !okM || !okA {
		return nil, nil
	}
	return &Linear{Mult: m, Add: a}, nil
}

// legacy reads ETM+ min/max constants for quantity ("RADIANCE" or "REFLECTANCE").
func (p *parser) legacy(group, quantity, key string) (*Legacy, error) {
	var vals [4]float64
	for i, f := range []struct{ group, field string }{
		{group, quantity + "_MINIMUM_BAND_" + key},
		{group, quantity + "_MAXIMUM_BAND_" + key},
		{p.l.minMaxDN, "QUANTIZE_CAL_MIN_BAND_" + key},
		{p.l.minMaxDN, "QUANTIZE_CAL_MAX_BAND_" + key},
	} {
		v, ok, err := p.number(f.group, f.field)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		vals[i] = v
	}
	return &Legacy{MinValue: vals[0], MaxValue: vals[1], MinDN: vals[2], MaxDN: vals[3]}, nil
}

// source picks the Legacy constants on Landsat 7 and the linear factors otherwise,
// falling back to whichever form is present.
func (p *parser) source(sat Satellite, quantity, group, key string) (CalibrationSource, error) {
	lin, err := p.linear(p.l.rescaling, quantity+"_MULT_BAND_"+key, quantity+"_ADD_BAND_"+key)
	if err != nil {
		return nil, err
	}
	if sat == Landsat7 {
		leg, err := p.legacy(group, quantity, key)
		if err != nil {
			return nil, err
		}
		if leg != nil {
			return *leg, nil
		}
	}
	if lin != nil {
		return *lin, nil
	}
	return nil, nil
}

func (p *parser) normalize(src CalibrationSource, field string) (*Coefficients, error) {
	if src == nil {
		return nil, nil
	}
	c, err := src.Normalize()
	if err != nil {
		return nil, &FormatError{Path: p.path, Field: field, Err: err}
	}
	return &c, nil
}

// calibrate builds the calibration of one catalogue band. ok is false when the
// scene carries no usable coefficients for it.
func (p *parser) calibrate(sat Satellite, s bandSpec) (cal BandCalibration, ok bool, err error) {
	cal = BandCalibration{
		Name:         s.name,
		Suffix:       s.suffix,
		Kind:         s.kind,
		Panchromatic: s.pan,
		Units:        s.units,
		StandardName: s.standard,
		LongName:     s.longName,
		Comment:      s.comment,
		OutputName:   s.outputName,
	}
	cal.File, _ = p.str(p.l.files, s.fileKey)
	if s.fill != nil {
		cal.Fill, cal.HasFill = *s.fill, true
	}

	switch s.kind {
	case KindReflective, KindThermal:
		if cal.RadianceSource, err = p.source(sat, "RADIANCE", p.l.minMaxRad, s.key); err != nil {
			return cal, false, err
		}
		if cal.Radiance, err = p.normalize(cal.RadianceSource, "RADIANCE_BAND_"+s.key); err != nil {
			return cal, false, err
		}
		if s.kind == KindReflective {
			if cal.ReflectanceSource, err = p.source(sat, "REFLECTANCE", p.l.minMaxRef, s.key); err != nil {
				return cal, false, err
			}
			if cal.Reflectance, err = p.normalize(cal.ReflectanceSource, "REFLECTANCE_BAND_"+s.key); err != nil {
				return cal, false, err
			}
		} else {
			if cal.Thermal, err = p.thermal(s.key); err != nil {
				return cal, false, err
			}
		}
		return cal, cal.Radiance != nil || cal.Reflectance != nil, nil

	case KindSurface:
		if s.decode != nil {
			d := *s.decode
			cal.Decode = &d
			return cal, true, nil
		}
		group, quantity := p.l.l2Reflect, "REFLECTANCE"
		if s.name == "ST" {
			group, quantity = p.l.l2Temp, "TEMPERATURE"
		}
		lin, err := p.linear(group, quantity+"_MULT_BAND_"+s.key, quantity+"_ADD_BAND_"+s.key)
		if err != nil || lin == nil {
			return cal, false, err
		}
		if cal.Decode, err = p.normalize(*lin, quantity+"_BAND_"+s.key); err != nil {
			return cal, false, err
		}
		return cal, true, nil
	}

	// quality and angle bands are passed through
	return cal, true, nil
}

func (p *parser) thermal(key string) (*ThermalConstants, error) {
	for _, group := range p.l.thermal {
		k1, ok1, err := p.number(group, "K1_CONSTANT_BAND_"+key)
		if err != nil {
			return nil, err
		}
		k2, ok2, err := p.number(group, "K2_CONSTANT_BAND_"+key)
		if err != nil {
			return nil, err
		}
		if ok1 && ok2 {
			return &ThermalConstants{K1: k1, K2: k2}, nil
		}
	}
	return nil, nil
}
