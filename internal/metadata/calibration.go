package metadata

import (
	"fmt"
	"math"
)

// Coefficients is a linear DN to physical-unit mapping: value = Gain*DN + Offset.
type Coefficients struct {
	Gain   float64
	Offset float64
}

func (c Coefficients) Apply(dn float64) float64 {
	return c.Gain*dn + c.Offset
}

// CalibrationSource is how a mission encodes a band's calibration in its
// metadata. Both forms normalise to Coefficients at parse time.
type CalibrationSource interface {
	Normalize() (Coefficients, error)
	calibrationSource()
}

// Legacy holds the ETM+ style min/max constants.
type Legacy struct {
	MinValue, MaxValue float64
	MinDN, MaxDN       float64
}

func (l Legacy) Normalize() (Coefficients, error) {
	if l.MaxDN == l.MinDN {
		return Coefficients{}, fmt.Errorf("degenerate DN range [%g, %g]", l.MinDN, l.MaxDN)
	}
	gain := (l.MaxValue - l.MinValue) / (l.MaxDN - l.MinDN)
	return Coefficients{Gain: gain, Offset: l.MinValue - gain*l.MinDN}, nil
}

func (Legacy) calibrationSource() {}

// Linear holds OLI/TIRS style MULT/ADD rescaling factors.
type Linear struct {
	Mult, Add float64
}

func (l Linear) Normalize() (Coefficients, error) {
	if math.IsNaN(l.Mult) || math.IsNaN(l.Add) {
		return Coefficients{}, fmt.Errorf("non-numeric rescaling factors")
	}
	return Coefficients{Gain: l.Mult, Offset: l.Add}, nil
}

func (Linear) calibrationSource() {}

// ThermalConstants convert radiance to brightness temperature.
type ThermalConstants struct {
	K1, K2 float64
}

// BandKind decides which conversion a band goes through.
type BandKind int

const (
	KindReflective BandKind = iota
	KindThermal
	KindQuality
	KindAngle
	KindSurface // level-2 products, decoded with fixed or metadata factors
)

func (k BandKind) String() string {
	switch k {
	case KindReflective:
		return "reflective"
	case KindThermal:
		return "thermal"
	case KindQuality:
		return "quality"
	case KindAngle:
		return "angle"
	case KindSurface:
		return "surface"
	}
	return fmt.Sprintf("BandKind(%d)", int(k))
}

// BandCalibration is everything needed to load and convert one band.
type BandCalibration struct {
	Name   string
	File   string // file name listed in the metadata, empty when not listed
	Suffix string // file name suffix used when File is empty or missing
	Kind   BandKind

	Panchromatic bool

	Radiance    *Coefficients
	Reflectance *Coefficients
	Thermal     *ThermalConstants
	Decode      *Coefficients

	RadianceSource    CalibrationSource
	ReflectanceSource CalibrationSource

	Fill    float64
	HasFill bool

	Units        string
	StandardName string
	LongName     string
	Comment      string
	OutputName   string // output variable name when different from Name
}

// VariableName is the name of the band in the output container.
func (c BandCalibration) VariableName() string {
	if c.OutputName != "" {
		return c.OutputName
	}
	return c.Name
}

// IsFill reports whether a raw DN is the band's fill value.
func (c BandCalibration) IsFill(dn float64) bool {
	return c.HasFill && dn == c.Fill
}
