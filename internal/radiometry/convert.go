package radiometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/surftemp/landsat-importer/internal/metadata"
	"github.com/surftemp/landsat-importer/internal/raster"
)

// ErrCalibrationAbsent means the scene has no coefficients for the requested quantity.
var ErrCalibrationAbsent = errors.New("calibration absent")

// InvalidSunAngleError is returned when the sun elevation gives sin(elevation) <= 0.
type InvalidSunAngleError struct {
	Elevation float64
}

func (e *InvalidSunAngleError) Error() string {
	return fmt.Sprintf("sun elevation %g degrees has no positive sine, cannot correct reflectance", e.Elevation)
}

// SunCorrection is the divisor applied to reflectance: sin(elevation).
func SunCorrection(elevation float64) (float64, error) {
	s := math.Sin(elevation * math.Pi / 180)
	if !(s > 0) {
		return 0, &InvalidSunAngleError{Elevation: elevation}
	}
	return s, nil
}

// Convert maps the raw DN grid of a band to its physical quantity. Invalid
// samples stay invalid. sunElevation is only used for corrected reflectance.
func Convert(raw *raster.Grid, cal metadata.BandCalibration, mode Mode, sunElevation float64) (*raster.Grid, error) {
	switch cal.Kind {
	case metadata.KindReflective:
		return convertOptical(raw, cal, mode, sunElevation)

	case metadata.KindThermal:
		if cal.Radiance == nil {
			return nil, fmt.Errorf("band %s radiance: %w", cal.Name, ErrCalibrationAbsent)
		}
		rad := *cal.Radiance
		if cal.Thermal == nil {
			return raw.Map(rad.Apply), nil
		}
		k := *cal.Thermal
		return raw.Map(func(dn float64) float64 {
			return k.K2 / math.Log(k.K1/rad.Apply(dn)+1)
		}), nil

	case metadata.KindSurface:
		if cal.Decode == nil {
			return nil, fmt.Errorf("band %s decoding factors: %w", cal.Name, ErrCalibrationAbsent)
		}
		return raw.Map(cal.Decode.Apply), nil

	case metadata.KindQuality, metadata.KindAngle:
		return raw.Map(func(dn float64) float64 { return dn }), nil
	}
	return nil, fmt.Errorf("band %s: unhandled kind %s", cal.Name, cal.Kind)
}

func convertOptical(raw *raster.Grid, cal metadata.BandCalibration, mode Mode, sunElevation float64) (*raster.Grid, error) {
	switch mode {
	case Radiance:
		if cal.Radiance == nil {
			return nil, fmt.Errorf("band %s radiance: %w", cal.Name, ErrCalibrationAbsent)
		}
		return raw.Map(cal.Radiance.Apply), nil

	case Reflectance:
		if cal.Reflectance == nil {
			return nil, fmt.Errorf("band %s reflectance: %w", cal.Name, ErrCalibrationAbsent)
		}
		return raw.Map(cal.Reflectance.Apply), nil

	case CorrectedReflectance:
		if cal.Reflectance == nil {
			return nil, fmt.Errorf("band %s reflectance: %w", cal.Name, ErrCalibrationAbsent)
		}
		s, err := SunCorrection(sunElevation)
		if err != nil {
			return nil, fmt.Errorf("band %s: %w", cal.Name, err)
		}
		refl := *cal.Reflectance
		return raw.Map(func(dn float64) float64 { return refl.Apply(dn) / s }), nil
	}
	return nil, fmt.Errorf("band %s: unhandled mode %s", cal.Name, mode)
}

// Description holds the CF attributes of a converted band.
type Description struct {
	Units        string
	StandardName string
	LongName     string
	Comment      string
}

// Describe returns the attributes of cal once converted with mode.
func Describe(cal metadata.BandCalibration, mode Mode) Description {
	d := Description{Units: cal.Units, StandardName: cal.StandardName, LongName: cal.LongName, Comment: cal.Comment}
	switch cal.Kind {
	case metadata.KindReflective:
		switch mode {
		case Radiance:
			d.Units, d.StandardName = "W m-2 sr-1 um-1", "toa_outgoing_radiance_per_unit_wavelength"
		case Reflectance:
			d.Units, d.StandardName = "1", ""
			d.Comment = "TOA reflectance without factor for solar zenith angle"
		case CorrectedReflectance:
			d.Units, d.StandardName = "1", "toa_bidirectional_reflectance"
		}
	case metadata.KindThermal:
		if cal.Thermal == nil {
			d.Units, d.StandardName = "W m-2 sr-1 um-1", "toa_outgoing_radiance_per_unit_wavelength"
		}
	}
	return d
}
