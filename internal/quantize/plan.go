// Package quantize decides whether a band can be stored as scaled int16 and encodes it.
package quantize

import (
	"fmt"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/surftemp/landsat-importer/internal/raster"
)

const (
	// EncodedMin and EncodedMax bound the usable codes; -32768 is reserved for fill.
	EncodedMin = -32767
	EncodedMax = 32767

	FillValue int16 = math.MinInt16
)

// Spec requests int16 encoding of one band: value = code*Scale + Offset.
type Spec struct {
	Band   string
	Scale  float64
	Offset float64
}

// ParseSpec builds a Spec from its command line tokens.
func ParseSpec(band, scale, offset string) (Spec, error) {
	s, err := strconv.ParseFloat(scale, 64)
	if err != nil {
		return Spec{}, fmt.Errorf("int16 encoding of %s: scale %q: %w", band, scale, err)
	}
	o, err := strconv.ParseFloat(offset, 64)
	if err != nil {
		return Spec{}, fmt.Errorf("int16 encoding of %s: offset %q: %w", band, offset, err)
	}
	if !(s > 0) || math.IsInf(s, 0) || math.IsNaN(o) || math.IsInf(o, 0) {
		return Spec{}, fmt.Errorf("int16 encoding of %s: scale must be a positive number and offset finite, got %s %s", band, scale, offset)
	}
	return Spec{Band: band, Scale: s, Offset: o}, nil
}

// Decision is the outcome of planning a Spec against a band's values.
type Decision struct {
	Spec
	Enabled bool

	HasData                bool
	DataMin, DataMax       float64
	EncodedMin, EncodedMax float64

	Message string
}

// Plan checks that every valid sample of values encodes into
// [EncodedMin, EncodedMax] with scale and offset.
func Plan(band string, values *raster.Grid, scale, offset float64) Decision {
	d := Decision{Spec: Spec{Band: band, Scale: scale, Offset: offset}}
	lo, hi, ok := values.Range()
	if !ok {
		d.Enabled = true
		d.Message = fmt.Sprintf("band %s: no valid samples, int16 encoding with scale_factor=%v add_offset=%v enabled", band, scale, offset)
		return d
	}
	d.HasData = true
	d.DataMin, d.DataMax = lo, hi
	d.EncodedMin = encode(lo, scale, offset)
	d.EncodedMax = encode(hi, scale, offset)
	d.Enabled = d.EncodedMin >= EncodedMin && d.EncodedMax <= EncodedMax

	d.Message = fmt.Sprintf("band %s: int16 encoding with scale_factor=%v add_offset=%v maps data range (%v, %v) to encoded range (%v, %v)",
		band, scale, offset, d.DataMin, d.DataMax, d.EncodedMin, d.EncodedMax)
	if !d.Enabled {
		d.Message += fmt.Sprintf(" outside [%d, %d], int16 encoding disabled, storing as float32", EncodedMin, EncodedMax)
	}
	return d
}

// Report logs the decision: a warning when encoding was disabled.
func (d Decision) Report(log logrus.FieldLogger) {
	entry := log.WithField("band", d.Band)
	if d.Enabled {
		entry.Debug(d.Message)
		return
	}
	entry.Warn(d.Message)
}

func encode(v, scale, offset float64) float64 {
	return math.Round((v - offset) / scale)
}

// Encode converts the grid to int16 codes using d. Invalid samples get FillValue.
func Encode(g *raster.Grid, d Decision) ([]int16, error) {
	if !d.Enabled {
		return nil, fmt.Errorf("band %s: int16 encoding is disabled", d.Band)
	}
	out := make([]int16, len(g.Data))
	for i, v := range g.Data {
		if !g.Valid[i] {
			out[i] = FillValue
			continue
		}
		code := encode(v, d.Scale, d.Offset)
		if code < EncodedMin || code > EncodedMax {
			return nil, fmt.Errorf("band %s: sample %v encodes to %v, outside the planned range", d.Band, v, code)
		}
		out[i] = int16(code)
	}
	return out, nil
}
