// Package quicklook renders a band as a greyscale PNG preview.
package quicklook

import (
	"fmt"
	"sort"

	"github.com/fogleman/gg"

	"github.com/surftemp/landsat-importer/internal/raster"
)

// Stretch returns the values at the low and high percentiles of the valid samples.
func Stretch(g *raster.Grid, low, high float64) (lo, hi float64, ok bool) {
	var values []float64
	for i, v := range g.Data {
		if g.Valid[i] {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return 0, 0, false
	}
	sort.Float64s(values)
	at := func(p float64) float64 {
		i := int(p * float64(len(values)-1) / 100)
		return values[max(0, min(i, len(values)-1))]
	}
	return at(low), at(high), true
}

// Write saves g as a PNG at path, stretched between the 2nd and 98th
// percentiles. Invalid samples are drawn in red.
func Write(g *raster.Grid, path string) error {
	lo, hi, ok := Stretch(g, 2, 98)
	if !ok {
		return fmt.Errorf("no valid samples to render")
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	dc := gg.NewContext(g.Width, g.Height)
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			v, valid := g.At(col, row)
			if !valid {
				dc.SetRGB(1, 0, 0)
				dc.SetPixel(col, row)
				continue
			}
			gray := min(max((v-lo)/span, 0), 1)
			dc.SetRGB(gray, gray, gray)
			dc.SetPixel(col, row)
		}
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
