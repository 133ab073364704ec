package metadata

import "fmt"

// bandSpec describes a band a product may contain, independent of any scene.
type bandSpec struct {
	name       string
	key        string // suffix of the *_BAND_<key> metadata fields
	kind       BandKind
	fileKey    string
	suffix     string
	pan        bool
	fill       *float64
	decode     *Coefficients // fixed level-2 scaling
	units      string
	standard   string
	longName   string
	comment    string
	outputName string
}

func fill(v float64) *float64 { return &v }

func l1Bands(sat Satellite, collection int) []bandSpec {
	var specs []bandSpec
	reflective := func(n int) bandSpec {
		return bandSpec{
			name:    fmt.Sprintf("B%d", n),
			key:     fmt.Sprint(n),
			kind:    KindReflective,
			fileKey: fmt.Sprintf("FILE_NAME_BAND_%d", n),
			suffix:  fmt.Sprintf("B%d.TIF", n),
			fill:    fill(0),
		}
	}
	thermal := func(name, key string) bandSpec {
		return bandSpec{
			name:     name,
			key:      key,
			kind:     KindThermal,
			fileKey:  "FILE_NAME_BAND_" + key,
			suffix:   "B" + key + ".TIF",
			fill:     fill(0),
			units:    "K",
			standard: "toa_brightness_temperature",
		}
	}

	switch sat {
	case Landsat7:
		for _, n := range []int{1, 2, 3, 4, 5} {
			specs = append(specs, reflective(n))
		}
		specs = append(specs, thermal("B6_1", "6_VCID_1"), thermal("B6_2", "6_VCID_2"))
		specs = append(specs, reflective(7))
		pan := reflective(8)
		pan.pan = true
		specs = append(specs, pan)
	default:
		for n := 1; n <= 9; n++ {
			s := reflective(n)
			s.pan = n == 8
			specs = append(specs, s)
		}
		specs = append(specs, thermal("B10", "10"), thermal("B11", "11"))
	}

	if collection == 1 {
		specs = append(specs, bandSpec{name: "QA", kind: KindQuality, fileKey: "FILE_NAME_BAND_QUALITY", suffix: "BQA.TIF"})
		return specs
	}
	specs = append(specs, bandSpec{name: "QA_PIXEL", kind: KindQuality, fileKey: "FILE_NAME_QUALITY_L1_PIXEL", suffix: "QA_PIXEL.TIF"})
	specs = append(specs, angleBands()...)
	return specs
}

func angleBands() []bandSpec {
	angle := func(name, fileKey, output, standard, long, comment string) bandSpec {
		return bandSpec{
			name:       name,
			kind:       KindAngle,
			fileKey:    fileKey,
			suffix:     name + ".TIF",
			units:      "degree",
			standard:   standard,
			longName:   long,
			comment:    comment,
			outputName: output,
		}
	}
	return []bandSpec{
		angle("SAA", "FILE_NAME_ANGLE_SOLAR_AZIMUTH_BAND_4", "solar_azimuth_angle", "solar_azimuth_angle", "solar azimuth angle", ""),
		angle("SZA", "FILE_NAME_ANGLE_SOLAR_ZENITH_BAND_4", "solar_zenith_angle", "solar_zenith_angle", "solar zenith angle", ""),
		angle("VAA", "FILE_NAME_ANGLE_SENSOR_AZIMUTH_BAND_4", "satellite_azimuth_angle", "sensor_azimuth_angle", "satellite azimuth angle",
			"The satellite azimuth angle at the time of the observations"),
		angle("VZA", "FILE_NAME_ANGLE_SENSOR_ZENITH_BAND_4", "satellite_zenith_angle", "sensor_zenith_angle", "satellite zenith angle",
			"The satellite zenith angle at the time of the observations"),
	}
}

func l2Bands(sat Satellite) []bandSpec {
	var specs []bandSpec
	optical := []int{1, 2, 3, 4, 5, 6, 7}
	stKey := "ST_B10"
	if sat == Landsat7 {
		optical = []int{1, 2, 3, 4, 5, 7}
		stKey = "ST_B6"
	}
	for _, n := range optical {
		specs = append(specs, bandSpec{
			name:     fmt.Sprintf("B%d", n),
			key:      fmt.Sprint(n),
			kind:     KindSurface,
			fileKey:  fmt.Sprintf("FILE_NAME_BAND_%d", n),
			suffix:   fmt.Sprintf("SR_B%d.TIF", n),
			fill:     fill(0),
			units:    "1",
			standard: "surface_bidirectional_reflectance",
		})
	}
	specs = append(specs, bandSpec{
		name:     "ST",
		key:      stKey,
		kind:     KindSurface,
		fileKey:  "FILE_NAME_BAND_" + stKey,
		suffix:   stKey + ".TIF",
		fill:     fill(0),
		units:    "K",
		standard: "surface_temperature",
	})

	aux := func(name, fileKey, suffix string, scale float64, units string) bandSpec {
		return bandSpec{
			name:    name,
			kind:    KindSurface,
			fileKey: fileKey,
			suffix:  suffix,
			fill:    fill(-9999),
			decode:  &Coefficients{Gain: scale},
			units:   units,
		}
	}
	specs = append(specs,
		aux("ST_QA", "FILE_NAME_QUALITY_L2_SURFACE_TEMPERATURE", "ST_QA.TIF", 0.01, "K"),
		aux("EMIS", "FILE_NAME_EMISSIVITY", "ST_EMIS.TIF", 0.0001, "1"),
		aux("EMSD", "FILE_NAME_EMISSIVITY_STDEV", "ST_EMSD.TIF", 0.0001, "1"),
		aux("TRAD", "FILE_NAME_THERMAL_RADIANCE", "ST_TRAD.TIF", 0.001, "W/(m2.sr.μm)"),
		aux("URAD", "FILE_NAME_UPWELL_RADIANCE", "ST_URAD.TIF", 0.001, "W/(m2.sr.μm)"),
		aux("DRAD", "FILE_NAME_DOWNWELL_RADIANCE", "ST_DRAD.TIF", 0.001, "W/(m2.sr.μm)"),
		aux("ATRAN", "FILE_NAME_ATMOSPHERIC_TRANSMITTANCE", "ST_ATRAN.TIF", 0.0001, "1"),
	)

	specs = append(specs, bandSpec{name: "QA_PIXEL", kind: KindQuality, fileKey: "FILE_NAME_QUALITY_L1_PIXEL", suffix: "QA_PIXEL.TIF"})
	if sat != Landsat7 {
		specs = append(specs, bandSpec{name: "QA_AEROSOL", kind: KindQuality, fileKey: "FILE_NAME_QUALITY_L2_AEROSOL", suffix: "SR_QA_AEROSOL.TIF"})
	}
	specs = append(specs, bandSpec{name: "QA_RADSAT", kind: KindQuality, fileKey: "FILE_NAME_QUALITY_L1_RADIOMETRIC_SATURATION", suffix: "QA_RADSAT.TIF"})
	return specs
}
