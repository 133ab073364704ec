package metadata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// group is an ordered MTL group used to render fixtures as XML or ODL text.
type group struct {
	name   string
	fields [][2]string
}

func (g *group) set(name, value string) {
	g.fields = append(g.fields, [2]string{name, value})
}

func renderXML(root string, groups []*group) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<%s>\n", root)
	for _, g := range groups {
		fmt.Fprintf(&b, "  <%s>\n", g.name)
		for _, f := range g.fields {
			fmt.Fprintf(&b, "    <%s>%s</%s>\n", f[0], f[1], f[0])
		}
		fmt.Fprintf(&b, "  </%s>\n", g.name)
	}
	fmt.Fprintf(&b, "</%s>\n", root)
	return b.String()
}

func renderODL(root string, groups []*group) string {
	var b strings.Builder
	fmt.Fprintf(&b, "GROUP = %s\n", root)
	for _, g := range groups {
		fmt.Fprintf(&b, "  GROUP = %s\n", g.name)
		for _, f := range g.fields {
			fmt.Fprintf(&b, "    %s = \"%s\"\n", f[0], f[1])
		}
		fmt.Fprintf(&b, "  END_GROUP = %s\n", g.name)
	}
	fmt.Fprintf(&b, "END_GROUP = %s\nEND\n", root)
	return b.String()
}

const fixtureStem = "LC08_L1TP_203023_20200612_20200824_02_T1"

// landsat89C2L1 builds a collection 2 level-1 MTL for LANDSAT_8 or LANDSAT_9.
func landsat89C2L1(spacecraft string) []*group {
	contents := &group{name: "PRODUCT_CONTENTS"}
	contents.set("ORIGIN", "Image courtesy of the U.S. Geological Survey")
	contents.set("DIGITAL_OBJECT_IDENTIFIER", "https://doi.org/10.5066/P975CC9B")
	contents.set("LANDSAT_PRODUCT_ID", fixtureStem)
	contents.set("PROCESSING_LEVEL", "L1TP")
	contents.set("COLLECTION_NUMBER", "02")
	for n := 1; n <= 11; n++ {
		contents.set(fmt.Sprintf("FILE_NAME_BAND_%d", n), fmt.Sprintf("%s_B%d.TIF", fixtureStem, n))
	}
	contents.set("FILE_NAME_QUALITY_L1_PIXEL", fixtureStem+"_QA_PIXEL.TIF")
	contents.set("FILE_NAME_ANGLE_SENSOR_AZIMUTH_BAND_4", fixtureStem+"_VAA.TIF")

	attrs := &group{name: "IMAGE_ATTRIBUTES"}
	attrs.set("SPACECRAFT_ID", spacecraft)
	attrs.set("SENSOR_ID", "OLI_TIRS")
	attrs.set("DATE_ACQUIRED", "2020-06-12")
	attrs.set("SCENE_CENTER_TIME", "11:05:42.3350840Z")
	attrs.set("SUN_AZIMUTH", "147.28")
	attrs.set("SUN_ELEVATION", "57.5")
	attrs.set("EARTH_SUN_DISTANCE", "1.0155")

	proj := &group{name: "PROJECTION_ATTRIBUTES"}
	for _, c := range []struct{ name, lat, lon string }{
		{"UL", "54.5", "-4.0"}, {"UR", "54.5", "-0.5"}, {"LL", "52.5", "-4.0"}, {"LR", "52.5", "-0.5"},
	} {
		proj.set("CORNER_"+c.name+"_LAT_PRODUCT", c.lat)
		proj.set("CORNER_"+c.name+"_LON_PRODUCT", c.lon)
	}

	record := &group{name: "LEVEL1_PROCESSING_RECORD"}
	record.set("LANDSAT_SCENE_ID", "LC82030232020164LGN00")
	record.set("PROCESSING_SOFTWARE_VERSION", "LPGS_15.3.1c")

	rescaling := &group{name: "LEVEL1_RADIOMETRIC_RESCALING"}
	for n := 1; n <= 11; n++ {
		rescaling.set(fmt.Sprintf("RADIANCE_MULT_BAND_%d", n), "1.2E-02")
		rescaling.set(fmt.Sprintf("RADIANCE_ADD_BAND_%d", n), "-60.0")
	}
	for n := 1; n <= 9; n++ {
		rescaling.set(fmt.Sprintf("REFLECTANCE_MULT_BAND_%d", n), "2.0E-05")
		rescaling.set(fmt.Sprintf("REFLECTANCE_ADD_BAND_%d", n), "-0.1")
	}

	thermal := &group{name: "LEVEL1_THERMAL_CONSTANTS"}
	thermal.set("K1_CONSTANT_BAND_10", "774.8853")
	thermal.set("K2_CONSTANT_BAND_10", "1321.0789")
	thermal.set("K1_CONSTANT_BAND_11", "480.8883")
	thermal.set("K2_CONSTANT_BAND_11", "1201.1442")

	return []*group{contents, attrs, proj, record, rescaling, thermal}
}

// landsat7C1L1 builds a collection 1 level-1 ETM+ MTL with min/max constants.
func landsat7C1L1() []*group {
	info := &group{name: "METADATA_FILE_INFO"}
	info.set("LANDSAT_SCENE_ID", "LE72030232003163ASN00")
	info.set("LANDSAT_PRODUCT_ID", "LE07_L1TP_203023_20030612_20160928_01_T1")
	info.set("PROCESSING_SOFTWARE_VERSION", "LPGS_12.8.2")
	info.set("COLLECTION_NUMBER", "01")

	product := &group{name: "PRODUCT_METADATA"}
	product.set("DATA_TYPE", "L1TP")
	product.set("SPACECRAFT_ID", "LANDSAT_7")
	product.set("SENSOR_ID", "ETM")
	product.set("DATE_ACQUIRED", "2003-06-12")
	product.set("SCENE_CENTER_TIME", "10:56:01.0000000Z")
	product.set("FILE_NAME_BAND_1", "LE07_B1.TIF")
	product.set("FILE_NAME_BAND_6_VCID_1", "LE07_B6_VCID_1.TIF")

	attrs := &group{name: "IMAGE_ATTRIBUTES"}
	attrs.set("SUN_ELEVATION", "30.0")

	rad := &group{name: "MIN_MAX_RADIANCE"}
	rad.set("RADIANCE_MAXIMUM_BAND_1", "191.600")
	rad.set("RADIANCE_MINIMUM_BAND_1", "-6.200")
	rad.set("RADIANCE_MAXIMUM_BAND_6_VCID_1", "17.040")
	rad.set("RADIANCE_MINIMUM_BAND_6_VCID_1", "0.000")

	ref := &group{name: "MIN_MAX_REFLECTANCE"}
	ref.set("REFLECTANCE_MAXIMUM_BAND_1", "0.300")
	ref.set("REFLECTANCE_MINIMUM_BAND_1", "-0.010")

	dn := &group{name: "MIN_MAX_PIXEL_VALUE"}
	for _, key := range []string{"1", "6_VCID_1"} {
		dn.set("QUANTIZE_CAL_MAX_BAND_"+key, "255")
		dn.set("QUANTIZE_CAL_MIN_BAND_"+key, "1")
	}

	thermal := &group{name: "THERMAL_CONSTANTS"}
	thermal.set("K1_CONSTANT_BAND_6_VCID_1", "666.09")
	thermal.set("K2_CONSTANT_BAND_6_VCID_1", "1282.71")

	return []*group{info, product, attrs, rad, ref, dn, thermal}
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func find(groups []*group, name string) *group {
	for _, g := range groups {
		if g.name == name {
			return g
		}
	}
	return nil
}

func drop(g *group, field string) {
	kept := g.fields[:0]
	for _, f := range g.fields {
		if f[0] != field {
			kept = append(kept, f)
		}
	}
	g.fields = kept
}
