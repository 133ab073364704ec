package metadata

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLandsat8XML(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, fixtureStem+"_MTL.xml", renderXML("LANDSAT_METADATA_FILE", landsat89C2L1("LANDSAT_8")))

	m, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, Landsat8, m.Satellite)
	assert.Equal(t, "Landsat8", m.Satellite.Product())
	assert.Equal(t, 1, m.Level)
	assert.Equal(t, "L1TP", m.ProcessingLevel)
	assert.Equal(t, 2, m.Collection)
	assert.Equal(t, time.Date(2020, 6, 12, 11, 5, 42, 0, time.UTC), m.Acquired)
	assert.Equal(t, 57.5, m.SunElevation)
	assert.Equal(t, "LPGS_15.3.1c", m.SoftwareL1)
	assert.Equal(t, fixtureStem, m.ID())
	assert.Equal(t, fixtureStem, m.Stem())
	assert.Contains(t, m.Title(), "Collection 2 Level-1 Data")

	b2, err := m.Calibration("B2")
	require.NoError(t, err)
	assert.Equal(t, KindReflective, b2.Kind)
	assert.Equal(t, fixtureStem+"_B2.TIF", b2.File)
	require.NotNil(t, b2.Radiance)
	require.NotNil(t, b2.Reflectance)
	assert.Equal(t, Coefficients{Gain: 0.012, Offset: -60}, *b2.Radiance)
	assert.Equal(t, Coefficients{Gain: 2e-5, Offset: -0.1}, *b2.Reflectance)
	assert.IsType(t, Linear{}, b2.RadianceSource)
	assert.True(t, b2.IsFill(0))

	b10, err := m.Calibration("B10")
	require.NoError(t, err)
	assert.Equal(t, KindThermal, b10.Kind)
	assert.Nil(t, b10.Reflectance)
	require.NotNil(t, b10.Thermal)
	assert.Equal(t, 774.8853, b10.Thermal.K1)

	vaa, err := m.Calibration("VAA")
	require.NoError(t, err)
	assert.Equal(t, "satellite_azimuth_angle", vaa.VariableName())
	assert.Equal(t, fixtureStem+"_VAA.TIF", vaa.File)

	sza, err := m.Calibration("SZA")
	require.NoError(t, err)
	assert.Empty(t, sza.File)
	assert.Equal(t, "SZA.TIF", sza.Suffix)

	bound, ok := m.Bound()
	require.True(t, ok)
	assert.Equal(t, -4.0, bound.Min.Lon())
	assert.Equal(t, 54.5, bound.Max.Lat())
}

func TestParseLandsat9ODL(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "LC09_TEST_MTL.txt", renderODL("LANDSAT_METADATA_FILE", landsat89C2L1("LANDSAT_9")))

	m, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, Landsat9, m.Satellite)
	assert.Equal(t, "LC09_TEST", m.Stem())
	// the ODL fixture quotes every value, quotes must be stripped
	assert.Equal(t, "OLI_TIRS", m.SensorID)
}

func TestDefaultBands(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "scene_MTL.xml", renderXML("LANDSAT_METADATA_FILE", landsat89C2L1("LANDSAT_8")))
	m, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"B1", "B2", "B3", "B4", "B5", "B6", "B7", "B9", "B10", "B11", "QA_PIXEL"},
		m.DefaultBands(false))
	withAngles := m.DefaultBands(true)
	assert.Equal(t, []string{"SAA", "SZA", "VAA", "VZA"}, withAngles[len(withAngles)-4:])
	assert.Equal(t, "QA_PIXEL", m.QABand())
	assert.Len(t, m.QAFlags(), 24)
}

func TestParseLandsat7Legacy(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "LE07_MTL.txt", renderODL("L1_METADATA_FILE", landsat7C1L1()))

	m, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, Landsat7, m.Satellite)
	assert.Equal(t, 1, m.Collection)
	assert.Equal(t, "QA", m.QABand())

	b1, err := m.Calibration("B1")
	require.NoError(t, err)
	require.IsType(t, Legacy{}, b1.RadianceSource)
	require.NotNil(t, b1.Radiance)
	gain := (191.6 + 6.2) / 254
	assert.InDelta(t, gain, b1.Radiance.Gain, 1e-12)
	assert.InDelta(t, -6.2-gain, b1.Radiance.Offset, 1e-12)
	require.NotNil(t, b1.Reflectance)
	assert.InDelta(t, 0.31/254, b1.Reflectance.Gain, 1e-12)

	b6, err := m.Calibration("B6_1")
	require.NoError(t, err)
	assert.Equal(t, KindThermal, b6.Kind)
	assert.Equal(t, "LE07_B6_VCID_1.TIF", b6.File)
	require.NotNil(t, b6.Thermal)
	assert.Equal(t, 666.09, b6.Thermal.K1)

	// bands without coefficients are not in the mapping
	_, err = m.Calibration("B2")
	var reqErr *BandRequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "B2", reqErr.Band)

	// no footprint in this fixture
	_, ok := m.Bound()
	assert.False(t, ok)
	assert.Nil(t, m.Footprint)
}

func TestLegacyFallsBackToLinear(t *testing.T) {
	groups := landsat7C1L1()
	rescaling := &group{name: "RADIOMETRIC_RESCALING"}
	rescaling.set("RADIANCE_MULT_BAND_2", "0.5")
	rescaling.set("RADIANCE_ADD_BAND_2", "-1.5")
	groups = append(groups, rescaling)

	m, err := FromTree("mem_MTL.txt", mustODL(t, renderODL("L1_METADATA_FILE", groups)))
	require.NoError(t, err)
	b2, err := m.Calibration("B2")
	require.NoError(t, err)
	assert.IsType(t, Linear{}, b2.RadianceSource)
	assert.Equal(t, Coefficients{Gain: 0.5, Offset: -1.5}, *b2.Radiance)
	assert.Nil(t, b2.Reflectance)
}

func TestParseErrors(t *testing.T) {
	t.Run("unsupported spacecraft", func(t *testing.T) {
		_, err := FromTree("x_MTL.xml", mustXML(t, renderXML("LANDSAT_METADATA_FILE", landsat89C2L1("LANDSAT_5"))))
		var sensorErr *UnsupportedSensorError
		require.ErrorAs(t, err, &sensorErr)
		assert.Equal(t, "LANDSAT_5", sensorErr.SpacecraftID)
	})

	t.Run("missing acquisition date", func(t *testing.T) {
		groups := landsat89C2L1("LANDSAT_8")
		drop(find(groups, "IMAGE_ATTRIBUTES"), "DATE_ACQUIRED")
		_, err := FromTree("x_MTL.xml", mustXML(t, renderXML("LANDSAT_METADATA_FILE", groups)))
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, "IMAGE_ATTRIBUTES/DATE_ACQUIRED", formatErr.Field)
	})

	t.Run("unparseable coefficient", func(t *testing.T) {
		groups := landsat89C2L1("LANDSAT_8")
		rescaling := find(groups, "LEVEL1_RADIOMETRIC_RESCALING")
		drop(rescaling, "RADIANCE_MULT_BAND_1")
		rescaling.set("RADIANCE_MULT_BAND_1", "abc")
		_, err := FromTree("x_MTL.xml", mustXML(t, renderXML("LANDSAT_METADATA_FILE", groups)))
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Contains(t, formatErr.Field, "RADIANCE_MULT_BAND_1")
	})

	t.Run("no calibration at all", func(t *testing.T) {
		groups := landsat89C2L1("LANDSAT_8")
		var kept []*group
		for _, g := range groups {
			if g.name != "LEVEL1_RADIOMETRIC_RESCALING" {
				kept = append(kept, g)
			}
		}
		_, err := FromTree("x_MTL.xml", mustXML(t, renderXML("LANDSAT_METADATA_FILE", kept)))
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, "band calibration", formatErr.Field)
	})

	t.Run("unknown root", func(t *testing.T) {
		_, err := FromTree("x_MTL.xml", Tree{"SOMETHING": Tree{}})
		var formatErr *FormatError
		assert.True(t, errors.As(err, &formatErr))
	})

	t.Run("unsupported level", func(t *testing.T) {
		groups := landsat89C2L1("LANDSAT_8")
		drop(find(groups, "PRODUCT_CONTENTS"), "PROCESSING_LEVEL")
		find(groups, "PRODUCT_CONTENTS").set("PROCESSING_LEVEL", "L2SR")
		_, err := FromTree("x_MTL.xml", mustXML(t, renderXML("LANDSAT_METADATA_FILE", groups)))
		var formatErr *FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Contains(t, err.Error(), "L2SR")
	})
}

func TestMissingSunElevationIsNaN(t *testing.T) {
	groups := landsat89C2L1("LANDSAT_8")
	drop(find(groups, "IMAGE_ATTRIBUTES"), "SUN_ELEVATION")
	m, err := FromTree("x_MTL.xml", mustXML(t, renderXML("LANDSAT_METADATA_FILE", groups)))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(m.SunElevation))
}

func TestParseLevel2(t *testing.T) {
	groups := landsat89C2L1("LANDSAT_8")
	contents := find(groups, "PRODUCT_CONTENTS")
	drop(contents, "PROCESSING_LEVEL")
	contents.set("PROCESSING_LEVEL", "L2SP")
	sr := &group{name: "LEVEL2_SURFACE_REFLECTANCE_PARAMETERS"}
	for _, n := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		sr.set("REFLECTANCE_MULT_BAND_"+n, "2.75e-05")
		sr.set("REFLECTANCE_ADD_BAND_"+n, "-0.2")
	}
	st := &group{name: "LEVEL2_SURFACE_TEMPERATURE_PARAMETERS"}
	st.set("TEMPERATURE_MULT_BAND_ST_B10", "0.00341802")
	st.set("TEMPERATURE_ADD_BAND_ST_B10", "149.0")
	groups = append(groups, sr, st)

	m, err := FromTree("x_MTL.xml", mustXML(t, renderXML("LANDSAT_METADATA_FILE", groups)))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Level)

	b4, err := m.Calibration("B4")
	require.NoError(t, err)
	assert.Equal(t, KindSurface, b4.Kind)
	assert.Equal(t, "SR_B4.TIF", b4.Suffix)
	assert.Equal(t, Coefficients{Gain: 2.75e-05, Offset: -0.2}, *b4.Decode)

	stCal, err := m.Calibration("ST")
	require.NoError(t, err)
	assert.Equal(t, Coefficients{Gain: 0.00341802, Offset: 149}, *stCal.Decode)
	assert.Equal(t, "K", stCal.Units)

	emis, err := m.Calibration("EMIS")
	require.NoError(t, err)
	assert.Equal(t, 0.0001, emis.Decode.Gain)
	assert.Equal(t, -9999.0, emis.Fill)

	_, err = m.Calibration("QA_AEROSOL")
	assert.NoError(t, err)
	_, err = m.Calibration("B8")
	assert.Error(t, err)
}

func TestLocate(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "A_MTL.txt", "")
	xml := writeFixture(t, dir, "A_MTL.xml", "")
	writeFixture(t, dir, "A_B1.TIF", "")

	got, err := Locate(dir)
	require.NoError(t, err)
	assert.Equal(t, xml, got)

	got, err = Locate(xml)
	require.NoError(t, err)
	assert.Equal(t, xml, got)

	_, err = Locate(t.TempDir())
	assert.Error(t, err)

	assert.True(t, IsMetadataFile("X_mtl.XML"))
	assert.False(t, IsMetadataFile("X_B1.TIF"))
}

func TestReadODLRejectsMalformedLines(t *testing.T) {
	_, err := ReadODL(strings.NewReader("GROUP = A\nNOT A FIELD\nEND_GROUP = A\nEND\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ReadODL(strings.NewReader("END_GROUP = A\n"))
	assert.Error(t, err)
}

func TestLegacyNormalizeDegenerate(t *testing.T) {
	_, err := Legacy{MinValue: 0, MaxValue: 1, MinDN: 3, MaxDN: 3}.Normalize()
	assert.Error(t, err)
}

func mustXML(t *testing.T, s string) Tree {
	t.Helper()
	tree, err := ReadXML(strings.NewReader(s))
	require.NoError(t, err)
	return tree
}

func mustODL(t *testing.T, s string) Tree {
	t.Helper()
	tree, err := ReadODL(strings.NewReader(s))
	require.NoError(t, err)
	return tree
}
