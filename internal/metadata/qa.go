package metadata

// QAFlag is one (mask, value, meaning) entry of a pixel quality band.
type QAFlag struct {
	Mask    int32
	Value   int32
	Meaning string
}

// https://www.usgs.gov/media/files/landsat-8-data-users-handbook
var qaCollection1 = []QAFlag{
	{1, 1, "designated_fill"},
	{2, 2, "terrain_occlusion"},
	{12, 0, "no bands_radiometric_saturation"},
	{12, 4, "1-2 bands_radiometric_saturation"},
	{12, 8, "3-4 bands_radiometric_saturation"},
	{12, 12, ">=5 bands_radiometric_saturation"},
	{16, 16, "cloud"},
	{96, 0, "not determined cloud_confidence"},
	{96, 32, "low cloud_confidence"},
	{96, 64, "medium cloud_confidence"},
	{96, 96, "high cloud_confidence"},
	{384, 0, "not determined cloud_shadow_confidence"},
	{384, 128, "low cloud_shadow_confidence"},
	{384, 256, "medium cloud_shadow_confidence"},
	{384, 384, "high cloud_shadow_confidence"},
	{1536, 0, "not determined snow_ice_confidence"},
	{1536, 512, "low snow_ice_confidence"},
	{1536, 1024, "medium snow_ice_confidence"},
	{1536, 1536, "high snow_ice_confidence"},
	{6144, 0, "not determined cirrus_confidence"},
	{6144, 2048, "low cirrus_confidence"},
	{6144, 4096, "medium cirrus_confidence"},
	{6144, 6144, "high cirrus_confidence"},
}

// https://www.usgs.gov/media/files/landsat-8-9-olitirs-collection-2-level-1-data-format-control-book
var qaCollection2 = []QAFlag{
	{1, 1, "designated_fill"},
	{2, 2, "dilated_cloud"},
	{4, 4, "cirrus"},
	{8, 8, "cloud"},
	{16, 16, "cloud_shadow"},
	{32, 32, "snow"},
	{64, 64, "clear"},
	{128, 128, "water"},
	{768, 0, "no cloud_confidence level set"},
	{768, 256, "low cloud_confidence"},
	{768, 512, "medium cloud_confidence"},
	{768, 768, "high cloud_confidence"},
	{3072, 0, "no cloud_shadow_confidence level set"},
	{3072, 1024, "low cloud_shadow_confidence"},
	{3072, 2048, "medium cloud_shadow_confidence"},
	{3072, 3072, "high cloud_shadow_confidence"},
	{12288, 0, "no snow_ice_confidence level set"},
	{12288, 4096, "low snow_ice_confidence"},
	{12288, 8192, "medium snow_ice_confidence"},
	{12288, 12288, "high snow_ice_confidence"},
	{49152, 0, "not determined cirrus_confidence"},
	{49152, 16384, "low cirrus_confidence"},
	{49152, 32768, "medium cirrus_confidence"},
	{49152, 49152, "high cirrus_confidence"},
}

// QAFlags returns the pixel quality flag table for the scene's collection.
func (m *SceneMetadata) QAFlags() []QAFlag {
	if m.Collection == 1 {
		return qaCollection1
	}
	return qaCollection2
}

// QABand is the name of the pixel quality band.
func (m *SceneMetadata) QABand() string {
	if m.Collection == 1 {
		return "QA"
	}
	return "QA_PIXEL"
}
