package scene

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surftemp/landsat-importer/internal/metadata"
)

func sceneMetadata(level int, processing string) *metadata.SceneMetadata {
	return &metadata.SceneMetadata{
		Path:            "/data/LC09_L2SP_203023_20230105_20230107_02_T1_MTL.xml",
		Satellite:       metadata.Landsat9,
		Level:           level,
		ProcessingLevel: processing,
		Collection:      2,
		Acquired:        time.Date(2023, 1, 5, 9, 8, 7, 0, time.UTC),
	}
}

func TestPatternRender(t *testing.T) {
	cases := []struct {
		pattern string
		level   int
		want    string
	}{
		{"{Y}{m}{d}{H}{M}{S}-NCEO-{level}-{product}-v{collection:0.1f}-fv01.0.nc", 1, "20230105090807-NCEO-L1C-Landsat9-v2.0-fv01.0.nc"},
		{"{Y}{m}{d}{H}{M}{S}-NCEO-{level}-{product}-v{collection:0.1f}-fv01.0.nc", 2, "20230105090807-NCEO-L2SP-Landsat9-v2.0-fv01.0.nc"},
		{"{y}-{collection}-{collection:.2f}-{collection:d}.nc", 1, "23-2-2.00-2.nc"},
		{"{{literal}}-{product}.nc", 1, "{literal}-Landsat9.nc"},
		{"", 2, "LC09_L2SP_203023_20230105_20230107_02_T1.nc"},
	}
	for _, c := range cases {
		p, err := ParsePattern(c.pattern)
		require.NoError(t, err, c.pattern)
		assert.Equal(t, c.want, p.Render(sceneMetadata(c.level, "L2SP")), c.pattern)
	}
}

func TestPatternRejectsBadTokens(t *testing.T) {
	for _, pattern := range []string{
		"{Y}-{unknown}.nc",
		"{Y:04d}.nc",
		"{collection:x}.nc",
		"{Y.nc",
		"Y}.nc",
	} {
		_, err := ParsePattern(pattern)
		var cfg *ConfigError
		assert.ErrorAs(t, err, &cfg, pattern)
	}
}
