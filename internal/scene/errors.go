package scene

import (
	"errors"
	"fmt"
)

// ErrAngleBandAbsent means an angle band listed in the catalogue has no raster in the scene.
var ErrAngleBandAbsent = errors.New("angle band absent")

// BandFileNotFoundError is returned when the raster of a band cannot be found.
type BandFileNotFoundError struct {
	Scene string
	Band  string
	Path  string
}

func (e *BandFileNotFoundError) Error() string {
	return fmt.Sprintf("scene %s: band %s: raster %s not found", e.Scene, e.Band, e.Path)
}

// ShapeMismatchError is returned when an exported band does not have the shape of the first one.
type ShapeMismatchError struct {
	Scene     string
	Band      string
	Reference string
	Got, Want [2]int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("scene %s: band %s is %dx%d but %s is %dx%d", e.Scene, e.Band, e.Got[0], e.Got[1], e.Reference, e.Want[0], e.Want[1])
}

// ConfigError reports an invalid output file name pattern.
type ConfigError struct {
	Pattern string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("output file pattern %q: %s", e.Pattern, e.Reason)
}
