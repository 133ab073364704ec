package metadata

import "fmt"

// FormatError reports a missing or unparseable mandatory metadata field.
type FormatError struct {
	Path  string
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	msg := fmt.Sprintf("metadata %s: field %s", e.Path, e.Field)
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg + " missing"
}

func (e *FormatError) Unwrap() error { return e.Err }

// UnsupportedSensorError is returned for spacecraft other than Landsat 7, 8 and 9.
type UnsupportedSensorError struct {
	Path         string
	SpacecraftID string
}

func (e *UnsupportedSensorError) Error() string {
	return fmt.Sprintf("metadata %s: no support for spacecraft_id=%s", e.Path, e.SpacecraftID)
}

// BandRequestError is returned when a requested band has no calibration entry in the scene.
type BandRequestError struct {
	Path string
	Band string
}

func (e *BandRequestError) Error() string {
	return fmt.Sprintf("metadata %s: requested band %s is not available in this scene", e.Path, e.Band)
}
