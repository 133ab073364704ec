// Package radiometry converts raw digital numbers to physical quantities.
package radiometry

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Mode selects the quantity exported for optical bands.
type Mode int

const (
	CorrectedReflectance Mode = iota
	Reflectance
	Radiance
)

var modeNames = map[Mode]string{
	CorrectedReflectance: "corrected_reflectance",
	Reflectance:          "reflectance",
	Radiance:             "radiance",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown export mode %q, expected corrected_reflectance, reflectance or radiance", s)
}

var _ pflag.Value = (*Mode)(nil)

// Set and Type let Mode be used directly as a command line flag.
func (m *Mode) Set(s string) error {
	v, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m *Mode) Type() string { return "mode" }
