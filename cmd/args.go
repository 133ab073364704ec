package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// normalizeArgs folds multi-token flags into single flag values:
//
//	--export-int16 B2 0.001 0       ->  --export-int16=B2,0.001,0
//	--bands B2 B3 B4                ->  --bands=B2,B3,B4
//	--inject-metadata a=1 b=2       ->  --inject-metadata=a=1 --inject-metadata=b=2
func normalizeArgs(args []string) ([]string, error) {
	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch arg {
		case "--":
			return append(out, args[i:]...), nil

		case "--export-int16":
			if len(args)-i-1 < 3 {
				return nil, fmt.Errorf("--export-int16 needs <band> <scale> <offset>")
			}
			out = append(out, arg+"="+strings.Join(args[i+1:i+4], ","))
			i += 3

		case "--bands":
			var bands []string
			for i+1 < len(args) && isBandToken(args[i+1]) {
				bands = append(bands, args[i+1])
				i++
			}
			if len(bands) == 0 {
				out = append(out, arg)
				continue
			}
			out = append(out, arg+"="+strings.Join(bands, ","))

		case "--inject-metadata":
			n := 0
			for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") && strings.Contains(args[i+1], "=") {
				out = append(out, arg+"="+args[i+1])
				i++
				n++
			}
			if n == 0 {
				out = append(out, arg)
			}

		default:
			out = append(out, arg)
		}
	}
	return out, nil
}

var bandName = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// isBandToken reports whether s looks like a band name such as B2, B6_VCID_1
// or QA_PIXEL, and is not a path on disk.
func isBandToken(s string) bool {
	if !bandName.MatchString(s) {
		return false
	}
	_, err := os.Stat(s)
	return err != nil
}
