package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/surftemp/landsat-importer/internal/metadata"
)

type segment struct {
	literal string
	token   string
	format  string
}

// Pattern is a parsed output file name template. Tokens are {Y} {y} {m} {d}
// {H} {M} {S} {level} {product} and {collection}, which also accepts a
// float or integer format such as {collection:0.1f}. {{ and }} are literal braces.
type Pattern struct {
	source   string
	segments []segment
}

var timeTokens = map[string]string{
	"Y": "2006",
	"y": "06",
	"m": "01",
	"d": "02",
	"H": "15",
	"M": "04",
	"S": "05",
}

func ParsePattern(s string) (Pattern, error) {
	p := Pattern{source: s}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			p.segments = append(p.segments, segment{literal: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '}':
			return Pattern{}, &ConfigError{Pattern: s, Reason: "unmatched '}'"}
		case c == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return Pattern{}, &ConfigError{Pattern: s, Reason: "unterminated token"}
			}
			name, format, _ := strings.Cut(s[i+1:i+end], ":")
			if err := checkToken(s, name, format); err != nil {
				return Pattern{}, err
			}
			flush()
			p.segments = append(p.segments, segment{token: name, format: format})
			i += end
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return p, nil
}

func checkToken(pattern, name, format string) error {
	_, isTime := timeTokens[name]
	switch {
	case isTime, name == "level", name == "product":
		if format != "" {
			return &ConfigError{Pattern: pattern, Reason: fmt.Sprintf("token {%s} does not take a format", name)}
		}
	case name == "collection":
		if _, err := formatNumber(2, format); err != nil {
			return &ConfigError{Pattern: pattern, Reason: err.Error()}
		}
	default:
		return &ConfigError{Pattern: pattern, Reason: fmt.Sprintf("unknown token {%s}", name)}
	}
	return nil
}

// formatNumber renders n with a "[0].Nf" or "d" format, or plainly when format is empty.
func formatNumber(n int, format string) (string, error) {
	switch {
	case format == "" || format == "d":
		return strconv.Itoa(n), nil
	case strings.HasSuffix(format, "f"):
		spec := strings.TrimPrefix(strings.TrimSuffix(format, "f"), "0")
		digits, ok := strings.CutPrefix(spec, ".")
		if !ok {
			break
		}
		prec, err := strconv.Atoi(digits)
		if err != nil || prec < 0 {
			break
		}
		return strconv.FormatFloat(float64(n), 'f', prec, 64), nil
	}
	return "", fmt.Errorf("unsupported format %q for {collection}", format)
}

// Render builds the file name for a scene. An empty pattern gives the metadata stem with .nc.
func (p Pattern) Render(m *metadata.SceneMetadata) string {
	if len(p.segments) == 0 {
		return m.Stem() + ".nc"
	}
	var b strings.Builder
	for _, seg := range p.segments {
		if seg.token == "" {
			b.WriteString(seg.literal)
			continue
		}
		b.WriteString(tokenValue(m, seg))
	}
	return b.String()
}

func tokenValue(m *metadata.SceneMetadata, seg segment) string {
	if layout, ok := timeTokens[seg.token]; ok {
		return m.Acquired.Format(layout)
	}
	switch seg.token {
	case "level":
		if m.Level == 1 {
			return "L1C"
		}
		return m.ProcessingLevel
	case "product":
		return m.Satellite.Product()
	case "collection":
		s, _ := formatNumber(m.Collection, seg.format)
		return s
	}
	return ""
}

func (p Pattern) String() string { return p.source }
