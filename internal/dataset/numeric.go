package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"
)

// NumberFormat describes locale separators for numbers stored as text.
// A zero DecimalSeparator auto-detects per value.
type NumberFormat struct {
	DecimalSeparator   rune
	ThousandsSeparator rune // optional; if 0, common separators (',' '.' space) are stripped
}

// ParseNumeric parses values such as "1.000,5", "12.5%" or "3e8".
func ParseNumeric(s string, nf NumberFormat) (float64, bool) {
	raw := strings.TrimSpace(s)
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.ReplaceAll(raw, "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := nf.DecimalSeparator
	thou := nf.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// IsMissing reports whether element i of s should be skipped by aggregations.
func IsMissing(s series.Series, i int) bool {
	e := s.Elem(i)
	if e.IsNA() {
		return true
	}
	if s.Type() == series.String && strings.TrimSpace(e.String()) == "" {
		return true
	}
	return false
}

// Floats returns the non-missing values of s as float64. String series are
// parsed with ParseNumeric; the first value that does not parse is reported.
func Floats(s series.Series, nf NumberFormat) ([]float64, error) {
	out := make([]float64, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		if IsMissing(s, i) {
			continue
		}
		e := s.Elem(i)
		if s.Type() == series.String {
			f, ok := ParseNumeric(e.String(), nf)
			if !ok {
				return nil, fmt.Errorf("row %d: %q is not a number", i+1, e.String())
			}
			out = append(out, f)
			continue
		}
		f := e.Float()
		if math.IsNaN(f) {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}
