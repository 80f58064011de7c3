package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Markers that mean the seller did not publish a usable figure
var unknownMarkers = []string{"POA", "P.O.A", "CALL", "NEGOTIABLE", "CONTACT"}

var (
	currencyRe = regexp.MustCompile(`N\$|\$|USD|NAD|ZAR|R|,`)
	spaceRe    = regexp.MustCompile(`\s+`)
	numberRe   = regexp.MustCompile(`\d+\.?\d*`)
)

// Price is a normalized listing price. Known is false for "price on application"
// style values and for anything without a readable number.
type Price struct {
	Value float64
	Known bool
}

// Unknown is the zero Price
var Unknown = Price{}

// Normalize converts an optional display price into a numeric value
func Normalize(raw *string) Price {
	if raw == nil {
		return Unknown
	}
	return NormalizeString(*raw)
}

// NormalizeString converts a display price such as "N$ 125,000" into 125000.
// Only the first number in the text is used and a leading minus is ignored.
func NormalizeString(raw string) Price {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return Unknown
	}
	for _, m := range unknownMarkers {
		if strings.Contains(s, m) {
			return Unknown
		}
	}

	s = currencyRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, "")

	num := numberRe.FindString(s)
	if num == "" {
		return Unknown
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(num, "."), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return Unknown
	}
	return Price{Value: v, Known: true}
}

// InRange reports whether a known price lies within the inclusive bounds.
// A nil bound is open; unknown prices never match.
func (p Price) InRange(min, max *float64) bool {
	if !p.Known {
		return false
	}
	if min != nil && p.Value < *min {
		return false
	}
	if max != nil && p.Value > *max {
		return false
	}
	return true
}

// Ptr returns the value as a pointer, nil when unknown
func (p Price) Ptr() *float64 {
	if !p.Known {
		return nil
	}
	v := p.Value
	return &v
}
