package listing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var ErrInvalidMileage = errors.New("invalid mileage format, use 120000 or 120 000 km")

var nonDigitRe = regexp.MustCompile(`[^\d]`)

// ParseMileage reads odometer text such as "120 000 km". Blank input yields ok=false
// with no error; text without digits, or a zero reading, is ErrInvalidMileage.
func ParseMileage(s string) (int, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, nil
	}
	digits := nonDigitRe.ReplaceAllString(strings.ReplaceAll(strings.ToLower(s), "km", ""), "")
	if digits == "" {
		return 0, false, ErrInvalidMileage
	}
	v, err := strconv.Atoi(digits)
	if err != nil || v == 0 {
		return 0, false, ErrInvalidMileage
	}
	return v, true, nil
}
