package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var priceNumber = regexp.MustCompile(`\d[\d.,]*`)

var groupSeparators = strings.NewReplacer(".", "", ",", "")

// ParsePrice extracts the first numeric amount from a display price such as
// "$1,299.99", "USD 19.99" or "19,99 €". A comma followed by exactly two
// trailing digits is read as a decimal separator.
func ParsePrice(raw string) (float64, bool) {
	m := strings.TrimRight(priceNumber.FindString(raw), ".,")
	if m == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(m, ",")
	lastDot := strings.LastIndex(m, ".")
	if lastComma > lastDot && len(m)-lastComma-1 == 2 {
		m = groupSeparators.Replace(m[:lastComma]) + "." + m[lastComma+1:]
	} else {
		m = strings.ReplaceAll(m, ",", "")
		if strings.Count(m, ".") > 1 {
			i := strings.LastIndex(m, ".")
			m = strings.ReplaceAll(m[:i], ".", "") + m[i:]
		}
	}

	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
