package metadata

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	// imdbIDPrefix is the fixed tag prepended to every normalized id.
	imdbIDPrefix = "tt"

	// imdbIDDigits is the minimum digit width; shorter ids are zero-padded.
	imdbIDDigits = 7
)

// NormalizeIMDBID converts a raw title identifier, as found in catalog
// payloads, into the canonical key used against the metadata boundary.
// The raw value may be a bare number, a loosely formatted string, or nil.
//
// The second return is false when no id can be derived (nil or a string
// with no digits). An empty string input returns ("", true): the id is
// known to be absent, which callers treat as "do not attempt enrichment"
// rather than "not known yet".
func NormalizeIMDBID(raw any) (string, bool) {
	var digits string

	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", true
		}
		digits = keepDigits(s)
		if digits == "" {
			return "", false
		}
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "", false
		}
		digits = strconv.FormatFloat(math.Trunc(math.Abs(v)), 'f', -1, 64)
	case int:
		digits = strconv.FormatInt(abs64(int64(v)), 10)
	case int64:
		digits = strconv.FormatInt(abs64(v), 10)
	case json.Number:
		return NormalizeIMDBID(string(v))
	default:
		return "", false
	}

	if len(digits) < imdbIDDigits {
		digits = strings.Repeat("0", imdbIDDigits-len(digits)) + digits
	}

	return imdbIDPrefix + digits, true
}

func keepDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
