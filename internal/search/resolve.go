package search

import (
	"strings"
	"unicode"
)

// DefaultCityCode is the baseline city used for an initial unfiltered load.
const DefaultCityCode = "PAR"

type cityEntry struct {
	name string
	code string
}

// Match precedence for partial input follows table order, so this is a slice
// rather than a map.
var cityTable = []cityEntry{
	{"paris", "PAR"},
	{"london", "LON"},
	{"new york", "NYC"},
	{"dubai", "DXB"},
	{"tokyo", "TYO"},
	{"rome", "ROM"},
	{"barcelona", "BCN"},
	{"amsterdam", "AMS"},
	{"singapore", "SIN"},
	{"bangkok", "BKK"},
	{"berlin", "BER"},
	{"madrid", "MAD"},
	{"istanbul", "IST"},
	{"sydney", "SYD"},
	{"los angeles", "LAX"},
	{"miami", "MIA"},
	{"prague", "PRG"},
	{"vienna", "VIE"},
	{"lisbon", "LIS"},
	{"mumbai", "BOM"},
}

// Resolve maps free-text location input to a city code. It never fails: an
// empty return value means "unresolved" and callers fall back to the local
// catalog. Inputs under three characters are always unresolved so incremental
// typing does not fire remote queries on every keystroke.
func Resolve(locationText string) string {
	s := strings.ToLower(strings.TrimSpace(locationText))
	if s == "" {
		return DefaultCityCode
	}
	if len(s) < 3 {
		return ""
	}
	if len(s) == 3 && isAlpha(s) {
		return strings.ToUpper(s)
	}
	for _, e := range cityTable {
		if e.name == s {
			return e.code
		}
	}
	for _, e := range cityTable {
		if strings.HasPrefix(e.name, s) || strings.HasPrefix(s, e.name) {
			return e.code
		}
	}
	return ""
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
