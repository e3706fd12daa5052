package enrich

import (
	"regexp"
	"strings"
)

var usCountryPattern = regexp.MustCompile(`(?i)\b(usa|u\.s\.a\.|us|u\.s\.|united states|america)\b`)

var usZipPattern = regexp.MustCompile(`\b\d{5}(?:-\d{4})?\b`)

var usStateCodes = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true,
}

// IsUSA reports whether the lead's location or address carries a USA
// indicator: an explicit country mention, or a two-letter state code combined
// with a ZIP pattern, or a state code alongside a city (the common
// "Austin, TX" form). Leads without any indicator are non-USA; they are still
// enriched and scored, and filtering happens downstream.
func IsUSA(location, address string) bool {
	for _, text := range []string{location, address} {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if usCountryPattern.MatchString(text) {
			return true
		}
		if hasStateCode(text) && (usZipPattern.MatchString(text) || strings.Contains(text, ",")) {
			return true
		}
	}
	return false
}

// hasStateCode checks for an uppercase two-letter state code token. The match
// is case-sensitive so words like "on" or "in" in free text never register.
func hasStateCode(text string) bool {
	for _, tok := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == '.' || r == ';'
	}) {
		if usStateCodes[tok] {
			return true
		}
	}
	return false
}
