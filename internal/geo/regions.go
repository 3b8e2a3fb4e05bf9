// Package geo maps places to the 13 administrative regions of Greece and
// reverse geocodes station coordinates through Nominatim.
package geo

import (
	"regexp"
	"strings"
)

// Regions are the canonical region names used as the station state.
var Regions = []string{
	"Attica",
	"Central Macedonia",
	"West Macedonia",
	"East Macedonia and Thrace",
	"Thessaly",
	"Epirus",
	"Western Greece",
	"Central Greece",
	"Peloponnese",
	"North Aegean",
	"South Aegean",
	"Ionian Islands",
	"Crete",
}

// regionAliases lists normalized spellings per region, in Regions order.
var regionAliases = [][]string{
	{"attica", "attiki"},
	{"central macedonia"},
	{"west macedonia", "western macedonia"},
	{"east macedonia and thrace", "eastern macedonia and thrace"},
	{"thessaly", "thessalia"},
	{"epirus", "ipeiros"},
	{"western greece", "west greece"},
	{"central greece", "sterea ellada", "steria ellada", "sterea"},
	{"peloponnese", "peloponnisos", "peloponnesos"},
	{"north aegean"},
	{"south aegean"},
	{"ionian islands", "ionian isles"},
	{"crete", "kriti"},
}

// AddressRegionFields are the Nominatim address keys searched for a region.
var AddressRegionFields = []string{"state", "region", "state_district", "county"}

// AddressPriority orders the Nominatim address keys used to fill an empty state.
var AddressPriority = []string{
	"city", "town", "village", "municipality", "county",
	"city_district", "suburb", "state_district", "state", "region",
}

var (
	separators  = regexp.MustCompile(`[\s\-_/]+`)
	parentheses = regexp.MustCompile(`\s*\(.*?\)\s*`)
)

// NormalizeText lowercases v, turns separators into spaces, drops
// parenthesized parts and collapses whitespace.
func NormalizeText(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = separators.ReplaceAllString(v, " ")
	v = parentheses.ReplaceAllString(v, " ")
	return strings.Join(strings.Fields(v), " ")
}

// IsRegion reports whether v is exactly one of Regions.
func IsRegion(v string) bool {
	for _, r := range Regions {
		if v == r {
			return true
		}
	}
	return false
}

// CanonicalRegion resolves v to a region when it equals a region name or
// one of its aliases after normalization.
func CanonicalRegion(v string) (string, bool) {
	n := NormalizeText(v)
	if n == "" {
		return "", false
	}
	for i, aliases := range regionAliases {
		if n == NormalizeText(Regions[i]) {
			return Regions[i], true
		}
		for _, a := range aliases {
			if n == a {
				return Regions[i], true
			}
		}
	}
	return "", false
}

// MapRegion finds the first address field (in AddressRegionFields order)
// whose normalized value contains a region alias.
func MapRegion(address map[string]string) (string, bool) {
	for _, field := range AddressRegionFields {
		n := NormalizeText(address[field])
		if n == "" {
			continue
		}
		for i, aliases := range regionAliases {
			for _, a := range aliases {
				if strings.Contains(n, a) {
					return Regions[i], true
				}
			}
		}
	}
	return "", false
}

// PickAddress returns the first non-empty address value in AddressPriority order.
func PickAddress(address map[string]string) string {
	for _, key := range AddressPriority {
		if v := strings.TrimSpace(address[key]); v != "" {
			return v
		}
	}
	return ""
}

var cityPrefixes = []string{
	"municipality of ",
	"municipal unit of ",
	"city of ",
	"region of ",
	"prefecture of ",
	"province of ",
	"county of ",
	"district of ",
	"metropolitan area of ",
}

var citySuffixes = []string{
	" municipality",
	" municipal unit",
	" city",
	" region",
	" prefecture",
	" province",
	" county",
	" district",
}

// CleanCity strips administrative decoration from a place name: anything
// after the first comma, parenthesized parts, and one leading prefix and
// trailing suffix such as "Municipality of" or "Prefecture".
func CleanCity(v string) string {
	c := strings.Join(strings.Fields(v), " ")
	if i := strings.Index(c, ","); i >= 0 {
		c = strings.TrimSpace(c[:i])
	}
	c = strings.Join(strings.Fields(parentheses.ReplaceAllString(c, " ")), " ")

	lower := strings.ToLower(c)
	for _, p := range cityPrefixes {
		if strings.HasPrefix(lower, p) {
			c = strings.TrimSpace(c[len(p):])
			break
		}
	}
	lower = strings.ToLower(c)
	for _, s := range citySuffixes {
		if strings.HasSuffix(lower, s) {
			c = strings.TrimSpace(c[:len(c)-len(s)])
			break
		}
	}
	return c
}
