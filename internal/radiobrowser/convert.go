package radiobrowser

import (
	"strings"

	"github.com/e-radio/eradio/internal/station"
)

// APIStation is the radio-browser station representation (subset).
type APIStation struct {
	StationUUID string          `json:"stationuuid"`
	Name        string          `json:"name"`
	URL         string          `json:"url"`
	URLResolved string          `json:"url_resolved"`
	Homepage    string          `json:"homepage"`
	Favicon     string          `json:"favicon"`
	Tags        string          `json:"tags"`
	Country     string          `json:"country"`
	CountryCode string          `json:"countrycode"`
	State       string          `json:"state"`
	Language    string          `json:"language"`
	Codec       string          `json:"codec"`
	Bitrate     station.FlexInt `json:"bitrate"`
	ClickCount  station.FlexInt `json:"clickcount"`
	Votes       station.FlexInt `json:"votes"`
	LastCheckOK station.FlexInt `json:"lastcheckok"`
	HLS         station.FlexInt `json:"hls"`
	SSLError    station.FlexInt `json:"ssl_error"`
	GeoLat      *float64        `json:"geo_lat"`
	GeoLong     *float64        `json:"geo_long"`
}

// splitTags turns the comma separated tag list into distinct genres,
// keeping the first spelling seen.
func splitTags(tags string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, t := range strings.Split(tags, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		k := strings.ToLower(t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ToStation converts an API record. The resolved stream URL wins over the
// declared one.
func ToStation(a APIStation) station.Station {
	stream := strings.TrimSpace(a.URLResolved)
	if stream == "" {
		stream = strings.TrimSpace(a.URL)
	}
	return station.Station{
		UUID:        strings.TrimSpace(a.StationUUID),
		Name:        strings.TrimSpace(a.Name),
		State:       strings.TrimSpace(a.State),
		Country:     strings.TrimSpace(a.Country),
		CountryCode: strings.TrimSpace(a.CountryCode),
		StreamURL:   stream,
		Homepage:    strings.TrimSpace(a.Homepage),
		Favicon:     strings.TrimSpace(a.Favicon),
		Genres:      splitTags(a.Tags),
		Language:    strings.TrimSpace(a.Language),
		Bitrate:     a.Bitrate,
		Codec:       strings.TrimSpace(a.Codec),
		ClickCount:  a.ClickCount.Int(),
		LastCheckOK: a.LastCheckOK.Int(),
		Votes:       a.Votes.Int(),
		HLS:         a.HLS.Int(),
		SSLError:    a.SSLError.Int(),
		GeoLat:      a.GeoLat,
		GeoLong:     a.GeoLong,
	}
}

// MergeStats counts what Merge did.
type MergeStats struct {
	Added    int
	Updated  int
	Removed  int
	NoStream int
}

// Merge builds the new dataset from fetched API records in upstream order.
// Stations already known by UUID keep their slug, city, curated state and a
// locally cached favicon. Records without a stream URL are dropped, as are
// local stations no longer listed upstream.
func Merge(existing []station.Station, fetched []APIStation, iconsURLPrefix string) ([]station.Station, MergeStats) {
	var stats MergeStats
	byUUID := make(map[string]station.Station, len(existing))
	for _, st := range existing {
		if st.UUID != "" {
			byUUID[st.UUID] = st
		}
	}

	localPrefix := "/" + strings.Trim(iconsURLPrefix, "/") + "/"
	seen := make(map[string]struct{}, len(fetched))
	out := make([]station.Station, 0, len(fetched))
	for _, a := range fetched {
		st := ToStation(a)
		if st.StreamURL == "" {
			stats.NoStream++
			continue
		}
		if st.UUID != "" {
			if _, dup := seen[st.UUID]; dup {
				continue
			}
			seen[st.UUID] = struct{}{}
		}

		prev, ok := byUUID[st.UUID]
		if !ok || st.UUID == "" {
			stats.Added++
			out = append(out, st)
			continue
		}
		stats.Updated++
		st.Slug = prev.Slug
		if prev.City != "" {
			st.City = prev.City
		}
		if prev.State != "" {
			st.State = prev.State
		}
		if strings.HasPrefix(prev.Favicon, localPrefix) {
			st.Favicon = prev.Favicon
		}
		if st.GeoLat == nil && st.GeoLong == nil {
			st.GeoLat, st.GeoLong = prev.GeoLat, prev.GeoLong
		}
		out = append(out, st)
	}

	for uuid := range byUUID {
		if _, ok := seen[uuid]; !ok {
			stats.Removed++
		}
	}
	return out, stats
}
