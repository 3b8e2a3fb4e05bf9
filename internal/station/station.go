// Package station holds the station record shared by every eradio command,
// together with dataset I/O, slug assignment and duplicate removal.
package station

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Station is one entry of the stations dataset.
type Station struct {
	Slug        string   `json:"slug"`
	UUID        string   `json:"stationuuid"`
	Name        string   `json:"name"`
	State       string   `json:"state"`
	City        string   `json:"city,omitempty"`
	Country     string   `json:"country"`
	CountryCode string   `json:"countrycode"`
	StreamURL   string   `json:"stream_url"`
	Homepage    string   `json:"homepage"`
	Favicon     string   `json:"favicon"`
	Genres      []string `json:"genres"`
	Language    string   `json:"language"`
	Bitrate     FlexInt  `json:"bitrate"`
	Codec       string   `json:"codec"`
	ClickCount  int      `json:"clickcount"`
	LastCheckOK int      `json:"lastcheckok"`
	Votes       int      `json:"votes"`
	HLS         int      `json:"hls"`
	SSLError    int      `json:"ssl_error"`
	GeoLat      *float64 `json:"geo_lat"`
	GeoLong     *float64 `json:"geo_long"`
}

// Location is the most specific place name known for the station.
func (s Station) Location() string {
	if c := strings.TrimSpace(s.City); c != "" {
		return c
	}
	return strings.TrimSpace(s.State)
}

// HasGeo reports whether both coordinates are present.
func (s Station) HasGeo() bool {
	return s.GeoLat != nil && s.GeoLong != nil
}

// FlexInt decodes integers that upstream data sometimes encodes as strings
// ("128"), floats (128.0) or null.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*f = 0
			return nil
		}
	}
	if n, err := strconv.Atoi(raw); err == nil {
		*f = FlexInt(n)
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q: %w", raw, err)
	}
	*f = FlexInt(int(v))
	return nil
}

// Int returns the plain integer value.
func (f FlexInt) Int() int { return int(f) }
