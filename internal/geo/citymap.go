package geo

import (
	"encoding/json"
	"os"
	"strings"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
)

// CityRegionMap resolves city names to regions. Keys are normalized with
// cityKey so lookups ignore case, hyphens and slashes.
type CityRegionMap map[string]string

func cityKey(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.NewReplacer("/", " ", "-", " ").Replace(v)
	return strings.Join(strings.Fields(v), " ")
}

// LoadCityRegionMap reads a JSON object of city -> region. A missing file
// yields an empty map.
func LoadCityRegionMap(path string) (CityRegionMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return CityRegionMap{}, nil
		}
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "read city region map").
			WithContext("path", path).Build()
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryValidation, "decode city region map").
			WithContext("path", path).Build()
	}
	m := make(CityRegionMap, len(raw))
	for city, v := range raw {
		region, ok := v.(string)
		if !ok {
			continue
		}
		m[cityKey(city)] = strings.TrimSpace(region)
	}
	return m, nil
}

// Lookup returns the mapped region for city, as written in the map.
func (m CityRegionMap) Lookup(city string) (string, bool) {
	r, ok := m[cityKey(city)]
	return r, ok && r != ""
}
