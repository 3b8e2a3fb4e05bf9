package maintenance

import (
	"context"
	"sort"
	"strings"
	"sync"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/geo"
	"github.com/e-radio/eradio/internal/station"
)

// Task names, also used as progress keys in the store.
const (
	TaskCityMap           = "regions-city-map"
	TaskGeoRegions        = "regions-geo"
	TaskFillStateGeo      = "fill-state-geo"
	TaskFillStateHomepage = "fill-state-homepage"
)

// UnknownCities collects states that the city map could not place.
type UnknownCities struct {
	mu     sync.Mutex
	counts map[string]int
}

func (u *UnknownCities) add(city string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.counts == nil {
		u.counts = map[string]int{}
	}
	u.counts[city]++
}

// Sorted returns the unknown cities alphabetically.
func (u *UnknownCities) Sorted() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]string, 0, len(u.counts))
	for c := range u.counts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func unresolved(reason string, st station.Station) error {
	return derrors.WrapError(ErrUnresolved, derrors.CategoryNotFound, reason).
		WithContext("slug", st.Slug).Build()
}

// CityMapTask moves a city that was stored as the state into City and sets
// the state to the region the map assigns it.
func CityMapTask(m geo.CityRegionMap, unknown *UnknownCities) Task {
	return Task{
		Name: TaskCityMap,
		Select: func(st station.Station) bool {
			state := strings.TrimSpace(st.State)
			return state != "" && !geo.IsRegion(state) && strings.TrimSpace(st.City) == ""
		},
		Apply: func(_ context.Context, st station.Station) (station.Station, error) {
			city := strings.TrimSpace(st.State)
			region, ok := m.Lookup(city)
			if !ok {
				if unknown != nil {
					unknown.add(city)
				}
				return st, unresolved("city not in map", st)
			}
			if canonical, ok := geo.CanonicalRegion(region); ok {
				region = canonical
			}
			st.City = city
			st.State = region
			return st, nil
		},
	}
}

// GeoRegionsTask reverse geocodes station coordinates and sets the state to
// the region found in the address. When the station has no city, the old
// non-region state (or the geocoded locality) becomes the city.
func GeoRegionsTask(g geo.Geocoder, overwrite bool) Task {
	return Task{
		Name:   TaskGeoRegions,
		Remote: true,
		Select: func(st station.Station) bool {
			return st.HasGeo() && (overwrite || !geo.IsRegion(st.State))
		},
		Apply: func(ctx context.Context, st station.Station) (station.Station, error) {
			place, err := g.Reverse(ctx, *st.GeoLat, *st.GeoLong)
			if err != nil {
				if derrors.HasCategory(err, derrors.CategoryNotFound) {
					return st, unresolved("no address for coordinates", st)
				}
				return st, err
			}
			region, ok := geo.MapRegion(place.Address)
			if !ok {
				return st, unresolved("address outside known regions", st)
			}
			if strings.TrimSpace(st.City) == "" {
				candidate := strings.TrimSpace(st.State)
				if candidate == "" || geo.IsRegion(candidate) {
					candidate = firstOf(place.Address, "city", "town", "village", "municipality")
				}
				st.City = geo.CleanCity(candidate)
			}
			st.State = region
			return st, nil
		},
	}
}

// FillStateGeoTask fills an empty state from the reverse geocoded address.
func FillStateGeoTask(g geo.Geocoder, overwrite bool) Task {
	return Task{
		Name:   TaskFillStateGeo,
		Remote: true,
		Select: func(st station.Station) bool {
			return st.HasGeo() && (overwrite || strings.TrimSpace(st.State) == "")
		},
		Apply: func(ctx context.Context, st station.Station) (station.Station, error) {
			place, err := g.Reverse(ctx, *st.GeoLat, *st.GeoLong)
			if err != nil {
				if derrors.HasCategory(err, derrors.CategoryNotFound) {
					return st, unresolved("no address for coordinates", st)
				}
				return st, err
			}
			state := geo.PickAddress(place.Address)
			if state == "" {
				return st, unresolved("address has no usable field", st)
			}
			st.State = state
			return st, nil
		},
	}
}

// HomepageLocator finds the location a homepage declares.
type HomepageLocator interface {
	Locate(ctx context.Context, pageURL string) (string, error)
}

// FillStateHomepageTask fills an empty state from homepage JSON-LD.
func FillStateHomepageTask(l HomepageLocator, overwrite bool) Task {
	return Task{
		Name:   TaskFillStateHomepage,
		Remote: true,
		Select: func(st station.Station) bool {
			return strings.TrimSpace(st.Homepage) != "" && (overwrite || strings.TrimSpace(st.State) == "")
		},
		Apply: func(ctx context.Context, st station.Station) (station.Station, error) {
			loc, err := l.Locate(ctx, strings.TrimSpace(st.Homepage))
			if err != nil {
				if derrors.HasCategory(err, derrors.CategoryNotFound) || derrors.HasCategory(err, derrors.CategoryValidation) {
					return st, unresolved(err.Error(), st)
				}
				return st, err
			}
			if loc = strings.TrimSpace(loc); loc == "" {
				return st, unresolved("homepage declares no location", st)
			}
			st.State = loc
			return st, nil
		},
	}
}

func firstOf(address map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(address[k]); v != "" {
			return v
		}
	}
	return ""
}
