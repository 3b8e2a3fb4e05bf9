package sitemap

import (
	"strings"

	"github.com/e-radio/eradio/internal/slug"
	"github.com/e-radio/eradio/internal/station"
)

// Kind names a bucket facet.
type Kind string

const (
	KindCity   Kind = "city"
	KindRegion Kind = "region"
	KindGenre  Kind = "genre"
)

// Kinds lists the facets in emission order.
var Kinds = []Kind{KindCity, KindRegion, KindGenre}

// Bucket groups the stations sharing one facet value.
type Bucket struct {
	Kind     Kind
	Key      string
	Slug     string
	Stations []station.Station
}

// FacetOptions controls key filtering and slug fallback.
type FacetOptions struct {
	Placeholder  string // case-insensitive city/region value treated as missing
	DefaultGenre string // genre for stations that declare none
	FallbackSlug string // slug used when a key slugifies to nothing
}

// Facets holds the buckets of every kind in first-seen order, along with the
// registries that made their slugs unique.
type Facets struct {
	buckets    map[Kind][]*Bucket
	Registries map[Kind]*slug.Registry
}

// Buckets returns the buckets of one kind.
func (f *Facets) Buckets(kind Kind) []*Bucket {
	return f.buckets[kind]
}

// Lookup finds a bucket by kind and slug.
func (f *Facets) Lookup(kind Kind, s string) (*Bucket, bool) {
	for _, b := range f.buckets[kind] {
		if b.Slug == s {
			return b, true
		}
	}
	return nil, false
}

type grouper struct {
	kind     Kind
	order    []*Bucket
	byKey    map[string]*Bucket
	reg      *slug.Registry
	fallback string
}

func newGrouper(kind Kind, fallback string) *grouper {
	return &grouper{
		kind:     kind,
		byKey:    make(map[string]*Bucket),
		reg:      slug.NewRegistry(),
		fallback: fallback,
	}
}

func (g *grouper) add(key string, st station.Station) {
	b, ok := g.byKey[key]
	if !ok {
		b = &Bucket{
			Kind: g.kind,
			Key:  key,
			Slug: g.reg.Claim(slug.MakeOr(key, g.fallback)),
		}
		g.byKey[key] = b
		g.order = append(g.order, b)
	}
	b.Stations = append(b.Stations, st)
}

// BuildFacets buckets stations by city, region and genre. City and region are
// single-valued and skip empty or placeholder values; genre is multi-valued
// and every station lands in each of its distinct genres, or in DefaultGenre
// when it declares none.
func BuildFacets(stations []station.Station, opts FacetOptions) *Facets {
	fallback := opts.FallbackSlug
	if fallback == "" {
		fallback = "other"
	}
	cities := newGrouper(KindCity, fallback)
	regions := newGrouper(KindRegion, fallback)
	genres := newGrouper(KindGenre, fallback)

	usable := func(v string) bool {
		return v != "" && (opts.Placeholder == "" || !strings.EqualFold(v, opts.Placeholder))
	}

	for _, st := range stations {
		if city := strings.TrimSpace(st.City); usable(city) {
			cities.add(city, st)
		}
		if region := strings.TrimSpace(st.State); usable(region) {
			regions.add(region, st)
		}

		seen := make(map[string]struct{}, len(st.Genres))
		for _, g := range st.Genres {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			genres.add(g, st)
		}
		if len(seen) == 0 && strings.TrimSpace(opts.DefaultGenre) != "" {
			genres.add(strings.TrimSpace(opts.DefaultGenre), st)
		}
	}

	return &Facets{
		buckets: map[Kind][]*Bucket{
			KindCity:   cities.order,
			KindRegion: regions.order,
			KindGenre:  genres.order,
		},
		Registries: map[Kind]*slug.Registry{
			KindCity:   cities.reg,
			KindRegion: regions.reg,
			KindGenre:  genres.reg,
		},
	}
}
