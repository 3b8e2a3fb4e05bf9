package sitemap

import (
	"net/url"
	"strings"
	"time"

	"github.com/e-radio/eradio/internal/config"
	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/station"
)

// DateLayout is the lastmod format.
const DateLayout = "2006-01-02"

// Options configures a sitemap build.
type Options struct {
	BaseURL             string
	Routes              Routes
	HomePageSize        int
	HighQualityPageSize int
	BucketPageSize      int
	HighQualityBitrate  int // inclusive
	Placeholder         string
	DefaultGenre        string
	FallbackSlug        string
	StaticPages         []string
	BuildDate           time.Time
}

// OptionsFromConfig derives build options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, buildDate time.Time) Options {
	return Options{
		BaseURL:             cfg.Site.BaseURL,
		Routes:              DefaultRoutes(),
		HomePageSize:        cfg.Sitemap.HomePageSize,
		HighQualityPageSize: cfg.Sitemap.HighQualityPageSize,
		BucketPageSize:      cfg.Sitemap.BucketPageSize,
		HighQualityBitrate:  cfg.Sitemap.HighQualityBitrate,
		Placeholder:         cfg.Sitemap.Placeholder,
		DefaultGenre:        cfg.Sitemap.DefaultGenre,
		FallbackSlug:        cfg.Sitemap.FallbackSlug,
		StaticPages:         cfg.Site.StaticPages,
		BuildDate:           buildDate,
	}
}

func (o Options) validate() error {
	u, err := url.Parse(o.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return derrors.ValidationError("sitemap base URL must be absolute").
			WithContext("base_url", o.BaseURL).Build()
	}
	if o.HomePageSize <= 0 || o.HighQualityPageSize <= 0 || o.BucketPageSize <= 0 {
		return derrors.ValidationError("sitemap page sizes must be positive").Build()
	}
	if o.BuildDate.IsZero() {
		return derrors.ValidationError("sitemap build date is required").Build()
	}
	return nil
}

// URL is one sitemap entry.
type URL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Sitemap is a fully built document.
type Sitemap struct {
	URLs   []URL
	Facets *Facets
	// Counts holds the number of entries emitted per section
	// (static, home, high_quality, city, region, genre, station).
	Counts map[string]int
}

// urlSet keeps emission order and drops repeated locations, first wins.
type urlSet struct {
	base   string
	urls   []URL
	seen   map[string]struct{}
	counts map[string]int
}

func newURLSet(base string) *urlSet {
	return &urlSet{
		base:   strings.TrimRight(base, "/"),
		seen:   make(map[string]struct{}),
		counts: make(map[string]int),
	}
}

func (s *urlSet) add(section, path, lastmod string) bool {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	loc := s.base + path
	if _, dup := s.seen[loc]; dup {
		return false
	}
	s.seen[loc] = struct{}{}
	s.urls = append(s.urls, URL{Loc: loc, LastMod: lastmod})
	s.counts[section]++
	return true
}

func (s *urlSet) paginate(section, pattern, slugValue string, items, pageSize int, lastmod string) {
	for p := 2; p <= SubPages(items, pageSize)+1; p++ {
		s.add(section, expand(pattern, slugValue, p), lastmod)
	}
}

// checkSlugs requires every station to carry a distinct well-formed slug so
// each one maps to exactly one location.
func checkSlugs(stations []station.Station) error {
	seen := make(map[string]int, len(stations))
	for i, st := range stations {
		var msg string
		switch {
		case strings.TrimSpace(st.Slug) == "":
			msg = "station has no slug"
		case !station.ValidSlug(st.Slug):
			msg = "station has a malformed slug"
		default:
			if first, dup := seen[st.Slug]; dup {
				return derrors.SitemapError("duplicate station slug").
					WithContext("index", i).
					WithContext("first_index", first).
					WithContext("stationuuid", st.UUID).
					WithContext("slug", st.Slug).
					Build()
			}
			seen[st.Slug] = i
			continue
		}
		return derrors.SitemapError(msg).
			WithContext("index", i).
			WithContext("stationuuid", st.UUID).
			WithContext("name", st.Name).
			WithContext("slug", st.Slug).
			Build()
	}
	return nil
}

// Build assembles the sitemap for stations. Every station must carry a
// unique valid slug.
func Build(stations []station.Station, opts Options) (*Sitemap, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := checkSlugs(stations); err != nil {
		return nil, err
	}

	routes := opts.Routes.withDefaults()
	date := opts.BuildDate.Format(DateLayout)
	set := newURLSet(opts.BaseURL)

	for _, p := range []string{routes.Home, routes.TopRated, routes.Cities, routes.HighQuality, routes.Genres, routes.Regions} {
		set.add("static", p, date)
	}
	for _, p := range opts.StaticPages {
		set.add("static", p, date)
	}

	set.paginate("home", routes.HomePage, "", len(stations), opts.HomePageSize, date)

	highQuality := 0
	for _, st := range stations {
		if st.Bitrate.Int() >= opts.HighQualityBitrate {
			highQuality++
		}
	}
	set.paginate("high_quality", routes.HighQualityPage, "", highQuality, opts.HighQualityPageSize, date)

	facets := BuildFacets(stations, FacetOptions{
		Placeholder:  opts.Placeholder,
		DefaultGenre: opts.DefaultGenre,
		FallbackSlug: opts.FallbackSlug,
	})
	for _, kind := range Kinds {
		hub, page := routes.bucket(kind)
		for _, b := range facets.Buckets(kind) {
			set.add(string(kind), expand(hub, b.Slug, 1), date)
			set.paginate(string(kind), page, b.Slug, len(b.Stations), opts.BucketPageSize, date)
		}
	}

	for _, st := range stations {
		set.add("station", expand(routes.Station, st.Slug, 1), "")
	}

	return &Sitemap{URLs: set.urls, Facets: facets, Counts: set.counts}, nil
}
