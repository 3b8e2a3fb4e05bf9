package sitemap

import (
	"strconv"
	"strings"
)

// Routes holds the site's path patterns. {slug} and {page} are substituted.
type Routes struct {
	Home        string `yaml:"home"`
	TopRated    string `yaml:"top_rated"`
	Cities      string `yaml:"cities"`
	HighQuality string `yaml:"high_quality"`
	Genres      string `yaml:"genres"`
	Regions     string `yaml:"regions"`

	HomePage        string `yaml:"home_page"`
	HighQualityPage string `yaml:"high_quality_page"`

	City       string `yaml:"city"`
	CityPage   string `yaml:"city_page"`
	Region     string `yaml:"region"`
	RegionPage string `yaml:"region_page"`
	Genre      string `yaml:"genre"`
	GenrePage  string `yaml:"genre_page"`

	Station string `yaml:"station"`
}

// DefaultRoutes mirrors the page layout of the static site.
func DefaultRoutes() Routes {
	return Routes{
		Home:            "/",
		TopRated:        "/top/",
		Cities:          "/cities/",
		HighQuality:     "/high-quality/",
		Genres:          "/genres/",
		Regions:         "/regions/",
		HomePage:        "/page/{page}/",
		HighQualityPage: "/high-quality/page/{page}/",
		City:            "/city/{slug}/",
		CityPage:        "/city/{slug}/page/{page}/",
		Region:          "/region/{slug}/",
		RegionPage:      "/region/{slug}/page/{page}/",
		Genre:           "/genre/{slug}/",
		GenrePage:       "/genre/{slug}/page/{page}/",
		Station:         "/station/{slug}/",
	}
}

// withDefaults fills empty patterns from DefaultRoutes.
func (r Routes) withDefaults() Routes {
	d := DefaultRoutes()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&r.Home, d.Home)
	fill(&r.TopRated, d.TopRated)
	fill(&r.Cities, d.Cities)
	fill(&r.HighQuality, d.HighQuality)
	fill(&r.Genres, d.Genres)
	fill(&r.Regions, d.Regions)
	fill(&r.HomePage, d.HomePage)
	fill(&r.HighQualityPage, d.HighQualityPage)
	fill(&r.City, d.City)
	fill(&r.CityPage, d.CityPage)
	fill(&r.Region, d.Region)
	fill(&r.RegionPage, d.RegionPage)
	fill(&r.Genre, d.Genre)
	fill(&r.GenrePage, d.GenrePage)
	fill(&r.Station, d.Station)
	return r
}

// bucket returns the hub and page patterns for a bucket kind.
func (r Routes) bucket(kind Kind) (hub, page string) {
	switch kind {
	case KindCity:
		return r.City, r.CityPage
	case KindRegion:
		return r.Region, r.RegionPage
	default:
		return r.Genre, r.GenrePage
	}
}

func expand(pattern, s string, page int) string {
	return strings.NewReplacer("{slug}", s, "{page}", strconv.Itoa(page)).Replace(pattern)
}
