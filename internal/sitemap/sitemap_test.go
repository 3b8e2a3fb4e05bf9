package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/station"
)

const base = "https://example.org"

func testOptions() Options {
	return Options{
		BaseURL:             base,
		Routes:              DefaultRoutes(),
		HomePageSize:        50,
		HighQualityPageSize: 50,
		BucketPageSize:      24,
		HighQualityBitrate:  320,
		Placeholder:         "unknown",
		DefaultGenre:        "Other",
		FallbackSlug:        "other",
		StaticPages:         []string{"/about/"},
		BuildDate:           time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
	}
}

func makeStations(n int) []station.Station {
	out := make([]station.Station, n)
	for i := range out {
		out[i] = station.Station{Slug: fmt.Sprintf("s-%d", i), Name: fmt.Sprintf("Station %d", i)}
	}
	return out
}

func locsWithPrefix(sm *Sitemap, prefix string) []string {
	var out []string
	for _, u := range sm.URLs {
		if strings.HasPrefix(u.Loc, base+prefix) {
			out = append(out, strings.TrimPrefix(u.Loc, base))
		}
	}
	return out
}

func TestSubPages(t *testing.T) {
	tests := []struct{ k, p, want int }{
		{0, 50, 0},
		{1, 24, 0},
		{50, 50, 0},
		{51, 50, 1},
		{120, 50, 2},
		{10, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SubPages(tt.k, tt.p), "SubPages(%d, %d)", tt.k, tt.p)
	}
}

func TestHomePagination(t *testing.T) {
	sm, err := Build(makeStations(120), testOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"/page/2/", "/page/3/"}, locsWithPrefix(sm, "/page/"))
	assert.Equal(t, 2, sm.Counts["home"])
}

func TestHighQualityThresholdIsInclusive(t *testing.T) {
	stations := makeStations(3)
	stations[0].Bitrate = 320
	stations[1].Bitrate = 319
	stations[2].Bitrate = 321

	opts := testOptions()
	opts.HighQualityPageSize = 1
	sm, err := Build(stations, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"/high-quality/page/2/"}, locsWithPrefix(sm, "/high-quality/page/"))
}

func TestBucketSlugCollisionsGetCounters(t *testing.T) {
	stations := makeStations(3)
	stations[0].City = "Москва"
	stations[1].City = "Киев"
	stations[2].City = "Москва"

	sm, err := Build(stations, testOptions())
	require.NoError(t, err)

	buckets := sm.Facets.Buckets(KindCity)
	require.Len(t, buckets, 2)
	assert.Equal(t, "other", buckets[0].Slug)
	assert.Len(t, buckets[0].Stations, 2)
	assert.Equal(t, "other-2", buckets[1].Slug)
	assert.Equal(t, []string{"/city/other/", "/city/other-2/"}, locsWithPrefix(sm, "/city/"))
}

func TestPlaceholderAndEmptyKeysAreSkipped(t *testing.T) {
	stations := makeStations(3)
	stations[0].City, stations[0].State = "Unknown", "UNKNOWN"
	stations[1].City, stations[1].State = "  ", ""
	stations[2].City, stations[2].State = "Patra", "Western Greece"

	f := BuildFacets(stations, FacetOptions{Placeholder: "unknown", DefaultGenre: "Other", FallbackSlug: "other"})
	require.Len(t, f.Buckets(KindCity), 1)
	assert.Equal(t, "patra", f.Buckets(KindCity)[0].Slug)
	require.Len(t, f.Buckets(KindRegion), 1)
	assert.Equal(t, "western-greece", f.Buckets(KindRegion)[0].Slug)
}

func TestGenreAdjacency(t *testing.T) {
	stations := []station.Station{
		{Slug: "a", Genres: []string{"Pop", " Pop", "Rock"}},
		{Slug: "b"},
		{Slug: "c", Genres: []string{"rock", ""}},
	}
	f := BuildFacets(stations, FacetOptions{DefaultGenre: "Other", FallbackSlug: "other"})

	genres := f.Buckets(KindGenre)
	require.Len(t, genres, 4)
	var keys, slugs []string
	for _, g := range genres {
		keys = append(keys, g.Key)
		slugs = append(slugs, g.Slug)
	}
	assert.Equal(t, []string{"Pop", "Rock", "Other", "rock"}, keys)
	assert.Equal(t, []string{"pop", "rock", "other", "rock-2"}, slugs)
	assert.Len(t, genres[0].Stations, 1, "duplicate genre on one station counts once")

	b, ok := f.Lookup(KindGenre, "rock-2")
	require.True(t, ok)
	assert.Equal(t, "c", b.Stations[0].Slug)
}

func TestBucketPagination(t *testing.T) {
	stations := makeStations(25)
	for i := range stations {
		stations[i].City = "Athens"
		stations[i].Genres = []string{"News"}
	}
	sm, err := Build(stations, testOptions())
	require.NoError(t, err)
	assert.Equal(t, []string{"/city/athens/", "/city/athens/page/2/"}, locsWithPrefix(sm, "/city/"))
	assert.Equal(t, []string{"/genre/news/", "/genre/news/page/2/"}, locsWithPrefix(sm, "/genre/"))
}

func TestEntriesAreUniqueAndDated(t *testing.T) {
	stations := makeStations(60)
	for i := range stations {
		stations[i].City = []string{"Athens", "Thessaloniki", "Patra"}[i%3]
		stations[i].State = "Attica"
		stations[i].Bitrate = station.FlexInt(128 + i*4)
	}
	opts := testOptions()
	opts.StaticPages = append(opts.StaticPages, "/about/", "/")
	sm, err := Build(stations, opts)
	require.NoError(t, err)

	seen := make(map[string]struct{})
	for _, u := range sm.URLs {
		_, dup := seen[u.Loc]
		assert.False(t, dup, "duplicate %s", u.Loc)
		seen[u.Loc] = struct{}{}

		if strings.HasPrefix(u.Loc, base+"/station/") {
			assert.Empty(t, u.LastMod, u.Loc)
		} else {
			assert.Equal(t, "2026-10-16", u.LastMod, u.Loc)
		}
	}
	assert.Equal(t, 60, sm.Counts["station"])
	assert.Equal(t, 7, sm.Counts["static"])
	assert.Equal(t, base+"/", sm.URLs[0].Loc)
}

func TestBuildRejectsStationWithoutSlug(t *testing.T) {
	stations := makeStations(2)
	stations[1].Slug = " "
	_, err := Build(stations, testOptions())
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategorySitemap))
}

func TestBuildRejectsMalformedSlug(t *testing.T) {
	for _, bad := range []string{"bad slug/../x", "Kiss-FM", " kiss-fm", "../etc"} {
		stations := makeStations(3)
		stations[2].Slug = bad
		stations[2].UUID = "u-bad"
		sm, err := Build(stations, testOptions())
		require.Error(t, err, bad)
		assert.Nil(t, sm)
		assert.True(t, derrors.HasCategory(err, derrors.CategorySitemap), bad)

		ce, ok := derrors.AsClassified(err)
		require.True(t, ok)
		idx, _ := ce.Context().Get("index")
		assert.Equal(t, 2, idx)
		uuid, _ := ce.Context().GetString("stationuuid")
		assert.Equal(t, "u-bad", uuid)
	}
}

func TestBuildRejectsDuplicateSlugs(t *testing.T) {
	stations := makeStations(3)
	stations[2].Slug = stations[0].Slug
	stations[2].UUID = "u-dup"
	_, err := Build(stations, testOptions())
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategorySitemap))

	ce, ok := derrors.AsClassified(err)
	require.True(t, ok)
	idx, _ := ce.Context().Get("index")
	assert.Equal(t, 2, idx)
	uuid, _ := ce.Context().GetString("stationuuid")
	assert.Equal(t, "u-dup", uuid)
}

func TestBuildEmitsOneLocationPerStation(t *testing.T) {
	stations := makeStations(5)
	sm, err := Build(stations, testOptions())
	require.NoError(t, err)
	assert.Equal(t, len(stations), sm.Counts["station"])
}

func TestBuildValidatesOptions(t *testing.T) {
	opts := testOptions()
	opts.BaseURL = "/relative"
	_, err := Build(nil, opts)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryValidation))

	opts = testOptions()
	opts.BucketPageSize = 0
	_, err = Build(nil, opts)
	assert.Error(t, err)
}

func TestEncode(t *testing.T) {
	stations := makeStations(1)
	stations[0].Slug = "kiss-fm"
	sm, err := Build(stations, testOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, sm.Encode(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xsi:schemaLocation="http://www.sitemaps.org/schemas/sitemap/0.9 http://www.sitemaps.org/schemas/sitemap/0.9/sitemap.xsd">`)
	assert.Contains(t, out, "<url>\n    <loc>https://example.org/</loc>\n    <lastmod>2026-10-16</lastmod>\n  </url>")
	assert.Contains(t, out, "<url>\n    <loc>https://example.org/station/kiss-fm/</loc>\n  </url>")

	var decoded struct {
		URLs []URL `xml:"url"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sm.URLs, decoded.URLs)
}
