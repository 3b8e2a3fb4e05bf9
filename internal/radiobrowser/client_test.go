package radiobrowser

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-radio/eradio/internal/config"
	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/httpclient"
	"github.com/e-radio/eradio/internal/retry"
)

const stationsJSON = `[
  {"stationuuid":"9617a958-0601-11e8-ae97-52543be04c81","name":" Kiss FM ","url":"http://kiss/pls","url_resolved":"http://kiss/stream",
   "tags":"pop, Pop,dance,","state":"Attica","bitrate":"128","votes":7,"geo_lat":37.98,"geo_long":null},
  {"stationuuid":"b2","name":"Silent","url":"","url_resolved":"","bitrate":0}
]`

func newTestClient(t *testing.T, scheme, serversURL string) *Client {
	t.Helper()
	hc := httpclient.New("test-agent", time.Second,
		retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 0))
	return NewClient(hc, serversURL,
		WithScheme(scheme),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestStationsByCountryFallsBackToNextMirror(t *testing.T) {
	var host string
	mux := http.NewServeMux()
	mux.HandleFunc("/json/servers", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]Mirror{{Name: "127.0.0.1:1"}, {Name: host}, {Name: host}})
	})
	mux.HandleFunc("/json/stations/bycountrycodeexact/GR", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(stationsJSON))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	host = strings.TrimPrefix(srv.URL, "http://")

	c := newTestClient(t, "http", srv.URL+"/json/servers")

	mirrors, err := c.Mirrors(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"127.0.0.1:1", host}, mirrors)

	stations, err := c.StationsByCountry(t.Context(), "gr")
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Equal(t, 128, stations[0].Bitrate.Int())
}

func TestMirrorsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, "http", srv.URL)
	_, err := c.Mirrors(t.Context())
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))
}

func TestStationsByCountryAllMirrorsFail(t *testing.T) {
	var host string
	mux := http.NewServeMux()
	mux.HandleFunc("/json/servers", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, `[{"name":%q}]`, host)
	})
	mux.HandleFunc("/json/stations/bycountrycodeexact/GR", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	host = strings.TrimPrefix(srv.URL, "http://")

	c := newTestClient(t, "http", srv.URL+"/json/servers")
	_, err := c.StationsByCountry(t.Context(), "GR")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 400")
}
