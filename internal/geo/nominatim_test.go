package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-radio/eradio/internal/config"
	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/httpclient"
	"github.com/e-radio/eradio/internal/retry"
)

type mapCache map[string][]byte

func (m mapCache) CacheGet(_ context.Context, ns, key string) ([]byte, bool, error) {
	v, ok := m[ns+"|"+key]
	return v, ok, nil
}

func (m mapCache) CachePut(_ context.Context, ns, key string, value []byte) error {
	m[ns+"|"+key] = value
	return nil
}

func testHTTP() *httpclient.Client {
	return httpclient.New("test", time.Second,
		retry.NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 0))
}

func TestNominatimReverseUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "jsonv2", q.Get("format"))
		assert.Equal(t, "37.983800", q.Get("lat"))
		assert.Equal(t, "23.727500", q.Get("lon"))
		assert.Equal(t, "en", q.Get("accept-language"))
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(`{"display_name":"Athens","address":{"city":"Athens","state":"Attica","ISO3166-2-lvl4":"GR-I","place_rank":16}}`))
	}))
	defer srv.Close()

	cache := mapCache{}
	n := NewNominatim(testHTTP(), srv.URL, "en", cache)

	for range 2 {
		place, err := n.Reverse(t.Context(), 37.9838, 23.7275)
		require.NoError(t, err)
		assert.Equal(t, "Athens", place.Address["city"])
		assert.Equal(t, "Attica", place.Address["state"])
		_, hasRank := place.Address["place_rank"]
		assert.False(t, hasRank, "non-string address values are dropped")
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Len(t, cache, 1)
}

func TestNominatimRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	_, err := NewNominatim(testHTTP(), srv.URL, "en", nil).Reverse(t.Context(), 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}

func TestNominatimErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	_, err := NewNominatim(testHTTP(), srv.URL, "en", nil).Reverse(t.Context(), 0, 0)
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))
}
