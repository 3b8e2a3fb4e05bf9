package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/httpclient"
)

const cacheNamespace = "nominatim"

// Cache stores raw geocoder responses between runs.
type Cache interface {
	CacheGet(ctx context.Context, namespace, key string) ([]byte, bool, error)
	CachePut(ctx context.Context, namespace, key string, value []byte) error
}

// Place is a reverse geocoding result.
type Place struct {
	DisplayName string
	Address     map[string]string
}

// Geocoder reverse geocodes coordinates.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)
}

// Nominatim is a Geocoder backed by the Nominatim jsonv2 reverse endpoint.
type Nominatim struct {
	http     *httpclient.Client
	endpoint string
	language string
	cache    Cache
}

// NewNominatim returns a client for endpoint. cache may be nil.
func NewNominatim(hc *httpclient.Client, endpoint, language string, cache Cache) *Nominatim {
	return &Nominatim{http: hc, endpoint: endpoint, language: language, cache: cache}
}

type reverseResponse struct {
	DisplayName string         `json:"display_name"`
	Address     map[string]any `json:"address"`
	Error       string         `json:"error"`
}

// Reverse looks up lat/lon, serving repeated coordinates from the cache.
func (n *Nominatim) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	key := fmt.Sprintf("%.6f,%.6f,%s", lat, lon, n.language)
	if n.cache != nil {
		if raw, ok, err := n.cache.CacheGet(ctx, cacheNamespace, key); err == nil && ok {
			return decodePlace(raw)
		}
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", fmt.Sprintf("%.6f", lat))
	q.Set("lon", fmt.Sprintf("%.6f", lon))
	q.Set("addressdetails", "1")
	q.Set("accept-language", n.language)
	endpoint := n.endpoint + "?" + q.Encode()

	resp, err := n.http.Get(ctx, "nominatim.reverse", endpoint, http.Header{"Accept": {"application/json"}})
	if err != nil {
		return nil, err
	}
	if !strings.Contains(resp.ContentType, "application/json") {
		return nil, derrors.NewError(derrors.CategoryValidation, "unsupported content type").
			WithContext("content_type", resp.ContentType).
			WithContext("url", endpoint).Build()
	}
	place, err := decodePlace(resp.Body)
	if err != nil {
		return nil, err
	}
	if n.cache != nil {
		_ = n.cache.CachePut(ctx, cacheNamespace, key, resp.Body)
	}
	return place, nil
}

func decodePlace(raw []byte) (*Place, error) {
	var r reverseResponse
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryValidation, "decode geocoder response").Build()
	}
	if r.Error != "" {
		return nil, derrors.NotFoundError("geocoder: " + r.Error).Build()
	}
	p := &Place{DisplayName: r.DisplayName, Address: make(map[string]string, len(r.Address))}
	for k, v := range r.Address {
		if s, ok := v.(string); ok {
			p.Address[k] = s
		}
	}
	return p, nil
}
