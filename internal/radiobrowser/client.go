// Package radiobrowser fetches stations from the public radio-browser API
// and converts them into dataset records.
package radiobrowser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/httpclient"
	"github.com/e-radio/eradio/internal/logfields"
)

// Mirror is one entry of the /json/servers listing.
type Mirror struct {
	Name string `json:"name"`
	IP   string `json:"ip"`
}

// Client talks to radio-browser mirrors.
type Client struct {
	http       *httpclient.Client
	serversURL string
	scheme     string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithScheme sets the scheme used to reach mirrors (default https).
func WithScheme(s string) Option { return func(c *Client) { c.scheme = s } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

// NewClient returns a Client discovering mirrors from serversURL.
func NewClient(hc *httpclient.Client, serversURL string, opts ...Option) *Client {
	c := &Client{http: hc, serversURL: serversURL, scheme: "https", logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var jsonHeader = http.Header{"Accept": {"application/json"}}

// Mirrors lists the mirror host names, duplicates removed, in listing order.
func (c *Client) Mirrors(ctx context.Context) ([]string, error) {
	resp, err := c.http.Get(ctx, "radiobrowser.servers", c.serversURL, jsonHeader)
	if err != nil {
		return nil, err
	}
	var mirrors []Mirror
	if err := json.Unmarshal(resp.Body, &mirrors); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryNetwork, "decode mirror list").Build()
	}
	seen := make(map[string]struct{})
	var names []string
	for _, m := range mirrors {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, derrors.NotFoundError("no radio-browser mirrors available").
			WithContext("url", c.serversURL).Build()
	}
	return names, nil
}

// StationsByCountry fetches every station of countryCode, trying mirrors in
// order until one answers.
func (c *Client) StationsByCountry(ctx context.Context, countryCode string) ([]APIStation, error) {
	mirrors, err := c.Mirrors(ctx)
	if err != nil {
		return nil, err
	}
	var lastErr error
	for _, mirror := range mirrors {
		endpoint := fmt.Sprintf("%s://%s/json/stations/bycountrycodeexact/%s?hidebroken=false",
			c.scheme, mirror, url.PathEscape(strings.ToUpper(countryCode)))
		resp, err := c.http.Get(ctx, "radiobrowser.stations", endpoint, jsonHeader)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("mirror failed, trying next", logfields.URL(endpoint), logfields.Error(err))
			lastErr = err
			continue
		}
		var stations []APIStation
		if err := json.Unmarshal(resp.Body, &stations); err != nil {
			lastErr = derrors.WrapError(err, derrors.CategoryNetwork, "decode stations").
				WithContext("url", endpoint).Build()
			continue
		}
		c.logger.Info("fetched stations", logfields.URL(endpoint), logfields.Count(len(stations)))
		return stations, nil
	}
	return nil, lastErr
}
