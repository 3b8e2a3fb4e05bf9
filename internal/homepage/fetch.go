package homepage

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"golang.org/x/net/html/charset"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/httpclient"
)

// MaxPageSize bounds how much of a homepage is read.
const MaxPageSize = 1 << 20

var acceptedTypes = []string{"text/html", "application/xhtml+xml", "application/json", "text/plain"}

// Locator finds a station's location on its homepage.
type Locator struct {
	http *httpclient.Client
}

// NewLocator returns a Locator using hc. hc should be built with
// httpclient.WithMaxBody(MaxPageSize).
func NewLocator(hc *httpclient.Client) *Locator {
	return &Locator{http: hc}
}

// Locate fetches pageURL and returns the location named in its JSON-LD,
// or "" when none is declared.
func (l *Locator) Locate(ctx context.Context, pageURL string) (string, error) {
	resp, err := l.http.Get(ctx, "homepage", pageURL, http.Header{"Accept": {"text/html,application/xhtml+xml"}})
	if err != nil {
		return "", err
	}
	if !acceptable(resp.ContentType) {
		return "", derrors.NewError(derrors.CategoryValidation, "unsupported content type").
			WithContext("content_type", resp.ContentType).
			WithContext("url", pageURL).Build()
	}

	body, err := charset.NewReader(bytes.NewReader(resp.Body), resp.ContentType)
	if err != nil {
		return "", derrors.WrapError(err, derrors.CategoryValidation, "unsupported charset").
			WithContext("url", pageURL).Build()
	}
	blocks, err := ExtractJSONLD(body)
	if err != nil {
		return "", err
	}
	return PickLocation(Objects(blocks)), nil
}

func acceptable(contentType string) bool {
	ct := strings.ToLower(contentType)
	for _, t := range acceptedTypes {
		if strings.Contains(ct, t) {
			return true
		}
	}
	return false
}
