package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Station", KeyStation, "Radio Athina", Station("Radio Athina")},
		{"StationID", KeyStationID, "9617a958", StationID("9617a958")},
		{"Slug", KeySlug, "radio-athina", Slug("radio-athina")},
		{"Kind", KeyKind, "city", Kind("city")},
		{"Bucket", KeyBucket, "Athens", Bucket("Athens")},
		{"URL", KeyURL, "https://x", URL("https://x")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Task", KeyTask, "regions-geo", Task("regions-geo")},
		{"Method", KeyMethod, "GET", Method("GET")},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Fatalf("%s key mismatch: got %s want %s", c.name, c.attr.Key, c.attrKey)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Fatalf("%s value mismatch: got %s want %s", c.name, c.attr.Value.String(), c.attrVal)
		}
	}
}

func TestNumericAndErrorHelpers(t *testing.T) {
	if a := Count(3); a.Value.Int64() != 3 || a.Key != KeyCount {
		t.Fatalf("unexpected count attr %v", a)
	}
	if a := Status(404); a.Value.Int64() != 404 {
		t.Fatalf("unexpected status attr %v", a)
	}
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("nil error should render empty, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Fatalf("unexpected error attr %q", a.Value.String())
	}
}
