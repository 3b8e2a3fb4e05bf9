package station

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/e-radio/eradio/internal/slug"
)

const fallbackWord = "station"

var validSlug = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a well-formed slug within the length bound.
func ValidSlug(s string) bool {
	return len(s) <= slug.MaxLength && validSlug.MatchString(s)
}

// uuidPrefix returns the first 8 hex characters of the station UUID, or a
// slugified prefix of the raw value when it does not parse.
func uuidPrefix(st Station) string {
	raw := strings.TrimSpace(st.UUID)
	if raw == "" {
		return ""
	}
	if id, err := uuid.Parse(raw); err == nil {
		return id.String()[:8]
	}
	p := slug.Make(raw)
	if len(p) > 8 {
		p = strings.Trim(p[:8], "-")
	}
	return p
}

// BaseSlug derives the preferred slug for a station from its name and location.
// The location is appended unless the name already mentions it.
func BaseSlug(st Station) string {
	name := strings.TrimSpace(st.Name)
	loc := st.Location()

	nameSlug := slug.Make(name)
	if loc != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(loc)) {
		locSlug := slug.Make(loc)
		if locSlug != "" && !containsToken(nameSlug, locSlug) {
			nameSlug = slug.Make(nameSlug + " " + locSlug)
		}
	}
	if nameSlug != "" {
		return nameSlug
	}
	if p := uuidPrefix(st); p != "" {
		return p
	}
	return fallbackWord
}

func containsToken(s, sub string) bool {
	return s == sub ||
		strings.HasPrefix(s, sub+"-") ||
		strings.HasSuffix(s, "-"+sub) ||
		strings.Contains(s, "-"+sub+"-")
}

// AssignSlugs gives every station a unique slug, in slice order. A station
// keeps its current slug when it is valid and not claimed by an earlier
// station. Collisions get the UUID prefix, then numeric counters. It returns
// the number of stations whose slug changed.
func AssignSlugs(stations []Station) int {
	reg := slug.NewRegistry()
	changed := 0
	for i := range stations {
		st := &stations[i]
		current := strings.TrimSpace(st.Slug)
		if ValidSlug(current) && reg.Reserve(current) {
			if current != st.Slug {
				st.Slug = current
				changed++
			}
			continue
		}
		next := reg.ClaimWith(BaseSlug(*st), uuidPrefix(*st))
		if next != st.Slug {
			st.Slug = next
			changed++
		}
	}
	return changed
}
