package slug

import "strings"

// MaxLength bounds every slug produced by this package.
const MaxLength = 80

// Make produces a lowercase ASCII slug matching ^[a-z0-9]+(-[a-z0-9]+)*$,
// or the empty string when s has nothing usable.
func Make(s string) string {
	s = strings.ToLower(Transliterate(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return truncate(b.String(), MaxLength)
}

// MakeOr is Make with a fallback used when s produces an empty slug.
func MakeOr(s, fallback string) string {
	if out := Make(s); out != "" {
		return out
	}
	return Make(fallback)
}

// truncate cuts an already normalized slug to n bytes and trims a dangling hyphen.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) > n {
		s = s[:n]
	}
	return strings.Trim(s, "-")
}

// Join appends suffix to base with a hyphen, shortening base so the result
// stays within MaxLength.
func Join(base, suffix string) string {
	if suffix == "" {
		return base
	}
	if base == "" {
		return truncate(suffix, MaxLength)
	}
	room := MaxLength - len(suffix) - 1
	return truncate(base, room) + "-" + suffix
}
