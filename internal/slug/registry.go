package slug

import "strconv"

// Registry assigns unique slugs within one namespace. The first claim of a
// base wins it unchanged; later claims get -2, -3, ... in claim order.
// A Registry is not safe for concurrent use.
type Registry struct {
	taken map[string]struct{}
	next  map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{taken: make(map[string]struct{}), next: make(map[string]int)}
}

// Taken reports whether s has been handed out.
func (r *Registry) Taken(s string) bool {
	_, ok := r.taken[s]
	return ok
}

// Reserve marks s as used without suffixing. It reports false if s was already taken.
func (r *Registry) Reserve(s string) bool {
	if s == "" || r.Taken(s) {
		return false
	}
	r.taken[s] = struct{}{}
	return true
}

// Claim returns base if free, otherwise base with the lowest free numeric suffix.
func (r *Registry) Claim(base string) string {
	if r.Reserve(base) {
		return base
	}
	n := r.next[base]
	if n < 2 {
		n = 2
	}
	for {
		candidate := Join(base, strconv.Itoa(n))
		n++
		if r.Reserve(candidate) {
			r.next[base] = n
			return candidate
		}
	}
}

// ClaimWith tries base, then base-suffix, then numeric suffixes.
func (r *Registry) ClaimWith(base, suffix string) string {
	if r.Reserve(base) {
		return base
	}
	if suffix != "" {
		if candidate := Join(base, suffix); r.Reserve(candidate) {
			return candidate
		}
	}
	return r.Claim(base)
}

// Len returns the number of slugs handed out.
func (r *Registry) Len() int { return len(r.taken) }
