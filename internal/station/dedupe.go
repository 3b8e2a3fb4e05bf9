package station

import (
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
)

const noStreamKey = "\x00no-stream"

// randomSuffix matches slugs that were disambiguated with a UUID-like tail.
var randomSuffix = regexp.MustCompile(`(?i)-[a-z0-9]{6,8}$`)

func dedupeScore(st Station) int {
	score := 0
	s := strings.TrimSpace(st.Slug)
	if s != "" && !randomSuffix.MatchString(s) {
		score += 10
	}
	if strings.TrimSpace(st.Name) != "" {
		score++
	}
	return score
}

// Dedupe collapses stations sharing a stream URL down to one keeper each.
// Stations with no stream URL form a single group. Kept stations retain
// their original order.
func Dedupe(stations []Station) (kept, removed []Station) {
	groups := make(map[string][]int)
	var order []string
	for i, st := range stations {
		key := strings.TrimSpace(st.StreamURL)
		if key == "" {
			key = noStreamKey
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	keep := make([]bool, len(stations))
	for _, key := range order {
		idx := groups[key]
		if len(idx) == 1 {
			keep[idx[0]] = true
			continue
		}
		sort.SliceStable(idx, func(a, b int) bool {
			sa, sb := stations[idx[a]], stations[idx[b]]
			if da, db := dedupeScore(sa), dedupeScore(sb); da != db {
				return da > db
			}
			la, lb := strings.TrimSpace(sa.Slug), strings.TrimSpace(sb.Slug)
			if len(la) != len(lb) {
				return len(la) < len(lb)
			}
			return la < lb
		})
		keep[idx[0]] = true
	}

	for i, st := range stations {
		if keep[i] {
			kept = append(kept, st)
		} else {
			removed = append(removed, st)
		}
	}
	return kept, removed
}

// localIconName returns the file name of a favicon served from urlPrefix,
// or "" when the favicon points elsewhere.
func localIconName(favicon, urlPrefix string) string {
	prefix := "/" + strings.Trim(urlPrefix, "/") + "/"
	if !strings.Contains(favicon, prefix) {
		return ""
	}
	name := path.Base(favicon)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

// RemoveOrphanIcons deletes icon files used by removed stations that no kept
// station references. It returns the deleted file names in sorted order.
func RemoveOrphanIcons(iconsDir, urlPrefix string, kept, removed []Station) ([]string, error) {
	referenced := make(map[string]struct{})
	for _, st := range kept {
		if name := localIconName(st.Favicon, urlPrefix); name != "" {
			referenced[name] = struct{}{}
		}
	}
	candidates := make(map[string]struct{})
	for _, st := range removed {
		name := localIconName(st.Favicon, urlPrefix)
		if name == "" {
			continue
		}
		if _, ok := referenced[name]; !ok {
			candidates[name] = struct{}{}
		}
	}

	names := make([]string, 0, len(candidates))
	for name := range candidates {
		names = append(names, name)
	}
	sort.Strings(names)

	var deleted []string
	for _, name := range names {
		p := filepath.Join(iconsDir, name)
		err := os.Remove(p)
		switch {
		case err == nil:
			deleted = append(deleted, name)
		case os.IsNotExist(err):
		default:
			return deleted, derrors.WrapError(err, derrors.CategoryFileSystem, "remove station icon").
				WithContext("path", p).Build()
		}
	}
	return deleted, nil
}
