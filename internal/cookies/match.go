package cookies

import (
	"strings"

	"github.com/bmatcuk/doublestar"
)

// MatchHost reports whether a site host matches a glob pattern, so
// "*.doubleclick.net" or "ads*" can select sites from the command line.
// Matching is case-insensitive; an empty pattern matches everything.
func MatchHost(pattern, host string) (bool, error) {
	if pattern == "" {
		return true, nil
	}
	return doublestar.Match(strings.ToLower(pattern), NormalizeHost(host))
}

// FilterSites returns the sites whose host matches the glob pattern.
func FilterSites(sites []Site, pattern string) ([]Site, error) {
	if pattern == "" {
		return sites, nil
	}
	var out []Site
	for _, s := range sites {
		ok, err := MatchHost(pattern, s.Host)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, nil
}
