package storage

import (
	"strings"
)

// originSchemes are the URL schemes Chromium encodes into storage entry
// names, longest first so "https_" is tried before "http_".
var originSchemes = []string{"https", "http", "wss", "ws", "ftp", "file"}

// ParseOriginHost extracts the origin host from a storage entry name like
// "https_mail.google.com_0.indexeddb.leveldb" or "http_example.com_8080".
// Returns "" when the name does not encode an origin (leveldb segment
// files, hashed cache directories).
func ParseOriginHost(name string) string {
	lower := strings.ToLower(name)

	var rest string
	for _, scheme := range originSchemes {
		if r, ok := strings.CutPrefix(lower, scheme+"_"); ok {
			rest = r
			break
		}
	}
	if rest == "" {
		return ""
	}

	// The final underscore separates host from "<port>[.suffix]".
	idx := strings.LastIndex(rest, "_")
	if idx <= 0 {
		return ""
	}
	host := rest[:idx]
	tail := rest[idx+1:]
	if host == "" || tail == "" || tail[0] < '0' || tail[0] > '9' {
		return ""
	}
	return host
}

// HostMatchesSite reports whether an origin host belongs to the site:
// the site itself or any subdomain of it.
func HostMatchesSite(host, site string) bool {
	host = strings.ToLower(host)
	site = strings.ToLower(site)
	if host == "" || site == "" {
		return false
	}
	return host == site || strings.HasSuffix(host, "."+site)
}

// NameMatchesSite decides whether a storage entry belongs to the site.
// Entries whose name encodes an origin are matched on the origin host;
// anything else falls back to a case-insensitive substring match, which is
// what legacy per-origin file names need.
func NameMatchesSite(name, site string) bool {
	if site == "" {
		return false
	}
	if host := ParseOriginHost(name); host != "" {
		return HostMatchesSite(host, site)
	}
	return strings.Contains(strings.ToLower(name), strings.ToLower(site))
}
