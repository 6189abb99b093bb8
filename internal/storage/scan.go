package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
	"github.com/lakshaymaurya-felt/sitemole/internal/core"
)

// Entry is one file or directory in a storage area attributed to a site.
type Entry struct {
	Area  string `json:"area"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Host  string `json:"host,omitempty"` // parsed origin host, empty when unknown
	Size  int64  `json:"size"`
	IsDir bool   `json:"is_dir"`
}

// AreaSize is the total footprint of one storage area.
type AreaSize struct {
	Area string `json:"area"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// scanConcurrency bounds parallel directory sizing.
const scanConcurrency = 8

// isReparsePoint returns true if the path is a Windows junction or symlink
// (FILE_ATTRIBUTE_REPARSE_POINT). Must be checked to avoid walking out of
// the profile.
func isReparsePoint(path string) bool {
	pathp, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := syscall.GetFileAttributes(pathp)
	if err != nil {
		return false
	}
	const fileAttributeReparsePoint = 0x0400
	return attrs&fileAttributeReparsePoint != 0
}

// ScanSite walks the top level of each existing storage area and returns
// the entries attributable to the site. Entries that vanish mid-scan are
// skipped; the browser prunes its own storage concurrently.
func ScanSite(p browser.Profile, site string) ([]Entry, error) {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sem     = make(chan struct{}, scanConcurrency)
		entries []Entry
	)

	for _, area := range p.Areas() {
		dirEntries, err := os.ReadDir(area.Path)
		if err != nil {
			continue
		}

		for _, de := range dirEntries {
			if !NameMatchesSite(de.Name(), site) {
				continue
			}

			path := filepath.Join(area.Path, de.Name())
			if de.IsDir() && isReparsePoint(path) {
				continue
			}

			e := Entry{
				Area:  area.Area,
				Name:  de.Name(),
				Path:  path,
				Host:  ParseOriginHost(de.Name()),
				IsDir: de.IsDir(),
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				sem <- struct{}{}
				size := core.SizeOf(e.Path)
				<-sem

				e.Size = size
				mu.Lock()
				entries = append(entries, e)
				mu.Unlock()
			}()
		}
	}
	wg.Wait()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Area != entries[j].Area {
			return entries[i].Area < entries[j].Area
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// CountsForSites returns how many storage entries each site owns, reading
// each area's top level once. Entries are counted without sizing so the
// result is cheap enough for the browse list.
func CountsForSites(p browser.Profile, hosts []string) map[string]int {
	counts := make(map[string]int, len(hosts))
	for _, area := range p.Areas() {
		dirEntries, err := os.ReadDir(area.Path)
		if err != nil {
			continue
		}
		for _, de := range dirEntries {
			for _, host := range hosts {
				if NameMatchesSite(de.Name(), host) {
					counts[host]++
				}
			}
		}
	}
	return counts
}

// AreaSizes returns the total byte footprint of each existing storage area,
// sized in parallel.
func AreaSizes(p browser.Profile) []AreaSize {
	areas := p.Areas()
	sizes := make([]AreaSize, len(areas))

	var wg sync.WaitGroup
	sem := make(chan struct{}, scanConcurrency)
	for i, area := range areas {
		sizes[i] = AreaSize{Area: area.Area, Path: area.Path}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			sizes[i].Size = core.SizeOf(path)
			<-sem
		}(i, area.Path)
	}
	wg.Wait()
	return sizes
}

// TotalSize sums entry sizes.
func TotalSize(entries []Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total
}

// CountByArea returns how many entries each area contributed.
func CountByArea(entries []Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.Area]++
	}
	return counts
}

// DescribeAreas renders a short per-area summary like
// "CacheStorage, IndexedDB ×3".
func DescribeAreas(entries []Entry) string {
	counts := CountByArea(entries)
	areas := make([]string, 0, len(counts))
	for area := range counts {
		areas = append(areas, area)
	}
	sort.Strings(areas)

	parts := make([]string, len(areas))
	for i, area := range areas {
		parts[i] = area
		if counts[area] > 1 {
			parts[i] = area + " ×" + strconv.Itoa(counts[area])
		}
	}
	return strings.Join(parts, ", ")
}
