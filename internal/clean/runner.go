package clean

import (
	"errors"
	"fmt"

	"github.com/lakshaymaurya-felt/sitemole/internal/audit"
	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
	"github.com/lakshaymaurya-felt/sitemole/internal/cookies"
	"github.com/lakshaymaurya-felt/sitemole/internal/storage"
)

// Runner deletes site data one site at a time against an open cookie
// store. A profile with no cookie database still gets its storage areas
// cleaned; the store is just absent.
type Runner struct {
	profile browser.Profile
	store   *cookies.Store
	log     *audit.Logger
	dryRun  bool
}

// NewRunner opens the profile's cookie store: a read-only snapshot for dry
// runs, the live database otherwise.
func NewRunner(p browser.Profile, log *audit.Logger, dryRun bool) (*Runner, error) {
	r := &Runner{profile: p, log: log, dryRun: dryRun}

	dbPath, err := p.CookieDB()
	if err != nil {
		if errors.Is(err, browser.ErrNoCookieDB) {
			log.Warnw("no cookie database", "profile", p.Key())
			return r, nil
		}
		return nil, err
	}

	if dryRun {
		r.store, err = cookies.OpenSnapshot(dbPath)
	} else {
		r.store, err = cookies.OpenLive(dbPath)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the cookie store.
func (r *Runner) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// DeleteSite removes one site's cookies and storage entries. A cookie
// failure does not stop the storage pass; whatever can be removed is, and
// the first error is carried in the result.
func (r *Runner) DeleteSite(site string) SiteResult {
	res := SiteResult{Site: site}

	if r.store != nil {
		var n int64
		var err error
		if r.dryRun {
			n, err = r.store.CountSite(site)
		} else {
			n, err = r.store.DeleteSite(site)
		}
		if err != nil {
			res.Err = err
			r.log.Deletion(site, "COOKIES", "ERROR", err.Error())
		} else {
			res.Cookies = n
			status := "NONE"
			if n > 0 {
				status = "SUCCESS"
			}
			r.log.Deletion(site, "COOKIES", status, fmt.Sprintf("%d deleted", n))
		}
	}

	entries, err := storage.ScanSite(r.profile, site)
	if err != nil {
		if res.Err == nil {
			res.Err = err
		}
		r.log.Deletion(site, "STORAGE", "ERROR", err.Error())
		return res
	}

	if len(entries) > 0 {
		res.Areas = storage.DescribeAreas(entries)
		results, freed := storage.DeleteEntries(r.profile.Dir, entries, r.dryRun)
		res.Freed = freed
		for _, dr := range results {
			if dr.Err != nil {
				if res.Err == nil {
					res.Err = dr.Err
				}
				r.log.Deletion(site, "STORAGE", "ERROR", fmt.Sprintf("%s: %s: %v", dr.Entry.Area, dr.Entry.Name, dr.Err))
				continue
			}
			res.StorageItems++
		}
		if res.StorageItems > 0 {
			r.log.Deletion(site, "STORAGE", "SUCCESS", fmt.Sprintf("%d items (%s)", res.StorageItems, res.Areas))
		}
	}

	return res
}
