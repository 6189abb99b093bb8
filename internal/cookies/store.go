package cookies

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

var (
	// ErrDatabaseLocked means the browser still holds the cookie database.
	ErrDatabaseLocked = errors.New("cookie database is locked; close the browser and retry")

	// ErrReadOnly is returned when a mutation is attempted on a snapshot.
	ErrReadOnly = errors.New("cookie store is opened read-only")

	// ErrNoCookiesTable means the file exists but is not a cookie database.
	ErrNoCookiesTable = errors.New("no cookies table in database")
)

// Site is one cookie domain with its cookie count.
type Site struct {
	Host    string `json:"host"`
	Cookies int    `json:"cookies"`
}

// Store wraps an open cookie database.
type Store struct {
	db       *sql.DB
	readOnly bool
	snapshot string // temp copy to remove on Close, empty for live opens
}

// OpenSnapshot copies the cookie database to a temp file and opens the copy
// read-only. Reads never touch the live file, so a running browser can
// neither block them nor be corrupted by them.
func OpenSnapshot(path string) (*Store, error) {
	tmp, err := os.CreateTemp("", "sitemole-cookies-*.db")
	if err != nil {
		return nil, fmt.Errorf("create snapshot: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("open cookie database: %w", err)
	}
	_, copyErr := io.Copy(tmp, src)
	src.Close()
	if closeErr := tmp.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("snapshot cookie database: %w", copyErr)
	}

	db, err := sql.Open("sqlite", tmp.Name()+"?mode=ro")
	if err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	s := &Store{db: db, readOnly: true, snapshot: tmp.Name()}
	if err := s.verify(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// OpenLive opens the cookie database read-write for deletion. A short busy
// timeout covers transient locks from browser shutdown still in flight.
func OpenLive(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open cookie database: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?mode=rw&_pragma=busy_timeout(3000)")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.verify(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// verify checks that this is actually a cookie database.
func (s *Store) verify() error {
	var name string
	err := s.db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'cookies'`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoCookiesTable
	}
	return translateErr(err)
}

// Close releases the database and removes the snapshot copy, if any.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.snapshot != "" {
		os.Remove(s.snapshot)
	}
	return err
}

// Sites returns every distinct site in the store with its cookie count,
// sorted by host. Dot-prefixed domains are folded into their bare form,
// matching how the browser itself displays them.
func (s *Store) Sites() ([]Site, error) {
	rows, err := s.db.Query(
		`SELECT host_key, COUNT(*) FROM cookies
		 WHERE host_key IS NOT NULL AND host_key != ''
		 GROUP BY host_key`)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var host string
		var n int
		if err := rows.Scan(&host, &n); err != nil {
			return nil, err
		}
		host = NormalizeHost(host)
		if host == "" {
			continue
		}
		counts[host] += n
	}
	if err := rows.Err(); err != nil {
		return nil, translateErr(err)
	}

	sites := make([]Site, 0, len(counts))
	for host, n := range counts {
		sites = append(sites, Site{Host: host, Cookies: n})
	}
	sort.Slice(sites, func(i, j int) bool { return sites[i].Host < sites[j].Host })
	return sites, nil
}

// Count returns the total number of cookies in the store.
func (s *Store) Count() (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT COUNT(*) FROM cookies`).Scan(&n)
	return n, translateErr(err)
}

// DeleteSite removes every cookie belonging to the site: the exact host,
// its dot-prefixed form, and all subdomains. Returns rows deleted.
func (s *Store) DeleteSite(host string) (int64, error) {
	if s.readOnly {
		return 0, ErrReadOnly
	}
	host = NormalizeHost(host)
	if host == "" {
		return 0, fmt.Errorf("empty site host")
	}

	var deleted int64

	res, err := s.db.Exec(`DELETE FROM cookies WHERE host_key = ?`, host)
	if err != nil {
		return deleted, translateErr(err)
	}
	n, _ := res.RowsAffected()
	deleted += n

	// The dot-prefixed form and every subdomain share the ".host" suffix.
	// LIKE wildcards that appear in the host itself are escaped so a
	// hostile host_key cannot widen the match.
	res, err = s.db.Exec(
		`DELETE FROM cookies WHERE host_key LIKE ? ESCAPE '\'`,
		`%.`+escapeLike(host))
	if err != nil {
		return deleted, translateErr(err)
	}
	n, _ = res.RowsAffected()
	deleted += n

	return deleted, nil
}

// CountSite returns how many cookies DeleteSite would remove for the site,
// using the same match: exact host plus the ".host" suffix forms. Works on
// snapshots, which is what dry runs use.
func (s *Store) CountSite(host string) (int64, error) {
	host = NormalizeHost(host)
	if host == "" {
		return 0, fmt.Errorf("empty site host")
	}

	var n int64
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM cookies WHERE host_key = ? OR host_key LIKE ? ESCAPE '\'`,
		host, `%.`+escapeLike(host)).Scan(&n)
	return n, translateErr(err)
}

// NormalizeHost folds a host_key into its canonical site form: leading dot
// stripped, lowercased, surrounding space removed.
func NormalizeHost(host string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(host), "."))
}

// escapeLike escapes LIKE wildcards with backslash.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// translateErr maps driver lock errors to ErrDatabaseLocked so callers can
// show a friendly message instead of a raw SQLite string.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "locked") || strings.Contains(msg, "busy") {
		return fmt.Errorf("%w (%v)", ErrDatabaseLocked, err)
	}
	return err
}
