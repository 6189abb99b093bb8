package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
	"github.com/lakshaymaurya-felt/sitemole/internal/config"
	"github.com/lakshaymaurya-felt/sitemole/internal/cookies"
)

var (
	sitesMatch string
	sitesJSON  bool
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the sites a profile keeps cookies for",
	Long: `Reads the profile's cookie database from a point-in-time snapshot and
prints every host together with its cookie count. The browser can stay
open; nothing is modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			return err
		}

		profile, err := resolveProfile(settings)
		if err != nil {
			return err
		}

		// A profile can exist before the browser ever wrote a cookie; that
		// is an empty listing, not an error.
		var sites []cookies.Site
		db, err := profile.CookieDB()
		switch {
		case errors.Is(err, browser.ErrNoCookieDB):
		case err != nil:
			return err
		default:
			store, err := cookies.OpenSnapshot(db)
			if err != nil {
				return err
			}
			defer store.Close()

			if sites, err = store.Sites(); err != nil {
				return err
			}
		}

		sites, err = cookies.FilterSites(sites, sitesMatch)
		if err != nil {
			return err
		}

		if sitesJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(sites)
		}

		if len(sites) == 0 {
			fmt.Printf("No sites found in %s / %s\n", profile.Browser.Name, profile.Name)
			return nil
		}

		fmt.Printf("%s / %s: %d sites\n\n", profile.Browser.Name, profile.Name, len(sites))
		for _, s := range sites {
			fmt.Printf("  %6d  %s\n", s.Cookies, s.Host)
		}
		return nil
	},
}

func init() {
	sitesCmd.Flags().StringVar(&sitesMatch, "match", "", "Only list hosts matching this glob (e.g. *.google.com)")
	sitesCmd.Flags().BoolVar(&sitesJSON, "json", false, "Print machine-readable JSON")
}
