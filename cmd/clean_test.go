package cmd

import (
	"reflect"
	"testing"

	"github.com/lakshaymaurya-felt/sitemole/internal/browser"
)

func TestResolveSitesLiterals(t *testing.T) {
	// With no --match the profile is never consulted, so a zero profile
	// is fine here.
	var p browser.Profile

	got, err := resolveSites(p, []string{
		"Google.com",
		".google.com",
		"  tracker.net ",
		"google.com",
		"",
	}, "")
	if err != nil {
		t.Fatalf("resolveSites: %v", err)
	}

	want := []string{"google.com", "tracker.net"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("resolveSites = %v, want %v", got, want)
	}
}

func TestResolveSitesEmpty(t *testing.T) {
	var p browser.Profile
	got, err := resolveSites(p, nil, "")
	if err != nil {
		t.Fatalf("resolveSites: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("resolveSites = %v, want empty", got)
	}
}
