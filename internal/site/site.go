// Package site holds the per-board scraping configuration: which CSS
// selectors find a job card and its fields on each supported board.
// Pure data; nothing here touches the network or a parser.
package site

import (
	"net/url"
	"strings"
)

// Site identifies a supported job board. SiteUnknown is the explicit
// "unconfigured" variant: no scan is ever attempted for it.
type Site int

const (
	SiteUnknown Site = iota
	SiteLinkedIn
	SiteIndeed
	SiteGreenhouse
	SiteLever
	SiteWellfound
)

func (s Site) String() string {
	switch s {
	case SiteLinkedIn:
		return "linkedin"
	case SiteIndeed:
		return "indeed"
	case SiteGreenhouse:
		return "greenhouse"
	case SiteLever:
		return "lever"
	case SiteWellfound:
		return "wellfound"
	}
	return "unknown"
}

// Config is the selector set for one board. Selectors for optional fields
// may miss without consequence; JobCards and Title decide whether a card
// yields a candidate at all.
type Config struct {
	Site        Site
	Host        string // substring matched against the hostname
	JobCards    string
	Title       string
	Company     string
	Location    string
	Posted      string
	Link        string
	searchPaths []string // URL path prefixes that mark a search-results page
}

// IsSearchPage reports whether rawURL is a search-results page on this
// board, i.e. a page the scan UI should be offered on. An empty searchPaths
// list means every page on the board qualifies.
func (c Config) IsSearchPage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !strings.Contains(strings.ToLower(u.Hostname()), c.Host) {
		return false
	}
	if len(c.searchPaths) == 0 {
		return true
	}
	for _, p := range c.searchPaths {
		if strings.HasPrefix(u.Path, p) {
			return true
		}
	}
	return false
}

var registry = []Config{
	{
		Site:        SiteLinkedIn,
		Host:        "linkedin.com",
		JobCards:    ".jobs-search-results__list-item, .job-card-container, li.scaffold-layout__list-item",
		Title:       ".job-card-list__title, .job-card-container__link strong, a.job-card-list__title--link",
		Company:     ".job-card-container__primary-description, .artdeco-entity-lockup__subtitle",
		Location:    ".job-card-container__metadata-item, .artdeco-entity-lockup__caption",
		Posted:      "time, .job-card-container__footer-item time",
		Link:        "a.job-card-container__link, a.job-card-list__title--link",
		searchPaths: []string{"/jobs/search", "/jobs/collections"},
	},
	{
		Site:        SiteIndeed,
		Host:        "indeed.com",
		JobCards:    ".job_seen_beacon, .jobsearch-ResultsList > li",
		Title:       "h2.jobTitle span, h2.jobTitle a",
		Company:     "[data-testid='company-name'], .companyName",
		Location:    "[data-testid='text-location'], .companyLocation",
		Posted:      ".date, [data-testid='myJobsStateDate']",
		Link:        "h2.jobTitle a, a.jcs-JobTitle",
		searchPaths: []string{"/jobs", "/q-"},
	},
	{
		Site:     SiteGreenhouse,
		Host:     "greenhouse.io",
		JobCards: ".opening, tr.job-post",
		Title:    "a, .opening a",
		Company:  ".company-name",
		Location: ".location",
		Link:     "a",
	},
	{
		Site:     SiteLever,
		Host:     "lever.co",
		JobCards: ".posting",
		Title:    "h5[data-qa='posting-name'], .posting-title h5",
		Company:  ".main-header-text h2",
		Location: ".posting-categories .sort-by-location",
		Link:     "a.posting-title",
	},
	{
		Site:        SiteWellfound,
		Host:        "wellfound.com",
		JobCards:    "[data-test='StartupResult'], [data-test='JobSearchResult']",
		Title:       "[data-test='job-title'], .styles_title__xpQDw",
		Company:     "[data-test='startup-header'] h2, .styles_name__HHGli",
		Location:    "[data-test='job-location'], .styles_location__O9Z62",
		Link:        "a[href*='/jobs/']",
		searchPaths: []string{"/jobs", "/role"},
	},
}

// Lookup matches hostname against the registry by substring containment and
// returns the board config. ok is false for unconfigured hosts.
func Lookup(hostname string) (Config, bool) {
	h := strings.ToLower(hostname)
	for _, cfg := range registry {
		if strings.Contains(h, cfg.Host) {
			return cfg, true
		}
	}
	return Config{Site: SiteUnknown}, false
}

// LookupURL is Lookup on the hostname of a full URL.
func LookupURL(rawURL string) (Config, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Config{Site: SiteUnknown}, false
	}
	return Lookup(u.Hostname())
}
