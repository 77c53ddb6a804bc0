package site_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-shah256/careerfit/internal/site"
)

func TestLookup(t *testing.T) {
	cfg, ok := site.Lookup("www.linkedin.com")
	require.True(t, ok)
	assert.Equal(t, site.SiteLinkedIn, cfg.Site)

	cfg, ok = site.Lookup("boards.greenhouse.io")
	require.True(t, ok)
	assert.Equal(t, site.SiteGreenhouse, cfg.Site)

	cfg, ok = site.Lookup("jobs.lever.co")
	require.True(t, ok)
	assert.Equal(t, site.SiteLever, cfg.Site)

	cfg, ok = site.Lookup("example.com")
	assert.False(t, ok)
	assert.Equal(t, site.SiteUnknown, cfg.Site)
}

func TestLookupURL(t *testing.T) {
	cfg, ok := site.LookupURL("https://www.indeed.com/jobs?q=engineer")
	require.True(t, ok)
	assert.Equal(t, site.SiteIndeed, cfg.Site)

	_, ok = site.LookupURL("://not a url")
	assert.False(t, ok)

	_, ok = site.LookupURL("https://news.ycombinator.com/item?id=1")
	assert.False(t, ok)
}

func TestIsSearchPage(t *testing.T) {
	linkedin, ok := site.Lookup("linkedin.com")
	require.True(t, ok)

	assert.True(t, linkedin.IsSearchPage("https://www.linkedin.com/jobs/search/?keywords=go"))
	assert.True(t, linkedin.IsSearchPage("https://www.linkedin.com/jobs/collections/recommended/"))
	assert.False(t, linkedin.IsSearchPage("https://www.linkedin.com/feed/"))
	assert.False(t, linkedin.IsSearchPage("https://example.com/jobs/search"))

	// Boards without search path prefixes treat every page as scannable.
	lever, ok := site.Lookup("lever.co")
	require.True(t, ok)
	assert.True(t, lever.IsSearchPage("https://jobs.lever.co/acme"))
}

func TestSiteString(t *testing.T) {
	assert.Equal(t, "linkedin", site.SiteLinkedIn.String())
	assert.Equal(t, "unknown", site.SiteUnknown.String())
	assert.Equal(t, "unknown", site.Site(99).String())
}
