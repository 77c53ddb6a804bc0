package extract_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p-shah256/careerfit/internal/extract"
	"github.com/p-shah256/careerfit/internal/site"
	"github.com/p-shah256/careerfit/pkg/types"
)

var testConfig = site.Config{
	Site:     site.SiteLinkedIn,
	JobCards: ".card",
	Title:    ".title",
	Company:  ".company",
	Location: ".location",
	Posted:   ".posted",
	Link:     "a.job-link",
}

const pageURL = "https://www.linkedin.com/jobs/search/?keywords=go"

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestListings_FullCards(t *testing.T) {
	doc := parse(t, `
		<div class="card">
			<span class="title">Backend Engineer</span>
			<span class="company">Acme</span>
			<span class="location">Remote</span>
			<span class="posted">2 days ago</span>
			<a class="job-link" href="https://www.linkedin.com/jobs/view/1">view</a>
		</div>
		<div class="card">
			<span class="title">Platform Engineer</span>
			<span class="company">Globex</span>
			<a class="job-link" href="/jobs/view/2">view</a>
		</div>`)

	got := extract.Listings(doc, testConfig, pageURL)
	require.Len(t, got, 2)

	assert.Equal(t, types.JobCandidate{
		Index:    0,
		Title:    "Backend Engineer",
		Company:  "Acme",
		Location: "Remote",
		Posted:   "2 days ago",
		Link:     "https://www.linkedin.com/jobs/view/1",
		Source:   "www.linkedin.com",
	}, got[0])

	// Relative hrefs resolve against the page URL.
	assert.Equal(t, "https://www.linkedin.com/jobs/view/2", got[1].Link)
}

func TestListings_DropsCardsWithoutTitle(t *testing.T) {
	doc := parse(t, `
		<div class="card"><span class="company">Acme</span></div>
		<div class="card"><span class="title">Engineer</span></div>`)

	got := extract.Listings(doc, testConfig, pageURL)
	require.Len(t, got, 1)
	assert.Equal(t, "Engineer", got[0].Title)
}

func TestListings_MissingCompanyDefaultsToUnknown(t *testing.T) {
	doc := parse(t, `<div class="card"><span class="title">Engineer</span></div>`)

	got := extract.Listings(doc, testConfig, pageURL)
	require.Len(t, got, 1)
	assert.Equal(t, "Unknown", got[0].Company)
}

func TestListings_MissingLinkFallsBackToPageURL(t *testing.T) {
	doc := parse(t, `<div class="card"><span class="title">Engineer</span></div>`)

	got := extract.Listings(doc, testConfig, pageURL)
	require.Len(t, got, 1)
	assert.Equal(t, pageURL, got[0].Link)
}

func TestListings_FieldQueriesScopedToCard(t *testing.T) {
	// The stray .company outside any card must not leak into the card that
	// lacks one.
	doc := parse(t, `
		<span class="company">Page Header Corp</span>
		<div class="card"><span class="title">Engineer</span></div>`)

	got := extract.Listings(doc, testConfig, pageURL)
	require.Len(t, got, 1)
	assert.Equal(t, "Unknown", got[0].Company)
}

func TestListings_PreservesPageOrder(t *testing.T) {
	doc := parse(t, `
		<div class="card"><span class="title">First</span></div>
		<div class="card"><span class="title">Second</span></div>
		<div class="card"><span class="title">Third</span></div>`)

	got := extract.Listings(doc, testConfig, pageURL)
	require.Len(t, got, 3)
	for i, want := range []string{"First", "Second", "Third"} {
		assert.Equal(t, want, got[i].Title)
		assert.Equal(t, i, got[i].Index)
	}
}

func TestListings_NoCards(t *testing.T) {
	doc := parse(t, `<p>nothing to see</p>`)
	got := extract.Listings(doc, testConfig, pageURL)
	assert.Empty(t, got)
}

func TestListings_TrimsWhitespace(t *testing.T) {
	doc := parse(t, `
		<div class="card">
			<span class="title">
				Staff Engineer
			</span>
		</div>`)

	got := extract.Listings(doc, testConfig, pageURL)
	require.Len(t, got, 1)
	assert.Equal(t, "Staff Engineer", got[0].Title)
}
