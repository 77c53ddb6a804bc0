// Package extract turns a search-results page into job candidates using the
// board's selector config.
package extract

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/p-shah256/careerfit/internal/site"
	"github.com/p-shah256/careerfit/pkg/types"
)

// Listings extracts every job card the config can resolve on the page.
// pageURL is both the link fallback for cards without an anchor and the
// base for resolving relative hrefs.
//
// Field queries are scoped to each card element, never document-wide, so a
// selector that happens to match elsewhere on the page cannot contaminate a
// card. Title is the only hard requirement; cards without one are dropped.
// Output order is page order. Zero matched cards yields an empty slice;
// "no listings found" is the caller's message, not an error.
func Listings(doc *goquery.Document, cfg site.Config, pageURL string) []types.JobCandidate {
	base, _ := url.Parse(pageURL)

	var candidates []types.JobCandidate
	doc.Find(cfg.JobCards).Each(func(i int, card *goquery.Selection) {
		title := firstText(card, cfg.Title)
		if title == "" {
			return
		}

		company := firstText(card, cfg.Company)
		if company == "" {
			company = "Unknown"
		}

		link := pageURL
		if href, ok := card.Find(cfg.Link).First().Attr("href"); ok && href != "" {
			link = resolveLink(base, href)
		}

		candidates = append(candidates, types.JobCandidate{
			Index:    i,
			Title:    title,
			Company:  company,
			Location: firstText(card, cfg.Location),
			Posted:   firstText(card, cfg.Posted),
			Link:     link,
			Source:   hostOf(pageURL),
		})
	})

	slog.Debug("extracted listings", "site", cfg.Site.String(), "count", len(candidates))
	return candidates
}

func firstText(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(card.Find(selector).First().Text())
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
