// Package cleaner normalizes scraped HTML and raw LLM output before parsing.
package cleaner

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagRe        = regexp.MustCompile("<[^>]*>")
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanHTML strips page chrome from a job posting and returns readable text
// blocks. Falls back to a plain tag strip when the document cannot be parsed.
func CleanHTML(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cleanText(tagRe.ReplaceAllString(html, " "))
	}
	doc.Find("script, style, nav, header, footer, iframe, noscript").Remove()
	doc.Find(".menu, .navigation, .social, .banner, .ads, .cookie, .popup").Remove()

	var blocks []string
	doc.Find("p, li, h1, h2, h3, h4, h5, h6").Each(func(i int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			blocks = append(blocks, text)
		}
	})
	if len(blocks) > 0 {
		return strings.Join(blocks, "\n\n")
	}

	if bodyText := strings.TrimSpace(doc.Find("body").Text()); bodyText != "" {
		return cleanText(bodyText)
	}
	return cleanText(doc.Text())
}

// CleanLLMResponse strips markdown code fences that models wrap around JSON.
func CleanLLMResponse(response string) string {
	if !strings.Contains(response, "```") {
		return strings.TrimSpace(response)
	}

	start := strings.Index(response, "```") + 3
	for _, lang := range []string{"```json", "```yaml"} {
		if idx := strings.Index(response, lang); idx != -1 {
			start = idx + len(lang)
			break
		}
	}
	end := strings.LastIndex(response, "```")
	if end > start {
		return strings.TrimSpace(response[start:end])
	}
	return strings.TrimSpace(response)
}

func cleanText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
