// Package scraper extracts partial product records from marketplace search
// pages and enriches them from product detail pages.
package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultBaseURL is the marketplace origin used when none is configured.
const DefaultBaseURL = "https://www.amazon.in"

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

func textOr(s *goquery.Selection, def string) string {
	if s.Length() == 0 {
		return def
	}
	return text(s)
}

// absolute prefixes relative hrefs with the marketplace origin.
func absolute(base, href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return strings.TrimRight(base, "/") + href
}
