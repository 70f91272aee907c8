// Package inspect probes website locators before they go on the kiosk:
// reachability, page title, and whether the page self-refreshes.
package inspect

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"marquee/internal/httputil"
)

// Report summarizes a probed website.
type Report struct {
	URL          string
	Status       int
	Title        string
	MetaRefresh  bool // the page reloads itself
	RefreshEvery int  // seconds, when MetaRefresh is set
}

// Probe fetches the URL and extracts display metadata. Probing is advisory:
// callers log failures and proceed, since the kiosk browser may still be
// able to render what the probe could not.
func Probe(ctx context.Context, client *http.Client, rawURL string) (*Report, error) {
	resp, err := httputil.Get(ctx, client, rawURL)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	report := &Report{URL: rawURL, Status: resp.StatusCode}
	if resp.StatusCode != http.StatusOK {
		return report, fmt.Errorf("probing %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return report, fmt.Errorf("parsing %s: %w", rawURL, err)
	}

	report.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find(`meta[http-equiv]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		equiv, _ := s.Attr("http-equiv")
		if !strings.EqualFold(equiv, "refresh") {
			return true
		}
		report.MetaRefresh = true
		if v, ok := s.Attr("content"); ok {
			report.RefreshEvery = parseRefreshSeconds(v)
		}
		return false
	})

	return report, nil
}

// parseRefreshSeconds reads the leading seconds of a refresh directive like
// "30" or "5; url=/next".
func parseRefreshSeconds(v string) int {
	head := v
	if i := strings.IndexAny(v, ";,"); i >= 0 {
		head = v[:i]
	}
	n, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil {
		return 0
	}
	return n
}
