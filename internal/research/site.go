package research

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxMetaLen = 300

// SiteSnapshot is what a company's home page says about itself.
type SiteSnapshot struct {
	Title       string `json:"title,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
	Description string `json:"description,omitempty"`
}

// Empty reports whether the page yielded nothing usable.
func (s SiteSnapshot) Empty() bool {
	return s.Title == "" && s.SiteName == "" && s.Description == ""
}

// SiteFetcher reads home-page metadata to ground research prompts.
type SiteFetcher struct {
	client *Client
	urlFor func(domain string) string
}

// NewSiteFetcher wraps client; pages are fetched over https.
func NewSiteFetcher(client *Client) *SiteFetcher {
	return &SiteFetcher{
		client: client,
		urlFor: func(domain string) string { return "https://" + domain + "/" },
	}
}

// Snapshot fetches the home page for domain. Only public host names are
// fetched; ports, credentials, IP literals and localhost are refused.
func (f *SiteFetcher) Snapshot(ctx context.Context, domain string) (SiteSnapshot, error) {
	if !PublicHostname(domain) {
		return SiteSnapshot{}, fmt.Errorf("refusing to fetch %q: not a public host name", domain)
	}
	doc, err := f.client.Get(ctx, f.urlFor(domain))
	if err != nil {
		return SiteSnapshot{}, err
	}
	return parseSnapshot(doc), nil
}

func parseSnapshot(doc *goquery.Document) SiteSnapshot {
	snap := SiteSnapshot{
		Title:       clean(doc.Find("head title").First().Text()),
		SiteName:    clean(metaContent(doc, `meta[property="og:site_name"]`)),
		Description: clean(metaContent(doc, `meta[name="description"]`)),
	}
	if snap.Description == "" {
		snap.Description = clean(metaContent(doc, `meta[property="og:description"]`))
	}
	return snap
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return v
}

func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > maxMetaLen {
		cut := maxMetaLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

// PublicHostname reports whether domain is a bare DNS name that may be
// fetched: letters, digits, hyphens and dots, at least one dot, and no IP
// literal or localhost name.
func PublicHostname(domain string) bool {
	if domain == "" || len(domain) > 253 || !strings.Contains(domain, ".") {
		return false
	}
	if _, err := netip.ParseAddr(strings.Trim(domain, "[]")); err == nil {
		return false
	}
	if domain == "localhost" || strings.HasSuffix(domain, ".localhost") {
		return false
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" || len(label) > 63 || label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-') {
				return false
			}
		}
	}
	return true
}
