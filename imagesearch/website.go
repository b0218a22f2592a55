package imagesearch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dishwire/dishwire/webfetch"
)

// aggregatorHosts are listing/delivery/social sites that rank above
// most restaurants' own pages in web search. Results on these hosts
// are never the restaurant's website.
var aggregatorHosts = []string{
	"yelp.", "grubhub.", "tripadvisor.", "doordash.", "ubereats.",
	"seamless.", "opentable.", "facebook.", "instagram.", "google.",
	"menupages.", "zomato.", "foursquare.", "wikipedia.",
}

func isAggregatorHost(host string) bool {
	h := strings.ToLower(host)
	for _, a := range aggregatorHosts {
		if strings.Contains(h, a) {
			return true
		}
	}
	return false
}

// websiteImages finds the restaurant's own website and scrapes its
// images. This is the only strategy whose results are verified to
// depict the specific restaurant.
func (e *Engine) websiteImages(ctx context.Context, restaurantName, location string) ([]string, error) {
	siteURL, err := e.findWebsite(ctx, restaurantName, location)
	if err != nil {
		return nil, err
	}
	if siteURL == "" {
		return nil, nil
	}
	return e.scrapeSiteImages(ctx, siteURL)
}

// findWebsite searches for "<name> <location> restaurant website" and
// returns the first result URL not on an aggregator host.
func (e *Engine) findWebsite(ctx context.Context, restaurantName, location string) (string, error) {
	q := url.Values{}
	q.Set("q", strings.TrimSpace(restaurantName+" "+location)+" restaurant website")

	res, err := e.config.Fetcher.Get(ctx, e.config.DuckDuckGoBaseURL+"/html/?"+q.Encode())
	if err != nil {
		return "", fmt.Errorf("website search: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(res.Body))
	if err != nil {
		return "", fmt.Errorf("website search: parse: %w", err)
	}

	var found string
	walkNodes(doc, func(n *html.Node) {
		if found != "" || n.DataAtom != atom.A {
			return
		}
		href := resolveSearchLink(attrVal(n, "href"))
		if href == "" {
			return
		}
		u, err := url.Parse(href)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		if isAggregatorHost(u.Hostname()) {
			return
		}
		found = href
	})
	return found, nil
}

// resolveSearchLink unwraps redirect-style result links
// ("/l/?uddg=<encoded>") into the target URL.
func resolveSearchLink(href string) string {
	if href == "" {
		return ""
	}
	if strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if target := u.Query().Get("uddg"); target != "" {
				return target
			}
		}
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return ""
}

// scrapeSiteImages fetches the site (escalating to a browser render
// when the static body looks like a JS shell) and collects img
// elements above the minimum declared size, resolved to absolute URLs.
func (e *Engine) scrapeSiteImages(ctx context.Context, siteURL string) ([]string, error) {
	body, base, err := e.fetchSite(ctx, siteURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("website scrape: parse: %w", err)
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("website scrape: base url: %w", err)
	}

	min := e.config.MinImageSize
	limit := e.config.MaxPerStrategy
	var urls []string
	seen := make(map[string]bool)

	walkNodes(doc, func(n *html.Node) {
		if n.DataAtom != atom.Img || len(urls) >= limit {
			return
		}
		if tooSmall(attrVal(n, "width"), min) || tooSmall(attrVal(n, "height"), min) {
			return
		}
		src := attrVal(n, "src")
		if src == "" {
			src = attrVal(n, "data-src")
		}
		if src == "" || strings.HasPrefix(src, "data:") {
			return
		}
		abs := resolveRef(baseURL, src)
		if abs == "" || !usableImageURL(abs) || seen[abs] {
			return
		}
		seen[abs] = true
		urls = append(urls, abs)
	})
	return urls, nil
}

// fetchSite returns the page body and the URL to resolve relative
// references against.
func (e *Engine) fetchSite(ctx context.Context, siteURL string) ([]byte, string, error) {
	res, err := e.config.Fetcher.Get(ctx, siteURL)
	if err != nil {
		return nil, "", fmt.Errorf("website fetch: %w", err)
	}
	if webfetch.IsSufficient(res.Body) || e.config.Browser == nil {
		return res.Body, res.FinalURL, nil
	}

	e.logger.Debug("website looks script-rendered, escalating to browser", "url", siteURL)
	rendered, err := e.config.Browser.FetchRendered(ctx, siteURL)
	if err != nil {
		e.logger.Warn("browser render failed, using static body", "url", siteURL, "error", err)
		return res.Body, res.FinalURL, nil
	}
	return rendered, siteURL, nil
}

// tooSmall reports whether a declared dimension is present and below
// the floor. Images without declared dimensions pass.
func tooSmall(attr string, min int) bool {
	if attr == "" {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(attr), "px"))
	if err != nil {
		return false
	}
	return n < min
}

func resolveRef(base *url.URL, src string) string {
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
