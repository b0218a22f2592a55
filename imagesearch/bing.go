package imagesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// bingIGRe recovers the anti-automation token Bing embeds in its
// results page. When present it unlocks the unofficial async JSON
// endpoint; when absent the markup scrape alone has to do.
var bingIGRe = regexp.MustCompile(`IG:"([0-9A-Fa-f]+)"`)

// bingMeta is the JSON blob Bing attaches to result anchors.
type bingMeta struct {
	MediaURL string `json:"murl"`
}

// bingImages scrapes the Bing Images results markup. Result anchors
// carry an "m" attribute with the full-size media URL; a best-effort
// call to the async endpoint widens the set when the IG token is
// recoverable.
func (e *Engine) bingImages(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("q", query)

	res, err := e.config.Fetcher.Get(ctx, e.config.BingBaseURL+"/images/search?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("bing images: %w", err)
	}

	urls := parseBingMarkup(res.Body, e.config.MaxPerStrategy)

	// Token pass. Failures here never cost us the markup results.
	if m := bingIGRe.FindSubmatch(res.Body); m != nil && len(urls) < e.config.MaxPerStrategy {
		aq := url.Values{}
		aq.Set("q", query)
		aq.Set("IG", string(m[1]))
		aq.Set("SFX", "1")
		async, err := e.config.Fetcher.Get(ctx, e.config.BingBaseURL+"/images/async?"+aq.Encode())
		if err != nil {
			e.logger.Debug("bing async endpoint failed", "error", err)
		} else {
			seen := make(map[string]bool, len(urls))
			for _, u := range urls {
				seen[u] = true
			}
			for _, u := range parseBingMarkup(async.Body, e.config.MaxPerStrategy) {
				if len(urls) >= e.config.MaxPerStrategy {
					break
				}
				if !seen[u] {
					seen[u] = true
					urls = append(urls, u)
				}
			}
		}
	}
	return urls, nil
}

// parseBingMarkup extracts media URLs from anchor metadata, falling
// back to plain img sources.
func parseBingMarkup(body []byte, limit int) []string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var urls []string
	seen := make(map[string]bool)
	add := func(u string) {
		if len(urls) < limit && usableImageURL(u) && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	walkNodes(doc, func(n *html.Node) {
		if n.DataAtom == atom.A {
			if raw := attrVal(n, "m"); raw != "" {
				var meta bingMeta
				if json.Unmarshal([]byte(raw), &meta) == nil && meta.MediaURL != "" {
					add(meta.MediaURL)
				}
			}
		}
	})
	if len(urls) > 0 {
		return urls
	}
	return collectImgSrcs(doc, []string{"data-src"}, limit)
}
