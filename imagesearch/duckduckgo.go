package imagesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ddgMeta is the embedded metadata blob DuckDuckGo attaches to tiles.
type ddgMeta struct {
	Image     string `json:"image"`
	Thumbnail string `json:"thumbnail"`
}

// duckduckgoImages scrapes the DuckDuckGo results markup, preferring
// the JSON metadata attached to tiles (full-size URLs) over raw img
// src attributes (proxied thumbnails).
func (e *Engine) duckduckgoImages(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("iax", "images")
	q.Set("ia", "images")

	res, err := e.config.Fetcher.Get(ctx, e.config.DuckDuckGoBaseURL+"/html/?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("duckduckgo images: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo images: parse: %w", err)
	}

	limit := e.config.MaxPerStrategy
	var urls []string
	seen := make(map[string]bool)
	add := func(u string) {
		if len(urls) < limit && usableImageURL(u) && !seen[u] {
			seen[u] = true
			urls = append(urls, u)
		}
	}

	// Metadata pass first.
	walkNodes(doc, func(n *html.Node) {
		raw := attrVal(n, "data-obj")
		if raw == "" {
			raw = attrVal(n, "data-json")
		}
		if raw == "" {
			return
		}
		var meta ddgMeta
		if json.Unmarshal([]byte(raw), &meta) != nil {
			return
		}
		if meta.Image != "" {
			add(meta.Image)
		} else if meta.Thumbnail != "" {
			add(meta.Thumbnail)
		}
	})

	// Raw src fallback.
	if len(urls) == 0 {
		walkNodes(doc, func(n *html.Node) {
			if n.DataAtom == atom.Img {
				add(attrVal(n, "src"))
			}
		})
	}
	return urls, nil
}
