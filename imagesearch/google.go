package imagesearch

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"golang.org/x/net/html"
)

// googleImages scrapes the Google Images results markup: a plain GET
// against the image vertical, harvesting img sources. Thumbnails are
// fine here; this strategy provides breadth, not fidelity.
func (e *Engine) googleImages(ctx context.Context, query string) ([]string, error) {
	q := url.Values{}
	q.Set("q", query)
	q.Set("tbm", "isch")

	res, err := e.config.Fetcher.Get(ctx, e.config.GoogleBaseURL+"/search?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("google images: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("google images: parse: %w", err)
	}
	return collectImgSrcs(doc, []string{"data-src", "data-iurl"}, e.config.MaxPerStrategy), nil
}
