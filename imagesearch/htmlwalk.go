package imagesearch

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// attrVal returns the value of the named attribute, or "".
func attrVal(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// walkNodes visits every element node under root.
func walkNodes(root *html.Node, visit func(*html.Node)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			visit(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

// usableImageURL filters out data URIs, trackers, and obvious
// icon/sprite assets.
func usableImageURL(src string) bool {
	if src == "" || strings.HasPrefix(src, "data:") {
		return false
	}
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") && !strings.HasPrefix(src, "/") {
		return false
	}
	lower := strings.ToLower(src)
	for _, junk := range []string{"sprite", "icon", "logo", "favicon", "pixel", ".svg"} {
		if strings.Contains(lower, junk) {
			return false
		}
	}
	return true
}

// collectImgSrcs walks the document and returns img sources, preferring
// the listed data attributes over plain src, up to limit.
func collectImgSrcs(root *html.Node, preferAttrs []string, limit int) []string {
	var urls []string
	seen := make(map[string]bool)

	walkNodes(root, func(n *html.Node) {
		if n.DataAtom != atom.Img || len(urls) >= limit {
			return
		}
		var src string
		for _, attr := range preferAttrs {
			if v := attrVal(n, attr); v != "" {
				src = v
				break
			}
		}
		if src == "" {
			src = attrVal(n, "src")
		}
		if !usableImageURL(src) || seen[src] {
			return
		}
		seen[src] = true
		urls = append(urls, src)
	})
	return urls
}
