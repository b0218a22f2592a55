package webfetch

import (
	"bytes"
	"strings"
)

// IsSufficient returns true if the HTML body carries enough visible text
// relative to markup that a browser render isn't needed. Most restaurant
// sites are static; SPA shells fail this check and get escalated.
func IsSufficient(html []byte) bool {
	if len(html) < 256 {
		return false
	}

	textLen, markupLen := textMarkupSplit(string(html))
	total := textLen + markupLen
	if total == 0 {
		return false
	}

	// Less than 10% text means a script shell.
	if float64(textLen)/float64(total) < 0.10 {
		return false
	}
	if textLen < 200 {
		return false
	}

	lower := bytes.ToLower(html)
	shellIndicators := []string{
		`<div id="root"></div>`,
		`<div id="app"></div>`,
		`<div id="__next"></div>`,
		"<noscript>you need to enable javascript",
		"<noscript>enable javascript",
	}
	for _, ind := range shellIndicators {
		if bytes.Contains(lower, []byte(ind)) {
			return false
		}
	}
	return true
}

// textMarkupSplit approximates the byte count of visible text vs markup.
// Script and style element contents count as markup.
func textMarkupSplit(s string) (text, markup int) {
	i := 0
	for i < len(s) {
		if s[i] != '<' {
			j := strings.IndexByte(s[i:], '<')
			if j == -1 {
				text += visibleLen(s[i:])
				break
			}
			text += visibleLen(s[i : i+j])
			i += j
			continue
		}

		end := strings.IndexByte(s[i:], '>')
		if end == -1 {
			markup += len(s) - i
			break
		}
		tag := strings.ToLower(s[i : i+end+1])
		markup += end + 1
		i += end + 1

		for _, blind := range []string{"<script", "<style"} {
			if strings.HasPrefix(tag, blind) && !strings.HasPrefix(tag, blind+"/") {
				closer := "</" + blind[1:]
				j := strings.Index(strings.ToLower(s[i:]), closer)
				if j == -1 {
					markup += len(s) - i
					i = len(s)
					break
				}
				markup += j
				i += j
			}
		}
	}
	return text, markup
}

func visibleLen(s string) int {
	return len(strings.TrimSpace(s))
}
