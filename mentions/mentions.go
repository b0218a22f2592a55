// Package mentions mines free-text reviews for dishes worth
// recommending. Two passes run over every review: a table of
// dish-name pattern families, and an imperative-recommendation pattern
// ("try the X", "don't miss the Y"). Accepted matches accumulate
// ratings, context signals (adjectives, price, portion size), and a
// mention count; the result ranks by mentions × average rating.
//
// This is deliberately heuristic pattern mining, not entity
// recognition; the pattern families are data so they can grow without
// touching the scan loop.
package mentions

import (
	"sort"
	"strings"

	"github.com/dishwire/dishwire/provider"
)

// Snippet is a review excerpt backing a mention.
type Snippet struct {
	Text   string `json:"text"`
	Rating int    `json:"rating"`
}

// Mention is one recommendable dish distilled from the review corpus.
type Mention struct {
	Name          string    `json:"name"`
	Mentions      int       `json:"mentions"`
	Ratings       []int     `json:"ratings"`
	Snippets      []Snippet `json:"snippets,omitempty"`
	Reasons       []string  `json:"reasons,omitempty"`
	Price         string    `json:"price,omitempty"`
	PortionInfo   string    `json:"portion_info,omitempty"`
	AverageRating float64   `json:"average_rating"`
	Confidence    float64   `json:"confidence"` // mentions / total reviews, capped at 1
}

// Score is the ranking value: mentions × average rating. A dish
// mentioned twice at 5 stars (10) outranks one mentioned three times
// at 3 stars (9).
func (m Mention) Score() float64 {
	return float64(m.Mentions) * m.AverageRating
}

const contextWindow = 100 // chars either side of a match

const maxSnippetsPerDish = 5

// Extract mines the reviews and returns mentions sorted best-first.
func Extract(reviews []provider.Review) []Mention {
	acc := make(map[string]*Mention)
	var order []string

	for _, rev := range reviews {
		// Spans already counted for a dish in this review, so the
		// imperative pass and a family pass matching the same words
		// don't double-count one occurrence.
		counted := make(map[string][][2]int)

		record := func(raw string, start, end int) {
			name := normalizeName(raw)
			if name == "" {
				return
			}
			key := strings.ToLower(name)

			for _, span := range counted[key] {
				if start < span[1] && end > span[0] {
					return // overlaps an occurrence already counted
				}
			}
			counted[key] = append(counted[key], [2]int{start, end})

			m, ok := acc[key]
			if !ok {
				m = &Mention{Name: name}
				acc[key] = m
				order = append(order, key)
			}
			m.Mentions++
			m.Ratings = append(m.Ratings, rev.Rating)

			window := contextAround(rev.Text, start, end)
			if len(m.Snippets) < maxSnippetsPerDish {
				m.Snippets = append(m.Snippets, Snippet{Text: window, Rating: rev.Rating})
			}
			harvestSignals(m, window, rev.Rating)
		}

		for _, fam := range dishFamilies {
			for _, idx := range fam.re.FindAllStringSubmatchIndex(rev.Text, -1) {
				raw, off := trimFamilyCapture(rev.Text[idx[2]:idx[3]])
				if !acceptFamilyMatch(raw) {
					continue
				}
				record(raw, idx[2]+off, idx[3])
			}
		}

		for _, idx := range imperativeRe.FindAllStringSubmatchIndex(rev.Text, -1) {
			raw := trimTrailingConnectors(rev.Text[idx[2]:idx[3]])
			if !acceptImperativeMatch(raw) {
				continue
			}
			record(raw, idx[2], idx[2]+len(raw))
		}
	}

	total := len(reviews)
	out := make([]Mention, 0, len(order))
	for _, key := range order {
		m := acc[key]
		m.AverageRating = mean(m.Ratings)
		if total > 0 {
			m.Confidence = float64(m.Mentions) / float64(total)
			if m.Confidence > 1 {
				m.Confidence = 1
			}
		}
		out = append(out, *m)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score() > out[j].Score()
	})
	return out
}

// trimFamilyCapture narrows a greedy family capture down to the dish
// name: trailing function words are dropped, then everything up to and
// including the last remaining function word ("loved the margherita
// pizza" becomes "margherita pizza"). Returns the byte offset of the kept
// phrase within raw.
func trimFamilyCapture(raw string) (string, int) {
	type span struct{ s, e int }
	var spans []span
	i := 0
	for i < len(raw) {
		for i < len(raw) && (raw[i] == ' ' || raw[i] == '-') {
			i++
		}
		if i >= len(raw) {
			break
		}
		j := i
		for j < len(raw) && raw[j] != ' ' && raw[j] != '-' {
			j++
		}
		spans = append(spans, span{i, j})
		i = j
	}

	junk := func(sp span) bool {
		w := strings.ToLower(raw[sp.s:sp.e])
		return functionWords[w] || captureJunk[w]
	}

	lo, hi := 0, len(spans)
	for hi > lo && junk(spans[hi-1]) {
		hi--
	}
	for k := lo; k < hi; k++ {
		if junk(spans[k]) {
			lo = k + 1
		}
	}
	if lo >= hi {
		return "", 0
	}
	return raw[spans[lo].s:spans[hi-1].e], spans[lo].s
}

// trimTrailingConnectors removes connector words left dangling at the
// end of an imperative capture ("Mapo Tofu and the" becomes "Mapo Tofu").
func trimTrailingConnectors(raw string) string {
	words := strings.Fields(raw)
	for len(words) > 1 && connectorWords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// acceptFamilyMatch rejects bare generic category words and captures
// polluted by sentence fragments.
func acceptFamilyMatch(raw string) bool {
	words := strings.Fields(strings.ToLower(strings.ReplaceAll(raw, "-", " ")))
	if len(words) == 0 {
		return false
	}
	if len(words) == 1 && genericTerms[words[0]] {
		return false
	}
	for _, w := range words {
		if functionWords[w] {
			return false
		}
	}
	return true
}

// acceptImperativeMatch requires at least two words, or a single word
// from the known-dish list.
func acceptImperativeMatch(raw string) bool {
	words := strings.Fields(raw)
	if len(words) >= 2 {
		return !genericTermPhrase(words)
	}
	if len(words) == 1 {
		return knownSingleDishes[strings.ToLower(words[0])]
	}
	return false
}

func genericTermPhrase(words []string) bool {
	for _, w := range words {
		lw := strings.ToLower(w)
		if !genericTerms[lw] && !connectorWords[lw] {
			return false
		}
	}
	return true
}

// normalizeName capitalizes the dish name: first word always
// capitalized, connector words lower-case elsewhere.
func normalizeName(raw string) string {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return ""
	}
	for i, w := range words {
		lw := strings.ToLower(w)
		if i > 0 && connectorWords[lw] {
			words[i] = lw
			continue
		}
		words[i] = capitalize(lw)
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

// contextAround extracts up to contextWindow chars either side of the
// match.
func contextAround(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}

// harvestSignals pulls adjectives, price, and portion info from the
// context window. Adjectives only count as reasons when the review
// itself is positive (rating >= 4).
func harvestSignals(m *Mention, window string, rating int) {
	if rating >= 4 {
		for _, match := range adjectiveRe.FindAllString(window, -1) {
			reason := strings.ToLower(match)
			if len(m.Reasons) >= 3 || containsFold(m.Reasons, reason) {
				continue
			}
			m.Reasons = append(m.Reasons, reason)
		}
	}
	if m.Price == "" {
		if p := priceRe.FindString(window); p != "" {
			m.Price = p
		}
	}
	if m.PortionInfo == "" {
		if p := portionRe.FindString(window); p != "" {
			m.PortionInfo = strings.ToLower(p)
		}
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func mean(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
