package aggregate

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

const (
	maxBriefReviews    = 5
	maxBriefMenuItems  = 10
	maxExtractedDishes = 3
)

// analysisInstructions closes every brief. The downstream prompt
// assumes this exact wording and position; do not reorder sections or
// rephrase.
const analysisInstructions = "Based on the information above, recommend the 3 dishes most worth ordering at this restaurant. " +
	"Prioritize dishes that reviewers mention most often or that the menu flags as popular."

// FormatForAnalysis renders the merged record as a plain-text brief
// for the external summarizer. Section order is fixed: address,
// ratings, reviews, menu, details, instructions.
func FormatForAnalysis(d *Data) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Restaurant: %s\n", d.Name)
	fmt.Fprintf(&b, "Address: %s\n", d.Address)

	b.WriteString("\nRatings:\n")
	for _, src := range sortedKeys(d.Ratings) {
		if count := d.Sources[src].ReviewCount; count > 0 {
			fmt.Fprintf(&b, "- %s: %.1f (%d reviews)\n", src, d.Ratings[src], count)
		} else {
			fmt.Fprintf(&b, "- %s: %.1f\n", src, d.Ratings[src])
		}
	}

	b.WriteString("\nReviews:\n")
	for i, r := range d.Reviews {
		if i >= maxBriefReviews {
			break
		}
		fmt.Fprintf(&b, "%d. [%d/5] %s", i+1, r.Rating, r.Text)
		if r.Author != "" {
			fmt.Fprintf(&b, " (%s)", r.Author)
		}
		b.WriteString("\n")
	}

	b.WriteString("\nMenu:\n")
	for i, m := range d.Menu {
		if i >= maxBriefMenuItems {
			break
		}
		fmt.Fprintf(&b, "- %s", m.Name)
		if m.Price != "" {
			fmt.Fprintf(&b, " (%s)", m.Price)
		}
		if m.Description != "" {
			fmt.Fprintf(&b, ": %s", m.Description)
		}
		if m.Popular {
			b.WriteString(" [popular]")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nDetails:\n")
	for _, k := range sortedDetailKeys(d.Details) {
		fmt.Fprintf(&b, "- %s: %s\n", k, d.Details[k])
	}

	b.WriteString("\n" + analysisInstructions + "\n")
	return b.String()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedDetailKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var (
	// listItemRe picks dish names off numbered or bulleted lines,
	// tolerating markdown bold and a trailing description after a
	// colon or dash.
	listItemRe = regexp.MustCompile(`(?m)^\s*(?:\d+[.)]|[-*])\s*\*{0,2}([A-Z][A-Za-z' -]+?)\*{0,2}\s*(?:[:-].*)?$`)
	// proseRecommendRe catches "I'd recommend the Mapo Tofu" style
	// prose, capturing the following capitalized phrase.
	proseRecommendRe = regexp.MustCompile(`\b(?i:recommend|try|order)(?:s|ed|ing)?\s+(?:(?i:the)\s+)?([A-Z][A-Za-z'-]*(?:\s+[A-Z][A-Za-z'-]*)*)`)
)

// ExtractRecommendedDishes pattern-matches dish names out of
// free-form analysis text, used when structured output from the
// summarizer is unavailable. At most three names, list forms
// preferred over prose.
func ExtractRecommendedDishes(analysisText string) []string {
	var dishes []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = strings.TrimSpace(strings.Trim(name, ".,!"))
		if name == "" || len(dishes) >= maxExtractedDishes {
			return
		}
		if k := strings.ToLower(name); !seen[k] {
			seen[k] = true
			dishes = append(dishes, name)
		}
	}

	for _, m := range listItemRe.FindAllStringSubmatch(analysisText, -1) {
		add(m[1])
	}
	if len(dishes) == 0 {
		for _, m := range proseRecommendRe.FindAllStringSubmatch(analysisText, -1) {
			add(m[1])
		}
	}
	if len(dishes) > 0 {
		return dishes
	}

	// Placeholder defaults for unparseable analysis text. A structured
	// response format from the summarizer would make this path
	// obsolete.
	slog.Default().Warn("no dish names recognized in analysis text, returning placeholder defaults")
	return defaultDishFallback(analysisText)
}

func defaultDishFallback(text string) []string {
	if strings.Contains(strings.ToLower(text), "pie") {
		return []string{"Apple Pie", "Key Lime Pie", "Pecan Pie"}
	}
	return []string{"Mapo Tofu", "Kung Pao Chicken", "Dan Dan Noodles"}
}
