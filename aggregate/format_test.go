package aggregate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dishwire/dishwire/provider"
)

func briefData() *Data {
	d := &Data{
		Name:    "Ocean",
		Address: "333 Bayville Ave, Bayville, NY 11709",
		Sources: map[string]provider.Info{
			"google": {Rating: 4.2, ReviewCount: 156},
			"yelp":   {Rating: 4.0, ReviewCount: 80},
		},
		Ratings: map[string]float64{"google": 4.2, "yelp": 4.0},
		Details: map[string]string{"phone": "516-555-0100"},
	}
	for i := 0; i < 7; i++ {
		d.Reviews = append(d.Reviews, provider.Review{
			Text: fmt.Sprintf("Review number %d.", i+1), Rating: 4, Author: "Ana",
		})
	}
	for i := 0; i < 12; i++ {
		d.Menu = append(d.Menu, provider.MenuItem{Name: fmt.Sprintf("Dish %d", i+1), Price: "$10"})
	}
	d.Menu[0].Popular = true
	d.Menu[0].Description = "silky tofu, numbing chili oil"
	return d
}

func TestFormatForAnalysis_SectionOrder(t *testing.T) {
	// WHAT: Section order is a stable contract with the downstream
	// prompt: address, ratings, reviews, menu, details, instructions.
	out := FormatForAnalysis(briefData())

	markers := []string{
		"Restaurant: Ocean",
		"Address: 333 Bayville Ave",
		"Ratings:",
		"- google: 4.2 (156 reviews)",
		"Reviews:",
		"Menu:",
		"Details:",
		"recommend the 3 dishes",
	}
	last := -1
	for _, m := range markers {
		idx := strings.Index(out, m)
		if idx < 0 {
			t.Fatalf("brief missing %q:\n%s", m, out)
		}
		if idx < last {
			t.Errorf("%q appears out of order", m)
		}
		last = idx
	}
}

func TestFormatForAnalysis_Caps(t *testing.T) {
	// WHAT: At most 5 reviews and 10 menu items make the brief.
	out := FormatForAnalysis(briefData())

	if strings.Contains(out, "Review number 6") {
		t.Error("review 6 should be cut at the cap of 5")
	}
	if !strings.Contains(out, "Review number 5") {
		t.Error("review 5 should be included")
	}
	if strings.Contains(out, "Dish 11") {
		t.Error("menu item 11 should be cut at the cap of 10")
	}
	if !strings.Contains(out, "Dish 1 ($10): silky tofu, numbing chili oil [popular]") {
		t.Errorf("menu line formatting: %s", out)
	}
}

func TestExtractRecommendedDishes(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{
			"numbered list",
			"Here are my picks:\n1. Mapo Tofu - silky and numbing\n2. Dan Dan Noodles\n3. Kung Pao Chicken: a classic\n4. Dumplings",
			[]string{"Mapo Tofu", "Dan Dan Noodles", "Kung Pao Chicken"},
		},
		{
			"markdown bullets",
			"- **Lobster Roll**\n- **Clam Chowder**",
			[]string{"Lobster Roll", "Clam Chowder"},
		},
		{
			"prose recommendation",
			"Given the reviews, I would recommend the Lobster Roll for a first visit.",
			[]string{"Lobster Roll"},
		},
		{
			"pie fallback",
			"Everything here revolves around pie and nothing is listed.",
			[]string{"Apple Pie", "Key Lime Pie", "Pecan Pie"},
		},
		{
			"generic fallback",
			"no structure at all",
			[]string{"Mapo Tofu", "Kung Pao Chicken", "Dan Dan Noodles"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractRecommendedDishes(tc.text)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("dish %d: got %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}
