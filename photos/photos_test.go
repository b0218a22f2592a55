package photos

import (
	"testing"

	"github.com/dishwire/dishwire/provider"
)

func ph(url string, w, h int) provider.Photo {
	return provider.Photo{URL: url, Width: w, Height: h}
}

func TestCategorize_BucketAssignment(t *testing.T) {
	// WHAT: Exterior from a wide first photo, near-squares to food,
	// portrait to menu, later wide to interior.
	photos := []provider.Photo{
		ph("ext", 1600, 900),  // ratio 1.78, index 0: exterior
		ph("food1", 1000, 1000), // 1.0: food
		ph("menu", 600, 900),  // 0.67: menu
		ph("int", 1400, 1000), // 1.4: interior
		ph("food2", 900, 1000), // 0.9: food
	}

	b := RatioCategorizer{}.Categorize(photos)

	if b.Exterior == nil || b.Exterior.URL != "ext" {
		t.Errorf("exterior: got %+v", b.Exterior)
	}
	if b.Menu == nil || b.Menu.URL != "menu" {
		t.Errorf("menu: got %+v", b.Menu)
	}
	if b.Interior == nil || b.Interior.URL != "int" {
		t.Errorf("interior: got %+v", b.Interior)
	}
	if len(b.Food) != 2 || b.Food[0].URL != "food1" || b.Food[1].URL != "food2" {
		t.Errorf("food: got %+v", b.Food)
	}
}

func TestCategorize_Exclusivity(t *testing.T) {
	// WHAT: No photo appears in two buckets; single slots fill once;
	// food caps at 3.
	photos := []provider.Photo{
		ph("a", 1600, 900), // exterior (index 0)
		ph("b", 500, 900),  // menu
		ph("c", 520, 900),  // portrait again; menu slot taken, so no bucket
		ph("d", 1000, 990),  // food
		ph("e", 1010, 1000), // food
		ph("f", 1000, 1010), // food
		ph("g", 1005, 1000), // food rule claims it but the cap is reached, dropped
		ph("h", 1500, 1000), // interior
	}

	b := RatioCategorizer{}.Categorize(photos)

	seen := map[string]int{}
	if b.Exterior != nil {
		seen[b.Exterior.URL]++
	}
	if b.Interior != nil {
		seen[b.Interior.URL]++
	}
	if b.Menu != nil {
		seen[b.Menu.URL]++
	}
	for _, p := range b.Food {
		seen[p.URL]++
	}
	for url, n := range seen {
		if n > 1 {
			t.Errorf("photo %s in %d buckets", url, n)
		}
	}

	if len(b.Food) != 3 {
		t.Errorf("food cap: got %d", len(b.Food))
	}
	if b.Menu.URL != "b" {
		t.Errorf("menu should be first portrait, got %s", b.Menu.URL)
	}
	if b.Interior == nil || b.Interior.URL != "h" {
		t.Errorf("interior: got %+v", b.Interior)
	}
}

func TestCategorize_WideNonFirstIsInterior(t *testing.T) {
	// WHAT: A very wide photo past index 0 never claims the exterior slot.
	photos := []provider.Photo{
		ph("sq", 1000, 1000),
		ph("wide", 1600, 900),
	}
	b := RatioCategorizer{}.Categorize(photos)
	if b.Exterior != nil {
		t.Errorf("exterior must only come from index 0, got %+v", b.Exterior)
	}
	if b.Interior == nil || b.Interior.URL != "wide" {
		t.Errorf("interior: got %+v", b.Interior)
	}
}

func TestCategorize_SkipsZeroDimensions(t *testing.T) {
	b := RatioCategorizer{}.Categorize([]provider.Photo{ph("x", 0, 0)})
	if b.Exterior != nil || b.Menu != nil || b.Interior != nil || len(b.Food) != 0 {
		t.Errorf("zero-dimension photo should be ignored: %+v", b)
	}
}
