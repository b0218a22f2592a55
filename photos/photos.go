// Package photos buckets provider photos into exterior, interior, food
// and menu slots using aspect ratio and position. It is a coarse
// heuristic standing in for real image classification; the thresholds
// are part of the pipeline's observable behavior and must not drift.
package photos

import "github.com/dishwire/dishwire/provider"

// Buckets is the categorized photo set: at most one exterior, interior
// and menu photo, and up to three food photos. A photo lands in at
// most one bucket.
type Buckets struct {
	Exterior *provider.Photo  `json:"exterior,omitempty"`
	Interior *provider.Photo  `json:"interior,omitempty"`
	Menu     *provider.Photo  `json:"menu,omitempty"`
	Food     []provider.Photo `json:"food,omitempty"`
}

const maxFoodPhotos = 3

// Categorizer buckets photos. The aspect-ratio heuristic is the
// default; an image classifier can substitute without touching the
// aggregator.
type Categorizer interface {
	Categorize(photos []provider.Photo) Buckets
}

// RatioCategorizer classifies by aspect ratio and position:
//   - the first photo, when wide (ratio > 1.5), is the exterior shot;
//   - near-square photos (0.8 < ratio < 1.3) are food, first three;
//   - portrait photos (ratio < 0.8) fill the menu slot;
//   - remaining wide photos (ratio > 1.2) fill the interior slot.
//
// First matching rule wins per photo; each single slot fills once.
type RatioCategorizer struct{}

// Categorize implements Categorizer.
func (RatioCategorizer) Categorize(photos []provider.Photo) Buckets {
	var b Buckets
	for i := range photos {
		p := photos[i]
		if p.Height <= 0 || p.Width <= 0 {
			continue
		}
		ratio := float64(p.Width) / float64(p.Height)

		switch {
		case i == 0 && ratio > 1.5 && b.Exterior == nil:
			b.Exterior = &p
		case ratio > 0.8 && ratio < 1.3:
			// The rule still claims the photo once food is full.
			if len(b.Food) < maxFoodPhotos {
				b.Food = append(b.Food, p)
			}
		case ratio < 0.8 && b.Menu == nil:
			b.Menu = &p
		case ratio > 1.2 && b.Interior == nil:
			b.Interior = &p
		}
	}
	return b
}
