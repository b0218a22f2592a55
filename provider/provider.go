// Package provider defines the source adapter contract and the common
// record shapes every upstream (places API, review aggregator, menu
// aggregator) is normalized into. Each adapter wraps exactly one
// provider and isolates its failures: an adapter error never carries
// more meaning than "this source contributed nothing".
package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// ErrNotConfigured is returned by an adapter whose credential is absent.
// The adapter fails closed; the aggregator logs a warning and moves on.
var ErrNotConfigured = errors.New("provider: not configured")

// ErrNoMatch is returned when the provider has no result for the query.
var ErrNoMatch = errors.New("provider: no matching place")

// Review is one customer review, immutable once fetched.
type Review struct {
	Text   string    `json:"text"`
	Rating int       `json:"rating"` // 1..5
	Author string    `json:"author"`
	Time   time.Time `json:"time"`
}

// MenuItem is one dish as reported by a provider.
type MenuItem struct {
	Name        string `json:"name"`
	Price       string `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
	Popular     bool   `json:"popular,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Key is the dedup key for menu merging: lower-cased, trimmed name.
func (m MenuItem) Key() string {
	return strings.ToLower(strings.TrimSpace(m.Name))
}

// Photo is one provider photo with its declared dimensions.
type Photo struct {
	URL          string   `json:"url"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Attributions []string `json:"attributions,omitempty"`
}

// Info holds per-source restaurant facts.
type Info struct {
	Rating      float64  `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Website     string   `json:"website,omitempty"`
	MapsURL     string   `json:"maps_url,omitempty"`
	PriceLevel  string   `json:"price_level,omitempty"`
	Hours       []string `json:"hours,omitempty"`
	DineIn      bool     `json:"dine_in,omitempty"`
	Takeout     bool     `json:"takeout,omitempty"`
	Delivery    bool     `json:"delivery,omitempty"`
}

// Result is one provider's normalized contribution.
type Result struct {
	Source  string     `json:"source"`
	Info    Info       `json:"info"`
	Reviews []Review   `json:"reviews,omitempty"`
	Menu    []MenuItem `json:"menu,omitempty"`
	Photos  []Photo    `json:"photos,omitempty"`
}

// Adapter fetches and normalizes one provider. Implementations must
// never panic past this boundary; any internal failure surfaces as an
// error and the caller treats the source as absent.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, name, address string) (*Result, error)
}

// strict strips all markup. Provider payloads are scraped or relayed
// HTML often enough that review text cannot be trusted raw.
var strict = bluemonday.StrictPolicy()

// CleanText sanitizes free text from a provider: markup stripped,
// whitespace runs collapsed.
func CleanText(s string) string {
	return strings.Join(strings.Fields(strict.Sanitize(s)), " ")
}

// ClampRating forces a provider rating into the 1..5 integer range.
func ClampRating(r int) int {
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}
