package aggregate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dishwire/dishwire/provider"
)

type stubAdapter struct {
	name  string
	res   *provider.Result
	err   error
	calls atomic.Int32
}

func (a *stubAdapter) Name() string { return a.name }

func (a *stubAdapter) Fetch(ctx context.Context, name, address string) (*provider.Result, error) {
	a.calls.Add(1)
	return a.res, a.err
}

func oceanAdapters() (*stubAdapter, *stubAdapter, *stubAdapter) {
	google := &stubAdapter{name: "google", res: &provider.Result{
		Source: "google",
		Info:   provider.Info{Rating: 4.2, ReviewCount: 156, Phone: "516-555-0100", Website: "https://ocean.example.com"},
		Reviews: []provider.Review{
			{Text: "Loved the Lobster Roll, huge portions.", Rating: 5, Author: "Ana"},
			{Text: "Solid spot by the water.", Rating: 4, Author: "Bo"},
		},
		Photos: []provider.Photo{
			{URL: "https://img.example.com/a.jpg", Width: 1600, Height: 900},
			{URL: "https://img.example.com/b.jpg", Width: 1000, Height: 1000},
		},
	}}
	yelp := &stubAdapter{name: "yelp", res: &provider.Result{
		Source: "yelp",
		Info:   provider.Info{Rating: 4.0, ReviewCount: 80},
		Menu: []provider.MenuItem{
			{Name: "Mapo Tofu", Price: "$14", Popular: true},
			{Name: "Kung Pao Chicken", Price: "$15"},
			{Name: "Dan Dan Noodles", Price: "$12"},
		},
		Photos: []provider.Photo{
			{URL: "https://img.example.com/b.jpg", Width: 1000, Height: 1000},
			{URL: "https://img.example.com/c.jpg", Width: 900, Height: 1200},
		},
	}}
	grubhub := &stubAdapter{name: "grubhub", res: &provider.Result{
		Source: "grubhub",
		Menu: []provider.MenuItem{
			{Name: "mapo tofu", Price: "$16"}, // duplicate, different case and price
			{Name: "Scallion Pancakes", Price: "$8"},
			{Name: "Dumplings", Price: "$10"},
		},
	}}
	return google, yelp, grubhub
}

func TestCollect_MergesAllSources(t *testing.T) {
	// WHAT: The Ocean scenario: three providers contribute reviews,
	// menu and photos; the merged record deduplicates menu by
	// normalized name (first wins) and images by URL.
	google, yelp, grubhub := oceanAdapters()
	s := New(Config{}, WithAdapters(google, yelp, grubhub))

	data, err := s.CollectRestaurantData(context.Background(), "Ocean", "333 Bayville Ave, Bayville, NY 11709")
	if err != nil {
		t.Fatalf("CollectRestaurantData: %v", err)
	}

	if len(data.Sources) != 3 {
		t.Errorf("sources: got %d, want 3", len(data.Sources))
	}
	if data.Ratings["google"] != 4.2 || data.Ratings["yelp"] != 4.0 {
		t.Errorf("ratings: got %v", data.Ratings)
	}
	if _, ok := data.Ratings["grubhub"]; ok {
		t.Error("grubhub reported no rating, must be absent from Ratings")
	}

	// 3 yelp items + 2 new grubhub items; "mapo tofu" collapses.
	if len(data.Menu) != 5 {
		t.Fatalf("menu: got %d items, want 5: %v", len(data.Menu), data.Menu)
	}
	if data.Menu[0].Name != "Mapo Tofu" || !data.Menu[0].Popular || data.Menu[0].Price != "$14" {
		t.Errorf("first occurrence must win the dedup: %+v", data.Menu[0])
	}

	if len(data.Images) != 3 {
		t.Errorf("images: got %v, want 3 unique URLs", data.Images)
	}
	if len(data.Reviews) != 2 {
		t.Errorf("reviews: got %d, want 2", len(data.Reviews))
	}
	if data.Details["phone"] != "516-555-0100" {
		t.Errorf("details: got %v", data.Details)
	}
}

func TestCollect_DerivedProducts(t *testing.T) {
	// WHAT: Recommendations and photo buckets are computed from the
	// merged record, not per provider.
	google, yelp, grubhub := oceanAdapters()
	s := New(Config{}, WithAdapters(google, yelp, grubhub))

	data, err := s.CollectRestaurantData(context.Background(), "Ocean", "333 Bayville Ave")
	if err != nil {
		t.Fatalf("CollectRestaurantData: %v", err)
	}

	found := false
	for _, m := range data.Recommendations {
		if m.Name == "Lobster Roll" {
			found = true
		}
	}
	if !found {
		t.Errorf("review text names the Lobster Roll, recommendations: %+v", data.Recommendations)
	}

	// First photo is 16:9, ratio ~1.78 > 1.5.
	if data.PhotoBuckets.Exterior == nil {
		t.Error("wide first photo should fill the exterior bucket")
	}
}

func TestCollect_PartialSourceResilience(t *testing.T) {
	// WHAT: One failing provider is dropped; the record carries the
	// other sources and no error surfaces.
	google, _, grubhub := oceanAdapters()
	yelp := &stubAdapter{name: "yelp", err: errors.New("upstream 500")}
	s := New(Config{}, WithAdapters(google, yelp, grubhub))

	data, err := s.CollectRestaurantData(context.Background(), "Ocean", "333 Bayville Ave")
	if err != nil {
		t.Fatalf("CollectRestaurantData: %v", err)
	}
	if _, ok := data.Sources["yelp"]; ok {
		t.Error("failed provider must be absent from Sources")
	}
	if _, ok := data.Sources["google"]; !ok {
		t.Error("google should be present")
	}
	if _, ok := data.Sources["grubhub"]; !ok {
		t.Error("grubhub should be present")
	}
}

func TestCollect_NotFound(t *testing.T) {
	// WHAT: Every provider resolving to no match is a NotFound, which
	// is not cached; a plain failure without any match signal still
	// yields a sparse record.
	miss := func(name string) *stubAdapter {
		return &stubAdapter{name: name, err: fmt.Errorf("search: %w", provider.ErrNoMatch)}
	}
	s := New(Config{}, WithAdapters(miss("google"), miss("yelp")))
	if _, err := s.CollectRestaurantData(context.Background(), "Nowhere", "1 Void St"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}

	down := &stubAdapter{name: "google", err: errors.New("timeout")}
	s = New(Config{}, WithAdapters(down))
	data, err := s.CollectRestaurantData(context.Background(), "Ocean", "333 Bayville Ave")
	if err != nil {
		t.Fatalf("all-down collect should return a sparse record, got %v", err)
	}
	if len(data.Sources) != 0 {
		t.Errorf("sparse record should have no sources: %v", data.Sources)
	}
}

func TestCollect_CachesByNormalizedIdentity(t *testing.T) {
	// WHAT: A repeat query within the TTL is served from cache without
	// touching the providers, and yields the identical record.
	google, yelp, grubhub := oceanAdapters()
	s := New(Config{}, WithAdapters(google, yelp, grubhub))

	first, err := s.CollectRestaurantData(context.Background(), "Ocean", "333 Bayville Ave")
	if err != nil {
		t.Fatalf("first collect: %v", err)
	}
	second, err := s.CollectRestaurantData(context.Background(), "Ocean", "333  Bayville   Ave")
	if err != nil {
		t.Fatalf("second collect: %v", err)
	}
	if google.calls.Load() != 1 {
		t.Errorf("google fetched %d times, want 1 (whitespace runs share one cache key)", google.calls.Load())
	}
	if first != second {
		t.Error("cached record must be returned as-is")
	}
}

func TestCollect_WebsiteExcerpt(t *testing.T) {
	// WHAT: With the flag on, the homepage is fetched and stored as a
	// truncated markdown excerpt in Details.
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><h1>Ocean</h1><p>Fresh seafood on the harbor since 1988.</p></body></html>")
	}))
	defer site.Close()

	google, yelp, grubhub := oceanAdapters()
	google.res.Info.Website = site.URL
	s := New(Config{IncludeWebsiteExcerpt: true}, WithAdapters(google, yelp, grubhub))

	data, err := s.CollectRestaurantData(context.Background(), "Ocean", "333 Bayville Ave")
	if err != nil {
		t.Fatalf("CollectRestaurantData: %v", err)
	}
	excerpt := data.Details["website_excerpt"]
	if !strings.Contains(excerpt, "Fresh seafood") {
		t.Errorf("excerpt should carry the page text: %q", excerpt)
	}
	if strings.Contains(excerpt, "<p>") {
		t.Errorf("excerpt should be markdown, not HTML: %q", excerpt)
	}
}
