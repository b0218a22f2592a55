package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func placesFixture(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/textsearch/json":
			json.NewEncoder(w).Encode(map[string]any{
				"status":  "OK",
				"results": []map[string]any{{"place_id": "pid-1"}},
			})
		case "/details/json":
			if r.URL.Query().Get("fields") == "" {
				t.Error("details call must carry the field allowlist")
			}
			reviews := []map[string]any{
				{"author_name": "Ana", "rating": 5, "text": "Loved the <b>Margherita Pizza</b>", "time": 100},
				{"author_name": "Bo", "rating": 4, "text": "Solid spot", "time": 200},
			}
			if r.URL.Query().Get("reviews_sort") == "newest" {
				// Overlaps Ana@100 and adds one new review.
				reviews = []map[string]any{
					{"author_name": "Cy", "rating": 3, "text": "Recent visit", "time": 300},
					{"author_name": "Ana", "rating": 5, "text": "Loved the Margherita Pizza", "time": 100},
				}
			}
			json.NewEncoder(w).Encode(map[string]any{
				"status": "OK",
				"result": map[string]any{
					"rating":             4.2,
					"user_ratings_total": 156,
					"website":            "https://ocean.example.com",
					"price_level":        2,
					"reviews":            reviews,
					"photos": []map[string]any{
						{"photo_reference": "ph1", "width": 1600, "height": 900},
					},
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestGooglePlaces_MergesReviewsAcrossSortOrders(t *testing.T) {
	// WHAT: The default and newest-sorted details calls merge by
	// (author, time) with no duplicates.
	// WHY: The provider caps reviews per call; the second sort order
	// widens the set but overlaps it.
	srv := placesFixture(t)
	defer srv.Close()

	g := NewGooglePlaces(GooglePlacesConfig{APIKey: "k", BaseURL: srv.URL})
	res, err := g.Fetch(context.Background(), "Ocean", "333 Bayville Ave")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(res.Reviews) != 3 {
		t.Fatalf("reviews: got %d, want 3 (Ana, Bo, Cy)", len(res.Reviews))
	}
	if res.Reviews[0].Author != "Ana" || res.Reviews[0].Rating != 5 {
		t.Errorf("first review: got %+v", res.Reviews[0])
	}
	if res.Reviews[0].Text != "Loved the Margherita Pizza" {
		t.Errorf("review text should be sanitized, got %q", res.Reviews[0].Text)
	}
	if res.Info.Rating != 4.2 || res.Info.ReviewCount != 156 {
		t.Errorf("info: got %+v", res.Info)
	}
	if res.Info.PriceLevel != "$$" {
		t.Errorf("price level: got %q", res.Info.PriceLevel)
	}
	if len(res.Photos) != 1 || res.Photos[0].Width != 1600 {
		t.Errorf("photos: got %+v", res.Photos)
	}
}

func TestGooglePlaces_MissingKeyFailsClosed(t *testing.T) {
	// WHAT: No API key means ErrNotConfigured, not a crash or a network call.
	g := NewGooglePlaces(GooglePlacesConfig{BaseURL: "http://127.0.0.1:0"})
	_, err := g.Fetch(context.Background(), "Ocean", "addr")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
}

func TestGooglePlaces_ZeroResults(t *testing.T) {
	// WHAT: ZERO_RESULTS surfaces as ErrNoMatch.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": "ZERO_RESULTS", "results": []any{}})
	}))
	defer srv.Close()

	g := NewGooglePlaces(GooglePlacesConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := g.Fetch(context.Background(), "Nowhere", "addr")
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("got %v, want ErrNoMatch", err)
	}
}
