package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGrubhub_FetchMenu(t *testing.T) {
	// WHAT: The menu aggregator contributes structured menu items.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"restaurant": map[string]any{"rating": 4.4, "rating_count": 210, "delivery": true},
			"menu": []map[string]any{
				{"name": " Lobster Roll ", "price": "$29", "category": "Mains", "popular": true},
				{"name": "Clam Chowder", "price": "$12", "description": "New England <i>style</i>"},
			},
		})
	}))
	defer srv.Close()

	g := NewGrubhub(GrubhubConfig{BaseURL: srv.URL})
	res, err := g.Fetch(context.Background(), "Ocean", "Bayville, NY")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if len(res.Menu) != 2 {
		t.Fatalf("menu: got %d items", len(res.Menu))
	}
	if res.Menu[0].Name != "Lobster Roll" {
		t.Errorf("name should be trimmed, got %q", res.Menu[0].Name)
	}
	if res.Menu[1].Description != "New England style" {
		t.Errorf("description should be sanitized, got %q", res.Menu[1].Description)
	}
	if !res.Info.Delivery || res.Info.Rating != 4.4 {
		t.Errorf("info: got %+v", res.Info)
	}
}

func TestGrubhub_NoMatch(t *testing.T) {
	// WHAT: A response without a restaurant surfaces as ErrNoMatch.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"menu": []any{}})
	}))
	defer srv.Close()

	g := NewGrubhub(GrubhubConfig{BaseURL: srv.URL})
	_, err := g.Fetch(context.Background(), "Nowhere", "addr")
	if !errors.Is(err, ErrNoMatch) {
		t.Errorf("got %v, want ErrNoMatch", err)
	}
}

func TestMenuItem_Key(t *testing.T) {
	// WHAT: Dedup key is lower-cased and trimmed.
	a := MenuItem{Name: "  Mapo Tofu "}
	b := MenuItem{Name: "mapo tofu"}
	if a.Key() != b.Key() {
		t.Errorf("keys differ: %q vs %q", a.Key(), b.Key())
	}
}
