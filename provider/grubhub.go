package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dishwire/dishwire/webfetch"
)

// Grubhub is the menu aggregator adapter: one JSON lookup keyed by
// name and address, returning the structured menu. It contributes menu
// items, a delivery rating, and little else.
type Grubhub struct {
	baseURL string
	fetcher *webfetch.Fetcher
	logger  *slog.Logger
}

// GrubhubConfig configures the adapter.
type GrubhubConfig struct {
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string
	Fetcher *webfetch.Fetcher
	Logger  *slog.Logger
}

// NewGrubhub creates the adapter.
func NewGrubhub(cfg GrubhubConfig) *Grubhub {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-gtm.grubhub.com/restaurants/search"
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = webfetch.New(webfetch.Config{})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Grubhub{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		fetcher: cfg.Fetcher,
		logger:  cfg.Logger,
	}
}

// Name implements Adapter.
func (g *Grubhub) Name() string { return "grubhub" }

// Fetch implements Adapter.
func (g *Grubhub) Fetch(ctx context.Context, name, address string) (*Result, error) {
	q := url.Values{}
	q.Set("queryText", name)
	q.Set("location", address)

	body, err := g.fetcher.GetJSON(ctx, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("grubhub: search: %w", err)
	}

	var out struct {
		Restaurant *struct {
			Rating      float64 `json:"rating"`
			RatingCount int     `json:"rating_count"`
			Phone       string  `json:"phone"`
			Delivery    bool    `json:"delivery"`
			LogoURL     string  `json:"logo_url"`
		} `json:"restaurant"`
		Menu []struct {
			Name        string `json:"name"`
			Price       string `json:"price"`
			Description string `json:"description"`
			Popular     bool   `json:"popular"`
			Category    string `json:"category"`
		} `json:"menu"`
	}
	if err := json.Unmarshal(body.Body, &out); err != nil {
		return nil, fmt.Errorf("grubhub: decode: %w", err)
	}
	if out.Restaurant == nil {
		return nil, ErrNoMatch
	}

	res := &Result{
		Source: g.Name(),
		Info: Info{
			Rating:      out.Restaurant.Rating,
			ReviewCount: out.Restaurant.RatingCount,
			Phone:       out.Restaurant.Phone,
			Delivery:    out.Restaurant.Delivery,
		},
	}
	for _, m := range out.Menu {
		res.Menu = append(res.Menu, MenuItem{
			Name:        strings.TrimSpace(m.Name),
			Price:       m.Price,
			Description: CleanText(m.Description),
			Popular:     m.Popular,
			Category:    m.Category,
		})
	}
	return res, nil
}
