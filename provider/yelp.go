package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dishwire/dishwire/webfetch"
)

// Yelp wraps the Fusion-style review aggregator API: bearer-token
// business search to resolve the business, then a reviews call.
// Menu highlights ride along on the business payload when present.
type Yelp struct {
	apiKey  string
	baseURL string
	fetcher *webfetch.Fetcher
	logger  *slog.Logger
}

// YelpConfig configures the adapter.
type YelpConfig struct {
	APIKey string
	// BaseURL overrides the API endpoint, for tests.
	BaseURL string
	Fetcher *webfetch.Fetcher
	Logger  *slog.Logger
}

// NewYelp creates the adapter.
func NewYelp(cfg YelpConfig) *Yelp {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.yelp.com/v3"
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = webfetch.New(webfetch.Config{})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Yelp{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		fetcher: cfg.Fetcher,
		logger:  cfg.Logger,
	}
}

// Name implements Adapter.
func (y *Yelp) Name() string { return "yelp" }

func (y *Yelp) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + y.apiKey}
}

type yelpBusiness struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ImageURL    string  `json:"image_url"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
	Price       string  `json:"price"`
	Phone       string  `json:"display_phone"`
	URL         string  `json:"url"`
	Photos      []string `json:"photos"`
	// Menu highlights are present on some business payloads.
	MenuHighlights []struct {
		Name        string `json:"name"`
		Price       string `json:"price"`
		Description string `json:"description"`
		Popular     bool   `json:"popular"`
		Category    string `json:"category"`
	} `json:"menu_highlights"`
}

// Fetch implements Adapter.
func (y *Yelp) Fetch(ctx context.Context, name, address string) (*Result, error) {
	if y.apiKey == "" {
		y.logger.Warn("yelp: missing api key")
		return nil, ErrNotConfigured
	}

	biz, err := y.search(ctx, name, address)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Source: y.Name(),
		Info: Info{
			Rating:      biz.Rating,
			ReviewCount: biz.ReviewCount,
			Phone:       biz.Phone,
			PriceLevel:  biz.Price,
			MapsURL:     biz.URL,
		},
	}

	for _, m := range biz.MenuHighlights {
		res.Menu = append(res.Menu, MenuItem{
			Name:        strings.TrimSpace(m.Name),
			Price:       m.Price,
			Description: CleanText(m.Description),
			Popular:     m.Popular,
			Category:    m.Category,
		})
	}

	photos := biz.Photos
	if len(photos) == 0 && biz.ImageURL != "" {
		photos = []string{biz.ImageURL}
	}
	for _, p := range photos {
		// Fusion does not report dimensions; standard Yelp photos are
		// 1000x750 landscape.
		res.Photos = append(res.Photos, Photo{URL: p, Width: 1000, Height: 750})
	}

	// Reviews are a separate endpoint; a failure there still leaves a
	// useful rating/menu contribution.
	reviews, err := y.reviews(ctx, biz.ID)
	if err != nil {
		y.logger.Warn("yelp: reviews fetch failed", "business_id", biz.ID, "error", err)
	} else {
		res.Reviews = reviews
	}
	return res, nil
}

func (y *Yelp) search(ctx context.Context, name, address string) (*yelpBusiness, error) {
	q := url.Values{}
	q.Set("term", name)
	q.Set("location", address)
	q.Set("categories", "restaurants,food")
	q.Set("limit", "1")
	q.Set("sort_by", "best_match")

	body, err := y.fetcher.GetJSON(ctx, y.baseURL+"/businesses/search?"+q.Encode(), y.headers())
	if err != nil {
		return nil, fmt.Errorf("yelp: search: %w", err)
	}

	var out struct {
		Businesses []yelpBusiness `json:"businesses"`
	}
	if err := json.Unmarshal(body.Body, &out); err != nil {
		return nil, fmt.Errorf("yelp: search decode: %w", err)
	}
	if len(out.Businesses) == 0 {
		return nil, ErrNoMatch
	}
	return &out.Businesses[0], nil
}

func (y *Yelp) reviews(ctx context.Context, businessID string) ([]Review, error) {
	body, err := y.fetcher.GetJSON(ctx, y.baseURL+"/businesses/"+url.PathEscape(businessID)+"/reviews", y.headers())
	if err != nil {
		return nil, fmt.Errorf("yelp: reviews: %w", err)
	}

	var out struct {
		Reviews []struct {
			Text        string `json:"text"`
			Rating      int    `json:"rating"`
			TimeCreated string `json:"time_created"`
			User        struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"reviews"`
	}
	if err := json.Unmarshal(body.Body, &out); err != nil {
		return nil, fmt.Errorf("yelp: reviews decode: %w", err)
	}

	reviews := make([]Review, 0, len(out.Reviews))
	for _, r := range out.Reviews {
		t, err := time.Parse("2006-01-02 15:04:05", r.TimeCreated)
		if err != nil {
			t = time.Time{}
		}
		reviews = append(reviews, Review{
			Text:   CleanText(r.Text),
			Rating: ClampRating(r.Rating),
			Author: r.User.Name,
			Time:   t.UTC(),
		})
	}
	return reviews, nil
}
