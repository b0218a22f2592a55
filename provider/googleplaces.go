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

// detailsFields is the fixed field allowlist for the details call.
// Anything outside it is billed or noise.
const detailsFields = "name,formatted_address,formatted_phone_number," +
	"opening_hours,website,rating,user_ratings_total,reviews,photos," +
	"price_level,url,dine_in,takeout,delivery"

// GooglePlaces resolves a restaurant through the Places text search and
// details endpoints. The provider caps reviews at 5 per call, so a
// second details call sorted by newest reviews widens the set; the two
// batches merge by (author, time) so a review fetched under both sort
// orders appears once.
type GooglePlaces struct {
	apiKey  string
	baseURL string
	fetcher *webfetch.Fetcher
	logger  *slog.Logger
}

// GooglePlacesConfig configures the adapter.
type GooglePlacesConfig struct {
	APIKey string
	// BaseURL overrides the Places API endpoint, for tests.
	BaseURL string
	Fetcher *webfetch.Fetcher
	Logger  *slog.Logger
}

// NewGooglePlaces creates the adapter.
func NewGooglePlaces(cfg GooglePlacesConfig) *GooglePlaces {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://maps.googleapis.com/maps/api/place"
	}
	if cfg.Fetcher == nil {
		cfg.Fetcher = webfetch.New(webfetch.Config{})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &GooglePlaces{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		fetcher: cfg.Fetcher,
		logger:  cfg.Logger,
	}
}

// Name implements Adapter.
func (g *GooglePlaces) Name() string { return "google" }

// Fetch implements Adapter.
func (g *GooglePlaces) Fetch(ctx context.Context, name, address string) (*Result, error) {
	if g.apiKey == "" {
		g.logger.Warn("google places: missing api key")
		return nil, ErrNotConfigured
	}

	placeID, err := g.resolvePlaceID(ctx, name, address)
	if err != nil {
		return nil, err
	}

	det, err := g.details(ctx, placeID, "")
	if err != nil {
		return nil, err
	}

	reviews := det.Reviews
	// Second pass sorted by newest; failure here only narrows the set.
	if newest, err := g.details(ctx, placeID, "newest"); err == nil {
		reviews = mergeReviews(reviews, newest.Reviews)
	} else {
		g.logger.Warn("google places: newest reviews pass failed", "error", err)
	}

	res := &Result{
		Source: g.Name(),
		Info: Info{
			Rating:      det.Rating,
			ReviewCount: det.UserRatingsTotal,
			Phone:       det.FormattedPhoneNumber,
			Website:     det.Website,
			MapsURL:     det.URL,
			PriceLevel:  strings.Repeat("$", det.PriceLevel),
			DineIn:      det.DineIn,
			Takeout:     det.Takeout,
			Delivery:    det.Delivery,
		},
	}
	if det.OpeningHours != nil {
		res.Info.Hours = det.OpeningHours.WeekdayText
	}

	for _, r := range reviews {
		res.Reviews = append(res.Reviews, Review{
			Text:   CleanText(r.Text),
			Rating: ClampRating(r.Rating),
			Author: r.AuthorName,
			Time:   time.Unix(r.Time, 0).UTC(),
		})
	}
	for _, p := range det.Photos {
		res.Photos = append(res.Photos, Photo{
			URL:          g.photoURL(p.PhotoReference),
			Width:        p.Width,
			Height:       p.Height,
			Attributions: p.HTMLAttributions,
		})
	}
	return res, nil
}

func (g *GooglePlaces) resolvePlaceID(ctx context.Context, name, address string) (string, error) {
	q := url.Values{}
	q.Set("query", name+" "+address)
	q.Set("key", g.apiKey)

	body, err := g.fetcher.GetJSON(ctx, g.baseURL+"/textsearch/json?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("google places: text search: %w", err)
	}

	var out struct {
		Status  string `json:"status"`
		Results []struct {
			PlaceID string `json:"place_id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body.Body, &out); err != nil {
		return "", fmt.Errorf("google places: text search decode: %w", err)
	}
	if out.Status == "ZERO_RESULTS" || len(out.Results) == 0 {
		return "", ErrNoMatch
	}
	if out.Status != "OK" {
		return "", fmt.Errorf("google places: text search status %s", out.Status)
	}
	return out.Results[0].PlaceID, nil
}

type placeDetails struct {
	Rating               float64 `json:"rating"`
	UserRatingsTotal     int     `json:"user_ratings_total"`
	FormattedPhoneNumber string  `json:"formatted_phone_number"`
	Website              string  `json:"website"`
	URL                  string  `json:"url"`
	PriceLevel           int     `json:"price_level"`
	DineIn               bool    `json:"dine_in"`
	Takeout              bool    `json:"takeout"`
	Delivery             bool    `json:"delivery"`
	OpeningHours         *struct {
		WeekdayText []string `json:"weekday_text"`
	} `json:"opening_hours"`
	Reviews []placeReview `json:"reviews"`
	Photos  []struct {
		PhotoReference   string   `json:"photo_reference"`
		Width            int      `json:"width"`
		Height           int      `json:"height"`
		HTMLAttributions []string `json:"html_attributions"`
	} `json:"photos"`
}

type placeReview struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	Time       int64  `json:"time"`
}

func (g *GooglePlaces) details(ctx context.Context, placeID, reviewsSort string) (*placeDetails, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", detailsFields)
	q.Set("key", g.apiKey)
	if reviewsSort != "" {
		q.Set("reviews_sort", reviewsSort)
	}

	body, err := g.fetcher.GetJSON(ctx, g.baseURL+"/details/json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("google places: details: %w", err)
	}

	var out struct {
		Status string       `json:"status"`
		Result placeDetails `json:"result"`
	}
	if err := json.Unmarshal(body.Body, &out); err != nil {
		return nil, fmt.Errorf("google places: details decode: %w", err)
	}
	if out.Status != "OK" {
		return nil, fmt.Errorf("google places: details status %s", out.Status)
	}
	return &out.Result, nil
}

func (g *GooglePlaces) photoURL(ref string) string {
	q := url.Values{}
	q.Set("photo_reference", ref)
	q.Set("maxwidth", "1600")
	q.Set("key", g.apiKey)
	return g.baseURL + "/photo?" + q.Encode()
}

// mergeReviews combines two review batches, deduplicating by the
// (author, time) composite key. Order of the first batch is preserved.
func mergeReviews(a, b []placeReview) []placeReview {
	seen := make(map[string]bool, len(a))
	key := func(r placeReview) string {
		return fmt.Sprintf("%s|%d", r.AuthorName, r.Time)
	}
	merged := make([]placeReview, 0, len(a)+len(b))
	for _, r := range a {
		if !seen[key(r)] {
			seen[key(r)] = true
			merged = append(merged, r)
		}
	}
	for _, r := range b {
		if !seen[key(r)] {
			seen[key(r)] = true
			merged = append(merged, r)
		}
	}
	return merged
}
