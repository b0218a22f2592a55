// Package imagesearch discovers images for a restaurant or a specific
// dish. Four strategies run concurrently: three general image-search
// scrapes (google, bing, duckduckgo) and discovery of the restaurant's
// own website. Website images outrank search-engine hits because they
// are the only ones verified to show this restaurant; when the website
// contributes nothing, the whole result is flagged as reference
// imagery.
package imagesearch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dishwire/dishwire/ttlcache"
	"github.com/dishwire/dishwire/webfetch"
)

// Strategy names, in merge-priority order.
const (
	SourceWebsite    = "website"
	SourceGoogle     = "google"
	SourceBing       = "bing"
	SourceDuckDuckGo = "duckduckgo"
)

var mergeOrder = []string{SourceWebsite, SourceGoogle, SourceBing, SourceDuckDuckGo}

// Result is a combined image search outcome.
type Result struct {
	Images  []string            `json:"images"`
	Sources map[string][]string `json:"sources"`
	// IsReference is true when no image came from the restaurant's own
	// website, i.e. nothing here is verified to depict this restaurant.
	IsReference bool `json:"is_reference"`
}

// DishImage is the cached per-dish lookup result.
type DishImage struct {
	URL         string `json:"url,omitempty"`
	IsReference bool   `json:"is_reference"`
}

// Config configures the Engine.
type Config struct {
	// LiveSearch enables the scraping strategies. Off, dish lookups
	// come from the curated static tables only.
	LiveSearch bool
	// MaxPerStrategy caps URLs per strategy. Default: 10.
	MaxPerStrategy int
	// MaxResults caps the combined list. Default: 5.
	MaxResults int
	// DishImageTTL is the per-dish cache TTL. Default: 6h.
	DishImageTTL time.Duration
	// MinImageSize is the declared-dimension floor for website images,
	// in pixels. Default: 120.
	MinImageSize int

	// Endpoint overrides, for tests.
	GoogleBaseURL     string
	BingBaseURL       string
	DuckDuckGoBaseURL string

	Fetcher *webfetch.Fetcher
	// Browser, when set, renders JS-shell restaurant sites that defeat
	// the static fetch.
	Browser *webfetch.Browser
	Logger  *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxPerStrategy <= 0 {
		c.MaxPerStrategy = 10
	}
	if c.MaxResults <= 0 {
		c.MaxResults = 5
	}
	if c.DishImageTTL <= 0 {
		c.DishImageTTL = 6 * time.Hour
	}
	if c.MinImageSize <= 0 {
		c.MinImageSize = 120
	}
	if c.GoogleBaseURL == "" {
		c.GoogleBaseURL = "https://www.google.com"
	}
	if c.BingBaseURL == "" {
		c.BingBaseURL = "https://www.bing.com"
	}
	if c.DuckDuckGoBaseURL == "" {
		c.DuckDuckGoBaseURL = "https://html.duckduckgo.com"
	}
	if c.Fetcher == nil {
		c.Fetcher = webfetch.New(webfetch.Config{Timeout: 10 * time.Second})
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Engine runs the image discovery strategies.
type Engine struct {
	config    Config
	dishCache *ttlcache.Cache[DishImage]
	logger    *slog.Logger
}

// New creates an Engine.
func New(cfg Config) *Engine {
	cfg.defaults()
	return &Engine{
		config:    cfg,
		dishCache: ttlcache.New[DishImage](cfg.DishImageTTL),
		logger:    cfg.Logger,
	}
}

// Search runs all strategies concurrently and merges their results.
// Strategy failures degrade to empty contributions; Search itself only
// fails on a cancelled context.
func (e *Engine) Search(ctx context.Context, restaurantName, dishName, location string) *Result {
	query := restaurantName + " " + dishName
	if dishName == "" {
		query = restaurantName + " restaurant"
	}

	type runner struct {
		source string
		run    func(context.Context) ([]string, error)
	}
	runners := []runner{
		{SourceWebsite, func(ctx context.Context) ([]string, error) {
			return e.websiteImages(ctx, restaurantName, location)
		}},
		{SourceGoogle, func(ctx context.Context) ([]string, error) {
			return e.googleImages(ctx, query)
		}},
		{SourceBing, func(ctx context.Context) ([]string, error) {
			return e.bingImages(ctx, query)
		}},
		{SourceDuckDuckGo, func(ctx context.Context) ([]string, error) {
			return e.duckduckgoImages(ctx, query)
		}},
	}

	sources := make(map[string][]string, len(runners))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, r := range runners {
		wg.Add(1)
		go func(r runner) {
			defer wg.Done()
			urls, err := r.run(ctx)
			if err != nil {
				e.logger.Warn("image strategy failed", "source", r.source, "error", err)
				urls = nil
			}
			mu.Lock()
			sources[r.source] = urls
			mu.Unlock()
		}(r)
	}
	wg.Wait()

	return e.merge(sources)
}

// merge combines per-source URL lists in fixed priority order,
// deduplicates, and truncates.
func (e *Engine) merge(sources map[string][]string) *Result {
	res := &Result{
		Sources:     sources,
		IsReference: len(sources[SourceWebsite]) == 0,
	}
	seen := make(map[string]bool)
	for _, src := range mergeOrder {
		for _, u := range sources[src] {
			if seen[u] {
				continue
			}
			seen[u] = true
			res.Images = append(res.Images, u)
		}
	}
	if len(res.Images) > e.config.MaxResults {
		res.Images = res.Images[:e.config.MaxResults]
	}
	return res
}

// SearchDishImage looks up one image for a dish, cached per
// (restaurant, dish, location). With live search disabled it answers
// from the curated tables.
func (e *Engine) SearchDishImage(ctx context.Context, restaurantName, dishName, location string) DishImage {
	if !e.config.LiveSearch {
		return curatedDishImage(restaurantName, dishName)
	}

	key := ttlcache.Key("dish", restaurantName, dishName, location)
	img, err := e.dishCache.Do(ctx, key, func(ctx context.Context) (DishImage, error) {
		res := e.Search(ctx, restaurantName, dishName, location)
		if len(res.Images) == 0 {
			return curatedDishImage(restaurantName, dishName), nil
		}
		return DishImage{URL: res.Images[0], IsReference: res.IsReference}, nil
	})
	if err != nil {
		e.logger.Warn("dish image lookup failed", "dish", dishName, "error", err)
		return curatedDishImage(restaurantName, dishName)
	}
	return img
}
