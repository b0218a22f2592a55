// Package aggregate fans out a restaurant query to all configured
// provider adapters, merges their partial results into one cached
// record, derives dish recommendations and photo buckets, and renders
// the analysis brief for the external summarizer.
package aggregate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"

	"github.com/dishwire/dishwire/imagesearch"
	"github.com/dishwire/dishwire/mentions"
	"github.com/dishwire/dishwire/photos"
	"github.com/dishwire/dishwire/provider"
	"github.com/dishwire/dishwire/ttlcache"
	"github.com/dishwire/dishwire/webfetch"
)

// Service is the aggregation entry point.
type Service struct {
	config      Config
	adapters    []provider.Adapter
	cache       *ttlcache.Cache[*Data]
	images      *imagesearch.Engine
	categorizer photos.Categorizer
	fetcher     *webfetch.Fetcher
	converter   *converter.Converter
	logger      *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithAdapters replaces the provider set. Order fixes merge order.
func WithAdapters(adapters ...provider.Adapter) Option {
	return func(s *Service) { s.adapters = adapters }
}

// WithImageEngine injects a pre-built image discovery engine.
func WithImageEngine(e *imagesearch.Engine) Option {
	return func(s *Service) { s.images = e }
}

// WithCategorizer substitutes the photo classifier.
func WithCategorizer(c photos.Categorizer) Option {
	return func(s *Service) { s.categorizer = c }
}

// WithFetcher injects the HTTP fetcher shared with the adapters.
func WithFetcher(f *webfetch.Fetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New builds a Service. Without WithAdapters, the provider set comes
// from cfg.Providers; providers without credentials still register and
// fail closed per fetch.
func New(cfg Config, opts ...Option) *Service {
	cfg.defaults()
	s := &Service{
		config: cfg,
		cache:  ttlcache.New[*Data](cfg.CacheTTL),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = webfetch.New(webfetch.Config{})
	}
	if s.adapters == nil {
		s.adapters = defaultAdapters(cfg.Providers, s.fetcher, s.logger)
	}
	if s.images == nil {
		var browser *webfetch.Browser
		if cfg.Images.BrowserRemote != "" {
			b, err := webfetch.NewBrowser(webfetch.BrowserConfig{
				Remote: cfg.Images.BrowserRemote,
				Logger: s.logger,
			})
			if err != nil {
				s.logger.Warn("browser unavailable, website scrapes stay static", "error", err)
			} else {
				browser = b
			}
		}
		s.images = imagesearch.New(imagesearch.Config{
			LiveSearch:   cfg.Images.LiveSearch,
			DishImageTTL: cfg.Images.DishImageTTL,
			Fetcher:      s.fetcher,
			Browser:      browser,
			Logger:       s.logger,
		})
	}
	if s.categorizer == nil {
		s.categorizer = photos.RatioCategorizer{}
	}
	s.converter = converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
		),
	)
	return s
}

func defaultAdapters(p ProvidersConfig, f *webfetch.Fetcher, l *slog.Logger) []provider.Adapter {
	return []provider.Adapter{
		provider.NewGooglePlaces(provider.GooglePlacesConfig{
			APIKey: p.GoogleAPIKey, BaseURL: p.GoogleBaseURL, Fetcher: f, Logger: l,
		}),
		provider.NewYelp(provider.YelpConfig{
			APIKey: p.YelpAPIKey, BaseURL: p.YelpBaseURL, Fetcher: f, Logger: l,
		}),
		provider.NewGrubhub(provider.GrubhubConfig{
			BaseURL: p.GrubhubBaseURL, Fetcher: f, Logger: l,
		}),
	}
}

// CollectRestaurantData returns the merged record for one restaurant,
// serving repeated queries from the cache. Concurrent misses on the
// same key perform one collection. A query no provider can resolve
// returns ErrNotFound; any subset of providers succeeding is a valid
// result.
func (s *Service) CollectRestaurantData(ctx context.Context, name, address string) (*Data, error) {
	key := ttlcache.Key(name, address)
	return s.cache.Do(ctx, key, func(ctx context.Context) (*Data, error) {
		return s.collect(ctx, name, address)
	})
}

// SearchDishImage looks up one image for a dish at a restaurant.
func (s *Service) SearchDishImage(ctx context.Context, restaurantName, dishName, location string) imagesearch.DishImage {
	return s.images.SearchDishImage(ctx, restaurantName, dishName, location)
}

func (s *Service) collect(ctx context.Context, name, address string) (*Data, error) {
	results := make([]*provider.Result, len(s.adapters))
	var noMatch int
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, ad := range s.adapters {
		wg.Add(1)
		go func(i int, ad provider.Adapter) {
			defer wg.Done()
			actx, cancel := context.WithTimeout(ctx, s.config.AdapterTimeout)
			defer cancel()
			res, err := ad.Fetch(actx, name, address)
			if err != nil {
				if errors.Is(err, provider.ErrNoMatch) {
					mu.Lock()
					noMatch++
					mu.Unlock()
				}
				s.logger.Warn("provider failed, continuing without it",
					"provider", ad.Name(), "restaurant", name, "error", err)
				return
			}
			results[i] = res
		}(i, ad)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r != nil {
			succeeded++
		}
	}
	if succeeded == 0 && noMatch > 0 {
		return nil, ErrNotFound
	}

	data := s.merge(name, address, results)
	if s.config.IncludeWebsiteExcerpt {
		s.attachWebsiteExcerpt(ctx, data)
	}
	return data, nil
}

// merge folds provider results into one record in adapter order.
// Images get set semantics; menu items deduplicate by lowercase
// trimmed name, first occurrence winning.
func (s *Service) merge(name, address string, results []*provider.Result) *Data {
	data := &Data{
		Name:    name,
		Address: address,
		Sources: make(map[string]provider.Info),
		Ratings: make(map[string]float64),
		Details: make(map[string]string),
	}

	seenImage := make(map[string]bool)
	seenDish := make(map[string]bool)
	var allPhotos []provider.Photo

	for _, res := range results {
		if res == nil {
			continue
		}
		data.Sources[res.Source] = res.Info
		if res.Info.Rating > 0 {
			data.Ratings[res.Source] = res.Info.Rating
		}
		data.Reviews = append(data.Reviews, res.Reviews...)
		for _, item := range res.Menu {
			if k := item.Key(); k != "" && !seenDish[k] {
				seenDish[k] = true
				data.Menu = append(data.Menu, item)
			}
		}
		for _, p := range res.Photos {
			allPhotos = append(allPhotos, p)
			if p.URL != "" && !seenImage[p.URL] {
				seenImage[p.URL] = true
				data.Images = append(data.Images, p.URL)
			}
		}
		s.mergeDetails(data, res.Info)
	}

	data.Recommendations = mentions.Extract(data.Reviews)
	data.PhotoBuckets = s.categorizer.Categorize(allPhotos)
	return data
}

// mergeDetails keeps the first non-empty value per detail, so the
// earliest adapter in the fixed order wins conflicts.
func (s *Service) mergeDetails(data *Data, info provider.Info) {
	set := func(k, v string) {
		if v != "" && data.Details[k] == "" {
			data.Details[k] = v
		}
	}
	set("phone", info.Phone)
	set("website", info.Website)
	set("maps_url", info.MapsURL)
	set("price_level", info.PriceLevel)
	if len(info.Hours) > 0 && data.Details["hours"] == "" {
		data.Details["hours"] = strings.Join(info.Hours, "; ")
	}
}

// attachWebsiteExcerpt fetches the restaurant homepage and stores a
// truncated markdown rendition for the analysis brief. Best effort.
func (s *Service) attachWebsiteExcerpt(ctx context.Context, data *Data) {
	site := data.Details["website"]
	if site == "" {
		return
	}
	res, err := s.fetcher.Get(ctx, site)
	if err != nil {
		s.logger.Debug("website excerpt fetch failed", "url", site, "error", err)
		return
	}
	md, err := s.converter.ConvertString(string(res.Body), converter.WithDomain(res.FinalURL))
	if err != nil {
		s.logger.Debug("website excerpt conversion failed", "url", site, "error", err)
		return
	}
	md = strings.TrimSpace(md)
	if limit := s.config.WebsiteExcerptMaxChars; len(md) > limit {
		md = md[:limit]
	}
	if md != "" {
		data.Details["website_excerpt"] = md
	}
}
