package aggregate

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all aggregation service configuration.
type Config struct {
	// CacheTTL is how long a merged restaurant record stays fresh.
	CacheTTL time.Duration `yaml:"cache_ttl"`
	// AdapterTimeout bounds each provider fetch. A timed-out provider
	// counts as failed and contributes nothing.
	AdapterTimeout time.Duration `yaml:"adapter_timeout"`
	// IncludeWebsiteExcerpt fetches the restaurant homepage and stores
	// a markdown excerpt in Details for the analysis brief.
	IncludeWebsiteExcerpt bool `yaml:"include_website_excerpt"`
	// WebsiteExcerptMaxChars truncates the excerpt.
	WebsiteExcerptMaxChars int `yaml:"website_excerpt_max_chars"`

	Providers ProvidersConfig `yaml:"providers"`
	Images    ImagesConfig    `yaml:"images"`
	HTTP      HTTPConfig      `yaml:"http"`
}

// ProvidersConfig holds per-provider credentials and endpoints.
// Empty credentials leave that provider unconfigured; it fails closed
// at fetch time.
type ProvidersConfig struct {
	GoogleAPIKey   string `yaml:"google_api_key"`
	GoogleBaseURL  string `yaml:"google_base_url"`
	YelpAPIKey     string `yaml:"yelp_api_key"`
	YelpBaseURL    string `yaml:"yelp_base_url"`
	GrubhubBaseURL string `yaml:"grubhub_base_url"`
}

// ImagesConfig controls the image discovery engine.
type ImagesConfig struct {
	LiveSearch   bool          `yaml:"live_search"`
	DishImageTTL time.Duration `yaml:"dish_image_ttl"`
	// BrowserRemote is a remote DevTools URL for rendering
	// script-heavy restaurant sites. Empty disables the browser path.
	BrowserRemote string `yaml:"browser_remote"`
}

// HTTPConfig controls the HTTP surface.
type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

func (c *Config) defaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = 24 * time.Hour
	}
	if c.AdapterTimeout <= 0 {
		c.AdapterTimeout = 15 * time.Second
	}
	if c.WebsiteExcerptMaxChars <= 0 {
		c.WebsiteExcerptMaxChars = 2000
	}
	if c.Images.DishImageTTL <= 0 {
		c.Images.DishImageTTL = 6 * time.Hour
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = ":8080"
	}
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
