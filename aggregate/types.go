package aggregate

import (
	"github.com/dishwire/dishwire/mentions"
	"github.com/dishwire/dishwire/photos"
	"github.com/dishwire/dishwire/provider"
)

// Data is the merged record for one restaurant. Produced once per
// query, cached, and read-only for consumers.
type Data struct {
	Name    string `json:"name"`
	Address string `json:"address"`

	// Sources holds per-provider normalized info, keyed by adapter
	// name. A provider that failed or found nothing is absent.
	Sources map[string]provider.Info `json:"sources"`

	Reviews []provider.Review   `json:"reviews"`
	Menu    []provider.MenuItem `json:"menu"`
	// Images is the deduplicated union of provider photo URLs, in
	// adapter order.
	Images  []string           `json:"images"`
	Ratings map[string]float64 `json:"ratings"`
	// Details carries free-form strings for the brief (phone, website,
	// hours, optionally a website excerpt).
	Details map[string]string `json:"details,omitempty"`

	// Derived products, computed once after the merge.
	Recommendations []mentions.Mention `json:"recommendations"`
	PhotoBuckets    photos.Buckets     `json:"photo_buckets"`
}
