package collection

import (
	"fmt"

	"nodegrid/core/batchfetch"
	"nodegrid/core/layout"
	"nodegrid/core/rangectl"
)

// Config holds the per-view tuning.
type Config struct {
	// AsyncDataFetching issues data source reads off the calling goroutine. When
	// false, mutations and preloads read the data source inline.
	AsyncDataFetching bool `mapstructure:"async_data_fetching" default:"true"`
	// Range sizes the working range in screenfuls.
	Range rangectl.Tuning `mapstructure:"range"`
	// LeadingScreensForBatching is the distance from the end of the content, in
	// screenfuls, at which a batch fetch begins. Zero disables batch fetching.
	LeadingScreensForBatching float64 `mapstructure:"leading_screens_for_batching" default:"1"`
	// MaxConcurrentFetches bounds parallel node materialization.
	MaxConcurrentFetches int `mapstructure:"max_concurrent_fetches" default:"4"`
	// RetainEvicted is how many evicted nodes stay loaded for reuse.
	RetainEvicted int `mapstructure:"retain_evicted" default:"64"`
	// EstimatedItemExtent is the extent assumed for items not yet measured.
	EstimatedItemExtent float64 `mapstructure:"estimated_item_extent" default:"44"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		AsyncDataFetching:         true,
		Range:                     rangectl.DefaultTuning(),
		LeadingScreensForBatching: batchfetch.DefaultLeadingScreens,
		MaxConcurrentFetches:      rangectl.DefaultMaxConcurrent,
		RetainEvicted:             64,
		EstimatedItemExtent:       layout.DefaultEstimate,
	}
}

// Validate checks the configuration for values that cannot work.
func (c Config) Validate() error {
	if err := c.Range.Validate(); err != nil {
		return err
	}
	if c.LeadingScreensForBatching < 0 {
		return fmt.Errorf("leading screens for batching must be non-negative, got %g", c.LeadingScreensForBatching)
	}
	if c.MaxConcurrentFetches < 0 {
		return fmt.Errorf("max concurrent fetches must be non-negative, got %d", c.MaxConcurrentFetches)
	}
	if c.RetainEvicted < 0 {
		return fmt.Errorf("retain evicted must be non-negative, got %d", c.RetainEvicted)
	}
	if c.EstimatedItemExtent < 0 {
		return fmt.Errorf("estimated item extent must be non-negative, got %g", c.EstimatedItemExtent)
	}
	return nil
}
