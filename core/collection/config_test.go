package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.AsyncDataFetching)
	assert.Equal(t, 2.0, cfg.Range.LeadingBufferScreenfuls)
	assert.Equal(t, 1.0, cfg.Range.TrailingBufferScreenfuls)
	assert.Equal(t, 1.0, cfg.LeadingScreensForBatching)
	assert.Equal(t, 4, cfg.MaxConcurrentFetches)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative leading buffer", func(c *Config) { c.Range.LeadingBufferScreenfuls = -1 }},
		{"negative batching distance", func(c *Config) { c.LeadingScreensForBatching = -0.5 }},
		{"negative concurrency", func(c *Config) { c.MaxConcurrentFetches = -1 }},
		{"negative retention", func(c *Config) { c.RetainEvicted = -1 }},
		{"negative estimate", func(c *Config) { c.EstimatedItemExtent = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
