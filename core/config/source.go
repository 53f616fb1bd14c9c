package config

import (
	"fmt"
	"time"
)

// Data source kinds.
const (
	SourceMemory = "memory"
	SourceSQL    = "sql"
	SourceFile   = "file"
	SourceObject = "object"
)

// SourceConfig selects and sizes the data source behind the commands.
type SourceConfig struct {
	// Kind is memory, sql, file or object.
	Kind string `mapstructure:"kind" default:"memory"`
	// Sections and Items size generated content (memory, and sql seeding).
	Sections int `mapstructure:"sections" default:"3"`
	Items    int `mapstructure:"items" default:"40"`
	// Path is the YAML document read by the file source.
	Path string `mapstructure:"path" default:"grid.yaml"`
	// DebounceMillis coalesces file change events.
	DebounceMillis int `mapstructure:"debounce_millis" default:"200"`
	// Prefix restricts the object source to keys under it.
	Prefix string `mapstructure:"prefix" default:""`
}

// Validate checks the kind and sizes.
func (c SourceConfig) Validate() error {
	switch c.Kind {
	case SourceMemory, SourceSQL, SourceFile, SourceObject:
	default:
		return fmt.Errorf("unknown source kind %q", c.Kind)
	}
	if c.Sections < 0 || c.Items < 0 {
		return fmt.Errorf("source sizes must be non-negative, got sections=%d items=%d", c.Sections, c.Items)
	}
	return nil
}

// Debounce returns DebounceMillis as a duration.
func (c SourceConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}
