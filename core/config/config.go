package config

import (
	"path/filepath"
	"reflect"
	"strings"

	"nodegrid/core/collection"
	"nodegrid/core/database"
	"nodegrid/core/logger"
	"nodegrid/core/server"
	"nodegrid/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Collection tunes the view: async fetching, working range, batching.
	Collection collection.Config `mapstructure:"collection"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Server holds configuration for the HTTP control surface.
	Server server.Config `mapstructure:"server"`
	// Database backs the sql data source.
	Database database.Config `mapstructure:"database"`
	// Storage backs the object data source.
	Storage storage.Config `mapstructure:"storage"`
	// Source selects the data source.
	Source SourceConfig `mapstructure:"source"`
}

// LoadConfig loads configuration from environment variables and the .env file in
// path. Nested keys map to upper-case variables joined by underscores, e.g.
// COLLECTION_RANGE_LEADING_BUFFER_SCREENFULS.
func LoadConfig(path string) (*Config, error) {
	// A missing .env is fine; the environment and the defaults still apply.
	_ = godotenv.Overload(filepath.Join(path, ".env"))

	v := viper.New()
	bindValues(v, Config{}, "")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Collection.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Source.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindValues walks the struct and registers every 'mapstructure' key with its
// 'default' tag value, recursing into nested structs.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Registering the key, even with an empty default, is what lets
		// AutomaticEnv find it.
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
