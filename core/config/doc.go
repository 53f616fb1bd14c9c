// Package config loads the nodegrid configuration.
//
// Viper reads environment variables, optionally seeded from a .env file. Every
// field's default comes from its 'default' struct tag, registered by walking the
// struct, so a new setting only needs a tagged field.
//
// # Configuration Structure
//
//   - Collection: view tuning (async fetching, working range buffers, batching)
//   - Log: level and format
//   - Server: HTTP control surface port, API key, timeouts
//   - Database: connection for the sql data source
//   - Storage: S3/MinIO settings for the object data source
//   - Source: which data source the commands build
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    return err
//	}
//	view, err := collection.New(ctx, source, surface, cfg.Collection)
package config
