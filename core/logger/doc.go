// Package logger builds the zap logger used across nodegrid.
//
// Level debug selects zap's development config, anything else the production
// config. Format picks console or json encoding.
//
// Components take a *zap.Logger and fall back to zap.NewNop when given nil, so
// the library stays silent unless a host wires a logger in. HTTP handlers use
// WithRayID to tag entries with the request's ray id.
//
//	log, err := logger.New(&cfg.Log)
//	view, err := collection.New(ctx, source, surface, cfg.Collection, collection.WithLogger(log))
package logger
