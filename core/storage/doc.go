// Package storage wraps the MinIO client for object-backed node content.
//
// Client is the narrow interface the object data source depends on, so tests can
// swap in mocks.Client. NewClient configures a MinIO client with strict transport
// timeouts and works against both AWS S3 and self-hosted MinIO.
//
// EnsureBucket and ReadObject cover the two things callers repeat: making sure
// the bucket exists before seeding it, and reading an object body in full.
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region)
package storage
