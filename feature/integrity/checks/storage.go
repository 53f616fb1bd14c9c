package checks

import (
	"context"
	"fmt"

	"nodegrid/core/storage"

	"github.com/minio/minio-go/v7"
)

// StorageReport describes the object bucket behind the object source.
type StorageReport struct {
	Report
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix"`
	// Empty is set when nothing is listed under the prefix.
	Empty bool `json:"empty"`
}

// CheckStorage verifies that bucket exists and looks for one object below prefix.
func CheckStorage(ctx context.Context, client storage.Client, bucket, prefix string) (StorageReport, error) {
	r := StorageReport{Report: Report{Status: StatusOK}, Bucket: bucket, Prefix: prefix}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return r, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		return r, fmt.Errorf("bucket %s does not exist", bucket)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.Empty = true
	for info := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true, MaxKeys: 1}) {
		if info.Err != nil {
			return r, fmt.Errorf("failed to list %s/%s: %w", bucket, prefix, info.Err)
		}
		r.Empty = false
		break
	}
	if r.Empty {
		r.Status = StatusWarning
	}
	return r, nil
}
