package objectsource

import (
	"bytes"
	"context"

	"nodegrid/core/storage"

	"golang.org/x/sync/singleflight"
)

// bodyGroup downloads object bodies. Concurrent loads of one key share a
// single download.
type bodyGroup struct {
	client storage.Client
	bucket string
	sf     singleflight.Group
}

func (g *bodyGroup) fetch(ctx context.Context, key string) ([]byte, error) {
	v, err, shared := g.sf.Do(key, func() (any, error) {
		data, err := storage.ReadObject(ctx, g.client, g.bucket, key)
		if err != nil {
			return nil, err
		}
		if data == nil {
			data = []byte{}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	data := v.([]byte)
	if shared {
		return bytes.Clone(data), nil
	}
	return data, nil
}

// forget detaches loads started from now on from any download in flight for key.
func (g *bodyGroup) forget(key string) {
	g.sf.Forget(key)
}
