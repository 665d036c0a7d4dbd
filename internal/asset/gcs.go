package asset

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GCSSource reads objects from Google Cloud Storage using application
// default credentials.
type GCSSource struct{}

var _ Source = (*GCSSource)(nil)

// Open implements Source.
func (s *GCSSource) Open(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		closeErr := client.Close()
		return nil, errors.Join(fmt.Errorf("opening object from GCS %q: %w", "gs://"+bucket+"/"+object, err), closeErr)
	}
	return &gcsReader{Reader: r, client: client}, nil
}

type gcsReader struct {
	*storage.Reader
	client *storage.Client
}

func (r *gcsReader) Close() error {
	return errors.Join(r.Reader.Close(), r.client.Close())
}
