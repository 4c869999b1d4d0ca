package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/dvloznov/statement-recon/internal/config"
)

// GCSStore is the Store implementation backed by one Google Cloud Storage
// bucket. It holds a shared client; call Close when done.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore creates a GCS-backed store from explicit configuration.
// Key selects a service account key file, Token a static OAuth2 access
// token; exactly one must be set.
func NewGCSStore(ctx context.Context, cfg config.StorageConfig) (*GCSStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewGCSStore: %w", err)
	}

	var opts []option.ClientOption
	if cfg.Key != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Key))
	} else {
		opts = append(opts, option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})))
	}
	if cfg.Account != "" {
		opts = append(opts, option.WithQuotaProject(cfg.Account))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewGCSStore: create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: cfg.Container}, nil
}

// Bucket returns the configured bucket name.
func (s *GCSStore) Bucket() string { return s.bucket }

// Close releases the storage client.
func (s *GCSStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// List implements Store.
func (s *GCSStore) List(ctx context.Context, prefix string) ([]Object, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var objects []Object
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("List: iterating gs://%s/%s: %w", s.bucket, prefix, err)
		}
		if attrs.Name == "" {
			continue
		}
		objects = append(objects, Object{
			Name:    attrs.Name,
			Size:    attrs.Size,
			Updated: attrs.Updated,
		})
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

// Read implements Store.
func (s *GCSStore) Read(ctx context.Context, name string) ([]byte, error) {
	rc, err := s.client.Bucket(s.bucket).Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("Read: %s: %w", URI(s.bucket, name), ErrNotFound)
		}
		return nil, fmt.Errorf("Read: open %s: %w", URI(s.bucket, name), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Read: reading %s: %w", URI(s.bucket, name), err)
	}
	return data, nil
}

// Write implements Store.
func (s *GCSStore) Write(ctx context.Context, name string, data []byte, contentType string) error {
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(name).NewWriter(wctx)
	w.ContentType = contentType

	if err := writeObject(w, cancel, data); err != nil {
		return fmt.Errorf("Write: %s: %w", URI(s.bucket, name), err)
	}
	return nil
}

// writeObject copies data into w and finalizes it. A failed copy cancels the
// upload through abort instead of closing w, so no partial object is
// committed.
func writeObject(w io.WriteCloser, abort context.CancelFunc, data []byte) error {
	if _, err := w.Write(data); err != nil {
		abort()
		return fmt.Errorf("copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize: %w", err)
	}
	return nil
}

var _ Store = (*GCSStore)(nil)
