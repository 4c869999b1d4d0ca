// Package docstore lists, reads and writes statement documents in object
// storage. It is the only package that talks to the storage backend.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned by Read when the object does not exist.
var ErrNotFound = errors.New("document not found")

// Object describes one stored document.
type Object struct {
	Name    string
	Size    int64
	Updated time.Time
}

// Store provides the storage operations used by the loader and the parser.
type Store interface {
	// List returns the objects whose names start with prefix, sorted by name.
	List(ctx context.Context, prefix string) ([]Object, error)

	// Read returns the full contents of the named object.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write creates or replaces the named object.
	Write(ctx context.Context, name string, data []byte, contentType string) error
}

// FilterSuffix keeps the objects whose base name ends with suffix, ignoring case.
func FilterSuffix(objects []Object, suffix string) []Object {
	suffix = strings.ToLower(suffix)
	kept := make([]Object, 0, len(objects))
	for _, o := range objects {
		if strings.HasSuffix(strings.ToLower(o.Name), suffix) {
			kept = append(kept, o)
		}
	}
	return kept
}

// UploadFile copies a local file into the store under name.
func UploadFile(ctx context.Context, s Store, name, filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("UploadFile: read %q: %w", filePath, err)
	}
	if err := s.Write(ctx, name, data, ContentType(filePath)); err != nil {
		return fmt.Errorf("UploadFile: %w", err)
	}
	return nil
}

// ContentType guesses a MIME type from the file extension.
func ContentType(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}
