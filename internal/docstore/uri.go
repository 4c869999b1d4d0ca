package docstore

import (
	"fmt"
	"path"
	"strings"
)

const gcsScheme = "gs://"

// ParseURI splits "gs://bucket/path/to/object" into bucket and object name.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, gcsScheme) {
		return "", "", fmt.Errorf("invalid GCS URI: %s", uri)
	}
	parts := strings.SplitN(strings.TrimPrefix(uri, gcsScheme), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GCS URI (no object path): %s", uri)
	}
	return parts[0], parts[1], nil
}

// FilenameFromURI extracts the base filename from a GCS URI.
// e.g., "gs://bucket/folder/file.pdf" → "file.pdf"
func FilenameFromURI(uri string) string {
	trimmed := strings.TrimPrefix(uri, gcsScheme)
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}

// ObjectName resolves ref, either a bare object name or a gs:// URI, to an
// object name inside bucket.
func ObjectName(ref, bucket string) (string, error) {
	if !strings.HasPrefix(ref, gcsScheme) {
		name := strings.TrimPrefix(ref, "/")
		if name == "" {
			return "", fmt.Errorf("empty object name")
		}
		return name, nil
	}
	b, object, err := ParseURI(ref)
	if err != nil {
		return "", err
	}
	if bucket != "" && b != bucket {
		return "", fmt.Errorf("object %s is outside bucket %s", ref, bucket)
	}
	return object, nil
}

// URI renders the gs:// URI of an object.
func URI(bucket, object string) string {
	return gcsScheme + bucket + "/" + object
}
