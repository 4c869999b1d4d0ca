package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	bucket, object, err := ParseURI("gs://my-bucket/folder/file.pdf")
	require.NoError(t, err)
	assert.Equal(t, "my-bucket", bucket)
	assert.Equal(t, "folder/file.pdf", object)

	for _, bad := range []string{"", "s3://b/o", "gs://", "gs://bucket", "gs://bucket/", "gs:///obj"} {
		_, _, err := ParseURI(bad)
		assert.Error(t, err, bad)
	}
}

func TestFilenameFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"gs://bucket/folder/file.pdf", "file.pdf"},
		{"gs://bucket/file.pdf", "file.pdf"},
		{"gs://bucket/a/b/c/statement.pdf", "statement.pdf"},
		{"gs://bucket", "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, FilenameFromURI(tt.uri))
		})
	}
}

func TestObjectName(t *testing.T) {
	name, err := ObjectName("raw/a.pdf", "bank")
	require.NoError(t, err)
	assert.Equal(t, "raw/a.pdf", name)

	name, err = ObjectName("gs://bank/raw/a.pdf", "bank")
	require.NoError(t, err)
	assert.Equal(t, "raw/a.pdf", name)

	_, err = ObjectName("gs://elsewhere/raw/a.pdf", "bank")
	assert.Error(t, err)

	_, err = ObjectName("", "bank")
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("x.PDF"))
	assert.Equal(t, "application/octet-stream", ContentType("x.unknownext"))
}
