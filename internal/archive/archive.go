// Package archive keeps a copy of uploaded lab reports in Cloud Storage.
package archive

import (
	"context"
	"fmt"
	"path"

	gcsstorage "cloud.google.com/go/storage"
)

// ReportPrefix is the object prefix for archived reports.
const ReportPrefix = "reports"

// Archive stores uploaded report bytes and returns their URI.
type Archive interface {
	Put(ctx context.Context, id string, data []byte) (string, error)
}

// GCSArchive writes reports to a Cloud Storage bucket.
type GCSArchive struct {
	bucket *gcsstorage.BucketHandle
	name   string
}

// NewGCSArchive creates an archive writing into bucket.
func NewGCSArchive(client *gcsstorage.Client, bucket string) *GCSArchive {
	return &GCSArchive{bucket: client.Bucket(bucket), name: bucket}
}

// ObjectName returns the object path for a report id.
func ObjectName(id string) string {
	return path.Join(ReportPrefix, id+".pdf")
}

// Put uploads data as reports/<id>.pdf and returns its gs:// URI.
func (a *GCSArchive) Put(ctx context.Context, id string, data []byte) (string, error) {
	name := ObjectName(id)
	w := a.bucket.Object(name).NewWriter(ctx)
	w.ContentType = "application/pdf"
	w.ChunkSize = 0

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("write report %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("upload report %s: %w", name, err)
	}
	return fmt.Sprintf("gs://%s/%s", a.name, name), nil
}
