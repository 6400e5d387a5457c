package blob

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
)

// GCSBucket writes objects through the Cloud Storage client that the
// Firebase app hands out.
type GCSBucket struct {
	handle *storage.BucketHandle
	name   string
}

// NewGCSBucket wraps a bucket handle
func NewGCSBucket(handle *storage.BucketHandle, name string) *GCSBucket {
	return &GCSBucket{handle: handle, name: name}
}

func (b *GCSBucket) Name() string { return b.name }

// Write streams r into the object. A failed copy cancels the writer so no
// partial object is committed.
func (b *GCSBucket) Write(ctx context.Context, obj Object, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := b.handle.Object(obj.Path).NewWriter(ctx)
	w.ContentType = obj.ContentType
	w.Metadata = obj.Metadata

	if _, err := io.Copy(w, r); err != nil {
		cancel()
		w.Close()
		return err
	}
	return w.Close()
}
