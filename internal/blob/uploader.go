// Package blob uploads journal images to Firebase Storage and hands back a
// long-lived download URL.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"io.winapps.starlight/internal/apperr"
)

// DefaultMaxBytes is the upload limit when none is configured
const DefaultMaxBytes = 10 << 20

const downloadTokenKey = "firebaseStorageDownloadTokens"

var errTooLarge = errors.New("upload exceeds size limit")

// Object describes one object to write
type Object struct {
	Path        string
	ContentType string
	Metadata    map[string]string
}

// Bucket is the part of a storage bucket the uploader needs
type Bucket interface {
	Name() string
	Write(ctx context.Context, obj Object, r io.Reader) error
}

// Uploader stores images under journal_images/{uid}/
type Uploader struct {
	bucket   Bucket
	maxBytes int64
	now      func() time.Time
	newToken func() string
}

// NewUploader creates an uploader; maxBytes <= 0 means DefaultMaxBytes
func NewUploader(bucket Bucket, maxBytes int64) *Uploader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Uploader{
		bucket:   bucket,
		maxBytes: maxBytes,
		now:      time.Now,
		newToken: uuid.NewString,
	}
}

// UploadImage writes r to storage and returns its download URL
func (u *Uploader) UploadImage(ctx context.Context, uid, filename, contentType string, r io.Reader) (string, error) {
	if uid == "" {
		return "", apperr.AuthRequired("User not authenticated")
	}
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return "", apperr.Validation("Only image uploads are supported")
	}

	objectPath := ObjectPath(uid, filename, u.now())
	token := u.newToken()
	obj := Object{
		Path:        objectPath,
		ContentType: contentType,
		Metadata:    map[string]string{downloadTokenKey: token},
	}

	err := u.bucket.Write(ctx, obj, &limitedReader{r: r, remaining: u.maxBytes})
	if errors.Is(err, errTooLarge) {
		return "", apperr.Validation(fmt.Sprintf("Image must be at most %d MB", u.maxBytes>>20))
	}
	if err != nil {
		return "", apperr.Wrap(apperr.KindStoreFailure, "Failed to upload image", err)
	}
	return DownloadURL(u.bucket.Name(), objectPath, token), nil
}

// ObjectPath builds journal_images/{uid}/{unixMillis}_{filename}
func ObjectPath(uid, filename string, at time.Time) string {
	return fmt.Sprintf("journal_images/%s/%d_%s", uid, at.UnixMilli(), SanitizeFilename(filename))
}

// SanitizeFilename keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "image"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// DownloadURL is the token-authorized Firebase Storage URL for an object
func DownloadURL(bucket, objectPath, token string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		bucket, url.PathEscape(objectPath), url.QueryEscape(token))
}

type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, errTooLarge
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, errTooLarge
	}
	return n, err
}
