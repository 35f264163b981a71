package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

const downloadTokenKey = "firebaseStorageDownloadTokens"

// FirebaseBucket writes objects to the project's Firebase Storage bucket and hands out token
// download URLs the mobile client can load without signing.
type FirebaseBucket struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewFirebaseBucket(bucket *gcs.BucketHandle, name string) *FirebaseBucket {
	return &FirebaseBucket{bucket: bucket, name: name}
}

func (b *FirebaseBucket) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	token := uuid.NewString()
	w := b.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "private, max-age=31536000"
	w.Metadata = map[string]string{downloadTokenKey: token}

	if _, err := io.Copy(w, r); err != nil {
		// Cancelling before Close discards the object instead of committing the partial write.
		cancel()
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close writer for %s: %w", key, err)
	}
	return DownloadURL(b.name, key, token), nil
}

// DownloadURL is the Firebase Storage media URL for key guarded by token.
func DownloadURL(bucket, key, token string) string {
	return fmt.Sprintf(
		"https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		url.PathEscape(bucket),
		url.PathEscape(key),
		url.QueryEscape(token),
	)
}
