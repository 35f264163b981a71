package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/logger"
	"akneDenikAPI/internal/metrics"
	"akneDenikAPI/internal/types/daycontent"
	"akneDenikAPI/internal/types/userlog"
)

// MaxPhotoBytes bounds a single uploaded image.
const MaxPhotoBytes = 10 << 20

type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"image/heif": ".heif",
}

// PhotoService stores progress photos. A photo only becomes part of the ledger when a later
// CompleteDay references its URL.
type PhotoService struct {
	blobs BlobStore
	log   *logger.Logger
}

func NewPhotoService(blobs BlobStore, log *logger.Logger) *PhotoService {
	if log == nil {
		log = logger.Nop()
	}
	return &PhotoService{blobs: blobs, log: log}
}

func (s *PhotoService) Upload(ctx context.Context, userID string, day int, photoType userlog.PhotoType, filename, contentType string, r io.Reader) (userlog.Photo, error) {
	if !daycontent.ValidDay(day) {
		return userlog.Photo{}, apperr.Validation("day must be between %d and %d", daycontent.FirstDay, daycontent.LastDay)
	}
	if !photoType.Valid() {
		return userlog.Photo{}, apperr.Validation("unknown photo type %q", photoType)
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return userlog.Photo{}, apperr.Validation("unsupported content type %q", contentType)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxPhotoBytes+1))
	if err != nil {
		return userlog.Photo{}, apperr.Validation("failed to read photo")
	}
	if len(data) > MaxPhotoBytes {
		metrics.PhotoUploads.WithLabelValues("too_large").Inc()
		return userlog.Photo{}, apperr.Validation("photo exceeds %d bytes", MaxPhotoBytes)
	}
	if len(data) == 0 {
		return userlog.Photo{}, apperr.Validation("photo is empty")
	}

	key := PhotoKey(userID, day, uuid.NewString(), ext)
	url, err := s.blobs.Upload(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		metrics.PhotoUploads.WithLabelValues("error").Inc()
		s.log.Error("Photo upload failed", "user_id", userID, "day", day, "key", key, "error", err)
		return userlog.Photo{}, apperr.WithUser(apperr.Upload("photo upload", err), userID, day)
	}
	metrics.PhotoUploads.WithLabelValues("ok").Inc()
	s.log.Info("Photo uploaded", "user_id", userID, "day", day, "type", photoType, "filename", filename)
	return userlog.Photo{URL: url, Type: photoType}, nil
}

// PhotoKey is the object name of a photo: users/{uid}/day-{N}/{id}{ext}.
func PhotoKey(userID string, day int, id, ext string) string {
	return fmt.Sprintf("users/%s/day-%d/%s%s", userID, day, id, ext)
}
