package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/types/userlog"
)

type fakeBlobs struct {
	key         string
	contentType string
	body        string
	err         error
}

func (f *fakeBlobs) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.key, f.contentType, f.body = key, contentType, string(b)
	return "https://cdn.example/" + key, nil
}

func TestUploadStoresUnderUserDay(t *testing.T) {
	blobs := &fakeBlobs{}
	s := NewPhotoService(blobs, nil)

	photo, err := s.Upload(context.Background(), "u1", 7, userlog.PhotoSingle, "face.JPG", "image/jpeg; charset=binary", strings.NewReader("jpegdata"))
	require.NoError(t, err)
	assert.Equal(t, userlog.PhotoSingle, photo.Type)
	assert.True(t, strings.HasPrefix(blobs.key, "users/u1/day-7/"))
	assert.True(t, strings.HasSuffix(blobs.key, ".jpg"))
	assert.Equal(t, "image/jpeg", blobs.contentType)
	assert.Equal(t, "jpegdata", blobs.body)
	assert.Equal(t, "https://cdn.example/"+blobs.key, photo.URL)
}

func TestUploadRejectsNonImages(t *testing.T) {
	s := NewPhotoService(&fakeBlobs{}, nil)
	ctx := context.Background()

	_, err := s.Upload(ctx, "u1", 7, userlog.PhotoSingle, "x.pdf", "application/pdf", strings.NewReader("x"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = s.Upload(ctx, "u1", 7, "selfie", "x.png", "image/png", strings.NewReader("x"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = s.Upload(ctx, "u1", 0, userlog.PhotoSingle, "x.png", "image/png", strings.NewReader("x"))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestUploadRejectsOversizedPhoto(t *testing.T) {
	blobs := &fakeBlobs{}
	s := NewPhotoService(blobs, nil)

	body := bytes.NewReader(make([]byte, MaxPhotoBytes+4096))
	_, err := s.Upload(context.Background(), "u1", 7, userlog.PhotoSingle, "big.jpg", "image/jpeg", body)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Empty(t, blobs.key, "nothing may reach the bucket")
}

func TestUploadAcceptsPhotoAtLimit(t *testing.T) {
	blobs := &fakeBlobs{}
	s := NewPhotoService(blobs, nil)

	_, err := s.Upload(context.Background(), "u1", 7, userlog.PhotoSingle, "max.jpg", "image/jpeg", bytes.NewReader(make([]byte, MaxPhotoBytes)))
	require.NoError(t, err)
	assert.Len(t, blobs.body, MaxPhotoBytes)
}

func TestUploadRejectsEmptyPhoto(t *testing.T) {
	s := NewPhotoService(&fakeBlobs{}, nil)

	_, err := s.Upload(context.Background(), "u1", 7, userlog.PhotoSingle, "e.jpg", "image/jpeg", strings.NewReader(""))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestUploadFailureIsUploadError(t *testing.T) {
	s := NewPhotoService(&fakeBlobs{err: errors.New("503 from storage")}, nil)

	_, err := s.Upload(context.Background(), "u1", 14, userlog.PhotoFront, "f.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUpload))
	assert.Equal(t, 502, apperr.HTTPStatus(err))
}

func TestPhotoKey(t *testing.T) {
	assert.Equal(t, "users/abc/day-28/id1.png", PhotoKey("abc", 28, "id1", ".png"))
}
