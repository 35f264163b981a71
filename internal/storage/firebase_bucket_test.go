package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"testing/iotest"

	gcs "cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func TestDownloadURLEscapesObjectPath(t *testing.T) {
	got := DownloadURL("akne-denik.appspot.com", "users/u1/day-7/abc.jpg", "tok")
	assert.Equal(t,
		"https://firebasestorage.googleapis.com/v0/b/akne-denik.appspot.com/o/users%2Fu1%2Fday-7%2Fabc.jpg?alt=media&token=tok",
		got)
}

func TestUploadDiscardsObjectWhenSourceFails(t *testing.T) {
	var committed atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err == nil {
			committed.Add(1)
		}
		http.Error(w, "unexpected upload", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx := context.Background()
	client, err := gcs.NewClient(ctx, option.WithEndpoint(srv.URL+"/storage/v1/"), option.WithoutAuthentication())
	require.NoError(t, err)
	defer client.Close()

	dropped := errors.New("client went away")
	b := NewFirebaseBucket(client.Bucket("akne-denik.appspot.com"), "akne-denik.appspot.com")
	url, err := b.Upload(ctx, "users/u1/day-7/abc.jpg", "image/jpeg",
		io.MultiReader(strings.NewReader("partial jpeg"), iotest.ErrReader(dropped)))

	require.Error(t, err)
	assert.ErrorIs(t, err, dropped)
	assert.Empty(t, url)
	assert.Zero(t, committed.Load(), "a failed read must not reach the bucket as a finished upload")
}
