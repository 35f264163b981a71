package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akneDenikAPI/internal/types/userlog"
)

// emulatorFirestore connects to FIRESTORE_EMULATOR_HOST and skips when it is not set.
func emulatorFirestore(t *testing.T) *Firestore {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "akne-denik-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return NewFirestore(client)
}

func TestFirestoreFindLogPrefersNewestDuplicate(t *testing.T) {
	f := emulatorFirestore(t)
	ctx := context.Background()
	userID := "u-" + uuid.NewString()
	base := time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)

	seed := func(note string, updated time.Time) {
		_, _, err := f.client.Collection(collectionUserLogs).Add(ctx, encodeUserLog(userlog.UserLog{
			UserID:     userID,
			Day:        3,
			Mood:       3,
			SkinRating: 3,
			Note:       note,
			Photos:     []userlog.Photo{},
			CreatedAt:  base,
			UpdatedAt:  updated,
		}))
		require.NoError(t, err)
	}
	seed("older", base)
	seed("newest", base.Add(2*time.Hour))
	seed("middle", base.Add(time.Hour))

	l, err := f.FindLog(ctx, userID, 3)
	require.NoError(t, err)
	assert.Equal(t, "newest", l.Note)
}
