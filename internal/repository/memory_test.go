package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/types/message"
	"akneDenikAPI/internal/types/profile"
	"akneDenikAPI/internal/types/userlog"
)

func TestMemoryCommitDayUpsertsByUserAndDay(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	commit := func(mood int) func(profile.UserProfile, *userlog.UserLog) (profile.UserProfile, userlog.UserLog, error) {
		return func(p profile.UserProfile, existing *userlog.UserLog) (profile.UserProfile, userlog.UserLog, error) {
			l := userlog.UserLog{UserID: "u1", Day: 1, Mood: mood}
			if existing != nil {
				l.ID = existing.ID
			}
			p.CompletedDays = p.WithCompleted(1)
			p.CurrentDay = 2
			return p, l, nil
		}
	}

	_, first, err := m.CommitDay(ctx, "u1", 1, commit(3))
	require.NoError(t, err)
	_, second, err := m.CommitDay(ctx, "u1", 1, commit(5))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, m.LogCount())
	l, err := m.FindLog(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, 5, l.Mood)

	p, err := m.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, p.CompletedDays)
}

func TestMemoryCommitDayRollsBackOnError(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, _, err := m.CommitDay(ctx, "u1", 1, func(p profile.UserProfile, _ *userlog.UserLog) (profile.UserProfile, userlog.UserLog, error) {
		p.CurrentDay = 2
		return p, userlog.UserLog{}, apperr.Validation("nope")
	})
	require.Error(t, err)
	assert.Equal(t, 0, m.LogCount())
	_, err = m.GetProfile(ctx, "u1")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestMemoryProfilesAreCopies(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.AddDeviceToken(ctx, "u1", "t1"))

	p, err := m.GetProfile(ctx, "u1")
	require.NoError(t, err)
	p.DeviceTokens[0] = "mutated"

	again, err := m.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, again.DeviceTokens)
}

func TestMemoryMessagesOrderedAndMarkedRead(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	_, err := m.AddMessage(ctx, message.Message{UserID: "u1", Sender: message.SenderUser, Text: "b", CreatedAt: base.Add(time.Minute)})
	require.NoError(t, err)
	_, err = m.AddMessage(ctx, message.Message{UserID: "u1", Sender: message.SenderUser, Text: "a", CreatedAt: base})
	require.NoError(t, err)

	msgs, err := m.ListMessages(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "a", msgs[0].Text)

	n, err := m.MarkMessagesRead(ctx, "u1", message.SenderUser)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = m.MarkMessagesRead(ctx, "u1", message.SenderUser)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMemoryFailHook(t *testing.T) {
	m := NewMemory()
	m.Fail = func(op string) error { return errors.New("offline") }

	_, err := m.ListLogs(context.Background(), "u1")
	assert.True(t, errors.Is(err, apperr.ErrUnavailable))
	assert.True(t, errors.Is(m.Ping(context.Background()), apperr.ErrUnavailable))
}
