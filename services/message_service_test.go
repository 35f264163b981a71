package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akneDenikAPI/internal/apperr"
	"akneDenikAPI/internal/repository"
	"akneDenikAPI/internal/types/message"
)

type recordingPush struct {
	tokens []string
	title  string
	data   map[string]string
	err    error
}

func (p *recordingPush) SendPush(ctx context.Context, tokens []string, title, body string, data map[string]string) error {
	p.tokens = append(p.tokens, tokens...)
	p.title = title
	p.data = data
	return p.err
}

func newMessages(t *testing.T, push PushNotificationProvider) (*MessageService, *repository.Memory) {
	t.Helper()
	store := repository.NewMemory()
	s := NewMessageService(store, push, nil)
	tick := fixedNow
	s.now = func() time.Time {
		tick = tick.Add(time.Minute)
		return tick
	}
	return s, store
}

func TestSendValidatesText(t *testing.T) {
	s, _ := newMessages(t, nil)

	_, err := s.Send(context.Background(), "u1", "   ")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	_, err = s.Send(context.Background(), "u1", strings.Repeat("a", maxMessageLength+1))
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestReplyPushesToRegisteredDevices(t *testing.T) {
	push := &recordingPush{}
	s, _ := newMessages(t, push)
	ctx := context.Background()

	require.NoError(t, s.RegisterDevice(ctx, "u1", "tok-a"))
	require.NoError(t, s.RegisterDevice(ctx, "u1", "tok-a"))
	require.NoError(t, s.RegisterDevice(ctx, "u1", "tok-b"))

	msg, err := s.Reply(ctx, "u1", "admin-1", "Zkus ranní rutinu zjednodušit.")
	require.NoError(t, err)
	assert.Equal(t, message.SenderSupport, msg.Sender)
	assert.Equal(t, "admin-1", msg.AuthorID)
	assert.Equal(t, []string{"tok-a", "tok-b"}, push.tokens)
	assert.Equal(t, msg.ID, push.data["messageId"])
}

func TestReplySucceedsWhenPushFails(t *testing.T) {
	push := &recordingPush{err: errors.New("fcm down")}
	s, _ := newMessages(t, push)
	ctx := context.Background()
	require.NoError(t, s.RegisterDevice(ctx, "u1", "tok"))

	_, err := s.Reply(ctx, "u1", "admin-1", "Ahoj")
	require.NoError(t, err)

	thread, err := s.Thread(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, thread, 1)
}

func TestMarkReadMarksOtherSide(t *testing.T) {
	s, _ := newMessages(t, nil)
	ctx := context.Background()

	_, err := s.Send(ctx, "u1", "Dobrý den")
	require.NoError(t, err)
	_, err = s.Send(ctx, "u1", "Mám otázku")
	require.NoError(t, err)
	_, err = s.Reply(ctx, "u1", "admin-1", "Povídejte")
	require.NoError(t, err)

	n, err := s.MarkRead(ctx, "u1", message.SenderSupport)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.MarkRead(ctx, "u1", message.SenderUser)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConversationsGroupedByUser(t *testing.T) {
	s, _ := newMessages(t, nil)
	ctx := context.Background()

	_, err := s.Send(ctx, "u1", "první")
	require.NoError(t, err)
	_, err = s.Send(ctx, "u2", "druhý")
	require.NoError(t, err)
	_, err = s.Send(ctx, "u1", "třetí")
	require.NoError(t, err)
	_, err = s.Reply(ctx, "u2", "admin-1", "odpověď")
	require.NoError(t, err)

	convs, err := s.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	assert.Equal(t, "u2", convs[0].UserID)
	assert.Equal(t, "odpověď", convs[0].LastMessage.Text)
	assert.Equal(t, 1, convs[0].UnreadCount)
	assert.Equal(t, 2, convs[0].Total)

	assert.Equal(t, "u1", convs[1].UserID)
	assert.Equal(t, "třetí", convs[1].LastMessage.Text)
	assert.Equal(t, 2, convs[1].UnreadCount)
}

func TestRegisterDeviceRequiresToken(t *testing.T) {
	s, _ := newMessages(t, nil)
	err := s.RegisterDevice(context.Background(), "u1", "")
	assert.True(t, errors.Is(err, apperr.ErrValidation))
}

func TestPreviewTruncatesLongText(t *testing.T) {
	long := strings.Repeat("ž", 200)
	p := preview(long)
	assert.True(t, strings.HasSuffix(p, "…"))
	assert.Equal(t, 121, len([]rune(p)))
	assert.Equal(t, "krátké", preview("krátké"))
}
