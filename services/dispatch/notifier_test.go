package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sharehood/sharehoodback/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingPushSender struct {
	mu    sync.Mutex
	calls []pushRequest
	err   error
}

func (r *recordingPushSender) Dispatch(ctx context.Context, scopeHint, text string, receivers []Receiver) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, pushRequest{Scope: scopeHint, Text: text, Receivers: receivers})
	return r.err
}

type recordingMailSender struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingMailSender) SendMail(ctx context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, to)
	return r.err
}

type countingUserSource struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
	calls int
}

func (c *countingUserSource) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	var result []*models.User
	for _, id := range ids {
		if u, ok := c.users[id]; ok {
			result = append(result, u)
		}
	}
	return result, nil
}

func TestNotifierPushResolvesAndCachesTokens(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), DeviceTokens: []string{"tok-1", "tok-2"}}
	source := &countingUserSource{users: map[primitive.ObjectID]*models.User{user.ID: user}}
	push := &recordingPushSender{}
	n := NewNotifier(push, &recordingMailSender{}, source)

	ctx := context.Background()
	n.Push(ctx, "community", "hello", []primitive.ObjectID{user.ID})
	n.Push(ctx, "community", "hello again", []primitive.ObjectID{user.ID})

	require.Len(t, push.calls, 2)
	assert.Equal(t, []Receiver{{ID: user.ID.Hex(), DeviceTokens: []string{"tok-1", "tok-2"}}}, push.calls[0].Receivers)
	// Second alert is served from the LRU.
	assert.Equal(t, 1, source.calls)
}

func TestNotifierPushSkipsUsersWithoutTokens(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	source := &countingUserSource{users: map[primitive.ObjectID]*models.User{user.ID: user}}
	push := &recordingPushSender{}
	n := NewNotifier(push, &recordingMailSender{}, source)

	ctx := context.Background()
	n.Push(ctx, "community", "hello", []primitive.ObjectID{user.ID})
	assert.Empty(t, push.calls)

	// The empty result is cached too.
	n.Push(ctx, "community", "hello", []primitive.ObjectID{user.ID})
	assert.Equal(t, 1, source.calls)
}

func TestNotifierSwallowsSenderFailures(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), DeviceTokens: []string{"tok"}}
	source := &countingUserSource{users: map[primitive.ObjectID]*models.User{user.ID: user}}
	push := &recordingPushSender{err: errors.New("gateway down")}
	mail := &recordingMailSender{err: errors.New("smtp down")}
	n := NewNotifier(push, mail, source)

	ctx := context.Background()
	// Neither call may panic or surface the failure.
	n.Push(ctx, "community", "hello", []primitive.ObjectID{user.ID})
	n.Mail(ctx, "someone@example.com", "subject", "body")

	assert.Len(t, push.calls, 1)
	assert.Equal(t, []string{"someone@example.com"}, mail.calls)
}

func TestNotifierMailSkipsEmptyAddress(t *testing.T) {
	mail := &recordingMailSender{}
	n := NewNotifier(&recordingPushSender{}, mail, &countingUserSource{})

	n.Mail(context.Background(), "", "subject", "body")
	assert.Empty(t, mail.calls)
}

func TestPreviewTruncatesLongText(t *testing.T) {
	short := "fits"
	assert.Equal(t, short, preview(short))

	long := make([]rune, previewLimit+40)
	for i := range long {
		long[i] = 'ä'
	}
	cut := preview(string(long))
	assert.Equal(t, previewLimit+1, len([]rune(cut)))
	assert.Equal(t, '…', []rune(cut)[previewLimit])
}
