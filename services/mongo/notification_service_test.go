package mongo

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/sharehood/sharehoodback/models"
	"github.com/sharehood/sharehoodback/services/mongo/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// These tests run against a real mongod (set MONGO_TEST_URI), mirroring how
// the document-level guarantees actually behave under the driver.

func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	return client.Database("sharehood_test")
}

func chatNotification(communityID primitive.ObjectID, a, b primitive.ObjectID) *models.Notification {
	return &models.Notification{
		Kind:         models.NotificationKindChat,
		CommunityID:  communityID,
		Participants: []primitive.ObjectID{a, b},
		ChatKey:      models.ChatKey(a, b),
		Messages:     []primitive.ObjectID{},
		IsRead:       map[string]bool{a.Hex(): false, b.Hex(): false},
	}
}

func TestAppendMessageSurvivesConcurrentWriters(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	service := NewNotificationService(New(db))

	userA, userB := primitive.NewObjectID(), primitive.NewObjectID()
	notif := chatNotification(primitive.NewObjectID(), userA, userB)
	require.NoError(t, service.Create(ctx, notif))
	t.Cleanup(func() {
		_, _ = command.DeleteByID(ctx, service.GetCollection("notifications"), notif.ID)
	})

	const writers = 20
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = service.AppendMessage(ctx, notif.ID, primitive.NewObjectID(), userB)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	stored, err := service.GetByID(ctx, notif.ID)
	require.NoError(t, err)
	// Every concurrent $push must have landed.
	assert.Len(t, stored.Messages, writers)
	assert.False(t, stored.IsRead[userB.Hex()])
	assert.Len(t, stored.IsRead, 2)
}

func TestChatDedupIndexRejectsSecondThread(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	service := NewNotificationService(New(db))
	require.NoError(t, service.EnsureIndexes(ctx))

	communityID := primitive.NewObjectID()
	userA, userB := primitive.NewObjectID(), primitive.NewObjectID()

	first := chatNotification(communityID, userA, userB)
	require.NoError(t, service.Create(ctx, first))
	t.Cleanup(func() {
		_, _ = command.DeleteMany(ctx, service.GetCollection("notifications"), bson.M{"communityId": communityID})
	})

	// Same pair in reverse order collides on the chat key.
	second := chatNotification(communityID, userB, userA)
	err := service.Create(ctx, second)
	require.Error(t, err)
	assert.True(t, IsDuplicateChat(err))

	found, err := service.FindChat(ctx, communityID, userB, userA)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)
}

func TestMarkReadAndReplaceReadState(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	service := NewNotificationService(New(db))

	userA, userB := primitive.NewObjectID(), primitive.NewObjectID()
	notif := chatNotification(primitive.NewObjectID(), userA, userB)
	require.NoError(t, service.Create(ctx, notif))
	t.Cleanup(func() {
		_, _ = command.DeleteByID(ctx, service.GetCollection("notifications"), notif.ID)
	})

	require.NoError(t, service.MarkRead(ctx, notif.ID, userA))
	stored, err := service.GetByID(ctx, notif.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead[userA.Hex()])
	assert.False(t, stored.IsRead[userB.Hex()])

	require.NoError(t, service.ReplaceReadState(ctx, notif.ID, map[string]bool{
		userA.Hex(): true,
		userB.Hex(): false,
	}))
	stored, err = service.GetByID(ctx, notif.ID)
	require.NoError(t, err)
	assert.Len(t, stored.IsRead, 2)

	err = service.MarkRead(ctx, primitive.NewObjectID(), userA)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListByParticipantSortsByActivity(t *testing.T) {
	db := testDatabase(t)
	ctx := context.Background()
	service := NewNotificationService(New(db))

	communityID := primitive.NewObjectID()
	viewer := primitive.NewObjectID()
	other1, other2 := primitive.NewObjectID(), primitive.NewObjectID()

	older := chatNotification(communityID, viewer, other1)
	require.NoError(t, service.Create(ctx, older))
	newer := chatNotification(communityID, viewer, other2)
	require.NoError(t, service.Create(ctx, newer))
	t.Cleanup(func() {
		_, _ = command.DeleteMany(ctx, service.GetCollection("notifications"), bson.M{"communityId": communityID})
	})

	// A message on the older thread moves it to the top.
	require.NoError(t, service.AppendMessage(ctx, older.ID, primitive.NewObjectID(), other1))

	list, err := service.ListByParticipant(ctx, communityID, viewer)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[0].ID)
	assert.Equal(t, newer.ID, list[1].ID)

	// Non-participants see nothing.
	list, err = service.ListByParticipant(ctx, communityID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, list)
}
