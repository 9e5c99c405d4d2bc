package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestChatKeyIsOrderIndependent(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	assert.Equal(t, ChatKey(a, b), ChatKey(b, a))
	assert.NotEqual(t, ChatKey(a, b), ChatKey(a, primitive.NewObjectID()))
}

func TestOtherParticipant(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	n := &Notification{Participants: []primitive.ObjectID{a, b}}

	assert.Equal(t, b, n.OtherParticipant(a))
	assert.Equal(t, a, n.OtherParticipant(b))
	assert.True(t, n.HasParticipant(a))
	assert.False(t, n.HasParticipant(primitive.NewObjectID()))
}

func TestBookingStatusStateMachine(t *testing.T) {
	assert.False(t, BookingStatusPending.IsTerminal())
	assert.True(t, BookingStatusAccepted.IsTerminal())
	assert.True(t, BookingStatusDenied.IsTerminal())
	assert.False(t, BookingStatus(7).IsValid())
}
