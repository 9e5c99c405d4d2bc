package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sharehood/sharehoodback/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateMessageInput carries a new chat message. The recipient and community
// are derived from the notification, never trusted from the caller.
type CreateMessageInput struct {
	NotificationID primitive.ObjectID
	Text           string
}

// CreateMessage appends a message to a notification. The notification is
// loaded first so a bad id never leaves an orphaned message row, and only
// participants may write. The message-id push and the recipient's isRead flip
// land in one atomic document update; the sender's own flag stays untouched.
// Live subscribers get the message over the bus and the recipient gets a
// best-effort push preview.
func (s *Service) CreateMessage(ctx context.Context, senderID primitive.ObjectID, input CreateMessageInput) (*models.Message, error) {
	if senderID.IsZero() {
		return nil, models.ErrUnauthenticated
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("message text is empty: %w", models.ErrValidation)
	}

	notif, err := s.notifications.GetByID(ctx, input.NotificationID)
	if err != nil {
		return nil, err
	}
	if !notif.HasParticipant(senderID) {
		return nil, fmt.Errorf("user %s is not a participant of notification %s: %w", senderID.Hex(), input.NotificationID.Hex(), models.ErrForbidden)
	}
	recipientID := notif.OtherParticipant(senderID)

	msg := &models.Message{
		Text:           input.Text,
		SenderID:       senderID,
		NotificationID: input.NotificationID,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.notifications.AppendMessage(ctx, input.NotificationID, msg.ID, recipientID); err != nil {
		return nil, err
	}

	if err := s.unread.Set(ctx, recipientID.Hex(), notif.CommunityID.Hex()); err != nil {
		log.Printf("NotifyService: unread index update failed for %s: %v", recipientID.Hex(), err)
	}

	s.bus.Publish(ctx, input.NotificationID, msg)
	s.alerter.Push(ctx, notif.CommunityID.Hex(), input.Text, []primitive.ObjectID{recipientID})

	return msg, nil
}
