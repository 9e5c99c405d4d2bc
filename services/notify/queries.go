package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/sharehood/sharehoodback/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetNotification joins one notification with its booking, both participants
// and the full message history. The referenced post is joined at the API layer
// through the per-request batch loader. As a side effect the viewer's read
// flag is set with a targeted update, never a document save.
func (s *Service) GetNotification(ctx context.Context, viewerID, id primitive.ObjectID) (*NotificationView, error) {
	if viewerID.IsZero() {
		return nil, models.ErrUnauthenticated
	}

	notif, err := s.notifications.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !notif.HasParticipant(viewerID) {
		return nil, fmt.Errorf("user %s is not a participant of notification %s: %w", viewerID.Hex(), id.Hex(), models.ErrForbidden)
	}

	view := &NotificationView{Notification: notif}

	if notif.BookingID != nil {
		booking, err := s.bookings.GetByID(ctx, *notif.BookingID)
		if err != nil {
			return nil, err
		}
		view.Booking = booking
	}

	users, err := s.users.FindByIDs(ctx, notif.Participants)
	if err != nil {
		return nil, err
	}
	view.Users = users

	msgs, err := s.messages.ListByNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	view.Messages = msgs

	if err := s.notifications.MarkRead(ctx, id, viewerID); err != nil {
		return nil, err
	}
	notif.IsRead[viewerID.Hex()] = true

	return view, nil
}

// NotificationPreview is one entry of the community list: the notification
// with its messages truncated to the single most recent one.
type NotificationPreview struct {
	Notification *models.Notification `json:"notification"`
	Latest       *models.Message      `json:"latestMessage,omitempty"`
}

// ListNotifications returns the viewer's notifications in a community, newest
// activity first. Individual read flags are left alone; only the coarse
// unread hint for (viewer, community) is cleared.
func (s *Service) ListNotifications(ctx context.Context, viewerID, communityID primitive.ObjectID) ([]*NotificationPreview, error) {
	if viewerID.IsZero() {
		return nil, models.ErrUnauthenticated
	}

	notifs, err := s.notifications.ListByParticipant(ctx, communityID, viewerID)
	if err != nil {
		return nil, err
	}

	var latestIDs []primitive.ObjectID
	for _, n := range notifs {
		if len(n.Messages) > 0 {
			latestIDs = append(latestIDs, n.Messages[len(n.Messages)-1])
		}
	}
	latest, err := s.messages.FindByIDs(ctx, latestIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Message, len(latest))
	for _, m := range latest {
		byID[m.ID] = m
	}

	previews := make([]*NotificationPreview, 0, len(notifs))
	for _, n := range notifs {
		preview := &NotificationPreview{Notification: n}
		if len(n.Messages) > 0 {
			preview.Latest = byID[n.Messages[len(n.Messages)-1]]
		}
		previews = append(previews, preview)
	}

	if err := s.unread.Clear(ctx, viewerID.Hex(), communityID.Hex()); err != nil {
		log.Printf("NotifyService: unread index clear failed for %s: %v", viewerID.Hex(), err)
	}

	return previews, nil
}

// FindChatNotification is the pure dedup/prefetch lookup: no side effects,
// nil when the pair has no thread yet.
func (s *Service) FindChatNotification(ctx context.Context, viewerID, communityID, recipientID primitive.ObjectID) (*models.Notification, error) {
	if viewerID.IsZero() {
		return nil, models.ErrUnauthenticated
	}
	return s.notifications.FindChat(ctx, communityID, viewerID, recipientID)
}

// HasUnread reads the coarse unread hint for a community badge.
func (s *Service) HasUnread(ctx context.Context, viewerID, communityID primitive.ObjectID) (bool, error) {
	if viewerID.IsZero() {
		return false, models.ErrUnauthenticated
	}
	return s.unread.Get(ctx, viewerID.Hex(), communityID.Hex())
}

// SubscribeMessages attaches a live subscriber to a notification's message
// stream. Only participants may listen.
func (s *Service) SubscribeMessages(ctx context.Context, viewerID, notificationID primitive.ObjectID) (<-chan *models.Message, func(), error) {
	if viewerID.IsZero() {
		return nil, nil, models.ErrUnauthenticated
	}
	notif, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		return nil, nil, err
	}
	if !notif.HasParticipant(viewerID) {
		return nil, nil, fmt.Errorf("user %s is not a participant of notification %s: %w", viewerID.Hex(), notificationID.Hex(), models.ErrForbidden)
	}

	ch, cancel := s.bus.Subscribe(ctx, notificationID)
	return ch, cancel, nil
}
