package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/sharehood/sharehoodback/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UpdateBookingInput carries a booking status decision. The alerted recipient
// and the community are derived from the notification, never trusted from the
// caller.
type UpdateBookingInput struct {
	BookingID      primitive.ObjectID
	NotificationID primitive.ObjectID
	Status         models.BookingStatus
	NotifyText     string
}

// UpdateBooking moves a pending booking to Accepted or Denied. Only the post
// owner may decide. The notification's read map is replaced wholesale: the
// actor has seen the outcome, the other participant has not.
func (s *Service) UpdateBooking(ctx context.Context, actorID primitive.ObjectID, input UpdateBookingInput) (*models.Booking, error) {
	if actorID.IsZero() {
		return nil, models.ErrUnauthenticated
	}

	notif, err := s.notifications.GetByID(ctx, input.NotificationID)
	if err != nil {
		return nil, err
	}
	if notif.BookingID == nil || *notif.BookingID != input.BookingID {
		return nil, fmt.Errorf("notification %s does not reference booking %s: %w", input.NotificationID.Hex(), input.BookingID.Hex(), models.ErrValidation)
	}
	if !notif.HasParticipant(actorID) {
		return nil, fmt.Errorf("user %s is not a participant of notification %s: %w", actorID.Hex(), input.NotificationID.Hex(), models.ErrForbidden)
	}
	recipientID := notif.OtherParticipant(actorID)

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, booking.PostID)
	if err != nil {
		return nil, err
	}
	if post.CreatorID != actorID {
		return nil, fmt.Errorf("user %s does not own post %s: %w", actorID.Hex(), post.ID.Hex(), models.ErrForbidden)
	}

	updated, err := s.bookings.UpdateStatus(ctx, input.BookingID, input.Status, actorID)
	if err != nil {
		return nil, err
	}

	// A status change resets both read entries deterministically.
	isRead := map[string]bool{
		recipientID.Hex(): false,
		actorID.Hex():     true,
	}
	if err := s.notifications.ReplaceReadState(ctx, input.NotificationID, isRead); err != nil {
		return nil, err
	}

	if err := s.unread.Set(ctx, recipientID.Hex(), notif.CommunityID.Hex()); err != nil {
		log.Printf("NotifyService: unread index update failed for %s: %v", recipientID.Hex(), err)
	}

	s.alerter.Push(ctx, notif.CommunityID.Hex(), input.NotifyText, []primitive.ObjectID{recipientID})
	if recipient, err := s.users.GetByID(ctx, recipientID); err == nil {
		if recipient.EmailNotifications {
			s.alerter.Mail(ctx, recipient.Email, "Your booking request was answered", input.NotifyText)
		}
	} else {
		log.Printf("NotifyService: could not load booking recipient %s for email: %v", recipientID.Hex(), err)
	}

	return updated, nil
}
