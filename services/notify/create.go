package notify

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sharehood/sharehoodback/models"
	mongosvc "github.com/sharehood/sharehoodback/services/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingInput is the nested payload for booking notifications.
type BookingInput struct {
	PostID     primitive.ObjectID
	DateType   models.BookingDateType
	DateNeed   *time.Time
	DateReturn *time.Time
}

// CreateNotificationInput is the single entry point for all three flows.
type CreateNotificationInput struct {
	Kind        models.NotificationKind
	CommunityID primitive.ObjectID
	RecipientID primitive.ObjectID
	Booking     *BookingInput       // kind = booking
	PostID      *primitive.ObjectID // kind = request fulfillment
}

// CreateNotification runs one of the three creation flows. Chat creation is
// idempotent per (community, participant pair); booking creation owns the
// booking insert; request fulfillment references the fulfilling post. All
// flows end by flipping the recipient's unread flag and returning the
// notification with both participant users.
func (s *Service) CreateNotification(ctx context.Context, requesterID primitive.ObjectID, input CreateNotificationInput) (*NotificationView, error) {
	if requesterID.IsZero() {
		return nil, models.ErrUnauthenticated
	}
	if !input.Kind.IsValid() {
		return nil, fmt.Errorf("unknown notification kind %d: %w", input.Kind, models.ErrValidation)
	}

	recipient, err := s.users.GetByID(ctx, input.RecipientID)
	if err != nil {
		return nil, err
	}

	notif := &models.Notification{
		Kind:         input.Kind,
		CommunityID:  input.CommunityID,
		Participants: []primitive.ObjectID{requesterID, input.RecipientID},
		Messages:     []primitive.ObjectID{},
		IsRead: map[string]bool{
			requesterID.Hex():       false,
			input.RecipientID.Hex(): false,
		},
	}

	// Alerts go out only after every fallible step succeeded; a failed
	// creation must never page the recipient.
	var alert func()

	switch input.Kind {
	case models.NotificationKindChat:
		existing, err := s.createChat(ctx, requesterID, input, notif)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			// Idempotent dedup: no write happened, so no unread flip either.
			users, err := s.users.FindByIDs(ctx, existing.Participants)
			if err != nil {
				return nil, err
			}
			return &NotificationView{Notification: existing, Users: users}, nil
		}

	case models.NotificationKindBooking:
		booking, err := s.createBooking(ctx, requesterID, input, notif)
		if err != nil {
			return nil, err
		}
		bookingID := booking.ID
		alert = func() {
			s.alerter.Push(ctx, input.CommunityID.Hex(), "You have a new booking request", []primitive.ObjectID{input.RecipientID})
			if recipient.EmailNotifications {
				s.alerter.Mail(ctx, recipient.Email,
					"New booking request",
					fmt.Sprintf("You received a new booking request (booking %s). Open your notifications to respond.", bookingID.Hex()))
			}
		}

	case models.NotificationKindRequestFulfillment:
		if input.PostID == nil {
			return nil, fmt.Errorf("request fulfillment requires a post id: %w", models.ErrValidation)
		}
		post, err := s.posts.GetByID(ctx, *input.PostID)
		if err != nil {
			return nil, err
		}
		id := post.ID
		notif.PostID = &id
		if err := s.notifications.Create(ctx, notif); err != nil {
			return nil, err
		}
		alert = func() {
			s.alerter.Push(ctx, input.CommunityID.Hex(), "Someone shared an item for your request", []primitive.ObjectID{input.RecipientID})
		}
	}

	if err := s.unread.Set(ctx, input.RecipientID.Hex(), input.CommunityID.Hex()); err != nil {
		log.Printf("NotifyService: unread index update failed for %s: %v", input.RecipientID.Hex(), err)
	}

	users, err := s.users.FindByIDs(ctx, notif.Participants)
	if err != nil {
		return nil, err
	}

	if alert != nil {
		alert()
	}
	return &NotificationView{Notification: notif, Users: users}, nil
}

// createChat returns the existing thread when the pair already has one, nil
// when a new notification was inserted. Two racing first messages are settled
// by the unique dedup index: the loser re-reads the winner's document.
func (s *Service) createChat(ctx context.Context, requesterID primitive.ObjectID, input CreateNotificationInput, notif *models.Notification) (*models.Notification, error) {
	existing, err := s.notifications.FindChat(ctx, input.CommunityID, requesterID, input.RecipientID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	notif.ChatKey = models.ChatKey(requesterID, input.RecipientID)
	if err := s.notifications.Create(ctx, notif); err != nil {
		if mongosvc.IsDuplicateChat(err) {
			return s.notifications.FindChat(ctx, input.CommunityID, requesterID, input.RecipientID)
		}
		return nil, err
	}
	return nil, nil
}

func (s *Service) createBooking(ctx context.Context, requesterID primitive.ObjectID, input CreateNotificationInput, notif *models.Notification) (*models.Booking, error) {
	if input.Booking == nil {
		return nil, fmt.Errorf("booking notification requires a booking payload: %w", models.ErrValidation)
	}

	booking := &models.Booking{
		PostID:         input.Booking.PostID,
		Status:         models.BookingStatusPending,
		DateType:       input.Booking.DateType,
		BookerID:       requesterID,
		CommunityID:    input.CommunityID,
		LastModifiedBy: requesterID,
	}

	if input.Booking.DateType == models.BookingDateRange {
		if input.Booking.DateNeed == nil || input.Booking.DateReturn == nil {
			return nil, fmt.Errorf("date range booking requires dateNeed and dateReturn: %w", models.ErrValidation)
		}
		if input.Booking.DateReturn.Before(*input.Booking.DateNeed) {
			return nil, fmt.Errorf("dateReturn precedes dateNeed: %w", models.ErrValidation)
		}
		booking.DateNeed = input.Booking.DateNeed
		booking.DateReturn = input.Booking.DateReturn
	}

	// The post must exist before any write happens.
	if _, err := s.posts.GetByID(ctx, input.Booking.PostID); err != nil {
		return nil, err
	}

	if err := s.notifications.CreateWithBooking(ctx, notif, booking); err != nil {
		return nil, err
	}
	return booking, nil
}
