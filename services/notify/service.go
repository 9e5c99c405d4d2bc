// Package notify orchestrates the notification and messaging core: the three
// notification creation flows, message creation with read-state flips, booking
// status transitions, and the query/aggregation layer with its mark-seen side
// effects.
package notify

import (
	"context"

	"github.com/sharehood/sharehoodback/models"
	"github.com/sharehood/sharehoodback/services/bus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationStore is the durable notification record. Mutations are
// targeted field updates keyed by document id.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateWithBooking(ctx context.Context, n *models.Notification, b *models.Booking) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	FindChat(ctx context.Context, communityID, userA, userB primitive.ObjectID) (*models.Notification, error)
	AppendMessage(ctx context.Context, id, messageID, recipientID primitive.ObjectID) error
	MarkRead(ctx context.Context, id, viewerID primitive.ObjectID) error
	ReplaceReadState(ctx context.Context, id primitive.ObjectID, isRead map[string]bool) error
	ListByParticipant(ctx context.Context, communityID, userID primitive.ObjectID) ([]*models.Notification, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	ListByNotification(ctx context.Context, notificationID primitive.ObjectID) ([]*models.Message, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Message, error)
}

type BookingStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.BookingStatus, modifiedBy primitive.ObjectID) (*models.Booking, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
}

type PostStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
}

// UnreadIndex is the coarse per-user/per-community unread hint. It may lag
// the notification store; callers treat write errors as non-fatal.
type UnreadIndex interface {
	Set(ctx context.Context, userID, communityID string) error
	Get(ctx context.Context, userID, communityID string) (bool, error)
	Clear(ctx context.Context, userID, communityID string) error
}

// Alerter is the best-effort push/email collaborator; its methods never fail
// the calling mutation.
type Alerter interface {
	Push(ctx context.Context, scopeHint, text string, recipients []primitive.ObjectID)
	Mail(ctx context.Context, to, subject, body string)
}

type Service struct {
	notifications NotificationStore
	messages      MessageStore
	bookings      BookingStore
	users         UserStore
	posts         PostStore
	unread        UnreadIndex
	bus           bus.Bus
	alerter       Alerter
}

func NewService(
	notifications NotificationStore,
	messages MessageStore,
	bookings BookingStore,
	users UserStore,
	posts PostStore,
	unread UnreadIndex,
	b bus.Bus,
	alerter Alerter,
) *Service {
	return &Service{
		notifications: notifications,
		messages:      messages,
		bookings:      bookings,
		users:         users,
		posts:         posts,
		unread:        unread,
		bus:           b,
		alerter:       alerter,
	}
}

// NotificationView is the client-facing aggregate: the notification joined
// with its participants and, depending on kind, its booking, post and
// message history.
type NotificationView struct {
	Notification *models.Notification `json:"notification"`
	Users        []*models.User       `json:"users"`
	Booking      *models.Booking      `json:"booking,omitempty"`
	Post         *models.Post         `json:"post,omitempty"`
	Messages     []*models.Message    `json:"messages,omitempty"`
}
