package mongo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sharehood/sharehoodback/models"
	"github.com/sharehood/sharehoodback/services/mongo/command"
	"github.com/sharehood/sharehoodback/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationService owns the notifications collection. All read-state and
// message-list mutations go through targeted field updates on the document id;
// there is no load-then-save path.
type NotificationService struct {
	*MongoService
}

func NewNotificationService(mongoService *MongoService) *NotificationService {
	return &NotificationService{MongoService: mongoService}
}

// EnsureIndexes creates the chat dedup index and the list index. The dedup
// index is partial and unique: one chat thread per (community, user pair).
func (s *NotificationService) EnsureIndexes(ctx context.Context) error {
	collection := s.GetCollection("notifications")

	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "communityId", Value: 1}, {Key: "chatKey", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"kind": models.NotificationKindChat}),
		},
		{
			Keys: bson.D{{Key: "communityId", Value: 1}, {Key: "participants", Value: 1}, {Key: "updatedAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create notification indexes: %w", err)
	}
	return nil
}

func (s *NotificationService) Create(ctx context.Context, notif *models.Notification) error {
	collection := s.GetCollection("notifications")
	now := time.Now()
	notif.CreatedAt = now
	notif.UpdatedAt = now
	if notif.ID.IsZero() {
		notif.ID = primitive.NewObjectID()
	}

	_, err := command.InsertOne(ctx, collection, notif)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	log.Printf("NotificationService: Created notification %s (kind %d)", notif.ID.Hex(), notif.Kind)
	return nil
}

// CreateWithBooking inserts the booking and its notification together. Both
// writes run inside one session transaction when the deployment supports it;
// standalone mongod gets sequential writes with booking first, matching the
// observable order of the transactional path.
func (s *NotificationService) CreateWithBooking(ctx context.Context, notif *models.Notification, booking *models.Booking) error {
	now := time.Now()
	if booking.ID.IsZero() {
		booking.ID = primitive.NewObjectID()
	}
	booking.CreatedAt = now
	booking.UpdatedAt = now
	id := booking.ID
	notif.BookingID = &id

	session, err := s.GetDatabase().Client().StartSession()
	if err != nil {
		return s.createBookingSequential(ctx, notif, booking)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := command.InsertOne(sc, s.GetCollection("bookings"), booking); err != nil {
			return nil, err
		}
		notif.CreatedAt = now
		notif.UpdatedAt = now
		if notif.ID.IsZero() {
			notif.ID = primitive.NewObjectID()
		}
		if _, err := command.InsertOne(sc, s.GetCollection("notifications"), notif); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		if transactionsUnsupported(err) {
			return s.createBookingSequential(ctx, notif, booking)
		}
		return fmt.Errorf("failed to create booking notification: %w", err)
	}

	log.Printf("NotificationService: Created booking %s with notification %s", booking.ID.Hex(), notif.ID.Hex())
	return nil
}

func (s *NotificationService) createBookingSequential(ctx context.Context, notif *models.Notification, booking *models.Booking) error {
	if _, err := command.InsertOne(ctx, s.GetCollection("bookings"), booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return s.Create(ctx, notif)
}

func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// Code 20 (IllegalOperation) is what a standalone mongod answers to
		// transaction numbers.
		return cmdErr.Code == 20
	}
	return false
}

func (s *NotificationService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	collection := s.GetCollection("notifications")
	var notif models.Notification

	err := query.FindByID(ctx, collection, id, &notif)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("notification %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}

	return &notif, nil
}

// FindChat looks up the chat thread for a participant pair in a community.
// Returns (nil, nil) when no thread exists.
func (s *NotificationService) FindChat(ctx context.Context, communityID, userA, userB primitive.ObjectID) (*models.Notification, error) {
	collection := s.GetCollection("notifications")

	filter := query.NewBuilder().
		Where("communityId", communityID).
		Where("kind", models.NotificationKindChat).
		Where("chatKey", models.ChatKey(userA, userB)).
		Build()

	var notif models.Notification
	err := query.FindOne(ctx, collection, filter, &notif)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find chat notification: %w", err)
	}

	return &notif, nil
}

// IsDuplicateChat reports whether the error is the unique-index violation
// raised when two first messages race to create the same chat thread.
func IsDuplicateChat(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// AppendMessage pushes the message id and clears the recipient's read flag in
// one UpdateOne, so concurrent appends to the same notification never drop an
// entry.
func (s *NotificationService) AppendMessage(ctx context.Context, id, messageID, recipientID primitive.ObjectID) error {
	collection := s.GetCollection("notifications")

	update := command.NewUpdateBuilder().
		Push("messages", messageID).
		Set("isRead."+recipientID.Hex(), false).
		Set("updatedAt", time.Now()).
		Build()

	result, err := command.UpdateByID(ctx, collection, id, update)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id.Hex(), models.ErrNotFound)
	}

	return nil
}

// MarkRead flips only the viewer's read flag. A targeted $set keeps a
// concurrent message append intact.
func (s *NotificationService) MarkRead(ctx context.Context, id, viewerID primitive.ObjectID) error {
	collection := s.GetCollection("notifications")

	update := command.NewUpdateBuilder().
		Set("isRead."+viewerID.Hex(), true).
		Build()

	result, err := command.UpdateByID(ctx, collection, id, update)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id.Hex(), models.ErrNotFound)
	}

	return nil
}

// ReplaceReadState overwrites the whole isRead map. Used by booking status
// changes, which reset both entries deterministically.
func (s *NotificationService) ReplaceReadState(ctx context.Context, id primitive.ObjectID, isRead map[string]bool) error {
	collection := s.GetCollection("notifications")

	update := command.NewUpdateBuilder().
		Set("isRead", isRead).
		Set("updatedAt", time.Now()).
		Build()

	result, err := command.UpdateByID(ctx, collection, id, update)
	if err != nil {
		return fmt.Errorf("failed to replace read state: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("notification %s: %w", id.Hex(), models.ErrNotFound)
	}

	return nil
}

// ListByParticipant returns the user's notifications in a community, newest
// activity first.
func (s *NotificationService) ListByParticipant(ctx context.Context, communityID, userID primitive.ObjectID) ([]*models.Notification, error) {
	collection := s.GetCollection("notifications")

	filter := query.NewBuilder().
		Where("communityId", communityID).
		Where("participants", userID).
		Build()

	opts := options.Find()
	opts.SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	var notifs []*models.Notification
	err := query.FindMany(ctx, collection, filter, &notifs, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return notifs, nil
}
