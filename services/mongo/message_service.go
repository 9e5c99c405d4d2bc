package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/sharehood/sharehoodback/models"
	"github.com/sharehood/sharehoodback/services/mongo/command"
	"github.com/sharehood/sharehoodback/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageService owns the messages collection. Messages are append-only.
type MessageService struct {
	*MongoService
}

func NewMessageService(mongoService *MongoService) *MessageService {
	return &MessageService{MongoService: mongoService}
}

func (s *MessageService) Create(ctx context.Context, msg *models.Message) error {
	collection := s.GetCollection("messages")
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}
	msg.CreatedAt = time.Now()

	_, err := command.InsertOne(ctx, collection, msg)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListByNotification returns the full message history in chronological order.
func (s *MessageService) ListByNotification(ctx context.Context, notificationID primitive.ObjectID) ([]*models.Message, error) {
	collection := s.GetCollection("messages")

	filter := query.NewBuilder().Where("notificationId", notificationID).Build()
	opts := options.Find()
	opts.SetSort(bson.D{{Key: "createdAt", Value: 1}})

	var msgs []*models.Message
	err := query.FindMany(ctx, collection, filter, &msgs, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return msgs, nil
}

// FindByIDs batch-loads messages, used for the one-message previews of the
// notification list.
func (s *MessageService) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	collection := s.GetCollection("messages")

	filter := query.NewBuilder().WhereIn("_id", ids).Build()

	var msgs []*models.Message
	err := query.FindMany(ctx, collection, filter, &msgs)
	if err != nil {
		return nil, fmt.Errorf("failed to find messages: %w", err)
	}

	return msgs, nil
}
