package mongo

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sharehood/sharehoodback/models"
	"github.com/sharehood/sharehoodback/services/mongo/command"
	"github.com/sharehood/sharehoodback/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookingService reads and transitions bookings. Booking CRUD beyond the
// status state machine belongs to the surrounding platform.
type BookingService struct {
	*MongoService
}

func NewBookingService(mongoService *MongoService) *BookingService {
	return &BookingService{MongoService: mongoService}
}

func (s *BookingService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	collection := s.GetCollection("bookings")
	var booking models.Booking

	err := query.FindByID(ctx, collection, id, &booking)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("booking %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &booking, nil
}

// UpdateStatus transitions Pending -> Accepted|Denied. The filter matches only
// pending bookings, so a booking already in a terminal state is never moved
// again; the losing caller gets a validation error.
func (s *BookingService) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.BookingStatus, modifiedBy primitive.ObjectID) (*models.Booking, error) {
	if !status.IsTerminal() {
		return nil, fmt.Errorf("booking status %d is not a valid transition target: %w", status, models.ErrValidation)
	}

	collection := s.GetCollection("bookings")

	filter := bson.M{"_id": id, "status": models.BookingStatusPending}
	update := command.NewUpdateBuilder().
		Set("status", status).
		Set("lastModifiedBy", modifiedBy).
		Set("updatedAt", time.Now()).
		Build()

	result, err := command.UpdateOne(ctx, collection, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		// Either the booking is gone or it already reached a terminal state.
		existing, getErr := s.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, fmt.Errorf("booking %s already resolved with status %d: %w", id.Hex(), existing.Status, models.ErrValidation)
	}

	log.Printf("BookingService: Booking %s moved to status %d by %s", id.Hex(), status, modifiedBy.Hex())
	return s.GetByID(ctx, id)
}
