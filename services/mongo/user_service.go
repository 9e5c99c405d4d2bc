package mongo

import (
	"context"
	"fmt"

	"github.com/sharehood/sharehoodback/models"
	"github.com/sharehood/sharehoodback/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserService reads user profiles. Account management lives outside this
// subsystem.
type UserService struct {
	*MongoService
}

func NewUserService(mongoService *MongoService) *UserService {
	return &UserService{MongoService: mongoService}
}

func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	collection := s.GetCollection("users")
	var user models.User

	err := query.FindByID(ctx, collection, id, &user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("user %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

func (s *UserService) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	collection := s.GetCollection("users")

	filter := query.NewBuilder().WhereIn("_id", ids).Build()

	var users []*models.User
	err := query.FindMany(ctx, collection, filter, &users)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}

	return users, nil
}
