package mongo

import (
	"context"
	"fmt"

	"github.com/sharehood/sharehoodback/models"
	"github.com/sharehood/sharehoodback/services/mongo/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PostService reads posts. Post CRUD lives outside this subsystem.
type PostService struct {
	*MongoService
}

func NewPostService(mongoService *MongoService) *PostService {
	return &PostService{MongoService: mongoService}
}

func (s *PostService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	collection := s.GetCollection("posts")
	var post models.Post

	err := query.FindByID(ctx, collection, id, &post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("post %s: %w", id.Hex(), models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return &post, nil
}

func (s *PostService) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Post, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	collection := s.GetCollection("posts")

	filter := query.NewBuilder().WhereIn("_id", ids).Build()

	var posts []*models.Post
	err := query.FindMany(ctx, collection, filter, &posts)
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}

	return posts, nil
}
