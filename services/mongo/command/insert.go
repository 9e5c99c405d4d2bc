package command

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

func InsertOne[T any](ctx context.Context, collection *mongo.Collection, document T) (*mongo.InsertOneResult, error) {
	return collection.InsertOne(ctx, document)
}
