package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post is a shared item offered inside a community. Post CRUD lives outside
// this subsystem; bookings and request-fulfillment notifications reference it
// read-only.
type Post struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Condition   string             `bson:"condition,omitempty" json:"condition,omitempty"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatorID   primitive.ObjectID `bson:"creatorId" json:"creatorId"`
	CommunityID primitive.ObjectID `bson:"communityId" json:"communityId"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
