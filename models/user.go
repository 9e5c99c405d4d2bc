package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User profile CRUD lives outside this subsystem; notifications read users to
// shape responses and to resolve push/email targets.
type User struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name               string               `bson:"name" json:"name"`
	Email              string               `bson:"email" json:"email"`
	ImageURL           string               `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	EmailNotifications bool                 `bson:"emailNotifications" json:"emailNotifications"`
	DeviceTokens       []string             `bson:"deviceTokens,omitempty" json:"deviceTokens,omitempty"`
	Communities        []primitive.ObjectID `bson:"communities,omitempty" json:"communities,omitempty"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}
