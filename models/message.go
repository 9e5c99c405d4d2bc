package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is a single chat message. Immutable once created; owned by its
// parent notification but stored separately for append efficiency.
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Text           string             `bson:"text" json:"text"`
	SenderID       primitive.ObjectID `bson:"senderId" json:"senderId"`
	NotificationID primitive.ObjectID `bson:"notificationId" json:"notificationId"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
