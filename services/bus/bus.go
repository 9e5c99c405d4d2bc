// Package bus is the in-process fan-out channel for newly created chat
// messages. Delivery is at-most-once and not persisted: subscribers only see
// messages published after they subscribed, and a slow subscriber loses
// messages rather than blocking the publisher.
package bus

import (
	"context"

	"github.com/sharehood/sharehoodback/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bus is injected into the components that publish or consume live messages,
// so tests can substitute a deterministic implementation.
type Bus interface {
	// Publish delivers msg to every current subscriber of the notification id.
	Publish(ctx context.Context, notificationID primitive.ObjectID, msg *models.Message)
	// Subscribe returns a channel of messages for one notification id and a
	// cancel function. The channel is closed on cancel or when ctx ends.
	Subscribe(ctx context.Context, notificationID primitive.ObjectID) (<-chan *models.Message, func())
}
