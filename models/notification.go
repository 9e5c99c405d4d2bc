package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationKind int

const (
	NotificationKindChat NotificationKind = iota
	NotificationKindBooking
	NotificationKindRequestFulfillment
)

func (k NotificationKind) IsValid() bool {
	switch k {
	case NotificationKindChat, NotificationKindBooking, NotificationKindRequestFulfillment:
		return true
	default:
		return false
	}
}

// Notification is a cross-user interaction between exactly two participants
// in one community: a chat thread, a booking request or a request-fulfillment
// announcement. IsRead is keyed by participant ObjectID hex and always holds
// exactly the two participant ids.
type Notification struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Kind         NotificationKind     `bson:"kind" json:"kind"`
	CommunityID  primitive.ObjectID   `bson:"communityId" json:"communityId"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	// ChatKey is the order-independent dedup key for chat threads, set only
	// when Kind is chat. A unique partial index over (communityId, chatKey)
	// guarantees at most one thread per user pair per community.
	ChatKey   string               `bson:"chatKey,omitempty" json:"-"`
	BookingID *primitive.ObjectID  `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	PostID    *primitive.ObjectID  `bson:"postId,omitempty" json:"postId,omitempty"`
	Messages  []primitive.ObjectID `bson:"messages" json:"messages"`
	IsRead    map[string]bool      `bson:"isRead" json:"isRead"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ChatKey builds the order-independent dedup key for a participant pair.
func ChatKey(a, b primitive.ObjectID) string {
	ha, hb := a.Hex(), b.Hex()
	if strings.Compare(ha, hb) > 0 {
		ha, hb = hb, ha
	}
	return ha + ":" + hb
}

// HasParticipant reports whether the user is one of the two participants.
func (n *Notification) HasParticipant(userID primitive.ObjectID) bool {
	for _, p := range n.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// OtherParticipant returns the participant that is not the viewer. Falls back
// to the viewer itself for malformed documents so callers never index out of
// range.
func (n *Notification) OtherParticipant(viewerID primitive.ObjectID) primitive.ObjectID {
	for _, p := range n.Participants {
		if p != viewerID {
			return p
		}
	}
	return viewerID
}
