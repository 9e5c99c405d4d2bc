package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus int

const (
	BookingStatusPending BookingStatus = iota
	BookingStatusAccepted
	BookingStatusDenied
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusDenied:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further status transition is permitted.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusAccepted || s == BookingStatusDenied
}

type BookingDateType int

const (
	BookingDateASAP BookingDateType = iota
	BookingDateNoTimeframe
	BookingDateRange
)

// Booking is a request to borrow a post's item. Status only ever moves
// Pending -> Accepted or Pending -> Denied. DateNeed/DateReturn are set iff
// DateType is Range.
type Booking struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID         primitive.ObjectID `bson:"postId" json:"postId"`
	Status         BookingStatus      `bson:"status" json:"status"`
	DateType       BookingDateType    `bson:"dateType" json:"dateType"`
	DateNeed       *time.Time         `bson:"dateNeed,omitempty" json:"dateNeed,omitempty"`
	DateReturn     *time.Time         `bson:"dateReturn,omitempty" json:"dateReturn,omitempty"`
	BookerID       primitive.ObjectID `bson:"bookerId" json:"bookerId"`
	CommunityID    primitive.ObjectID `bson:"communityId" json:"communityId"`
	LastModifiedBy primitive.ObjectID `bson:"lastModifiedBy" json:"lastModifiedBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
