package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TourBooking represents a reservation against a Tour for a single date.
// Unlike property bookings there is no off-platform variant: TourID is
// always required, and so is the booking user.
type TourBooking struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	TourID             primitive.ObjectID `bson:"tour_id" json:"tour_id"`
	UserID             primitive.ObjectID `bson:"user_id" json:"user_id"`
	GuestInfo          GuestInfo          `bson:"guest_info" json:"guest_info"`
	TourDate           time.Time          `bson:"tour_date" json:"tour_date"`
	Guests             int                `bson:"guests" json:"guests"`
	TotalAmount        float64            `bson:"total_amount" json:"total_amount"` // guests × tour.StartingPrice
	SpecialRequests    string             `bson:"special_requests,omitempty" json:"special_requests,omitempty"`
	Status             BookingStatus      `bson:"status" json:"status"`
	PaymentStatus      PaymentStatus      `bson:"payment_status" json:"payment_status"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CancelledAt        *time.Time         `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CancellationReason string             `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}

// OwnerID yields the owning user's id.
func (b *TourBooking) OwnerID() *primitive.ObjectID {
	return &b.UserID
}
