package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BookingStatus is the lifecycle state of a reservation.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
	BookingRejected  BookingStatus = "rejected"
)

// ValidBookingStatus reports whether s is one of the five lifecycle states.
func ValidBookingStatus(s BookingStatus) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted, BookingRejected:
		return true
	}
	return false
}

// PaymentStatus tracks how much of a booking has been paid.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// BookingType distinguishes the commercial shape of a property reservation.
// Note: "tour" here is a tour-typed property booking, distinct from a
// TourBooking against a Tour entity.
type BookingType string

const (
	BookingTypeShortlet BookingType = "shortlet"
	BookingTypeLongTerm BookingType = "long-term"
	BookingTypeTour     BookingType = "tour"
)

// ValidBookingType reports whether t is a known booking type.
func ValidBookingType(t BookingType) bool {
	switch t {
	case BookingTypeShortlet, BookingTypeLongTerm, BookingTypeTour:
		return true
	}
	return false
}

// GuestInfo is the contact block required on every booking regardless of
// whether the caller is authenticated.
type GuestInfo struct {
	FullName string `bson:"full_name" json:"full_name"`
	Email    string `bson:"email" json:"email"`
	Phone    string `bson:"phone" json:"phone"`
}

// Booking represents a dated reservation against a property. It references
// either an existing Property (PropertyID) or an embedded snapshot
// (PropertyDetails) for off-platform properties; exactly one of the two is
// set, enforced by ValidateListingRef before persistence.
type Booking struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	PropertyID         *primitive.ObjectID `bson:"property_id,omitempty" json:"property_id,omitempty"`
	PropertyDetails    *PropertySnapshot   `bson:"property_details,omitempty" json:"property_details,omitempty"`
	UserID             *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"` // Absent for guest bookings
	GuestInfo          GuestInfo           `bson:"guest_info" json:"guest_info"`
	CheckIn            time.Time           `bson:"check_in" json:"check_in"`
	CheckOut           time.Time           `bson:"check_out" json:"check_out"`
	Nights             int                 `bson:"nights" json:"nights"`
	Guests             int                 `bson:"guests" json:"guests"`
	TotalAmount        float64             `bson:"total_amount" json:"total_amount"`
	BookingType        BookingType         `bson:"booking_type" json:"booking_type"`
	SpecialRequests    string              `bson:"special_requests,omitempty" json:"special_requests,omitempty"`
	Status             BookingStatus       `bson:"status" json:"status"`
	PaymentStatus      PaymentStatus       `bson:"payment_status" json:"payment_status"`
	Notes              string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CancelledAt        *time.Time          `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
	CancellationReason string              `bson:"cancellation_reason,omitempty" json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time           `bson:"updated_at" json:"updated_at"`
}

// OwnerID yields the owning user's id regardless of how the record was
// loaded. This is the single place ownership is derived from a booking.
func (b *Booking) OwnerID() *primitive.ObjectID {
	return b.UserID
}
