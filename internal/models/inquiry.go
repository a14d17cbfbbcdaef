package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InquiryType classifies a lead. Must match the referenced listing's purpose
// when a listing is referenced.
type InquiryType string

const (
	InquirySale       InquiryType = "sale"
	InquiryInvestment InquiryType = "investment"
)

// ValidInquiryType reports whether t is a known inquiry type.
func ValidInquiryType(t InquiryType) bool {
	return t == InquirySale || t == InquiryInvestment
}

// InquiryStatus is the lead lifecycle state.
type InquiryStatus string

const (
	InquiryPending   InquiryStatus = "pending"
	InquiryContacted InquiryStatus = "contacted"
	InquiryQualified InquiryStatus = "qualified"
	InquiryClosed    InquiryStatus = "closed"
	InquiryRejected  InquiryStatus = "rejected"
)

// ValidInquiryStatus reports whether s is a known inquiry status.
func ValidInquiryStatus(s InquiryStatus) bool {
	switch s {
	case InquiryPending, InquiryContacted, InquiryQualified, InquiryClosed, InquiryRejected:
		return true
	}
	return false
}

// InquiryPriority ranks leads for follow-up.
type InquiryPriority string

const (
	PriorityLow    InquiryPriority = "low"
	PriorityMedium InquiryPriority = "medium"
	PriorityHigh   InquiryPriority = "high"
)

// ValidInquiryPriority reports whether p is a known priority.
func ValidInquiryPriority(p InquiryPriority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ContactInfo is the lead's contact block.
type ContactInfo struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Phone string `bson:"phone" json:"phone"`
}

// SaleInquiryDetails holds sale-lead specifics.
type SaleInquiryDetails struct {
	Budget    string `bson:"budget,omitempty" json:"budget,omitempty"`
	Financing string `bson:"financing,omitempty" json:"financing,omitempty"`
	Message   string `bson:"message,omitempty" json:"message,omitempty"`
}

// InvestmentInquiryDetails holds investment-lead specifics.
type InvestmentInquiryDetails struct {
	InvestmentSize  string `bson:"investment_size,omitempty" json:"investment_size,omitempty"`
	CurrentExposure string `bson:"current_exposure,omitempty" json:"current_exposure,omitempty"`
	Message         string `bson:"message,omitempty" json:"message,omitempty"`
}

// Inquiry represents a non-dated sale/investment lead against a listing.
// The listing reference follows the same exclusive-or invariant as Booking.
// Exactly one of SaleInquiryDetails/InvestmentInquiryDetails is populated,
// matching InquiryType.
type Inquiry struct {
	ID                       primitive.ObjectID        `bson:"_id,omitempty" json:"id,omitempty"`
	PropertyID               *primitive.ObjectID       `bson:"property_id,omitempty" json:"property_id,omitempty"`
	PropertyDetails          *PropertySnapshot         `bson:"property_details,omitempty" json:"property_details,omitempty"`
	PropertyName             string                    `bson:"property_name" json:"property_name"`
	InquiryType              InquiryType               `bson:"inquiry_type" json:"inquiry_type"`
	ContactInfo              ContactInfo               `bson:"contact_info" json:"contact_info"`
	SaleInquiryDetails       *SaleInquiryDetails       `bson:"sale_inquiry_details,omitempty" json:"sale_inquiry_details,omitempty"`
	InvestmentInquiryDetails *InvestmentInquiryDetails `bson:"investment_inquiry_details,omitempty" json:"investment_inquiry_details,omitempty"`
	UserID                   *primitive.ObjectID       `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Status                   InquiryStatus             `bson:"status" json:"status"`
	Priority                 InquiryPriority           `bson:"priority" json:"priority"`
	AssignedTo               *primitive.ObjectID       `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	Notes                    string                    `bson:"notes,omitempty" json:"notes,omitempty"`
	RespondedAt              *time.Time                `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
	ClosedAt                 *time.Time                `bson:"closed_at,omitempty" json:"closed_at,omitempty"`
	RejectedAt               *time.Time                `bson:"rejected_at,omitempty" json:"rejected_at,omitempty"`
	CreatedAt                time.Time                 `bson:"created_at" json:"created_at"`
	UpdatedAt                time.Time                 `bson:"updated_at" json:"updated_at"`
}

// OwnerID yields the owning user's id.
func (i *Inquiry) OwnerID() *primitive.ObjectID {
	return i.UserID
}
