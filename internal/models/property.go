package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PropertyPurpose classifies what a property is offered for. The purpose
// gates which detail block is meaningful and which inquiry/booking types are
// valid against the listing.
type PropertyPurpose string

const (
	PurposeSale       PropertyPurpose = "sale"
	PurposeRental     PropertyPurpose = "rental"
	PurposeInvestment PropertyPurpose = "investment"
	PurposeTour       PropertyPurpose = "tour"
)

// ValidPurpose reports whether p is one of the known purposes.
func ValidPurpose(p PropertyPurpose) bool {
	switch p {
	case PurposeSale, PurposeRental, PurposeInvestment, PurposeTour:
		return true
	}
	return false
}

// SaleDetails holds fields meaningful only for sale listings.
type SaleDetails struct {
	TitleDocument string `bson:"title_document,omitempty" json:"title_document,omitempty"`
	Installments  bool   `bson:"installments" json:"installments"`
	DownPayment   string `bson:"down_payment,omitempty" json:"down_payment,omitempty"`
}

// RentalDetails holds fields meaningful only for rental listings.
type RentalDetails struct {
	MinStayNights int    `bson:"min_stay_nights,omitempty" json:"min_stay_nights,omitempty"`
	Furnished     bool   `bson:"furnished" json:"furnished"`
	LeaseTerms    string `bson:"lease_terms,omitempty" json:"lease_terms,omitempty"`
}

// InvestmentDetails holds fields meaningful only for investment listings.
// Required whenever the property purpose is "investment".
type InvestmentDetails struct {
	PropertyType   string `bson:"property_type,omitempty" json:"property_type,omitempty"`
	ExpectedROI    string `bson:"expected_roi,omitempty" json:"expected_roi,omitempty"`
	InvestmentTerm string `bson:"investment_term,omitempty" json:"investment_term,omitempty"`
	MinimumEntry   string `bson:"minimum_entry,omitempty" json:"minimum_entry,omitempty"`
}

// Property represents a listing available for discovery and/or booking.
//
// IsActive and IsListed are independent flags: IsListed governs appearance
// in the discovery view, IsActive governs appearance in the booking-capable
// view. All four combinations are valid.
type Property struct {
	ID                primitive.ObjectID     `bson:"_id,omitempty" json:"id,omitempty"`
	Title             string                 `bson:"title" json:"title"`
	Description       string                 `bson:"description,omitempty" json:"description,omitempty"`
	Location          string                 `bson:"location" json:"location"`
	PropertyPurpose   PropertyPurpose        `bson:"property_purpose" json:"property_purpose"`
	Price             string                 `bson:"price" json:"price"` // Display string, e.g. "$3,650"
	PriceNumeric      *float64               `bson:"price_numeric,omitempty" json:"price_numeric,omitempty"`
	Size              string                 `bson:"size,omitempty" json:"size,omitempty"` // Display string, e.g. "450 sqm"
	IsActive          bool                   `bson:"is_active" json:"is_active"`
	IsListed          bool                   `bson:"is_listed" json:"is_listed"`
	Amenities         map[string]interface{} `bson:"amenities,omitempty" json:"amenities,omitempty"`
	SaleDetails       *SaleDetails           `bson:"sale_details,omitempty" json:"sale_details,omitempty"`
	RentalDetails     *RentalDetails         `bson:"rental_details,omitempty" json:"rental_details,omitempty"`
	InvestmentDetails *InvestmentDetails     `bson:"investment_details,omitempty" json:"investment_details,omitempty"`
	Images            []string               `bson:"images" json:"images"` // Media host URLs
	CreatedBy         primitive.ObjectID     `bson:"created_by" json:"created_by"`
	CreatedAt         time.Time              `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time              `bson:"updated_at" json:"updated_at"`
}
