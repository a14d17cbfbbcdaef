package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/apperrors"
)

// PropertySnapshot is an embedded, non-referential copy of listing-like data
// used when a booking or inquiry targets an off-platform (agent) property.
type PropertySnapshot struct {
	Name        string `bson:"name" json:"name"`
	Location    string `bson:"location" json:"location"`
	Price       string `bson:"price" json:"price"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	AgentName   string `bson:"agent_name,omitempty" json:"agent_name,omitempty"`
	AgentPhone  string `bson:"agent_phone,omitempty" json:"agent_phone,omitempty"`
}

// ValidateListingRefExclusive enforces the exclusive-or invariant shared by
// bookings and inquiries: exactly one of propertyID / snapshot must be set,
// never both, never neither.
func ValidateListingRefExclusive(propertyID *primitive.ObjectID, snapshot *PropertySnapshot) error {
	hasID := propertyID != nil && !propertyID.IsZero()
	hasSnapshot := snapshot != nil

	if hasID && hasSnapshot {
		return apperrors.NewValidation("property", "provide either propertyId or propertyDetails, not both")
	}
	if !hasID && !hasSnapshot {
		return apperrors.NewValidation("property", "either propertyId or propertyDetails is required")
	}
	return nil
}

// ValidateSnapshot checks that an embedded snapshot carries at least name,
// location and price.
func ValidateSnapshot(snapshot *PropertySnapshot) error {
	if snapshot == nil {
		return nil
	}
	if snapshot.Name == "" {
		return apperrors.NewValidation("propertyDetails.name", "name is required")
	}
	if snapshot.Location == "" {
		return apperrors.NewValidation("propertyDetails.location", "location is required")
	}
	if snapshot.Price == "" {
		return apperrors.NewValidation("propertyDetails.price", "price is required")
	}
	return nil
}

// ValidateListingRef combines the exclusive-or check with snapshot
// completeness, for callers that do not need to interleave other checks.
func ValidateListingRef(propertyID *primitive.ObjectID, snapshot *PropertySnapshot) error {
	if err := ValidateListingRefExclusive(propertyID, snapshot); err != nil {
		return err
	}
	return ValidateSnapshot(snapshot)
}
