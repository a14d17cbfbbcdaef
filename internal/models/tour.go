package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tour represents a guided tour offering bookable per guest.
type Tour struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Location      string             `bson:"location,omitempty" json:"location,omitempty"`
	StartingPrice float64            `bson:"starting_price" json:"starting_price"` // Per guest
	MinGuests     int                `bson:"min_guests" json:"min_guests"`
	MaxGuests     int                `bson:"max_guests" json:"max_guests"`
	IsActive      bool               `bson:"is_active" json:"is_active"`
	Images        []string           `bson:"images" json:"images"`
	CreatedBy     primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
