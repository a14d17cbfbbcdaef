// Package access implements the scoping layer that decides which records a
// caller may see or mutate. Handlers resolve a Principal from the request;
// services ask this package for list filters and ownership verdicts.
package access

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Principal is the resolved caller identity and role set for a request.
// The zero value is an anonymous caller.
type Principal struct {
	ID      primitive.ObjectID
	IsAdmin bool
	Present bool // false for anonymous requests
}

// Anonymous is the principal of an unauthenticated request.
var Anonymous = Principal{}

// NewPrincipal builds an authenticated principal.
func NewPrincipal(id primitive.ObjectID, isAdmin bool) Principal {
	return Principal{ID: id, IsAdmin: isAdmin, Present: true}
}

// OwnerFilter returns the bson filter restricting a list query to records
// the principal may see. Admins get no restriction. Authenticated users are
// restricted to their own records. Anonymous callers get an impossible
// condition so list endpoints return empty rather than erroring.
func (p Principal) OwnerFilter(field string) bson.M {
	if p.IsAdmin {
		return bson.M{}
	}
	if p.Present {
		return bson.M{field: p.ID}
	}
	return bson.M{"_id": bson.M{"$exists": false}} // matches nothing
}

// CanAccess reports whether the principal may read/mutate a record owned by
// ownerID. A nil owner (guest-created record) is only reachable by admins.
func (p Principal) CanAccess(ownerID *primitive.ObjectID) bool {
	if p.IsAdmin {
		return true
	}
	if !p.Present || ownerID == nil {
		return false
	}
	// Compare as hex strings; the owner may have been decoded from either a
	// raw reference or an embedded (resolved) document.
	return ownerID.Hex() == p.ID.Hex()
}

// PropertyView names which audience a property list query serves.
type PropertyView string

const (
	// ViewDiscovery is the browse/search surface; gated by is_listed.
	ViewDiscovery PropertyView = "discovery"
	// ViewBooking is the booking-capable surface; gated by is_active.
	ViewBooking PropertyView = "booking"
)

// PropertyVisibilityFilter returns the flag filter for a property list
// query in the given view. Admins see both dimensions unfiltered.
func (p Principal) PropertyVisibilityFilter(view PropertyView) bson.M {
	if p.IsAdmin {
		return bson.M{}
	}
	switch view {
	case ViewBooking:
		return bson.M{"is_active": true}
	default:
		return bson.M{"is_listed": true}
	}
}
