package services

import (
	"context"
	"log"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/access"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/apperrors"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/config"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/db"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/notify"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/utils"
)

const bookingsCollection = "bookings"

// CreateBookingInput carries the client-supplied fields of a new property
// booking. Dates arrive as strings so the engine owns parse failures.
type CreateBookingInput struct {
	PropertyID      *primitive.ObjectID      `json:"property_id"`
	PropertyDetails *models.PropertySnapshot `json:"property_details"`
	GuestInfo       models.GuestInfo         `json:"guest_info"`
	CheckIn         string                   `json:"check_in"`
	CheckOut        string                   `json:"check_out"`
	Guests          int                      `json:"guests"`
	BookingType     models.BookingType       `json:"booking_type"`
	SpecialRequests string                   `json:"special_requests"`
}

// BookingListFilter narrows a booking list query.
type BookingListFilter struct {
	Status      models.BookingStatus
	BookingType models.BookingType
}

// UpdateBookingStatusInput is the admin-side lifecycle transition.
type UpdateBookingStatusInput struct {
	Status models.BookingStatus `json:"status"`
	Notes  string               `json:"notes"`
}

type IBookingService interface {
	CreateBooking(ctx context.Context, principal access.Principal, input CreateBookingInput) (*models.Booking, error)
	ListBookings(ctx context.Context, principal access.Principal, filter BookingListFilter, page PageRequest) ([]models.Booking, PageResult, error)
	GetBooking(ctx context.Context, principal access.Principal, id primitive.ObjectID) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, principal access.Principal, id primitive.ObjectID, input UpdateBookingStatusInput) (*models.Booking, error)
	CancelBooking(ctx context.Context, principal access.Principal, id primitive.ObjectID, reason string) (*models.Booking, error)
}

type bookingService struct {
	db       *mongo.Database
	cfg      *config.Config
	notifier notify.Notifier
}

func NewBookingService(database *mongo.Database, cfg *config.Config, notifier notify.Notifier) IBookingService {
	return &bookingService{db: database, cfg: cfg, notifier: notifier}
}

// CreateBooking validates and persists a new reservation. Validation is
// fail-fast: required fields, then the listing reference, then guest
// contact, then resolution against the catalog, then date arithmetic.
func (s *bookingService) CreateBooking(ctx context.Context, principal access.Principal, input CreateBookingInput) (*models.Booking, error) {
	if input.Guests < 1 {
		return nil, apperrors.NewValidation("guests", "at least one guest is required")
	}
	if input.BookingType == "" {
		return nil, apperrors.NewValidation("booking_type", "booking_type is required")
	}
	if !models.ValidBookingType(input.BookingType) {
		return nil, apperrors.NewValidation("booking_type", "unknown booking type: "+string(input.BookingType))
	}
	if err := models.ValidateListingRefExclusive(input.PropertyID, input.PropertyDetails); err != nil {
		return nil, err
	}
	if err := validateGuestInfo(input.GuestInfo); err != nil {
		return nil, err
	}
	if len(input.SpecialRequests) > s.cfg.MaxSpecialRequests {
		return nil, apperrors.NewValidation("special_requests", "special requests text is too long")
	}

	// Resolve the price source: a known listing or the embedded snapshot.
	var price float64
	if input.PropertyID != nil {
		property, err := s.findProperty(ctx, *input.PropertyID)
		if err != nil {
			return nil, err
		}
		price = propertyPrice(property)
	} else {
		if err := models.ValidateSnapshot(input.PropertyDetails); err != nil {
			return nil, err
		}
		price = utils.NumericValue(input.PropertyDetails.Price)
	}

	checkIn, err := parseDate("check_in", input.CheckIn)
	if err != nil {
		return nil, err
	}
	checkOut, err := parseDate("check_out", input.CheckOut)
	if err != nil {
		return nil, err
	}
	if !checkOut.After(checkIn) {
		return nil, apperrors.NewValidation("check_out", "check_out must be after check_in")
	}
	if checkIn.Before(today()) {
		return nil, apperrors.NewValidation("check_in", "check_in cannot be in the past")
	}

	if input.PropertyID != nil {
		if err := s.checkOverlap(ctx, *input.PropertyID, checkIn, checkOut); err != nil {
			return nil, err
		}
	}

	nights := calcNights(checkIn, checkOut)
	total := roundMoney(float64(nights) * price / s.cfg.AnnualizedPriceBasis)

	now := time.Now().UTC()
	booking := &models.Booking{
		PropertyID:      input.PropertyID,
		PropertyDetails: input.PropertyDetails,
		GuestInfo:       input.GuestInfo,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Nights:          nights,
		Guests:          input.Guests,
		TotalAmount:     total,
		BookingType:     input.BookingType,
		SpecialRequests: input.SpecialRequests,
		Status:          models.BookingPending,
		PaymentStatus:   models.PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if principal.Present {
		id := principal.ID
		booking.UserID = &id
	}

	err = db.Try(func() error {
		res, err := s.db.Collection(bookingsCollection).InsertOne(ctx, booking)
		if err != nil {
			return err
		}
		booking.ID = res.InsertedID.(primitive.ObjectID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, booking, notify.TemplateBookingReceived)
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, principal access.Principal, filter BookingListFilter, page PageRequest) ([]models.Booking, PageResult, error) {
	page = page.Normalize(s.cfg.DefaultPageLimit, s.cfg.MaxPageLimit)

	query := principal.OwnerFilter("user_id")
	if filter.Status != "" {
		if !models.ValidBookingStatus(filter.Status) {
			return nil, PageResult{}, apperrors.NewValidation("status", "unknown booking status: "+string(filter.Status))
		}
		query["status"] = filter.Status
	}
	if filter.BookingType != "" {
		if !models.ValidBookingType(filter.BookingType) {
			return nil, PageResult{}, apperrors.NewValidation("booking_type", "unknown booking type: "+string(filter.BookingType))
		}
		query["booking_type"] = filter.BookingType
	}

	coll := s.db.Collection(bookingsCollection)
	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, PageResult{}, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page.Skip())).
		SetLimit(int64(page.Limit))
	cursor, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, PageResult{}, err
	}
	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, PageResult{}, err
	}
	return bookings, NewPageResult(page, total), nil
}

func (s *bookingService) GetBooking(ctx context.Context, principal access.Principal, id primitive.ObjectID) (*models.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(booking.OwnerID()) {
		return nil, apperrors.NewForbidden("you do not have access to this booking")
	}
	return booking, nil
}

// UpdateBookingStatus applies an admin lifecycle transition and dispatches
// the matching notification. Moving to cancelled stamps CancelledAt.
func (s *bookingService) UpdateBookingStatus(ctx context.Context, principal access.Principal, id primitive.ObjectID, input UpdateBookingStatusInput) (*models.Booking, error) {
	if !principal.IsAdmin {
		return nil, apperrors.NewForbidden("only admins can update booking status")
	}
	if !models.ValidBookingStatus(input.Status) {
		return nil, apperrors.NewValidation("status", "unknown booking status: "+string(input.Status))
	}

	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := bson.M{"status": input.Status, "updated_at": now}
	if input.Notes != "" {
		updates["notes"] = input.Notes
		booking.Notes = input.Notes
	}
	if input.Status == models.BookingCancelled {
		updates["cancelled_at"] = now
		booking.CancelledAt = &now
	}
	if _, err := s.db.Collection(bookingsCollection).UpdateByID(ctx, id, bson.M{"$set": updates}); err != nil {
		return nil, err
	}
	booking.Status = input.Status
	booking.UpdatedAt = now

	if tmpl, ok := bookingStatusTemplate(input.Status); ok {
		s.dispatch(ctx, booking, tmpl)
	}
	return booking, nil
}

// CancelBooking is the guest-facing cancellation path: the owner or an
// admin may cancel, and cancelling twice is a state conflict.
func (s *bookingService) CancelBooking(ctx context.Context, principal access.Principal, id primitive.ObjectID, reason string) (*models.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(booking.OwnerID()) {
		return nil, apperrors.NewForbidden("you do not have access to this booking")
	}
	if booking.Status == models.BookingCancelled {
		return nil, apperrors.NewConflict("booking is already cancelled")
	}
	if len(reason) > s.cfg.MaxCancellationNote {
		return nil, apperrors.NewValidation("reason", "cancellation reason is too long")
	}

	now := time.Now().UTC()
	updates := bson.M{
		"status":       models.BookingCancelled,
		"cancelled_at": now,
		"updated_at":   now,
	}
	if reason != "" {
		updates["cancellation_reason"] = reason
	}
	if _, err := s.db.Collection(bookingsCollection).UpdateByID(ctx, id, bson.M{"$set": updates}); err != nil {
		return nil, err
	}
	booking.Status = models.BookingCancelled
	booking.CancelledAt = &now
	booking.CancellationReason = reason
	booking.UpdatedAt = now

	s.dispatch(ctx, booking, notify.TemplateBookingCancelled)
	return booking, nil
}

func (s *bookingService) findBooking(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Collection(bookingsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFound("booking")
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (s *bookingService) findProperty(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var property models.Property
	err := s.db.Collection(propertiesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&property)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFound("property")
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// checkOverlap rejects a new stay that intersects a confirmed booking on
// the same property. Pending bookings do not block; back-to-back stays
// sharing a boundary date are fine.
func (s *bookingService) checkOverlap(ctx context.Context, propertyID primitive.ObjectID, checkIn, checkOut time.Time) error {
	count, err := s.db.Collection(bookingsCollection).CountDocuments(ctx, bson.M{
		"property_id": propertyID,
		"status":      models.BookingConfirmed,
		"check_in":    bson.M{"$lt": checkOut},
		"check_out":   bson.M{"$gt": checkIn},
	})
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.NewConflict("the property is already booked for the selected dates")
	}
	return nil
}

func (s *bookingService) dispatch(ctx context.Context, booking *models.Booking, templateID string) {
	data := map[string]interface{}{
		"name":       booking.GuestInfo.FullName,
		"property":   bookingPropertyName(booking),
		"check_in":   booking.CheckIn.Format(dateLayout),
		"check_out":  booking.CheckOut.Format(dateLayout),
		"nights":     booking.Nights,
		"guests":     booking.Guests,
		"total":      booking.TotalAmount,
		"booking_id": booking.ID.Hex(),
	}
	if booking.CancellationReason != "" {
		data["reason"] = booking.CancellationReason
	}
	if err := s.notifier.Dispatch(ctx, booking.GuestInfo.Email, templateID, data); err != nil {
		log.Printf("failed to dispatch %s notification for booking %s: %v", templateID, booking.ID.Hex(), err)
	}
}

func bookingPropertyName(b *models.Booking) string {
	if b.PropertyDetails != nil {
		return b.PropertyDetails.Name
	}
	if b.PropertyID != nil {
		return b.PropertyID.Hex()
	}
	return ""
}

func bookingStatusTemplate(status models.BookingStatus) (string, bool) {
	switch status {
	case models.BookingConfirmed:
		return notify.TemplateBookingConfirmed, true
	case models.BookingCancelled:
		return notify.TemplateBookingCancelled, true
	case models.BookingRejected:
		return notify.TemplateBookingRejected, true
	case models.BookingCompleted:
		return notify.TemplateBookingCompleted, true
	}
	return "", false
}

// calcNights is ceil(duration/24h) with a floor of one night.
func calcNights(checkIn, checkOut time.Time) int {
	const dayMs = 24 * 60 * 60 * 1000
	ms := checkOut.Sub(checkIn).Milliseconds()
	nights := int(math.Ceil(float64(ms) / dayMs))
	if nights < 1 {
		nights = 1
	}
	return nights
}

// propertyPrice prefers the stored numeric price and falls back to parsing
// the display string.
func propertyPrice(p *models.Property) float64 {
	if p.PriceNumeric != nil {
		return *p.PriceNumeric
	}
	return utils.NumericValue(p.Price)
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

func validateGuestInfo(g models.GuestInfo) error {
	if g.FullName == "" {
		return apperrors.NewValidation("guest_info.full_name", "full name is required")
	}
	if g.Email == "" {
		return apperrors.NewValidation("guest_info.email", "email is required")
	}
	if !utils.IsValidEmail(g.Email) {
		return apperrors.NewValidation("guest_info.email", "invalid email address")
	}
	if g.Phone == "" {
		return apperrors.NewValidation("guest_info.phone", "phone is required")
	}
	return nil
}
