package services

import (
	"context"
	"fmt"
	"log"
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
)

const tourBookingsCollection = "tour_bookings"

// CreateTourBookingInput carries the client-supplied fields of a new tour
// reservation. Tour bookings always belong to an authenticated user. The
// tour id is taken from the route, not the body.
type CreateTourBookingInput struct {
	TourID          primitive.ObjectID `json:"-"`
	GuestInfo       models.GuestInfo   `json:"guest_info"`
	TourDate        string             `json:"tour_date"`
	Guests          int                `json:"guests"`
	SpecialRequests string             `json:"special_requests"`
}

type ITourBookingService interface {
	CreateTourBooking(ctx context.Context, principal access.Principal, input CreateTourBookingInput) (*models.TourBooking, error)
	ListTourBookings(ctx context.Context, principal access.Principal, status models.BookingStatus, page PageRequest) ([]models.TourBooking, PageResult, error)
	GetTourBooking(ctx context.Context, principal access.Principal, id primitive.ObjectID) (*models.TourBooking, error)
	UpdateTourBookingStatus(ctx context.Context, principal access.Principal, id primitive.ObjectID, input UpdateBookingStatusInput) (*models.TourBooking, error)
	CancelTourBooking(ctx context.Context, principal access.Principal, id primitive.ObjectID, reason string) (*models.TourBooking, error)
}

type tourBookingService struct {
	db       *mongo.Database
	cfg      *config.Config
	notifier notify.Notifier
}

func NewTourBookingService(database *mongo.Database, cfg *config.Config, notifier notify.Notifier) ITourBookingService {
	return &tourBookingService{db: database, cfg: cfg, notifier: notifier}
}

// CreateTourBooking books seats on an active tour. The total is a flat
// per-guest rate: guests × the tour's starting price.
func (s *tourBookingService) CreateTourBooking(ctx context.Context, principal access.Principal, input CreateTourBookingInput) (*models.TourBooking, error) {
	if !principal.Present {
		return nil, apperrors.NewUnauthorized("authentication required to book a tour")
	}
	if input.TourID.IsZero() {
		return nil, apperrors.NewValidation("tour_id", "tour_id is required")
	}
	if err := validateGuestInfo(input.GuestInfo); err != nil {
		return nil, err
	}
	if len(input.SpecialRequests) > s.cfg.MaxSpecialRequests {
		return nil, apperrors.NewValidation("special_requests", "special requests text is too long")
	}

	var tour models.Tour
	err := s.db.Collection(toursCollection).FindOne(ctx, bson.M{"_id": input.TourID, "is_active": true}).Decode(&tour)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFound("tour")
	}
	if err != nil {
		return nil, err
	}

	if input.Guests < tour.MinGuests {
		return nil, apperrors.NewValidation("guests", fmt.Sprintf("this tour requires at least %d guests", tour.MinGuests))
	}
	if tour.MaxGuests > 0 && input.Guests > tour.MaxGuests {
		return nil, apperrors.NewValidation("guests", fmt.Sprintf("this tour allows at most %d guests", tour.MaxGuests))
	}

	tourDate, err := parseDate("tour_date", input.TourDate)
	if err != nil {
		return nil, err
	}
	if tourDate.Before(today()) {
		return nil, apperrors.NewValidation("tour_date", "tour_date cannot be in the past")
	}

	now := time.Now().UTC()
	booking := &models.TourBooking{
		TourID:          tour.ID,
		UserID:          principal.ID,
		GuestInfo:       input.GuestInfo,
		TourDate:        tourDate,
		Guests:          input.Guests,
		TotalAmount:     roundMoney(float64(input.Guests) * tour.StartingPrice),
		SpecialRequests: input.SpecialRequests,
		Status:          models.BookingPending,
		PaymentStatus:   models.PaymentPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = db.Try(func() error {
		res, err := s.db.Collection(tourBookingsCollection).InsertOne(ctx, booking)
		if err != nil {
			return err
		}
		booking.ID = res.InsertedID.(primitive.ObjectID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, booking, tour.Name, notify.TemplateTourBookingReceived)
	return booking, nil
}

func (s *tourBookingService) ListTourBookings(ctx context.Context, principal access.Principal, status models.BookingStatus, page PageRequest) ([]models.TourBooking, PageResult, error) {
	page = page.Normalize(s.cfg.DefaultPageLimit, s.cfg.MaxPageLimit)

	query := principal.OwnerFilter("user_id")
	if status != "" {
		if !models.ValidBookingStatus(status) {
			return nil, PageResult{}, apperrors.NewValidation("status", "unknown booking status: "+string(status))
		}
		query["status"] = status
	}

	coll := s.db.Collection(tourBookingsCollection)
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
	bookings := []models.TourBooking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, PageResult{}, err
	}
	return bookings, NewPageResult(page, total), nil
}

func (s *tourBookingService) GetTourBooking(ctx context.Context, principal access.Principal, id primitive.ObjectID) (*models.TourBooking, error) {
	booking, err := s.findTourBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(booking.OwnerID()) {
		return nil, apperrors.NewForbidden("you do not have access to this booking")
	}
	return booking, nil
}

func (s *tourBookingService) UpdateTourBookingStatus(ctx context.Context, principal access.Principal, id primitive.ObjectID, input UpdateBookingStatusInput) (*models.TourBooking, error) {
	if !principal.IsAdmin {
		return nil, apperrors.NewForbidden("only admins can update booking status")
	}
	if !models.ValidBookingStatus(input.Status) {
		return nil, apperrors.NewValidation("status", "unknown booking status: "+string(input.Status))
	}

	booking, err := s.findTourBooking(ctx, id)
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
	if _, err := s.db.Collection(tourBookingsCollection).UpdateByID(ctx, id, bson.M{"$set": updates}); err != nil {
		return nil, err
	}
	booking.Status = input.Status
	booking.UpdatedAt = now

	if tmpl, ok := tourBookingStatusTemplate(input.Status); ok {
		s.dispatch(ctx, booking, s.tourName(ctx, booking.TourID), tmpl)
	}
	return booking, nil
}

func (s *tourBookingService) CancelTourBooking(ctx context.Context, principal access.Principal, id primitive.ObjectID, reason string) (*models.TourBooking, error) {
	booking, err := s.findTourBooking(ctx, id)
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
	if _, err := s.db.Collection(tourBookingsCollection).UpdateByID(ctx, id, bson.M{"$set": updates}); err != nil {
		return nil, err
	}
	booking.Status = models.BookingCancelled
	booking.CancelledAt = &now
	booking.CancellationReason = reason
	booking.UpdatedAt = now

	s.dispatch(ctx, booking, s.tourName(ctx, booking.TourID), notify.TemplateTourBookingCancelled)
	return booking, nil
}

func (s *tourBookingService) findTourBooking(ctx context.Context, id primitive.ObjectID) (*models.TourBooking, error) {
	var booking models.TourBooking
	err := s.db.Collection(tourBookingsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFound("tour booking")
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// tourName is a best-effort lookup for notification text; an empty name is
// acceptable when the tour has since been deleted.
func (s *tourBookingService) tourName(ctx context.Context, tourID primitive.ObjectID) string {
	var tour models.Tour
	if err := s.db.Collection(toursCollection).FindOne(ctx, bson.M{"_id": tourID}).Decode(&tour); err != nil {
		return ""
	}
	return tour.Name
}

func (s *tourBookingService) dispatch(ctx context.Context, booking *models.TourBooking, tourName, templateID string) {
	data := map[string]interface{}{
		"name":       booking.GuestInfo.FullName,
		"tour":       tourName,
		"date":       booking.TourDate.Format(dateLayout),
		"guests":     booking.Guests,
		"total":      booking.TotalAmount,
		"booking_id": booking.ID.Hex(),
	}
	if booking.CancellationReason != "" {
		data["reason"] = booking.CancellationReason
	}
	if err := s.notifier.Dispatch(ctx, booking.GuestInfo.Email, templateID, data); err != nil {
		log.Printf("failed to dispatch %s notification for tour booking %s: %v", templateID, booking.ID.Hex(), err)
	}
}

func tourBookingStatusTemplate(status models.BookingStatus) (string, bool) {
	switch status {
	case models.BookingConfirmed:
		return notify.TemplateTourBookingConfirmed, true
	case models.BookingCancelled:
		return notify.TemplateTourBookingCancelled, true
	case models.BookingRejected:
		return notify.TemplateTourBookingRejected, true
	case models.BookingCompleted:
		return notify.TemplateTourBookingCompleted, true
	}
	return "", false
}
