package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/access"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/apperrors"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/config"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/utils"
)

// recordedNotification captures a Dispatch call for assertions.
type recordedNotification struct {
	To         string
	TemplateID string
	Data       map[string]interface{}
}

// recordingNotifier is a test double for notify.Notifier.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []recordedNotification
}

func (n *recordingNotifier) Dispatch(ctx context.Context, to, templateID string, data map[string]interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, recordedNotification{To: to, TemplateID: templateID, Data: data})
	return nil
}

func (n *recordingNotifier) last() *recordedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) == 0 {
		return nil
	}
	return &n.calls[len(n.calls)-1]
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultPageLimit:     10,
		MaxPageLimit:         100,
		RelatedDefaultLimit:  3,
		MaxSpecialRequests:   1000,
		MaxCancellationNote:  500,
		AnnualizedPriceBasis: 365,
	}
}

func setupTestDBBooking(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, "bookings", "properties", "users")
}

func seedProperty(t *testing.T, db *mongo.Database, price string, active, listed bool) primitive.ObjectID {
	t.Helper()
	numeric := utils.NumericValue(price)
	property := models.Property{
		Title:           "Test Property",
		Location:        "Lagos",
		PropertyPurpose: models.PurposeRental,
		Price:           price,
		PriceNumeric:    &numeric,
		IsActive:        active,
		IsListed:        listed,
		Images:          []string{},
		CreatedBy:       primitive.NewObjectID(),
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	res, err := db.Collection("properties").InsertOne(context.Background(), property)
	require.NoError(t, err)
	return res.InsertedID.(primitive.ObjectID)
}

func testGuestInfo() models.GuestInfo {
	return models.GuestInfo{FullName: "Ada Obi", Email: "ada@example.com", Phone: "+2348012345678"}
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestBookingService_CreateBooking_Derivation(t *testing.T) {
	db := setupTestDBBooking(t, "testdb_booking_derivation")
	notifier := &recordingNotifier{}
	svc := NewBookingService(db, testConfig(), notifier)
	ctx := context.Background()

	propertyID := seedProperty(t, db, "$3,650", true, true)
	principal := access.NewPrincipal(primitive.NewObjectID(), false)

	booking, err := svc.CreateBooking(ctx, principal, CreateBookingInput{
		PropertyID:  &propertyID,
		GuestInfo:   testGuestInfo(),
		CheckIn:     futureDate(10),
		CheckOut:    futureDate(15),
		Guests:      2,
		BookingType: models.BookingTypeShortlet,
	})
	require.NoError(t, err)
	require.NotNil(t, booking)

	assert.Equal(t, 5, booking.Nights)
	// 5 nights at 3650/365 = 10 per night
	assert.InDelta(t, 50.0, booking.TotalAmount, 0.001)
	assert.Equal(t, models.BookingPending, booking.Status)
	assert.Equal(t, models.PaymentPending, booking.PaymentStatus)
	assert.False(t, booking.ID.IsZero())
	require.NotNil(t, booking.UserID)
	assert.Equal(t, principal.ID, *booking.UserID)

	last := notifier.last()
	require.NotNil(t, last)
	assert.Equal(t, "booking_received", last.TemplateID)
	assert.Equal(t, "ada@example.com", last.To)
}

func TestBookingService_CreateBooking_SnapshotPriceAndGuest(t *testing.T) {
	db := setupTestDBBooking(t, "testdb_booking_snapshot")
	notifier := &recordingNotifier{}
	svc := NewBookingService(db, testConfig(), notifier)
	ctx := context.Background()

	booking, err := svc.CreateBooking(ctx, access.Anonymous, CreateBookingInput{
		PropertyDetails: &models.PropertySnapshot{
			Name:     "Agent Villa",
			Location: "Abuja",
			Price:    "N7,300",
		},
		GuestInfo:   testGuestInfo(),
		CheckIn:     futureDate(3),
		CheckOut:    futureDate(5),
		Guests:      1,
		BookingType: models.BookingTypeShortlet,
	})
	require.NoError(t, err)

	// Guest booking: no owner.
	assert.Nil(t, booking.UserID)
	assert.Equal(t, 2, booking.Nights)
	assert.InDelta(t, 40.0, booking.TotalAmount, 0.001) // 2 × 7300/365

	// Malformed snapshot price yields a zero total, not an error.
	booking2, err := svc.CreateBooking(ctx, access.Anonymous, CreateBookingInput{
		PropertyDetails: &models.PropertySnapshot{Name: "X", Location: "Y", Price: "call us"},
		GuestInfo:       testGuestInfo(),
		CheckIn:         futureDate(3),
		CheckOut:        futureDate(4),
		Guests:          1,
		BookingType:     models.BookingTypeShortlet,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, booking2.TotalAmount)
}

func TestBookingService_CreateBooking_ListingRefValidation(t *testing.T) {
	db := setupTestDBBooking(t, "testdb_booking_listingref")
	svc := NewBookingService(db, testConfig(), &recordingNotifier{})
	ctx := context.Background()

	propertyID := seedProperty(t, db, "$365", true, true)
	base := CreateBookingInput{
		GuestInfo:   testGuestInfo(),
		CheckIn:     futureDate(3),
		CheckOut:    futureDate(5),
		Guests:      1,
		BookingType: models.BookingTypeShortlet,
	}

	// Neither reference.
	_, err := svc.CreateBooking(ctx, access.Anonymous, base)
	assert.True(t, apperrors.IsValidation(err))

	// Both references.
	both := base
	both.PropertyID = &propertyID
	both.PropertyDetails = &models.PropertySnapshot{Name: "X", Location: "Y", Price: "1"}
	_, err = svc.CreateBooking(ctx, access.Anonymous, both)
	assert.True(t, apperrors.IsValidation(err))

	// Incomplete snapshot.
	incomplete := base
	incomplete.PropertyDetails = &models.PropertySnapshot{Name: "X"}
	_, err = svc.CreateBooking(ctx, access.Anonymous, incomplete)
	assert.True(t, apperrors.IsValidation(err))

	// Unknown property id.
	missing := base
	unknownID := primitive.NewObjectID()
	missing.PropertyID = &unknownID
	_, err = svc.CreateBooking(ctx, access.Anonymous, missing)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestBookingService_CreateBooking_DateValidation(t *testing.T) {
	db := setupTestDBBooking(t, "testdb_booking_dates")
	svc := NewBookingService(db, testConfig(), &recordingNotifier{})
	ctx := context.Background()

	propertyID := seedProperty(t, db, "$365", true, true)
	base := CreateBookingInput{
		PropertyID:  &propertyID,
		GuestInfo:   testGuestInfo(),
		Guests:      1,
		BookingType: models.BookingTypeShortlet,
	}

	// check_out before check_in.
	in := base
	in.CheckIn = futureDate(10)
	in.CheckOut = futureDate(8)
	_, err := svc.CreateBooking(ctx, access.Anonymous, in)
	assert.True(t, apperrors.IsValidation(err))

	// Zero-length stay.
	in.CheckOut = in.CheckIn
	_, err = svc.CreateBooking(ctx, access.Anonymous, in)
	assert.True(t, apperrors.IsValidation(err))

	// check_in in the past.
	in.CheckIn = time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")
	in.CheckOut = futureDate(3)
	_, err = svc.CreateBooking(ctx, access.Anonymous, in)
	assert.True(t, apperrors.IsValidation(err))

	// Unparseable date.
	in.CheckIn = "next tuesday"
	_, err = svc.CreateBooking(ctx, access.Anonymous, in)
	assert.True(t, apperrors.IsValidation(err))

	// check_in today is allowed.
	in.CheckIn = time.Now().UTC().Format("2006-01-02")
	in.CheckOut = futureDate(2)
	_, err = svc.CreateBooking(ctx, access.Anonymous, in)
	assert.NoError(t, err)
}

func TestBookingService_OverlapConflict(t *testing.T) {
	db := setupTestDBBooking(t, "testdb_booking_overlap")
	notifier := &recordingNotifier{}
	cfg := testConfig()
	svc := NewBookingService(db, cfg, notifier)
	ctx := context.Background()

	propertyID := seedProperty(t, db, "$365", true, true)
	admin := access.NewPrincipal(primitive.NewObjectID(), true)
	user := access.NewPrincipal(primitive.NewObjectID(), false)

	first, err := svc.CreateBooking(ctx, user, CreateBookingInput{
		PropertyID:  &propertyID,
		GuestInfo:   testGuestInfo(),
		CheckIn:     futureDate(10),
		CheckOut:    futureDate(15),
		Guests:      1,
		BookingType: models.BookingTypeShortlet,
	})
	require.NoError(t, err)

	// Pending bookings do not block.
	_, err = svc.CreateBooking(ctx, user, CreateBookingInput{
		PropertyID:  &propertyID,
		GuestInfo:   testGuestInfo(),
		CheckIn:     futureDate(12),
		CheckOut:    futureDate(14),
		Guests:      1,
		BookingType: models.BookingTypeShortlet,
	})
	require.NoError(t, err)

	// Confirm the first; overlapping stays are now rejected.
	_, err = svc.UpdateBookingStatus(ctx, admin, first.ID, UpdateBookingStatusInput{Status: models.BookingConfirmed})
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, user, CreateBookingInput{
		PropertyID:  &propertyID,
		GuestInfo:   testGuestInfo(),
		CheckIn:     futureDate(14),
		CheckOut:    futureDate(16),
		Guests:      1,
		BookingType: models.BookingTypeShortlet,
	})
	var conflict *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflict)

	// A back-to-back stay sharing the boundary date is fine.
	_, err = svc.CreateBooking(ctx, user, CreateBookingInput{
		PropertyID:  &propertyID,
		GuestInfo:   testGuestInfo(),
		CheckIn:     futureDate(15),
		CheckOut:    futureDate(17),
		Guests:      1,
		BookingType: models.BookingTypeShortlet,
	})
	assert.NoError(t, err)
}

func TestBookingService_Scoping(t *testing.T) {
	db := setupTestDBBooking(t, "testdb_booking_scoping")
	svc := NewBookingService(db, testConfig(), &recordingNotifier{})
	ctx := context.Background()

	propertyID := seedProperty(t, db, "$365", true, true)
	alice := access.NewPrincipal(primitive.NewObjectID(), false)
	bob := access.NewPrincipal(primitive.NewObjectID(), false)
	admin := access.NewPrincipal(primitive.NewObjectID(), true)

	mk := func(p access.Principal, offset int) *models.Booking {
		b, err := svc.CreateBooking(ctx, p, CreateBookingInput{
			PropertyID:  &propertyID,
			GuestInfo:   testGuestInfo(),
			CheckIn:     futureDate(offset),
			CheckOut:    futureDate(offset + 2),
			Guests:      1,
			BookingType: models.BookingTypeShortlet,
		})
		require.NoError(t, err)
		return b
	}
	aliceBooking := mk(alice, 5)
	mk(bob, 10)
	guestBooking := mk(access.Anonymous, 20)

	// Each user sees only their own.
	list, page, err := svc.ListBookings(ctx, alice, BookingListFilter{}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(1), page.Total)

	// Admin sees everything.
	list, page, err = svc.ListBookings(ctx, admin, BookingListFilter{}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.TotalPages)

	// Anonymous listing is empty, not an error.
	list, page, err = svc.ListBookings(ctx, access.Anonymous, BookingListFilter{}, PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int64(0), page.Total)

	// Cross-user reads are forbidden.
	_, err = svc.GetBooking(ctx, bob, aliceBooking.ID)
	var forbidden *apperrors.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	// Guest bookings are reachable only by admins.
	_, err = svc.GetBooking(ctx, alice, guestBooking.ID)
	assert.ErrorAs(t, err, &forbidden)
	got, err := svc.GetBooking(ctx, admin, guestBooking.ID)
	require.NoError(t, err)
	assert.Equal(t, guestBooking.ID, got.ID)
}

func TestBookingService_StatusLifecycle(t *testing.T) {
	db := setupTestDBBooking(t, "testdb_booking_status")
	notifier := &recordingNotifier{}
	svc := NewBookingService(db, testConfig(), notifier)
	ctx := context.Background()

	propertyID := seedProperty(t, db, "$365", true, true)
	user := access.NewPrincipal(primitive.NewObjectID(), false)
	admin := access.NewPrincipal(primitive.NewObjectID(), true)

	booking, err := svc.CreateBooking(ctx, user, CreateBookingInput{
		PropertyID:  &propertyID,
		GuestInfo:   testGuestInfo(),
		CheckIn:     futureDate(5),
		CheckOut:    futureDate(7),
		Guests:      1,
		BookingType: models.BookingTypeShortlet,
	})
	require.NoError(t, err)

	// Non-admin may not transition.
	_, err = svc.UpdateBookingStatus(ctx, user, booking.ID, UpdateBookingStatusInput{Status: models.BookingConfirmed})
	var forbidden *apperrors.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	// Unknown status rejected.
	_, err = svc.UpdateBookingStatus(ctx, admin, booking.ID, UpdateBookingStatusInput{Status: "archived"})
	assert.True(t, apperrors.IsValidation(err))

	updated, err := svc.UpdateBookingStatus(ctx, admin, booking.ID, UpdateBookingStatusInput{
		Status: models.BookingConfirmed,
		Notes:  "payment verified",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, updated.Status)
	assert.Equal(t, "payment verified", updated.Notes)
	assert.Equal(t, "booking_confirmed", notifier.last().TemplateID)

	// Cancelling via status stamps the timestamp.
	updated, err = svc.UpdateBookingStatus(ctx, admin, booking.ID, UpdateBookingStatusInput{Status: models.BookingCancelled})
	require.NoError(t, err)
	assert.NotNil(t, updated.CancelledAt)
	assert.Equal(t, "booking_cancelled", notifier.last().TemplateID)
}

func TestBookingService_Cancel(t *testing.T) {
	db := setupTestDBBooking(t, "testdb_booking_cancel")
	notifier := &recordingNotifier{}
	svc := NewBookingService(db, testConfig(), notifier)
	ctx := context.Background()

	propertyID := seedProperty(t, db, "$365", true, true)
	user := access.NewPrincipal(primitive.NewObjectID(), false)
	other := access.NewPrincipal(primitive.NewObjectID(), false)

	booking, err := svc.CreateBooking(ctx, user, CreateBookingInput{
		PropertyID:  &propertyID,
		GuestInfo:   testGuestInfo(),
		CheckIn:     futureDate(5),
		CheckOut:    futureDate(7),
		Guests:      1,
		BookingType: models.BookingTypeShortlet,
	})
	require.NoError(t, err)

	// Strangers cannot cancel.
	_, err = svc.CancelBooking(ctx, other, booking.ID, "")
	var forbidden *apperrors.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	cancelled, err := svc.CancelBooking(ctx, user, booking.ID, "change of plans")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, "change of plans", cancelled.CancellationReason)
	assert.Equal(t, "booking_cancelled", notifier.last().TemplateID)

	// Cancelling twice is a state conflict.
	_, err = svc.CancelBooking(ctx, user, booking.ID, "")
	var conflict *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestBookingService_Pagination(t *testing.T) {
	db := setupTestDBBooking(t, "testdb_booking_pagination")
	svc := NewBookingService(db, testConfig(), &recordingNotifier{})
	ctx := context.Background()

	propertyID := seedProperty(t, db, "$365", true, true)
	user := access.NewPrincipal(primitive.NewObjectID(), false)
	for i := 0; i < 7; i++ {
		_, err := svc.CreateBooking(ctx, user, CreateBookingInput{
			PropertyID:  &propertyID,
			GuestInfo:   testGuestInfo(),
			CheckIn:     futureDate(5 + i*3),
			CheckOut:    futureDate(6 + i*3),
			Guests:      1,
			BookingType: models.BookingTypeShortlet,
		})
		require.NoError(t, err)
	}

	list, page, err := svc.ListBookings(ctx, user, BookingListFilter{}, PageRequest{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, int64(7), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 2, page.Page)

	list, _, err = svc.ListBookings(ctx, user, BookingListFilter{}, PageRequest{Page: 3, Limit: 3})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
