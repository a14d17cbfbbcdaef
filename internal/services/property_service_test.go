package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/access"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/apperrors"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/utils"
)

func setupTestDBProperty(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, "properties")
}

func sampleProperty(purpose models.PropertyPurpose) *models.Property {
	p := &models.Property{
		Title:           "Sample Estate",
		Location:        "Lekki",
		PropertyPurpose: purpose,
		Price:           "$365,000",
		Size:            "450 sqm",
		IsActive:        true,
		IsListed:        true,
	}
	if purpose == models.PurposeInvestment {
		p.InvestmentDetails = &models.InvestmentDetails{PropertyType: "residential", ExpectedROI: "12%"}
	}
	return p
}

func TestPropertyService_CreateAndGet(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_create")
	svc := NewPropertyService(db, testConfig())
	ctx := context.Background()

	admin := access.NewPrincipal(primitive.NewObjectID(), true)
	user := access.NewPrincipal(primitive.NewObjectID(), false)

	// Only admins create.
	_, err := svc.CreateProperty(ctx, user, sampleProperty(models.PurposeSale))
	var forbidden *apperrors.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	created, err := svc.CreateProperty(ctx, admin, sampleProperty(models.PurposeSale))
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, admin.ID, created.CreatedBy)
	// Numeric price derived from the display string.
	require.NotNil(t, created.PriceNumeric)
	assert.InDelta(t, 365000.0, *created.PriceNumeric, 0.001)

	got, err := svc.GetProperty(ctx, user, created.ID, access.ViewDiscovery)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestPropertyService_InvestmentDetailsRule(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_investment")
	svc := NewPropertyService(db, testConfig())
	ctx := context.Background()
	admin := access.NewPrincipal(primitive.NewObjectID(), true)

	// Investment purpose without details.
	p := sampleProperty(models.PurposeInvestment)
	p.InvestmentDetails = nil
	_, err := svc.CreateProperty(ctx, admin, p)
	assert.True(t, apperrors.IsValidation(err))

	// Details on a non-investment listing.
	p = sampleProperty(models.PurposeSale)
	p.InvestmentDetails = &models.InvestmentDetails{PropertyType: "commercial"}
	_, err = svc.CreateProperty(ctx, admin, p)
	assert.True(t, apperrors.IsValidation(err))

	// Matching pair is fine.
	_, err = svc.CreateProperty(ctx, admin, sampleProperty(models.PurposeInvestment))
	assert.NoError(t, err)
}

func TestPropertyService_Visibility(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_visibility")
	svc := NewPropertyService(db, testConfig())
	ctx := context.Background()
	admin := access.NewPrincipal(primitive.NewObjectID(), true)
	user := access.NewPrincipal(primitive.NewObjectID(), false)

	mk := func(active, listed bool) *models.Property {
		p := sampleProperty(models.PurposeSale)
		p.IsActive = active
		p.IsListed = listed
		created, err := svc.CreateProperty(ctx, admin, p)
		require.NoError(t, err)
		return created
	}
	mk(true, true)
	activeOnly := mk(true, false)
	listedOnly := mk(false, true)
	mk(false, false)

	// Discovery view: listed records only.
	list, page, err := svc.ListProperties(ctx, user, PropertyListFilter{View: access.ViewDiscovery}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int64(2), page.Total)

	// Booking view: active records only.
	list, _, err = svc.ListProperties(ctx, user, PropertyListFilter{View: access.ViewBooking}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Admin sees all four in either view.
	list, _, err = svc.ListProperties(ctx, admin, PropertyListFilter{View: access.ViewDiscovery}, PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 4)

	// Detail reads honor the view gate for non-admins.
	_, err = svc.GetProperty(ctx, user, activeOnly.ID, access.ViewDiscovery)
	assert.True(t, apperrors.IsNotFound(err))
	_, err = svc.GetProperty(ctx, user, activeOnly.ID, access.ViewBooking)
	assert.NoError(t, err)
	_, err = svc.GetProperty(ctx, user, listedOnly.ID, access.ViewBooking)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPropertyService_UpdateAndDelete(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_update")
	svc := NewPropertyService(db, testConfig())
	ctx := context.Background()
	admin := access.NewPrincipal(primitive.NewObjectID(), true)
	user := access.NewPrincipal(primitive.NewObjectID(), false)

	created, err := svc.CreateProperty(ctx, admin, sampleProperty(models.PurposeSale))
	require.NoError(t, err)

	_, err = svc.UpdateProperty(ctx, user, created.ID, map[string]interface{}{"title": "Nope"})
	var forbidden *apperrors.ForbiddenError
	assert.ErrorAs(t, err, &forbidden)

	// Unknown fields are rejected.
	_, err = svc.UpdateProperty(ctx, admin, created.ID, map[string]interface{}{"created_by": "x"})
	assert.True(t, apperrors.IsValidation(err))

	updated, err := svc.UpdateProperty(ctx, admin, created.ID, map[string]interface{}{
		"title": "Renamed Estate",
		"price": "$730,000",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Estate", updated.Title)
	require.NotNil(t, updated.PriceNumeric)
	assert.InDelta(t, 730000.0, *updated.PriceNumeric, 0.001)

	err = svc.DeleteProperty(ctx, admin, created.ID)
	require.NoError(t, err)
	err = svc.DeleteProperty(ctx, admin, created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}
