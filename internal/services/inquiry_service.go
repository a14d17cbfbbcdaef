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
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/utils"
)

const inquiriesCollection = "inquiries"

// CreateInquiryInput is the full, authenticated inquiry form.
type CreateInquiryInput struct {
	PropertyID               *primitive.ObjectID              `json:"property_id"`
	PropertyDetails          *models.PropertySnapshot         `json:"property_details"`
	PropertyName             string                           `json:"property_name"`
	InquiryType              models.InquiryType               `json:"inquiry_type"`
	ContactInfo              models.ContactInfo               `json:"contact_info"`
	SaleInquiryDetails       *models.SaleInquiryDetails       `json:"sale_inquiry_details"`
	InvestmentInquiryDetails *models.InvestmentInquiryDetails `json:"investment_inquiry_details"`
}

// CreateSimpleInquiryInput is the anonymous-friendly short form: a contact
// block, a property reference and a free-text message. The inquiry type is
// inferred from the property's purpose.
type CreateSimpleInquiryInput struct {
	FullName   string             `json:"full_name"`
	Email      string             `json:"email"`
	Phone      string             `json:"phone"`
	PropertyID primitive.ObjectID `json:"property_id"`
	Message    string             `json:"message"`
}

// UpdateInquiryStatusInput drives the admin triage transition. AssignedTo
// uses a double pointer so "not supplied" and "clear the assignment" are
// distinguishable.
type UpdateInquiryStatusInput struct {
	Status     models.InquiryStatus
	Priority   models.InquiryPriority
	Notes      string
	AssignedTo **primitive.ObjectID
}

type InquiryListFilter struct {
	Status models.InquiryStatus
	Type   models.InquiryType
}

type IInquiryService interface {
	CreateInquiry(ctx context.Context, principal access.Principal, input CreateInquiryInput) (*models.Inquiry, error)
	CreateSimpleInquiry(ctx context.Context, principal access.Principal, input CreateSimpleInquiryInput) (*models.Inquiry, error)
	ListInquiries(ctx context.Context, principal access.Principal, filter InquiryListFilter, page PageRequest) ([]models.Inquiry, PageResult, error)
	GetInquiry(ctx context.Context, principal access.Principal, id primitive.ObjectID) (*models.Inquiry, error)
	UpdateInquiryStatus(ctx context.Context, principal access.Principal, id primitive.ObjectID, input UpdateInquiryStatusInput) (*models.Inquiry, error)
	DeleteInquiry(ctx context.Context, principal access.Principal, id primitive.ObjectID) error
}

type inquiryService struct {
	db       *mongo.Database
	cfg      *config.Config
	notifier notify.Notifier
}

func NewInquiryService(database *mongo.Database, cfg *config.Config, notifier notify.Notifier) IInquiryService {
	return &inquiryService{db: database, cfg: cfg, notifier: notifier}
}

// CreateInquiry records a full lead. The caller must be authenticated, the
// inquiry type must match the referenced property's purpose, and exactly
// the matching detail block may be populated.
func (s *inquiryService) CreateInquiry(ctx context.Context, principal access.Principal, input CreateInquiryInput) (*models.Inquiry, error) {
	if !principal.Present {
		return nil, apperrors.NewUnauthorized("authentication required to submit an inquiry")
	}
	if input.PropertyName == "" {
		return nil, apperrors.NewValidation("property_name", "property_name is required")
	}
	if !models.ValidInquiryType(input.InquiryType) {
		return nil, apperrors.NewValidation("inquiry_type", "unknown inquiry type: "+string(input.InquiryType))
	}
	if err := validateContactInfo(input.ContactInfo); err != nil {
		return nil, err
	}
	if err := models.ValidateListingRef(input.PropertyID, input.PropertyDetails); err != nil {
		return nil, err
	}

	// The wrong detail block for the inquiry type is a hard reject, not a
	// silent drop.
	if input.InquiryType == models.InquirySale && input.InvestmentInquiryDetails != nil {
		return nil, apperrors.NewValidation("investment_inquiry_details", "investment details are not valid on a sale inquiry")
	}
	if input.InquiryType == models.InquiryInvestment && input.SaleInquiryDetails != nil {
		return nil, apperrors.NewValidation("sale_inquiry_details", "sale details are not valid on an investment inquiry")
	}

	if input.PropertyID != nil {
		var property models.Property
		err := s.db.Collection(propertiesCollection).FindOne(ctx, bson.M{"_id": *input.PropertyID}).Decode(&property)
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("property")
		}
		if err != nil {
			return nil, err
		}
		if !purposeMatchesInquiry(property.PropertyPurpose, input.InquiryType) {
			return nil, apperrors.NewValidation("inquiry_type",
				fmt.Sprintf("inquiry type %s does not match property purpose %s", input.InquiryType, property.PropertyPurpose))
		}
	}

	userID := principal.ID
	now := time.Now().UTC()
	inquiry := &models.Inquiry{
		PropertyID:               input.PropertyID,
		PropertyDetails:          input.PropertyDetails,
		PropertyName:             input.PropertyName,
		InquiryType:              input.InquiryType,
		ContactInfo:              input.ContactInfo,
		SaleInquiryDetails:       input.SaleInquiryDetails,
		InvestmentInquiryDetails: input.InvestmentInquiryDetails,
		UserID:                   &userID,
		Status:                   models.InquiryPending,
		Priority:                 models.PriorityMedium,
		CreatedAt:                now,
		UpdatedAt:                now,
	}
	ensureDetailBlock(inquiry)

	if err := s.insert(ctx, inquiry); err != nil {
		return nil, err
	}
	s.dispatchReceived(ctx, inquiry)
	return inquiry, nil
}

// CreateSimpleInquiry records a short-form lead against a known listing.
// Anonymous submissions are accepted; the message is routed into the
// detail block matching the inferred type.
func (s *inquiryService) CreateSimpleInquiry(ctx context.Context, principal access.Principal, input CreateSimpleInquiryInput) (*models.Inquiry, error) {
	contact := models.ContactInfo{Name: input.FullName, Email: input.Email, Phone: input.Phone}
	if err := validateContactInfo(contact); err != nil {
		return nil, err
	}
	if input.PropertyID.IsZero() {
		return nil, apperrors.NewValidation("property_id", "property_id is required")
	}

	var property models.Property
	err := s.db.Collection(propertiesCollection).FindOne(ctx, bson.M{"_id": input.PropertyID}).Decode(&property)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFound("property")
	}
	if err != nil {
		return nil, err
	}

	inquiryType := inferInquiryType(property.PropertyPurpose)
	propertyID := input.PropertyID
	now := time.Now().UTC()
	inquiry := &models.Inquiry{
		PropertyID:   &propertyID,
		PropertyName: property.Title,
		InquiryType:  inquiryType,
		ContactInfo:  contact,
		Status:       models.InquiryPending,
		Priority:     models.PriorityMedium,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if principal.Present {
		userID := principal.ID
		inquiry.UserID = &userID
	}
	switch inquiryType {
	case models.InquiryInvestment:
		inquiry.InvestmentInquiryDetails = &models.InvestmentInquiryDetails{Message: input.Message}
	default:
		inquiry.SaleInquiryDetails = &models.SaleInquiryDetails{Message: input.Message}
	}

	if err := s.insert(ctx, inquiry); err != nil {
		return nil, err
	}
	s.dispatchReceived(ctx, inquiry)
	return inquiry, nil
}

func (s *inquiryService) ListInquiries(ctx context.Context, principal access.Principal, filter InquiryListFilter, page PageRequest) ([]models.Inquiry, PageResult, error) {
	page = page.Normalize(s.cfg.DefaultPageLimit, s.cfg.MaxPageLimit)

	query := principal.OwnerFilter("user_id")
	if filter.Status != "" {
		if !models.ValidInquiryStatus(filter.Status) {
			return nil, PageResult{}, apperrors.NewValidation("status", "unknown inquiry status: "+string(filter.Status))
		}
		query["status"] = filter.Status
	}
	if filter.Type != "" {
		if !models.ValidInquiryType(filter.Type) {
			return nil, PageResult{}, apperrors.NewValidation("type", "unknown inquiry type: "+string(filter.Type))
		}
		query["inquiry_type"] = filter.Type
	}

	coll := s.db.Collection(inquiriesCollection)
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
	inquiries := []models.Inquiry{}
	if err := cursor.All(ctx, &inquiries); err != nil {
		return nil, PageResult{}, err
	}
	return inquiries, NewPageResult(page, total), nil
}

func (s *inquiryService) GetInquiry(ctx context.Context, principal access.Principal, id primitive.ObjectID) (*models.Inquiry, error) {
	inquiry, err := s.findInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(inquiry.OwnerID()) {
		return nil, apperrors.NewForbidden("you do not have access to this inquiry")
	}
	return inquiry, nil
}

// UpdateInquiryStatus applies an admin triage transition. Terminal and
// progress states stamp their corresponding timestamps.
func (s *inquiryService) UpdateInquiryStatus(ctx context.Context, principal access.Principal, id primitive.ObjectID, input UpdateInquiryStatusInput) (*models.Inquiry, error) {
	if !principal.IsAdmin {
		return nil, apperrors.NewForbidden("only admins can update inquiries")
	}
	if input.Status != "" && !models.ValidInquiryStatus(input.Status) {
		return nil, apperrors.NewValidation("status", "unknown inquiry status: "+string(input.Status))
	}
	if input.Priority != "" && !models.ValidInquiryPriority(input.Priority) {
		return nil, apperrors.NewValidation("priority", "unknown inquiry priority: "+string(input.Priority))
	}

	if _, err := s.findInquiry(ctx, id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	set := bson.M{"updated_at": now}
	unset := bson.M{}
	if input.Status != "" {
		set["status"] = input.Status
		switch input.Status {
		case models.InquiryRejected:
			set["rejected_at"] = now
		case models.InquiryClosed:
			set["closed_at"] = now
		case models.InquiryContacted, models.InquiryQualified:
			set["responded_at"] = now
		}
	}
	if input.Priority != "" {
		set["priority"] = input.Priority
	}
	if input.Notes != "" {
		set["notes"] = input.Notes
	}
	if input.AssignedTo != nil {
		if *input.AssignedTo == nil {
			unset["assigned_to"] = ""
		} else {
			set["assigned_to"] = **input.AssignedTo
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res := s.db.Collection(inquiriesCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var inquiry models.Inquiry
	if err := res.Decode(&inquiry); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("inquiry")
		}
		return nil, err
	}
	return &inquiry, nil
}

func (s *inquiryService) DeleteInquiry(ctx context.Context, principal access.Principal, id primitive.ObjectID) error {
	inquiry, err := s.findInquiry(ctx, id)
	if err != nil {
		return err
	}
	if !principal.CanAccess(inquiry.OwnerID()) {
		return apperrors.NewForbidden("you do not have access to this inquiry")
	}
	_, err = s.db.Collection(inquiriesCollection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *inquiryService) insert(ctx context.Context, inquiry *models.Inquiry) error {
	return db.Try(func() error {
		res, err := s.db.Collection(inquiriesCollection).InsertOne(ctx, inquiry)
		if err != nil {
			return err
		}
		inquiry.ID = res.InsertedID.(primitive.ObjectID)
		return nil
	})
}

func (s *inquiryService) findInquiry(ctx context.Context, id primitive.ObjectID) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := s.db.Collection(inquiriesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&inquiry)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFound("inquiry")
	}
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (s *inquiryService) dispatchReceived(ctx context.Context, inquiry *models.Inquiry) {
	data := map[string]interface{}{
		"name":         inquiry.ContactInfo.Name,
		"property":     inquiry.PropertyName,
		"inquiry_type": string(inquiry.InquiryType),
		"inquiry_id":   inquiry.ID.Hex(),
	}
	if err := s.notifier.Dispatch(ctx, inquiry.ContactInfo.Email, notify.TemplateInquiryReceived, data); err != nil {
		log.Printf("failed to dispatch inquiry notification for %s: %v", inquiry.ID.Hex(), err)
	}
}

// ensureDetailBlock guarantees the block matching the inquiry type exists,
// so downstream consumers can rely on its presence.
func ensureDetailBlock(inquiry *models.Inquiry) {
	switch inquiry.InquiryType {
	case models.InquiryInvestment:
		if inquiry.InvestmentInquiryDetails == nil {
			inquiry.InvestmentInquiryDetails = &models.InvestmentInquiryDetails{}
		}
	default:
		if inquiry.SaleInquiryDetails == nil {
			inquiry.SaleInquiryDetails = &models.SaleInquiryDetails{}
		}
	}
}

// purposeMatchesInquiry maps listing purposes onto the two inquiry types.
// Sale and rental listings take sale inquiries; investment listings take
// investment inquiries. Tour listings take neither.
func purposeMatchesInquiry(purpose models.PropertyPurpose, t models.InquiryType) bool {
	switch t {
	case models.InquiryInvestment:
		return purpose == models.PurposeInvestment
	case models.InquirySale:
		return purpose == models.PurposeSale || purpose == models.PurposeRental
	}
	return false
}

// inferInquiryType picks the inquiry type for a short-form submission from
// the listing's purpose; anything non-investment falls back to sale.
func inferInquiryType(purpose models.PropertyPurpose) models.InquiryType {
	if purpose == models.PurposeInvestment {
		return models.InquiryInvestment
	}
	return models.InquirySale
}

func validateContactInfo(c models.ContactInfo) error {
	if c.Name == "" {
		return apperrors.NewValidation("contact_info.name", "name is required")
	}
	if c.Email == "" {
		return apperrors.NewValidation("contact_info.email", "email is required")
	}
	if !utils.IsValidEmail(c.Email) {
		return apperrors.NewValidation("contact_info.email", "invalid email address")
	}
	if c.Phone == "" {
		return apperrors.NewValidation("contact_info.phone", "phone is required")
	}
	return nil
}
