package services

import (
	"context"
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

const contactFormsCollection = "contact_forms"

// CreateContactInput is the public contact form submission.
type CreateContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type IContactService interface {
	CreateContact(ctx context.Context, principal access.Principal, input CreateContactInput) (*models.ContactForm, error)
	ListContacts(ctx context.Context, principal access.Principal, status models.ContactStatus, page PageRequest) ([]models.ContactForm, PageResult, error)
	GetContact(ctx context.Context, principal access.Principal, id primitive.ObjectID) (*models.ContactForm, error)
	UpdateContactStatus(ctx context.Context, principal access.Principal, id primitive.ObjectID, status models.ContactStatus) (*models.ContactForm, error)
	DeleteContact(ctx context.Context, principal access.Principal, id primitive.ObjectID) error
}

type contactService struct {
	db       *mongo.Database
	cfg      *config.Config
	notifier notify.Notifier
}

func NewContactService(database *mongo.Database, cfg *config.Config, notifier notify.Notifier) IContactService {
	return &contactService{db: database, cfg: cfg, notifier: notifier}
}

// CreateContact accepts anonymous submissions; an authenticated caller is
// linked for later reference.
func (s *contactService) CreateContact(ctx context.Context, principal access.Principal, input CreateContactInput) (*models.ContactForm, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidation("name", "name is required")
	}
	if input.Email == "" {
		return nil, apperrors.NewValidation("email", "email is required")
	}
	if !utils.IsValidEmail(input.Email) {
		return nil, apperrors.NewValidation("email", "invalid email address")
	}
	if input.Message == "" {
		return nil, apperrors.NewValidation("message", "message is required")
	}

	now := time.Now().UTC()
	form := &models.ContactForm{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Subject:   input.Subject,
		Message:   input.Message,
		Status:    models.ContactNew,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if principal.Present {
		userID := principal.ID
		form.UserID = &userID
	}

	err := db.Try(func() error {
		res, err := s.db.Collection(contactFormsCollection).InsertOne(ctx, form)
		if err != nil {
			return err
		}
		form.ID = res.InsertedID.(primitive.ObjectID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{"name": form.Name, "subject": form.Subject}
	if err := s.notifier.Dispatch(ctx, form.Email, notify.TemplateContactReceived, data); err != nil {
		log.Printf("failed to dispatch contact notification for %s: %v", form.ID.Hex(), err)
	}
	return form, nil
}

func (s *contactService) ListContacts(ctx context.Context, principal access.Principal, status models.ContactStatus, page PageRequest) ([]models.ContactForm, PageResult, error) {
	if !principal.IsAdmin {
		return nil, PageResult{}, apperrors.NewForbidden("only admins can list contact submissions")
	}
	page = page.Normalize(s.cfg.DefaultPageLimit, s.cfg.MaxPageLimit)

	query := bson.M{}
	if status != "" {
		if !models.ValidContactStatus(status) {
			return nil, PageResult{}, apperrors.NewValidation("status", "unknown contact status: "+string(status))
		}
		query["status"] = status
	}

	coll := s.db.Collection(contactFormsCollection)
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
	forms := []models.ContactForm{}
	if err := cursor.All(ctx, &forms); err != nil {
		return nil, PageResult{}, err
	}
	return forms, NewPageResult(page, total), nil
}

func (s *contactService) GetContact(ctx context.Context, principal access.Principal, id primitive.ObjectID) (*models.ContactForm, error) {
	if !principal.IsAdmin {
		return nil, apperrors.NewForbidden("only admins can view contact submissions")
	}
	var form models.ContactForm
	err := s.db.Collection(contactFormsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&form)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFound("contact submission")
	}
	if err != nil {
		return nil, err
	}
	return &form, nil
}

func (s *contactService) UpdateContactStatus(ctx context.Context, principal access.Principal, id primitive.ObjectID, status models.ContactStatus) (*models.ContactForm, error) {
	if !principal.IsAdmin {
		return nil, apperrors.NewForbidden("only admins can update contact submissions")
	}
	if !models.ValidContactStatus(status) {
		return nil, apperrors.NewValidation("status", "unknown contact status: "+string(status))
	}

	res := s.db.Collection(contactFormsCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var form models.ContactForm
	if err := res.Decode(&form); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("contact submission")
		}
		return nil, err
	}
	return &form, nil
}

func (s *contactService) DeleteContact(ctx context.Context, principal access.Principal, id primitive.ObjectID) error {
	if !principal.IsAdmin {
		return apperrors.NewForbidden("only admins can delete contact submissions")
	}
	res, err := s.db.Collection(contactFormsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFound("contact submission")
	}
	return nil
}
