package services

import (
	"context"
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
)

const toursCollection = "tours"

var tourUpdatableFields = map[string]bool{
	"name":           true,
	"description":    true,
	"location":       true,
	"starting_price": true,
	"min_guests":     true,
	"max_guests":     true,
	"is_active":      true,
	"images":         true,
}

type ITourService interface {
	CreateTour(ctx context.Context, principal access.Principal, tour *models.Tour) (*models.Tour, error)
	ListTours(ctx context.Context, principal access.Principal, page PageRequest) ([]models.Tour, PageResult, error)
	GetTour(ctx context.Context, principal access.Principal, id primitive.ObjectID) (*models.Tour, error)
	UpdateTour(ctx context.Context, principal access.Principal, id primitive.ObjectID, updates map[string]interface{}) (*models.Tour, error)
	DeleteTour(ctx context.Context, principal access.Principal, id primitive.ObjectID) error
}

type tourService struct {
	db  *mongo.Database
	cfg *config.Config
}

func NewTourService(database *mongo.Database, cfg *config.Config) ITourService {
	return &tourService{db: database, cfg: cfg}
}

func (s *tourService) CreateTour(ctx context.Context, principal access.Principal, tour *models.Tour) (*models.Tour, error) {
	if !principal.IsAdmin {
		return nil, apperrors.NewForbidden("only admins can create tours")
	}
	if tour.Name == "" {
		return nil, apperrors.NewValidation("name", "name is required")
	}
	if tour.StartingPrice < 0 {
		return nil, apperrors.NewValidation("starting_price", "starting price cannot be negative")
	}
	if tour.MinGuests < 1 {
		tour.MinGuests = 1
	}
	if tour.MaxGuests > 0 && tour.MaxGuests < tour.MinGuests {
		return nil, apperrors.NewValidation("max_guests", "max_guests cannot be below min_guests")
	}

	now := time.Now().UTC()
	tour.ID = primitive.NilObjectID
	tour.CreatedBy = principal.ID
	tour.CreatedAt = now
	tour.UpdatedAt = now
	if tour.Images == nil {
		tour.Images = []string{}
	}

	err := db.Try(func() error {
		res, err := s.db.Collection(toursCollection).InsertOne(ctx, tour)
		if err != nil {
			return err
		}
		tour.ID = res.InsertedID.(primitive.ObjectID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tour, nil
}

func (s *tourService) ListTours(ctx context.Context, principal access.Principal, page PageRequest) ([]models.Tour, PageResult, error) {
	page = page.Normalize(s.cfg.DefaultPageLimit, s.cfg.MaxPageLimit)

	query := bson.M{}
	if !principal.IsAdmin {
		query["is_active"] = true
	}

	coll := s.db.Collection(toursCollection)
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
	tours := []models.Tour{}
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, PageResult{}, err
	}
	return tours, NewPageResult(page, total), nil
}

func (s *tourService) GetTour(ctx context.Context, principal access.Principal, id primitive.ObjectID) (*models.Tour, error) {
	query := bson.M{"_id": id}
	if !principal.IsAdmin {
		query["is_active"] = true
	}
	var tour models.Tour
	err := s.db.Collection(toursCollection).FindOne(ctx, query).Decode(&tour)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFound("tour")
	}
	if err != nil {
		return nil, err
	}
	return &tour, nil
}

func (s *tourService) UpdateTour(ctx context.Context, principal access.Principal, id primitive.ObjectID, updates map[string]interface{}) (*models.Tour, error) {
	if !principal.IsAdmin {
		return nil, apperrors.NewForbidden("only admins can update tours")
	}
	set := bson.M{}
	for field, value := range updates {
		if !tourUpdatableFields[field] {
			return nil, apperrors.NewValidation(field, "field cannot be updated")
		}
		set[field] = value
	}
	set["updated_at"] = time.Now().UTC()

	res := s.db.Collection(toursCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var tour models.Tour
	if err := res.Decode(&tour); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("tour")
		}
		return nil, err
	}
	return &tour, nil
}

func (s *tourService) DeleteTour(ctx context.Context, principal access.Principal, id primitive.ObjectID) error {
	if !principal.IsAdmin {
		return apperrors.NewForbidden("only admins can delete tours")
	}
	res, err := s.db.Collection(toursCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFound("tour")
	}
	return nil
}
