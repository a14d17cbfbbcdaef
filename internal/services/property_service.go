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
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/utils"
)

const propertiesCollection = "properties"

// propertyUpdatableFields whitelists the fields PATCH may touch.
var propertyUpdatableFields = map[string]bool{
	"title":              true,
	"description":        true,
	"location":           true,
	"property_purpose":   true,
	"price":              true,
	"size":               true,
	"is_active":          true,
	"is_listed":          true,
	"amenities":          true,
	"sale_details":       true,
	"rental_details":     true,
	"investment_details": true,
	"images":             true,
}

// PropertyListFilter narrows a catalog list query.
type PropertyListFilter struct {
	Purpose  models.PropertyPurpose
	Location string
	View     access.PropertyView
}

type IPropertyService interface {
	CreateProperty(ctx context.Context, principal access.Principal, property *models.Property) (*models.Property, error)
	ListProperties(ctx context.Context, principal access.Principal, filter PropertyListFilter, page PageRequest) ([]models.Property, PageResult, error)
	GetProperty(ctx context.Context, principal access.Principal, id primitive.ObjectID, view access.PropertyView) (*models.Property, error)
	UpdateProperty(ctx context.Context, principal access.Principal, id primitive.ObjectID, updates map[string]interface{}) (*models.Property, error)
	DeleteProperty(ctx context.Context, principal access.Principal, id primitive.ObjectID) error
	RelatedProperties(ctx context.Context, principal access.Principal, id primitive.ObjectID, limit int) ([]models.Property, error)
}

type propertyService struct {
	db  *mongo.Database
	cfg *config.Config
}

func NewPropertyService(database *mongo.Database, cfg *config.Config) IPropertyService {
	return &propertyService{db: database, cfg: cfg}
}

func (s *propertyService) CreateProperty(ctx context.Context, principal access.Principal, property *models.Property) (*models.Property, error) {
	if !principal.IsAdmin {
		return nil, apperrors.NewForbidden("only admins can create properties")
	}
	if err := validateProperty(property); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	property.ID = primitive.NilObjectID
	property.CreatedBy = principal.ID
	property.CreatedAt = now
	property.UpdatedAt = now
	if property.Images == nil {
		property.Images = []string{}
	}
	if property.PriceNumeric == nil {
		if v := utils.NumericValue(property.Price); v > 0 {
			property.PriceNumeric = &v
		}
	}

	err := db.Try(func() error {
		res, err := s.db.Collection(propertiesCollection).InsertOne(ctx, property)
		if err != nil {
			return err
		}
		property.ID = res.InsertedID.(primitive.ObjectID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return property, nil
}

func (s *propertyService) ListProperties(ctx context.Context, principal access.Principal, filter PropertyListFilter, page PageRequest) ([]models.Property, PageResult, error) {
	page = page.Normalize(s.cfg.DefaultPageLimit, s.cfg.MaxPageLimit)

	query := principal.PropertyVisibilityFilter(filter.View)
	if filter.Purpose != "" {
		if !models.ValidPurpose(filter.Purpose) {
			return nil, PageResult{}, apperrors.NewValidation("purpose", "unknown property purpose: "+string(filter.Purpose))
		}
		query["property_purpose"] = filter.Purpose
	}
	if filter.Location != "" {
		query["location"] = primitive.Regex{Pattern: regexEscape(filter.Location), Options: "i"}
	}

	coll := s.db.Collection(propertiesCollection)
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
	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, PageResult{}, err
	}
	return properties, NewPageResult(page, total), nil
}

func (s *propertyService) GetProperty(ctx context.Context, principal access.Principal, id primitive.ObjectID, view access.PropertyView) (*models.Property, error) {
	query := principal.PropertyVisibilityFilter(view)
	query["_id"] = id

	var property models.Property
	err := s.db.Collection(propertiesCollection).FindOne(ctx, query).Decode(&property)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFound("property")
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (s *propertyService) UpdateProperty(ctx context.Context, principal access.Principal, id primitive.ObjectID, updates map[string]interface{}) (*models.Property, error) {
	if !principal.IsAdmin {
		return nil, apperrors.NewForbidden("only admins can update properties")
	}

	set := bson.M{}
	for field, value := range updates {
		if !propertyUpdatableFields[field] {
			return nil, apperrors.NewValidation(field, "field cannot be updated")
		}
		set[field] = value
	}
	if purpose, ok := set["property_purpose"]; ok {
		p, _ := purpose.(string)
		if !models.ValidPurpose(models.PropertyPurpose(p)) {
			return nil, apperrors.NewValidation("property_purpose", "unknown property purpose: "+p)
		}
	}
	if price, ok := set["price"].(string); ok {
		if v := utils.NumericValue(price); v > 0 {
			set["price_numeric"] = v
		}
	}
	set["updated_at"] = time.Now().UTC()

	res := s.db.Collection(propertiesCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var property models.Property
	if err := res.Decode(&property); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("property")
		}
		return nil, err
	}
	return &property, nil
}

// DeleteProperty removes the document permanently. Existing bookings keep
// only the property_id reference; callers that need history must rely on
// snapshots captured at booking time.
func (s *propertyService) DeleteProperty(ctx context.Context, principal access.Principal, id primitive.ObjectID) error {
	if !principal.IsAdmin {
		return apperrors.NewForbidden("only admins can delete properties")
	}
	res, err := s.db.Collection(propertiesCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperrors.NewNotFound("property")
	}
	return nil
}

// RelatedProperties ranks the rest of the catalog against the source
// listing and returns the top scoring candidates. Non-admins only see
// candidates that are both listed and active.
func (s *propertyService) RelatedProperties(ctx context.Context, principal access.Principal, id primitive.ObjectID, limit int) ([]models.Property, error) {
	if limit < 1 {
		limit = s.cfg.RelatedDefaultLimit
	}

	var source models.Property
	err := s.db.Collection(propertiesCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&source)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFound("property")
	}
	if err != nil {
		return nil, err
	}

	query := bson.M{"_id": bson.M{"$ne": id}}
	if !principal.IsAdmin {
		query["is_listed"] = true
		query["is_active"] = true
	}
	cursor, err := s.db.Collection(propertiesCollection).Find(ctx, query)
	if err != nil {
		return nil, err
	}
	candidates := []models.Property{}
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, err
	}

	return rankRelated(&source, candidates, limit), nil
}

func validateProperty(p *models.Property) error {
	if p.Title == "" {
		return apperrors.NewValidation("title", "title is required")
	}
	if p.Location == "" {
		return apperrors.NewValidation("location", "location is required")
	}
	if p.Price == "" {
		return apperrors.NewValidation("price", "price is required")
	}
	if !models.ValidPurpose(p.PropertyPurpose) {
		return apperrors.NewValidation("property_purpose", "unknown property purpose: "+string(p.PropertyPurpose))
	}
	// Investment details travel with investment listings and only with them.
	if p.PropertyPurpose == models.PurposeInvestment && p.InvestmentDetails == nil {
		return apperrors.NewValidation("investment_details", "investment details are required for investment properties")
	}
	if p.PropertyPurpose != models.PurposeInvestment && p.InvestmentDetails != nil {
		return apperrors.NewValidation("investment_details", "investment details are only valid for investment properties")
	}
	return nil
}

// regexEscape quotes regex metacharacters for a case-insensitive contains
// match on user-supplied location text.
func regexEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '.', '*', '+', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(out)
}
