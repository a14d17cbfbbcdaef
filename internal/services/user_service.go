package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/apperrors"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/auth"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/config"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/models"
	"github.com/gtextsoft/gtextsuitebackendrepo-sub000/internal/utils"
)

const usersCollection = "users"

// RegisterInput is the signup form.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

type IUserService interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type userService struct {
	db  *mongo.Database
	cfg *config.Config
}

func NewUserService(database *mongo.Database, cfg *config.Config) IUserService {
	return &userService{db: database, cfg: cfg}
}

// Register creates an account and returns the user with a signed token.
// Email uniqueness is enforced by the unique index on the collection.
func (s *userService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	if input.Name == "" {
		return nil, "", apperrors.NewValidation("name", "name is required")
	}
	if !utils.IsValidEmail(input.Email) {
		return nil, "", apperrors.NewValidation("email", "invalid email address")
	}
	if len(input.Password) < 8 {
		return nil, "", apperrors.NewValidation("password", "password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Phone:        input.Phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := s.db.Collection(usersCollection).InsertOne(ctx, user)
	if err != nil {
		if isDuplicateEmail(err) {
			return nil, "", apperrors.NewConflict("an account with this email already exists")
		}
		return nil, "", err
	}
	user.ID = res.InsertedID.(primitive.ObjectID)

	token, err := auth.GenerateJWT(user.ID, user.IsAdmin, s.cfg.JwtSecret, s.cfg.JwtTTL)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns a fresh token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *userService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, "", apperrors.NewUnauthorized("invalid email or password")
	}
	if err != nil {
		return nil, "", err
	}
	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", apperrors.NewUnauthorized("invalid email or password")
	}

	token, err := auth.GenerateJWT(user.ID, user.IsAdmin, s.cfg.JwtSecret, s.cfg.JwtTTL)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *userService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.NewNotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isDuplicateEmail(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
