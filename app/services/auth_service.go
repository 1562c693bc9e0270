package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shashiranjanraj/tomato/app/models"
	"github.com/shashiranjanraj/tomato/pkg/auth"
)

// UserStore is the persistence surface the auth and cart services need.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	IncrementCartItem(ctx context.Context, userID, itemID string) error
	DecrementCartItem(ctx context.Context, userID, itemID string) error
	GetCart(ctx context.Context, userID string) (map[string]int, error)
	ClearCart(ctx context.Context, userID string) error
}

type AuthService struct {
	users UserStore
}

func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Register creates an account and returns a signed token for it.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" {
		return "", ErrValidation
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrValidation
	}
	if len(password) < 8 {
		return "", ErrValidation
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return "", ErrDuplicateEmail
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return "", err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	u := &models.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
		CartData: map[string]int{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		// The unique index on email closes the check-then-insert race.
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrDuplicateEmail
		}
		return "", err
	}

	return auth.GenerateToken(u.ID.Hex(), u.Role)
}

// Login verifies the credentials and returns a signed token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrBadCredentials
		}
		return "", err
	}
	if !auth.CheckPassword(u.Password, password) {
		return "", ErrBadCredentials
	}
	return auth.GenerateToken(u.ID.Hex(), u.Role)
}
