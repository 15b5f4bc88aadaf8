package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MinjunBark/ForRev/internal/models"
)

var (
	// ErrUsernameTaken is returned by Register when the username exists.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials is returned by Login on any username/password
	// mismatch. Unknown usernames are deliberately indistinguishable from
	// wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserDBLayer is the user persistence surface the auth service depends on.
type UserDBLayer interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

type AuthService struct {
	DB UserDBLayer
}

func NewAuthService(db UserDBLayer) *AuthService {
	return &AuthService{DB: db}
}

// Register creates a new identity. The caller is responsible for having
// checked that username and password are present.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	taken, err := s.DB.UsernameTaken(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DateJoined:   time.Now().UTC(),
	}
	if err := s.DB.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns the matching user.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.DB.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
