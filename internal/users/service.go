package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MinjunBark/ForRev/internal/models"
)

var ErrNotFound = errors.New("not found")

// UserDBLayer is the persistence surface for identity administration.
type UserDBLayer interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) (int64, error)

	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroupByID(ctx context.Context, id int64) (*models.Group, error)
	ListGroups(ctx context.Context) ([]models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, id int64) (int64, error)

	GroupNamesForUser(ctx context.Context, userID int64) ([]string, error)
}

// UserDetail is a user plus their group memberships, the admin view shape.
type UserDetail struct {
	ID         int64    `json:"id"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Groups     []string `json:"groups"`
	DateJoined string   `json:"date_joined"`
}

type UserService struct {
	DB UserDBLayer
}

func NewUserService(db UserDBLayer) *UserService {
	return &UserService{DB: db}
}

func (s *UserService) detail(ctx context.Context, user *models.User) (*UserDetail, error) {
	groups, err := s.DB.GroupNamesForUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch groups for user %d: %w", user.ID, err)
	}
	if groups == nil {
		groups = []string{}
	}
	return &UserDetail{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Groups:     groups,
		DateJoined: user.DateJoined.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]UserDetail, error) {
	users, err := s.DB.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	details := make([]UserDetail, 0, len(users))
	for i := range users {
		d, err := s.detail(ctx, &users[i])
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*UserDetail, error) {
	user, err := s.DB.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}
	return s.detail(ctx, user)
}

// UpdateUser changes the admin-editable fields (username, email).
func (s *UserService) UpdateUser(ctx context.Context, id int64, username, email string) (*UserDetail, error) {
	user, err := s.DB.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}

	if username != "" {
		user.Username = username
	}
	user.Email = email

	if err := s.DB.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return s.detail(ctx, user)
}

func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	affected, err := s.DB.DeleteUser(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserService) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.DB.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

func (s *UserService) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	group, err := s.DB.GetGroupByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch group %d: %w", id, err)
	}
	return group, nil
}

func (s *UserService) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	group := &models.Group{Name: name}
	if err := s.DB.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

func (s *UserService) UpdateGroup(ctx context.Context, id int64, name string) (*models.Group, error) {
	group, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	group.Name = name
	if err := s.DB.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to update group %d: %w", id, err)
	}
	return group, nil
}

func (s *UserService) DeleteGroup(ctx context.Context, id int64) error {
	affected, err := s.DB.DeleteGroup(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete group %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
