package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MinjunBark/ForRev/internal/auth"
	"github.com/MinjunBark/ForRev/internal/models"
)

// MockUserDB is an in-memory implementation of the UserDBLayer interface.
type MockUserDB struct {
	users         map[string]*models.User
	nextID        int64
	shouldFailOn  string
	errorToReturn error
}

func NewMockUserDB() *MockUserDB {
	return &MockUserDB{
		users:  make(map[string]*models.User),
		nextID: 1,
	}
}

func (m *MockUserDB) CreateUser(ctx context.Context, user *models.User) error {
	if m.shouldFailOn == "CreateUser" {
		return m.errorToReturn
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Username] = user
	return nil
}

func (m *MockUserDB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *MockUserDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	user, exists := m.users[username]
	if !exists {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *MockUserDB) UsernameTaken(ctx context.Context, username string) (bool, error) {
	if m.shouldFailOn == "UsernameTaken" {
		return false, m.errorToReturn
	}
	_, exists := m.users[username]
	return exists, nil
}

func TestRegisterCreatesUserWithHashedPassword(t *testing.T) {
	db := NewMockUserDB()
	service := auth.NewAuthService(db)

	user, err := service.Register(context.Background(), "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "password123"))
	assert.False(t, user.DateJoined.IsZero())
}

func TestRegisterDuplicateUsernameFails(t *testing.T) {
	db := NewMockUserDB()
	service := auth.NewAuthService(db)

	_, err := service.Register(context.Background(), "alice", "", "password123")
	require.NoError(t, err)

	_, err = service.Register(context.Background(), "alice", "other@example.com", "different")
	assert.True(t, errors.Is(err, auth.ErrUsernameTaken))

	// The duplicate attempt must not have created a second identity.
	assert.Len(t, db.users, 1)
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	db := NewMockUserDB()
	service := auth.NewAuthService(db)

	registered, err := service.Register(context.Background(), "bob", "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)

	user, err := service.Login(context.Background(), "bob", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
}

func TestLoginFailsWithWrongPassword(t *testing.T) {
	db := NewMockUserDB()
	service := auth.NewAuthService(db)

	_, err := service.Register(context.Background(), "bob", "", "hunter2hunter2")
	require.NoError(t, err)

	_, err = service.Login(context.Background(), "bob", "not-the-password")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
}

func TestLoginFailsForUnknownUser(t *testing.T) {
	db := NewMockUserDB()
	service := auth.NewAuthService(db)

	_, err := service.Login(context.Background(), "nobody", "whatever")
	assert.True(t, errors.Is(err, auth.ErrInvalidCredentials))
}
