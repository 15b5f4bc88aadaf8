package users_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/MinjunBark/ForRev/internal/models"
	users_db "github.com/MinjunBark/ForRev/internal/users/db"
)

func setupTestDB(t *testing.T) *users_db.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.User)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Group)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.UserGroup)(nil)))

	return &users_db.DB{Bun: bunDB}
}

func addUser(t *testing.T, db *users_db.DB, username string, joined time.Time) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		DateJoined:   joined,
	}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

func TestCreateAndGetUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := addUser(t, db, "alice", time.Now().UTC())
	require.NotZero(t, user.ID)

	byID, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	byName, err := db.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	_, err = db.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUsernameTaken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	addUser(t, db, "alice", time.Now().UTC())

	taken, err := db.UsernameTaken(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = db.UsernameTaken(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestListUsersNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	addUser(t, db, "oldest", base)
	addUser(t, db, "middle", base.Add(time.Hour))
	addUser(t, db, "newest", base.Add(2*time.Hour))

	list, err := db.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "newest", list[0].Username)
	assert.Equal(t, "middle", list[1].Username)
	assert.Equal(t, "oldest", list[2].Username)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := addUser(t, db, "alice", time.Now().UTC())

	user.Email = "new@example.com"
	require.NoError(t, db.UpdateUser(ctx, user))

	got, err := db.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)

	affected, err := db.DeleteUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = db.DeleteUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestGroupsCRUDAndMembership(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	organizers := &models.Group{Name: "organizers"}
	attendees := &models.Group{Name: "attendees"}
	require.NoError(t, db.CreateGroup(ctx, organizers))
	require.NoError(t, db.CreateGroup(ctx, attendees))

	list, err := db.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Ordered by name.
	assert.Equal(t, "attendees", list[0].Name)
	assert.Equal(t, "organizers", list[1].Name)

	user := addUser(t, db, "alice", time.Now().UTC())
	_, err = db.Bun.NewInsert().
		Model(&models.UserGroup{UserID: user.ID, GroupID: organizers.ID}).
		Exec(ctx)
	require.NoError(t, err)

	names, err := db.GroupNamesForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"organizers"}, names)

	organizers.Name = "staff"
	require.NoError(t, db.UpdateGroup(ctx, organizers))
	got, err := db.GetGroupByID(ctx, organizers.ID)
	require.NoError(t, err)
	assert.Equal(t, "staff", got.Name)

	affected, err := db.DeleteGroup(ctx, attendees.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}
