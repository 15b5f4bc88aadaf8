package events_test

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

	events_db "github.com/MinjunBark/ForRev/internal/events/db"
	"github.com/MinjunBark/ForRev/internal/models"
	users_db "github.com/MinjunBark/ForRev/internal/users/db"
)

func setupTestDB(t *testing.T) (*events_db.DB, *users_db.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.User)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.Event)(nil)))

	return &events_db.DB{Bun: bunDB}, &users_db.DB{Bun: bunDB}
}

func createTestUser(t *testing.T, userDB *users_db.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "not-a-real-hash",
		DateJoined:   time.Now().UTC(),
	}
	require.NoError(t, userDB.CreateUser(context.Background(), user))
	require.NotZero(t, user.ID)
	return user
}

func newEvent(owner *models.User, title string, createdAt time.Time) *models.Event {
	return &models.Event{
		Title:       title,
		Description: "a description",
		Location:    "somewhere",
		CreatedBy:   &owner.ID,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

func TestCreateAndGetEvent(t *testing.T) {
	eventDB, userDB := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, userDB, "alice")

	event := newEvent(owner, "Meetup", time.Now().UTC())
	require.NoError(t, eventDB.CreateEvent(ctx, event))
	require.NotZero(t, event.ID)

	got, err := eventDB.GetEventByID(ctx, event.ID)
	require.NoError(t, err)

	assert.Equal(t, "Meetup", got.Title)
	assert.Equal(t, "a description", got.Description)
	assert.Equal(t, "somewhere", got.Location)
	assert.Equal(t, "alice", got.CreatedByUsername)
	require.NotNil(t, got.CreatedBy)
	assert.Equal(t, owner.ID, *got.CreatedBy)
}

func TestGetEventByIDMissing(t *testing.T) {
	eventDB, _ := setupTestDB(t)

	_, err := eventDB.GetEventByID(context.Background(), 9999)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestListEventsOrderedByCreatedAtDesc(t *testing.T) {
	eventDB, userDB := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, userDB, "alice")

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		event := newEvent(owner, title, base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, eventDB.CreateEvent(ctx, event))
	}

	list, err := eventDB.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "second", list[1].Title)
	assert.Equal(t, "first", list[2].Title)
}

func TestListEventsByOwnerFiltersOtherUsers(t *testing.T) {
	eventDB, userDB := setupTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, userDB, "alice")
	bob := createTestUser(t, userDB, "bob")

	require.NoError(t, eventDB.CreateEvent(ctx, newEvent(alice, "alice event", time.Now().UTC())))
	require.NoError(t, eventDB.CreateEvent(ctx, newEvent(bob, "bob event", time.Now().UTC())))

	list, err := eventDB.ListEventsByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "alice event", list[0].Title)
	assert.Equal(t, "alice", list[0].CreatedByUsername)
}

func TestGetEventByIDForOwner(t *testing.T) {
	eventDB, userDB := setupTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, userDB, "alice")
	bob := createTestUser(t, userDB, "bob")

	event := newEvent(alice, "alice event", time.Now().UTC())
	require.NoError(t, eventDB.CreateEvent(ctx, event))

	got, err := eventDB.GetEventByIDForOwner(ctx, event.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)

	// Someone else's scoped lookup behaves like a missing row.
	_, err = eventDB.GetEventByIDForOwner(ctx, event.ID, bob.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateEvent(t *testing.T) {
	eventDB, userDB := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, userDB, "alice")
	event := newEvent(owner, "before", time.Now().UTC())
	require.NoError(t, eventDB.CreateEvent(ctx, event))

	event.Title = "after"
	event.Location = "elsewhere"
	event.UpdatedAt = time.Now().UTC().Add(time.Minute)
	require.NoError(t, eventDB.UpdateEvent(ctx, event))

	got, err := eventDB.GetEventByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, "elsewhere", got.Location)
}

func TestDeleteEvent(t *testing.T) {
	eventDB, userDB := setupTestDB(t)
	ctx := context.Background()

	owner := createTestUser(t, userDB, "alice")
	event := newEvent(owner, "doomed", time.Now().UTC())
	require.NoError(t, eventDB.CreateEvent(ctx, event))

	affected, err := eventDB.DeleteEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = eventDB.DeleteEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}
