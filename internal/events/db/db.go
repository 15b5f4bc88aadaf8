package db

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/MinjunBark/ForRev/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ownerJoin pulls the owner's username alongside each event so responses can
// show who created it without a second query.
func ownerJoin(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		ColumnExpr("event.*").
		ColumnExpr("u.username AS created_by_username").
		Join("LEFT JOIN users AS u ON u.id = event.created_by")
}

// CreateEvent inserts a new event and fills in its generated ID.
func (d *DB) CreateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewInsert().Model(event).Exec(ctx)
	return err
}

// GetEventByID fetches one event by its ID.
func (d *DB) GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	err := ownerJoin(d.Bun.NewSelect().Model(&event)).
		Where("event.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEventByIDForOwner fetches one event only if the given user owns it.
func (d *DB) GetEventByIDForOwner(ctx context.Context, id, userID int64) (*models.Event, error) {
	var event models.Event
	err := ownerJoin(d.Bun.NewSelect().Model(&event)).
		Where("event.id = ?", id).
		Where("event.created_by = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents returns every event, newest first.
func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := ownerJoin(d.Bun.NewSelect().Model(&events)).
		Order("event.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListEventsByOwner returns the given user's events, newest first.
func (d *DB) ListEventsByOwner(ctx context.Context, userID int64) ([]models.Event, error) {
	var events []models.Event
	err := ownerJoin(d.Bun.NewSelect().Model(&events)).
		Where("event.created_by = ?", userID).
		Order("event.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEvent writes the mutable fields plus updated_at.
func (d *DB) UpdateEvent(ctx context.Context, event *models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(event).
		Column("title", "description", "location", "start_time", "end_time", "updated_at").
		Where("id = ?", event.ID).
		Exec(ctx)
	return err
}

// DeleteEvent removes an event and reports how many rows went away, so the
// caller can distinguish a delete from a no-op.
func (d *DB) DeleteEvent(ctx context.Context, id int64) (int64, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
