package db

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/MinjunBark/ForRev/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- USERS ----------------

func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	_, err := d.Bun.NewInsert().Model(user).Exec(ctx)
	return err
}

func (d *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) UsernameTaken(ctx context.Context, username string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("username = ?", username).
		Exists(ctx)
}

// ListUsers returns all users, most recently joined first.
func (d *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := d.Bun.NewSelect().
		Model(&users).
		Order("date_joined DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser writes the admin-editable fields.
func (d *DB) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := d.Bun.NewUpdate().
		Model(user).
		Column("username", "email").
		Where("id = ?", user.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteUser(ctx context.Context, id int64) (int64, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------------- GROUPS ----------------

func (d *DB) CreateGroup(ctx context.Context, group *models.Group) error {
	_, err := d.Bun.NewInsert().Model(group).Exec(ctx)
	return err
}

func (d *DB) GetGroupByID(ctx context.Context, id int64) (*models.Group, error) {
	var group models.Group
	err := d.Bun.NewSelect().
		Model(&group).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// ListGroups returns all groups ordered by name.
func (d *DB) ListGroups(ctx context.Context) ([]models.Group, error) {
	var groups []models.Group
	err := d.Bun.NewSelect().
		Model(&groups).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (d *DB) UpdateGroup(ctx context.Context, group *models.Group) error {
	_, err := d.Bun.NewUpdate().
		Model(group).
		Column("name").
		Where("id = ?", group.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteGroup(ctx context.Context, id int64) (int64, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.Group)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GroupNamesForUser returns the names of the groups a user belongs to.
func (d *DB) GroupNamesForUser(ctx context.Context, userID int64) ([]string, error) {
	var names []string
	err := d.Bun.NewSelect().
		ColumnExpr("g.name").
		Table("user_groups").
		Join("JOIN groups AS g ON g.id = user_groups.group_id").
		Where("user_groups.user_id = ?", userID).
		Order("g.name ASC").
		Scan(ctx, &names)
	if err != nil {
		return nil, err
	}
	return names, nil
}
