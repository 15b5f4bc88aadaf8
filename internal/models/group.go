package models

import (
	"github.com/uptrace/bun"
)

type Group struct {
	bun.BaseModel `bun:"table:groups"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,unique,notnull" json:"name"`
}

// UserGroup links users to the groups they belong to.
type UserGroup struct {
	bun.BaseModel `bun:"table:user_groups"`

	UserID  int64 `bun:"user_id,pk" json:"user_id"`
	GroupID int64 `bun:"group_id,pk" json:"group_id"`
}
