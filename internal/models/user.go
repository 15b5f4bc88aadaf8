package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	Username     string    `bun:"username,unique,notnull" json:"username"`
	Email        string    `bun:"email,nullzero" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	DateJoined   time.Time `bun:"date_joined,notnull" json:"date_joined"`
}

// PublicUser is the shape returned by the auth endpoints. The password hash
// never leaves the service layer.
type PublicUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		Username: u.Username,
		Email:    u.Email,
	}
}
