package models

import "time"

// Role identifies one of the two account kinds.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Account is a login identity stored in the accounts table.
type Account struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// AccountView is the public projection of an account.
type AccountView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// View returns the public projection.
func (a *Account) View() AccountView {
	return AccountView{ID: a.ID, Email: a.Email, Role: a.Role}
}
