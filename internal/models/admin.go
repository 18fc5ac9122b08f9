package models

import (
	"time"
)

// RoleAdmin is the only role this system issues
const RoleAdmin = "admin"

// Admin is the credential record of the site owner
type Admin struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         string    `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// AdminView is the client-facing identity of an admin
type AdminView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// View returns the public projection of the admin, without the hash
func (a *Admin) View() AdminView {
	return AdminView{ID: a.ID, Email: a.Email, Role: a.Role}
}
