package auth

import (
	"time"

	"github.com/rosterhub/rosterhub/internal/security"
)

// User represents a portal user account.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         security.Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal converts the account into the principal record handed to
// the security engine.
func (u *User) Principal() security.Principal {
	return security.Principal{ID: u.ID, Email: u.Email, Role: u.Role}
}
