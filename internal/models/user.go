// ABOUTME: User account model with staff/active flags.
// ABOUTME: Accounts own athlete profiles; staff accounts see everything.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account that owns athlete profiles.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	FirstName      *string   `json:"first_name,omitempty"`
	LastName       *string   `json:"last_name,omitempty"`
	Username       *string   `json:"username,omitempty"`
	IsStaff        bool      `json:"is_staff"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewUser creates a new active User with generated UUID.
func NewUser(email, hashedPassword string) *User {
	return &User{
		ID:             uuid.New(),
		Email:          email,
		HashedPassword: hashedPassword,
		IsActive:       true,
		CreatedAt:      time.Now(),
	}
}

// WithName sets first and last name.
func (u *User) WithName(first, last string) *User {
	if first != "" {
		u.FirstName = &first
	}
	if last != "" {
		u.LastName = &last
	}
	return u
}

// WithUsername sets the display username.
func (u *User) WithUsername(username string) *User {
	u.Username = &username
	return u
}

// AsStaff marks the account as staff.
func (u *User) AsStaff() *User {
	u.IsStaff = true
	return u
}

// CanAccess reports whether the user may act on data owned by ownerID.
// Staff accounts may act on anything.
func (u *User) CanAccess(ownerID uuid.UUID) bool {
	return u.IsStaff || u.ID == ownerID
}
