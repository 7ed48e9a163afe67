// ABOUTME: User account CRUD operations for SQLite storage.
// ABOUTME: Enforces email uniqueness at the database level.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
)

// ErrEmailTaken is returned when creating a user with an email that is
// already registered.
var ErrEmailTaken = errors.New("email already registered")

// CreateUser stores a new user account.
func (d *DB) CreateUser(u *models.User) error {
	query := `
		INSERT INTO users (id, email, hashed_password, first_name, last_name, username, is_staff, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		u.ID.String(),
		u.Email,
		u.HashedPassword,
		u.FirstName,
		u.LastName,
		u.Username,
		u.IsStaff,
		u.IsActive,
		u.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (d *DB) GetUser(id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, hashed_password, first_name, last_name, username, is_staff, is_active, created_at
		FROM users
		WHERE id = ?
	`
	return scanUser(d.db.QueryRow(query, id.String()))
}

// GetUserByEmail retrieves a user by email address.
func (d *DB) GetUserByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, hashed_password, first_name, last_name, username, is_staff, is_active, created_at
		FROM users
		WHERE email = ?
	`
	return scanUser(d.db.QueryRow(query, email))
}

// UpdateUser persists mutable user fields.
func (d *DB) UpdateUser(u *models.User) error {
	query := `
		UPDATE users
		SET email = ?, hashed_password = ?, first_name = ?, last_name = ?, username = ?, is_staff = ?, is_active = ?
		WHERE id = ?
	`
	result, err := d.db.Exec(query,
		u.Email, u.HashedPassword, u.FirstName, u.LastName, u.Username,
		u.IsStaff, u.IsActive, u.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireAffected(result, u.ID.String())
}

// DeleteUser removes a user and, via cascade, their athletes, sessions and
// samples.
func (d *DB) DeleteUser(id uuid.UUID) error {
	result, err := d.db.Exec("DELETE FROM users WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireAffected(result, id.String())
}

// requireAffected maps a zero-row write to ErrNotFound.
func requireAffected(result sql.Result, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// scanUser scans a single row into a User struct.
func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var idStr, createdAt string
	var firstName, lastName, username sql.NullString

	err := row.Scan(&idStr, &u.Email, &u.HashedPassword, &firstName, &lastName, &username,
		&u.IsStaff, &u.IsActive, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	u.ID, _ = uuid.Parse(idStr)
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if firstName.Valid {
		u.FirstName = &firstName.String
	}
	if lastName.Valid {
		u.LastName = &lastName.String
	}
	if username.Valid {
		u.Username = &username.String
	}

	return &u, nil
}
