// ABOUTME: Athlete CRUD operations for SQLite storage.
// ABOUTME: List supports owner scoping, name filtering and pagination.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
)

// CreateAthlete stores a new athlete profile.
func (d *DB) CreateAthlete(a *models.Athlete) error {
	query := `
		INSERT INTO athletes (id, user_id, first_name, last_name, age, weight, height, vo2max)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		a.ID.String(),
		a.UserID.String(),
		a.FirstName,
		a.LastName,
		a.Age,
		a.Weight,
		a.Height,
		a.VO2Max,
	)
	if err != nil {
		return fmt.Errorf("create athlete: %w", err)
	}
	return nil
}

// GetAthlete retrieves an athlete by ID.
func (d *DB) GetAthlete(id uuid.UUID) (*models.Athlete, error) {
	query := `
		SELECT id, user_id, first_name, last_name, age, weight, height, vo2max
		FROM athletes
		WHERE id = ?
	`
	row := d.db.QueryRow(query, id.String())

	a, err := scanAthlete(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: athlete %s", ErrNotFound, id)
		}
		return nil, err
	}
	return a, nil
}

// ListAthletes retrieves athletes matching the filter, ordered by last then
// first name.
func (d *DB) ListAthletes(f AthleteFilter) ([]*models.Athlete, error) {
	query := `
		SELECT id, user_id, first_name, last_name, age, weight, height, vo2max
		FROM athletes
		WHERE 1=1
	`
	var args []interface{}

	if f.UserID != nil {
		query += " AND user_id = ?"
		args = append(args, f.UserID.String())
	}
	if f.Name != "" {
		query += " AND (first_name LIKE '%' || ? || '%' OR last_name LIKE '%' || ? || '%')"
		args = append(args, f.Name, f.Name)
	}

	query += " ORDER BY last_name, first_name"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
		if f.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, f.Offset)
		}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list athletes: %w", err)
	}
	defer rows.Close()

	var athletes []*models.Athlete
	for rows.Next() {
		a, err := scanAthlete(rows.Scan)
		if err != nil {
			return nil, err
		}
		athletes = append(athletes, a)
	}
	return athletes, rows.Err()
}

// UpdateAthlete persists mutable athlete fields.
func (d *DB) UpdateAthlete(a *models.Athlete) error {
	query := `
		UPDATE athletes
		SET first_name = ?, last_name = ?, age = ?, weight = ?, height = ?, vo2max = ?
		WHERE id = ?
	`
	result, err := d.db.Exec(query,
		a.FirstName, a.LastName, a.Age, a.Weight, a.Height, a.VO2Max, a.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update athlete: %w", err)
	}
	return requireAffected(result, a.ID.String())
}

// DeleteAthlete removes an athlete and, via cascade, their sessions and
// samples.
func (d *DB) DeleteAthlete(id uuid.UUID) error {
	result, err := d.db.Exec("DELETE FROM athletes WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete athlete: %w", err)
	}
	return requireAffected(result, id.String())
}

// scanAthlete scans one row via the provided scan function.
func scanAthlete(scan func(...interface{}) error) (*models.Athlete, error) {
	var a models.Athlete
	var idStr, userIDStr string
	var age sql.NullInt64
	var weight, height, vo2max sql.NullFloat64

	err := scan(&idStr, &userIDStr, &a.FirstName, &a.LastName, &age, &weight, &height, &vo2max)
	if err != nil {
		return nil, err
	}

	a.ID, _ = uuid.Parse(idStr)
	a.UserID, _ = uuid.Parse(userIDStr)
	if age.Valid {
		v := int(age.Int64)
		a.Age = &v
	}
	if weight.Valid {
		a.Weight = &weight.Float64
	}
	if height.Valid {
		a.Height = &height.Float64
	}
	if vo2max.Valid {
		a.VO2Max = &vo2max.Float64
	}

	return &a, nil
}
