// ABOUTME: Sample CRUD and atomic batch insert for SQLite storage.
// ABOUTME: The batch insert is the commit step of the CSV ingestion pipeline.
package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
)

// InsertSamples persists a batch of samples in a single transaction.
// All rows commit or none do.
func (d *DB) InsertSamples(samples []models.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin batch insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO samples (id, session_id, time, power, oxygen, cadence, heart_rate, respiration_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range samples {
		_, err := stmt.Exec(
			s.ID.String(),
			s.SessionID.String(),
			s.Time,
			s.Power,
			s.Oxygen,
			s.Cadence,
			s.HeartRate,
			s.RespirationRate,
		)
		if err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch insert: %w", err)
	}
	return nil
}

// AddSample stores a single sample.
func (d *DB) AddSample(s *models.Sample) error {
	query := `
		INSERT INTO samples (id, session_id, time, power, oxygen, cadence, heart_rate, respiration_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		s.ID.String(), s.SessionID.String(), s.Time,
		s.Power, s.Oxygen, s.Cadence, s.HeartRate, s.RespirationRate,
	)
	if err != nil {
		return fmt.Errorf("add sample: %w", err)
	}
	return nil
}

// GetSample retrieves a sample by ID.
func (d *DB) GetSample(id uuid.UUID) (*models.Sample, error) {
	query := `
		SELECT id, session_id, time, power, oxygen, cadence, heart_rate, respiration_rate
		FROM samples
		WHERE id = ?
	`
	s, err := scanSample(d.db.QueryRow(query, id.String()).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: sample %s", ErrNotFound, id)
		}
		return nil, err
	}
	return s, nil
}

// ListSamples retrieves a session's samples ordered by elapsed time.
// limit <= 0 means no limit.
func (d *DB) ListSamples(sessionID uuid.UUID, limit, offset int) ([]models.Sample, error) {
	query := `
		SELECT id, session_id, time, power, oxygen, cadence, heart_rate, respiration_rate
		FROM samples
		WHERE session_id = ?
		ORDER BY time
	`
	args := []interface{}{sessionID.String()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	defer rows.Close()

	var samples []models.Sample
	for rows.Next() {
		s, err := scanSample(rows.Scan)
		if err != nil {
			return nil, err
		}
		samples = append(samples, *s)
	}
	return samples, rows.Err()
}

// DeleteSample removes a sample by ID.
func (d *DB) DeleteSample(id uuid.UUID) error {
	result, err := d.db.Exec("DELETE FROM samples WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete sample: %w", err)
	}
	return requireAffected(result, id.String())
}

// scanSample scans one row via the provided scan function.
func scanSample(scan func(...interface{}) error) (*models.Sample, error) {
	var s models.Sample
	var idStr, sessionIDStr string

	err := scan(&idStr, &sessionIDStr, &s.Time, &s.Power, &s.Oxygen,
		&s.Cadence, &s.HeartRate, &s.RespirationRate)
	if err != nil {
		return nil, err
	}

	s.ID, _ = uuid.Parse(idStr)
	s.SessionID, _ = uuid.Parse(sessionIDStr)
	return &s, nil
}
