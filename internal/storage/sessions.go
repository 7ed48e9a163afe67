// ABOUTME: Session (test) CRUD operations for SQLite storage.
// ABOUTME: Includes the derived-metrics update used after recomputation.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
)

const sessionColumns = `id, athlete_id, test_type, test_date, weight, height, notes,
	max_power, avg_power, power_weight_ratio, vo2max, max_hr, avg_hr, total_work, duration, created_at`

// CreateSession stores a new test session.
func (d *DB) CreateSession(s *models.Session) error {
	query := `
		INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.db.Exec(query,
		s.ID.String(),
		s.AthleteID.String(),
		string(s.Type),
		s.Date.Format(time.RFC3339),
		s.Weight,
		s.Height,
		s.Notes,
		s.MaxPower,
		s.AvgPower,
		s.PowerWeightRatio,
		s.Metrics.VO2Max,
		s.MaxHeartRate,
		s.AvgHeartRate,
		s.TotalWork,
		s.Metrics.Duration,
		s.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (d *DB) GetSession(id uuid.UUID) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = ?`
	s, err := scanSession(d.db.QueryRow(query, id.String()).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
		}
		return nil, err
	}
	return s, nil
}

// ListSessions retrieves sessions matching the filter, most recent test
// date first.
func (d *DB) ListSessions(f SessionFilter) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE 1=1`
	var args []interface{}

	if f.AthleteID != nil {
		query += " AND athlete_id = ?"
		args = append(args, f.AthleteID.String())
	}
	if f.Type != nil {
		query += " AND test_type = ?"
		args = append(args, string(*f.Type))
	}
	if f.OwnerID != nil {
		query += " AND athlete_id IN (SELECT id FROM athletes WHERE user_id = ?)"
		args = append(args, f.OwnerID.String())
	}

	query += " ORDER BY test_date DESC"
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
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		s, err := scanSession(rows.Scan)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// UpdateSession persists mutable session fields, including any manually
// entered metric values.
func (d *DB) UpdateSession(s *models.Session) error {
	query := `
		UPDATE sessions
		SET test_type = ?, test_date = ?, weight = ?, height = ?, notes = ?,
		    max_power = ?, avg_power = ?, power_weight_ratio = ?, vo2max = ?,
		    max_hr = ?, avg_hr = ?, total_work = ?, duration = ?
		WHERE id = ?
	`
	result, err := d.db.Exec(query,
		string(s.Type), s.Date.Format(time.RFC3339), s.Weight, s.Height, s.Notes,
		s.MaxPower, s.AvgPower, s.PowerWeightRatio, s.Metrics.VO2Max,
		s.MaxHeartRate, s.AvgHeartRate, s.TotalWork, s.Metrics.Duration,
		s.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	return requireAffected(result, s.ID.String())
}

// UpdateSessionMetrics overwrites the derived-metrics block of a session.
// Unset fields in m clear the stored values, so stale numbers never survive
// a recompute over a smaller sample set.
func (d *DB) UpdateSessionMetrics(id uuid.UUID, m models.Metrics) error {
	query := `
		UPDATE sessions
		SET max_power = ?, avg_power = ?, power_weight_ratio = ?, vo2max = ?,
		    max_hr = ?, avg_hr = ?, total_work = ?, duration = ?
		WHERE id = ?
	`
	result, err := d.db.Exec(query,
		m.MaxPower, m.AvgPower, m.PowerWeightRatio, m.VO2Max,
		m.MaxHeartRate, m.AvgHeartRate, m.TotalWork, m.Duration,
		id.String(),
	)
	if err != nil {
		return fmt.Errorf("update session metrics: %w", err)
	}
	return requireAffected(result, id.String())
}

// DeleteSession removes a session and, via cascade, its samples.
func (d *DB) DeleteSession(id uuid.UUID) error {
	result, err := d.db.Exec("DELETE FROM sessions WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return requireAffected(result, id.String())
}

// scanSession scans one row via the provided scan function.
func scanSession(scan func(...interface{}) error) (*models.Session, error) {
	var s models.Session
	var idStr, athleteIDStr, testType, testDate, createdAt string
	var weight, height, maxPower, avgPower, ratio, vo2max, totalWork sql.NullFloat64
	var maxHR, avgHR, duration sql.NullInt64
	var notes sql.NullString

	err := scan(&idStr, &athleteIDStr, &testType, &testDate, &weight, &height, &notes,
		&maxPower, &avgPower, &ratio, &vo2max, &maxHR, &avgHR, &totalWork, &duration, &createdAt)
	if err != nil {
		return nil, err
	}

	s.ID, _ = uuid.Parse(idStr)
	s.AthleteID, _ = uuid.Parse(athleteIDStr)
	s.Type = models.TestType(testType)
	s.Date, _ = time.Parse(time.RFC3339, testDate)
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if weight.Valid {
		s.Weight = &weight.Float64
	}
	if height.Valid {
		s.Height = &height.Float64
	}
	if notes.Valid {
		s.Notes = &notes.String
	}
	if maxPower.Valid {
		s.MaxPower = &maxPower.Float64
	}
	if avgPower.Valid {
		s.AvgPower = &avgPower.Float64
	}
	if ratio.Valid {
		s.PowerWeightRatio = &ratio.Float64
	}
	if vo2max.Valid {
		s.Metrics.VO2Max = &vo2max.Float64
	}
	if maxHR.Valid {
		v := int(maxHR.Int64)
		s.MaxHeartRate = &v
	}
	if avgHR.Valid {
		v := int(avgHR.Int64)
		s.AvgHeartRate = &v
	}
	if totalWork.Valid {
		s.TotalWork = &totalWork.Float64
	}
	if duration.Valid {
		v := int(duration.Int64)
		s.Metrics.Duration = &v
	}

	return &s, nil
}
