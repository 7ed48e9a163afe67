// ABOUTME: Aggregate stats queries powering the dashboard endpoints.
// ABOUTME: Leaderboards, global averages and per-athlete progress series.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
)

// statsColumns whitelists the session columns stats queries may rank by.
var statsColumns = map[string]string{
	"vo2max":             "vo2max",
	"max_power":          "max_power",
	"avg_power":          "avg_power",
	"power_weight_ratio": "power_weight_ratio",
}

// IsValidStatsMetric reports whether metric names a rankable column.
func IsValidStatsMetric(metric string) bool {
	_, ok := statsColumns[metric]
	return ok
}

// AthleteBest names the athlete holding the best value of some metric.
type AthleteBest struct {
	AthleteID uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Value     float64   `json:"value"`
}

// GlobalAverages aggregates across all sessions in scope.
type GlobalAverages struct {
	AvgVO2Max      *float64 `json:"avg_vo2max"`
	AvgPower       *float64 `json:"avg_power"`
	AvgPowerWeight *float64 `json:"avg_power_weight"`
	TotalSessions  int      `json:"total_tests"`
}

// OverviewStats is the global performance dashboard payload.
type OverviewStats struct {
	BestVO2Max      *AthleteBest   `json:"best_vo2max"`
	MostPowerful    *AthleteBest   `json:"most_powerful"`
	BestPowerWeight *AthleteBest   `json:"best_power_weight_ratio"`
	Global          GlobalAverages `json:"global_stats"`
}

// TopSession is one leaderboard row.
type TopSession struct {
	SessionID        uuid.UUID       `json:"test_id"`
	AthleteID        uuid.UUID       `json:"athlete_id"`
	AthleteName      string          `json:"athlete_name"`
	Type             models.TestType `json:"test_type"`
	Date             time.Time       `json:"test_date"`
	MaxPower         *float64        `json:"max_power,omitempty"`
	AvgPower         *float64        `json:"avg_power,omitempty"`
	PowerWeightRatio *float64        `json:"power_weight_ratio,omitempty"`
	VO2Max           *float64        `json:"vo2max,omitempty"`
}

// ProgressPoint is one step in an athlete's metric history.
type ProgressPoint struct {
	Date  time.Time       `json:"date"`
	Type  models.TestType `json:"test_type"`
	Value float64         `json:"value"`
}

// statsScope renders the shared WHERE fragment for a StatsFilter.
func statsScope(f StatsFilter) (string, []interface{}) {
	clause := ""
	var args []interface{}
	if f.OwnerID != nil {
		clause += " AND a.user_id = ?"
		args = append(args, f.OwnerID.String())
	}
	if f.Type != nil {
		clause += " AND s.test_type = ?"
		args = append(args, string(*f.Type))
	}
	if f.Since != nil {
		clause += " AND s.test_date >= ?"
		args = append(args, f.Since.Format(time.RFC3339))
	}
	return clause, args
}

// Overview computes the global performance dashboard: the best athlete per
// headline metric plus scope-wide averages.
func (d *DB) Overview(f StatsFilter) (*OverviewStats, error) {
	out := &OverviewStats{}

	for metric, dest := range map[string]**AthleteBest{
		"vo2max":             &out.BestVO2Max,
		"avg_power":          &out.MostPowerful,
		"power_weight_ratio": &out.BestPowerWeight,
	} {
		best, err := d.bestAthlete(metric, f)
		if err != nil {
			return nil, err
		}
		*dest = best
	}

	scope, args := statsScope(f)
	query := `
		SELECT AVG(s.vo2max), AVG(s.avg_power), AVG(s.power_weight_ratio), COUNT(s.id)
		FROM sessions s
		JOIN athletes a ON s.athlete_id = a.id
		WHERE 1=1` + scope

	var avgVO2, avgPower, avgRatio sql.NullFloat64
	err := d.db.QueryRow(query, args...).Scan(&avgVO2, &avgPower, &avgRatio, &out.Global.TotalSessions)
	if err != nil {
		return nil, fmt.Errorf("global stats: %w", err)
	}
	if avgVO2.Valid {
		out.Global.AvgVO2Max = &avgVO2.Float64
	}
	if avgPower.Valid {
		out.Global.AvgPower = &avgPower.Float64
	}
	if avgRatio.Valid {
		out.Global.AvgPowerWeight = &avgRatio.Float64
	}

	return out, nil
}

// bestAthlete finds the athlete with the highest value of metric in scope.
// Returns nil when no session in scope has the metric set.
func (d *DB) bestAthlete(metric string, f StatsFilter) (*AthleteBest, error) {
	col, ok := statsColumns[metric]
	if !ok {
		return nil, fmt.Errorf("invalid stats metric: %s", metric)
	}

	scope, args := statsScope(f)
	query := `
		SELECT a.id, a.first_name, a.last_name, MAX(s.` + col + `) AS best
		FROM sessions s
		JOIN athletes a ON s.athlete_id = a.id
		WHERE s.` + col + ` IS NOT NULL` + scope + `
		GROUP BY a.id
		ORDER BY best DESC
		LIMIT 1
	`

	var idStr, firstName, lastName string
	var value float64
	err := d.db.QueryRow(query, args...).Scan(&idStr, &firstName, &lastName, &value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("best athlete by %s: %w", metric, err)
	}

	id, _ := uuid.Parse(idStr)
	return &AthleteBest{AthleteID: id, Name: firstName + " " + lastName, Value: value}, nil
}

// TopSessions lists the best sessions in scope ranked by metric.
func (d *DB) TopSessions(metric string, f StatsFilter, limit int) ([]TopSession, error) {
	col, ok := statsColumns[metric]
	if !ok {
		return nil, fmt.Errorf("invalid stats metric: %s", metric)
	}

	scope, args := statsScope(f)
	query := `
		SELECT s.id, s.athlete_id, a.first_name, a.last_name, s.test_type, s.test_date,
		       s.max_power, s.avg_power, s.power_weight_ratio, s.vo2max
		FROM sessions s
		JOIN athletes a ON s.athlete_id = a.id
		WHERE s.` + col + ` IS NOT NULL` + scope + `
		ORDER BY s.` + col + ` DESC
		LIMIT ?
	`
	args = append(args, limit)

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("top sessions: %w", err)
	}
	defer rows.Close()

	var top []TopSession
	for rows.Next() {
		var t TopSession
		var idStr, athleteIDStr, firstName, lastName, testType, testDate string
		var maxPower, avgPower, ratio, vo2max sql.NullFloat64

		err := rows.Scan(&idStr, &athleteIDStr, &firstName, &lastName, &testType, &testDate,
			&maxPower, &avgPower, &ratio, &vo2max)
		if err != nil {
			return nil, fmt.Errorf("scan top session: %w", err)
		}

		t.SessionID, _ = uuid.Parse(idStr)
		t.AthleteID, _ = uuid.Parse(athleteIDStr)
		t.AthleteName = firstName + " " + lastName
		t.Type = models.TestType(testType)
		t.Date, _ = time.Parse(time.RFC3339, testDate)
		if maxPower.Valid {
			t.MaxPower = &maxPower.Float64
		}
		if avgPower.Valid {
			t.AvgPower = &avgPower.Float64
		}
		if ratio.Valid {
			t.PowerWeightRatio = &ratio.Float64
		}
		if vo2max.Valid {
			t.VO2Max = &vo2max.Float64
		}
		top = append(top, t)
	}
	return top, rows.Err()
}

// AthleteProgress returns the chronological series of metric values for one
// athlete, oldest first.
func (d *DB) AthleteProgress(athleteID uuid.UUID, metric string, f StatsFilter) ([]ProgressPoint, error) {
	col, ok := statsColumns[metric]
	if !ok {
		return nil, fmt.Errorf("invalid stats metric: %s", metric)
	}

	query := `
		SELECT s.test_date, s.test_type, s.` + col + `
		FROM sessions s
		WHERE s.athlete_id = ? AND s.` + col + ` IS NOT NULL
	`
	args := []interface{}{athleteID.String()}

	if f.Type != nil {
		query += " AND s.test_type = ?"
		args = append(args, string(*f.Type))
	}
	if f.Since != nil {
		query += " AND s.test_date >= ?"
		args = append(args, f.Since.Format(time.RFC3339))
	}
	query += " ORDER BY s.test_date"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("athlete progress: %w", err)
	}
	defer rows.Close()

	var points []ProgressPoint
	for rows.Next() {
		var p ProgressPoint
		var testDate, testType string
		if err := rows.Scan(&testDate, &testType, &p.Value); err != nil {
			return nil, fmt.Errorf("scan progress point: %w", err)
		}
		p.Date, _ = time.Parse(time.RFC3339, testDate)
		p.Type = models.TestType(testType)
		points = append(points, p)
	}
	return points, rows.Err()
}
