// ABOUTME: Export functionality for performance data.
// ABOUTME: Produces a full dump of athletes, sessions and samples.
package storage

import (
	"fmt"
	"time"

	"github.com/velolab/velo/internal/models"
)

// ExportData represents the full export format for performance data.
// User accounts are deliberately excluded: the dump is meant for analysis
// tooling, not for backup of credentials.
type ExportData struct {
	Version    string            `json:"version" yaml:"version"`
	ExportedAt time.Time         `json:"exported_at" yaml:"exported_at"`
	Tool       string            `json:"tool" yaml:"tool"`
	Athletes   []*models.Athlete `json:"athletes" yaml:"athletes"`
	Sessions   []*models.Session `json:"sessions" yaml:"sessions"`
}

// GetAllData retrieves all athletes and sessions, with samples nested under
// their sessions.
func (d *DB) GetAllData() (*ExportData, error) {
	athletes, err := d.ListAthletes(AthleteFilter{})
	if err != nil {
		return nil, fmt.Errorf("list athletes: %w", err)
	}

	sessions, err := d.ListSessions(SessionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	for _, s := range sessions {
		samples, err := d.ListSamples(s.ID, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("list samples: %w", err)
		}
		s.Samples = samples
	}

	return &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "velo",
		Athletes:   athletes,
		Sessions:   sessions,
	}, nil
}
