// ABOUTME: Session (test) model, TestType enum and derived Metrics block.
// ABOUTME: Metrics fields are nullable and only valid as of the last recompute.
package models

import (
	"time"

	"github.com/google/uuid"
)

// TestType identifies the protocol used for a test session.
type TestType string

const (
	TestIncremental TestType = "incremental"
	TestWingate     TestType = "wingate"
	TestProtocol1   TestType = "protocol_1"
	TestProtocol2   TestType = "protocol_2"
)

// AllTestTypes returns all valid test types.
var AllTestTypes = []TestType{
	TestIncremental, TestWingate, TestProtocol1, TestProtocol2,
}

// IsValidTestType checks if a string is a valid test type.
func IsValidTestType(s string) bool {
	for _, tt := range AllTestTypes {
		if string(tt) == s {
			return true
		}
	}
	return false
}

// Metrics holds summary statistics derived from a session's samples.
// Fields are pointers: nil means "not computed" or "no data". The block is
// not authoritative until explicitly recomputed; appending samples does not
// refresh it.
type Metrics struct {
	MaxPower         *float64 `json:"max_power,omitempty"`
	AvgPower         *float64 `json:"avg_power,omitempty"`
	PowerWeightRatio *float64 `json:"power_weight_ratio,omitempty"`
	VO2Max           *float64 `json:"vo2max,omitempty"`
	MaxHeartRate     *int     `json:"max_hr,omitempty"`
	AvgHeartRate     *int     `json:"avg_hr,omitempty"`
	TotalWork        *float64 `json:"total_work,omitempty"`
	Duration         *int     `json:"duration,omitempty"`
}

// IsZero reports whether no metric field is set.
func (m Metrics) IsZero() bool {
	return m.MaxPower == nil && m.AvgPower == nil && m.PowerWeightRatio == nil &&
		m.VO2Max == nil && m.MaxHeartRate == nil && m.AvgHeartRate == nil &&
		m.TotalWork == nil && m.Duration == nil
}

// Session groups the samples of one test for one athlete on one date.
// Weight and Height are snapshots taken at test time, independent of the
// athlete profile.
type Session struct {
	ID        uuid.UUID `json:"id"`
	AthleteID uuid.UUID `json:"athlete_id"`
	Type      TestType  `json:"test_type"`
	Date      time.Time `json:"test_date"`
	Weight    *float64  `json:"weight,omitempty"`
	Height    *float64  `json:"height,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Metrics
	CreatedAt time.Time `json:"created_at"`
	Samples   []Sample  `json:"samples,omitempty"` // populated only on export
}

// NewSession creates a new Session with generated UUID, dated today.
func NewSession(athleteID uuid.UUID, testType TestType) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		AthleteID: athleteID,
		Type:      testType,
		Date:      now,
		CreatedAt: now,
	}
}

// WithDate sets a custom test date.
func (s *Session) WithDate(t time.Time) *Session {
	s.Date = t
	return s
}

// WithBody sets the subject weight (kg) and height (cm) snapshot.
func (s *Session) WithBody(weight, height float64) *Session {
	s.Weight = &weight
	s.Height = &height
	return s
}

// WithNotes sets notes on the session.
func (s *Session) WithNotes(notes string) *Session {
	s.Notes = &notes
	return s
}
