// ABOUTME: Sample model, one raw sensor reading within a session.
// ABOUTME: Time is elapsed seconds; the rest are instantaneous readings.
package models

import (
	"github.com/google/uuid"
)

// Sample is one raw performance reading. Samples belong to exactly one
// session and are immutable once stored except via explicit delete.
type Sample struct {
	ID              uuid.UUID `json:"id"`
	SessionID       uuid.UUID `json:"session_id"`
	Time            int       `json:"time"`             // elapsed seconds
	Power           float64   `json:"power"`            // watts
	Oxygen          float64   `json:"oxygen"`           // ml/kg/min
	Cadence         float64   `json:"cadence"`          // rpm
	HeartRate       float64   `json:"heart_rate"`       // bpm
	RespirationRate float64   `json:"respiration_rate"` // breaths/min
}

// NewSample creates a new Sample with generated UUID.
func NewSample(sessionID uuid.UUID, time int, power, oxygen, cadence, heartRate, respirationRate float64) *Sample {
	return &Sample{
		ID:              uuid.New(),
		SessionID:       sessionID,
		Time:            time,
		Power:           power,
		Oxygen:          oxygen,
		Cadence:         cadence,
		HeartRate:       heartRate,
		RespirationRate: respirationRate,
	}
}
