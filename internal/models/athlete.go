// ABOUTME: Athlete profile model owned by a user account.
// ABOUTME: Holds the subject's physical characteristics and reference VO2max.
package models

import (
	"github.com/google/uuid"
)

// Athlete is a cyclist profile. Each athlete belongs to exactly one user
// account and owns zero or more test sessions.
type Athlete struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Age       *int      `json:"age,omitempty"`
	Weight    *float64  `json:"weight,omitempty"`
	Height    *float64  `json:"height,omitempty"`
	VO2Max    *float64  `json:"vo2max,omitempty"`
}

// NewAthlete creates a new Athlete with generated UUID.
func NewAthlete(userID uuid.UUID, firstName, lastName string) *Athlete {
	return &Athlete{
		ID:        uuid.New(),
		UserID:    userID,
		FirstName: firstName,
		LastName:  lastName,
	}
}

// WithAge sets the athlete's age in years.
func (a *Athlete) WithAge(age int) *Athlete {
	a.Age = &age
	return a
}

// WithBody sets weight (kg) and height (cm).
func (a *Athlete) WithBody(weight, height float64) *Athlete {
	a.Weight = &weight
	a.Height = &height
	return a
}

// WithVO2Max sets the reference VO2max (ml/kg/min).
func (a *Athlete) WithVO2Max(v float64) *Athlete {
	a.VO2Max = &v
	return a
}

// FullName returns "First Last" for display and stats payloads.
func (a *Athlete) FullName() string {
	return a.FirstName + " " + a.LastName
}
