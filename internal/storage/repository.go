// ABOUTME: Repository interface for performance-tracking data storage.
// ABOUTME: Defines the contract handlers and the ingestion pipeline rely on.
package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
)

// AthleteFilter narrows ListAthletes results.
type AthleteFilter struct {
	UserID *uuid.UUID // owner scope; nil means all athletes
	Name   string     // substring match on first or last name
	Limit  int
	Offset int
}

// SessionFilter narrows ListSessions results.
type SessionFilter struct {
	AthleteID *uuid.UUID
	Type      *models.TestType
	OwnerID   *uuid.UUID // restrict to sessions of athletes owned by this user
	Limit     int
	Offset    int
}

// StatsFilter narrows stats queries.
type StatsFilter struct {
	OwnerID *uuid.UUID // nil for staff-wide queries
	Type    *models.TestType
	Since   *time.Time
}

// Repository defines the storage interface for performance data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// User operations
	CreateUser(u *models.User) error
	GetUser(id uuid.UUID) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUser(u *models.User) error
	DeleteUser(id uuid.UUID) error

	// Athlete operations
	CreateAthlete(a *models.Athlete) error
	GetAthlete(id uuid.UUID) (*models.Athlete, error)
	ListAthletes(f AthleteFilter) ([]*models.Athlete, error)
	UpdateAthlete(a *models.Athlete) error
	DeleteAthlete(id uuid.UUID) error

	// Session operations
	CreateSession(s *models.Session) error
	GetSession(id uuid.UUID) (*models.Session, error)
	ListSessions(f SessionFilter) ([]*models.Session, error)
	UpdateSession(s *models.Session) error
	UpdateSessionMetrics(id uuid.UUID, m models.Metrics) error
	DeleteSession(id uuid.UUID) error

	// Sample operations
	InsertSamples(samples []models.Sample) error
	AddSample(s *models.Sample) error
	GetSample(id uuid.UUID) (*models.Sample, error)
	ListSamples(sessionID uuid.UUID, limit, offset int) ([]models.Sample, error)
	DeleteSample(id uuid.UUID) error

	// Stats queries
	Overview(f StatsFilter) (*OverviewStats, error)
	TopSessions(metric string, f StatsFilter, limit int) ([]TopSession, error)
	AthleteProgress(athleteID uuid.UUID, metric string, f StatsFilter) ([]ProgressPoint, error)

	// Export
	GetAllData() (*ExportData, error)

	// Lifecycle
	Close() error
}
