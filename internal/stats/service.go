// ABOUTME: Stats service combining storage aggregates with optional caching.
// ABOUTME: Adds trend analysis on top of per-athlete progress series.
package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
	"github.com/velolab/velo/internal/storage"
)

// Cache stores serialized stats payloads. Implementations must be safe for
// concurrent use. A nil Cache disables caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
}

// Queries is the subset of the repository the service reads from.
type Queries interface {
	Overview(f storage.StatsFilter) (*storage.OverviewStats, error)
	TopSessions(metric string, f storage.StatsFilter, limit int) ([]storage.TopSession, error)
	AthleteProgress(athleteID uuid.UUID, metric string, f storage.StatsFilter) ([]storage.ProgressPoint, error)
	GetAthlete(id uuid.UUID) (*models.Athlete, error)
}

// Trend summarizes the change between the first and last point of a series.
type Trend struct {
	AbsoluteChange float64 `json:"absolute_change"`
	PercentChange  float64 `json:"percent_change"`
	IsImproving    bool    `json:"is_improving"`
}

// ProgressReport is an athlete's metric history plus trend.
type ProgressReport struct {
	AthleteID   uuid.UUID               `json:"athlete_id"`
	AthleteName string                  `json:"athlete_name"`
	Metric      string                  `json:"metric"`
	Data        []storage.ProgressPoint `json:"data"`
	Trend       *Trend                  `json:"trend"`
}

// Service answers dashboard queries, consulting the cache first.
type Service struct {
	repo  Queries
	cache Cache
}

// New creates a stats service. cache may be nil.
func New(repo Queries, cache Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Overview returns the global dashboard for the given scope.
func (s *Service) Overview(f storage.StatsFilter) (*storage.OverviewStats, error) {
	key := cacheKey("overview", "", f, 0)
	if out, ok := cached[storage.OverviewStats](s.cache, key); ok {
		return out, nil
	}

	out, err := s.repo.Overview(f)
	if err != nil {
		return nil, err
	}
	store(s.cache, key, out)
	return out, nil
}

// TopSessions returns the leaderboard for metric.
func (s *Service) TopSessions(metric string, f storage.StatsFilter, limit int) ([]storage.TopSession, error) {
	if !storage.IsValidStatsMetric(metric) {
		return nil, fmt.Errorf("invalid stats metric: %s", metric)
	}
	if limit <= 0 {
		limit = 5
	}

	key := cacheKey("top", metric, f, limit)
	if out, ok := cached[[]storage.TopSession](s.cache, key); ok {
		return *out, nil
	}

	top, err := s.repo.TopSessions(metric, f, limit)
	if err != nil {
		return nil, err
	}
	store(s.cache, key, &top)
	return top, nil
}

// Progress returns an athlete's metric history with trend analysis.
// Permission checks are the caller's job; this only requires the athlete to
// exist.
func (s *Service) Progress(athleteID uuid.UUID, metric string, f storage.StatsFilter) (*ProgressReport, error) {
	if !storage.IsValidStatsMetric(metric) {
		return nil, fmt.Errorf("invalid stats metric: %s", metric)
	}

	athlete, err := s.repo.GetAthlete(athleteID)
	if err != nil {
		return nil, err
	}

	points, err := s.repo.AthleteProgress(athleteID, metric, f)
	if err != nil {
		return nil, err
	}

	return &ProgressReport{
		AthleteID:   athlete.ID,
		AthleteName: athlete.FullName(),
		Metric:      metric,
		Data:        points,
		Trend:       ComputeTrend(points),
	}, nil
}

// ComputeTrend compares the first and last point of a series. Fewer than
// two points means no trend. A zero first value yields a zero percent
// change rather than a division blowup.
func ComputeTrend(points []storage.ProgressPoint) *Trend {
	if len(points) < 2 {
		return nil
	}
	first := points[0].Value
	last := points[len(points)-1].Value
	change := last - first

	var percent float64
	if first != 0 {
		percent = change / first * 100
	}

	return &Trend{
		AbsoluteChange: round2(change),
		PercentChange:  round2(percent),
		IsImproving:    change > 0,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SinceDays converts an optional "last N days" parameter into a cutoff.
func SinceDays(days *int) *time.Time {
	if days == nil {
		return nil
	}
	t := time.Now().AddDate(0, 0, -*days)
	return &t
}

func cacheKey(kind, metric string, f storage.StatsFilter, limit int) string {
	owner := "all"
	if f.OwnerID != nil {
		owner = f.OwnerID.String()
	}
	testType := "any"
	if f.Type != nil {
		testType = string(*f.Type)
	}
	since := "ever"
	if f.Since != nil {
		since = f.Since.Format("2006-01-02")
	}
	return fmt.Sprintf("stats:%s:%s:%s:%s:%s:%d", kind, metric, owner, testType, since, limit)
}

func cached[T any](c Cache, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	data, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return &out, true
}

func store[T any](c Cache, key string, value *T) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(key, data)
}
