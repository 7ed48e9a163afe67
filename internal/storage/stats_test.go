// ABOUTME: Tests for aggregate stats queries.
// ABOUTME: Covers leaderboards, owner scoping and progress series.
package storage

import (
	"testing"
	"time"

	"github.com/velolab/velo/internal/models"
)

// seedStatsData creates two users with one athlete each and three sessions
// carrying derived metrics.
func seedStatsData(t *testing.T, db *DB) (owner, other *models.User, fast, slow *models.Athlete) {
	t.Helper()
	owner = seedUser(t, db)
	other = seedUser(t, db)
	fast = seedAthlete(t, db, owner.ID)
	slow = seedAthlete(t, db, other.ID)

	set := func(s *models.Session, avgPower, vo2, ratio float64) {
		s.AvgPower = &avgPower
		s.Metrics.VO2Max = &vo2
		s.PowerWeightRatio = &ratio
	}

	s1 := models.NewSession(fast.ID, models.TestIncremental).WithDate(time.Now().AddDate(0, 0, -30))
	set(s1, 250, 60, 3.5)
	s2 := models.NewSession(fast.ID, models.TestIncremental).WithDate(time.Now().AddDate(0, 0, -5))
	set(s2, 280, 64, 4.0)
	s3 := models.NewSession(slow.ID, models.TestWingate).WithDate(time.Now().AddDate(0, 0, -10))
	set(s3, 200, 50, 2.8)

	for _, s := range []*models.Session{s1, s2, s3} {
		if err := db.CreateSession(s); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}
	return owner, other, fast, slow
}

func TestOverview(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, _, fast, _ := seedStatsData(t, db)

	stats, err := db.Overview(StatsFilter{})
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}

	if stats.BestVO2Max == nil || stats.BestVO2Max.AthleteID != fast.ID {
		t.Errorf("BestVO2Max = %+v, want athlete %v", stats.BestVO2Max, fast.ID)
	}
	if stats.BestVO2Max.Value != 64 {
		t.Errorf("BestVO2Max.Value = %v, want 64", stats.BestVO2Max.Value)
	}
	if stats.MostPowerful == nil || stats.MostPowerful.Value != 280 {
		t.Errorf("MostPowerful = %+v, want value 280", stats.MostPowerful)
	}
	if stats.Global.TotalSessions != 3 {
		t.Errorf("TotalSessions = %d, want 3", stats.Global.TotalSessions)
	}
	wantAvg := (250.0 + 280.0 + 200.0) / 3.0
	if stats.Global.AvgPower == nil || *stats.Global.AvgPower != wantAvg {
		t.Errorf("AvgPower = %v, want %v", stats.Global.AvgPower, wantAvg)
	}
}

func TestOverviewOwnerScope(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, other, _, slow := seedStatsData(t, db)

	stats, err := db.Overview(StatsFilter{OwnerID: &other.ID})
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if stats.Global.TotalSessions != 1 {
		t.Errorf("TotalSessions = %d, want 1 in owner scope", stats.Global.TotalSessions)
	}
	if stats.BestVO2Max == nil || stats.BestVO2Max.AthleteID != slow.ID {
		t.Errorf("BestVO2Max = %+v, want athlete %v", stats.BestVO2Max, slow.ID)
	}
}

func TestOverviewEmptyScope(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	stats, err := db.Overview(StatsFilter{})
	if err != nil {
		t.Fatalf("Overview failed: %v", err)
	}
	if stats.BestVO2Max != nil || stats.MostPowerful != nil || stats.BestPowerWeight != nil {
		t.Errorf("empty database should have no leaders: %+v", stats)
	}
	if stats.Global.TotalSessions != 0 {
		t.Errorf("TotalSessions = %d, want 0", stats.Global.TotalSessions)
	}
}

func TestTopSessions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seedStatsData(t, db)

	top, err := db.TopSessions("avg_power", StatsFilter{}, 2)
	if err != nil {
		t.Fatalf("TopSessions failed: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("got %d top sessions, want 2", len(top))
	}
	if *top[0].AvgPower != 280 || *top[1].AvgPower != 250 {
		t.Errorf("wrong ranking: %v, %v", *top[0].AvgPower, *top[1].AvgPower)
	}

	wingate := models.TestWingate
	byType, err := db.TopSessions("avg_power", StatsFilter{Type: &wingate}, 5)
	if err != nil {
		t.Fatalf("TopSessions by type failed: %v", err)
	}
	if len(byType) != 1 || *byType[0].AvgPower != 200 {
		t.Errorf("type filter broken: %+v", byType)
	}
}

func TestTopSessionsInvalidMetric(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if _, err := db.TopSessions("notes", StatsFilter{}, 5); err == nil {
		t.Fatal("expected error for non-whitelisted metric")
	}
}

func TestAthleteProgress(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, _, fast, _ := seedStatsData(t, db)

	points, err := db.AthleteProgress(fast.ID, "vo2max", StatsFilter{})
	if err != nil {
		t.Fatalf("AthleteProgress failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	// oldest first
	if points[0].Value != 60 || points[1].Value != 64 {
		t.Errorf("series = %v,%v, want 60,64 oldest first", points[0].Value, points[1].Value)
	}

	since := time.Now().AddDate(0, 0, -7)
	recent, err := db.AthleteProgress(fast.ID, "vo2max", StatsFilter{Since: &since})
	if err != nil {
		t.Fatalf("AthleteProgress since failed: %v", err)
	}
	if len(recent) != 1 || recent[0].Value != 64 {
		t.Errorf("since filter broken: %+v", recent)
	}
}
