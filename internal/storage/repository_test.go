// ABOUTME: Tests for Repository interface implementation on SQLite.
// ABOUTME: Verifies CRUD, cascade deletes and atomic batch inserts.
package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/velolab/velo/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "velo.db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *DB) *models.User {
	t.Helper()
	u := models.NewUser(uuid.New().String()+"@example.com", "hash").WithName("Lea", "Martin")
	if err := db.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func seedAthlete(t *testing.T, db *DB, userID uuid.UUID) *models.Athlete {
	t.Helper()
	a := models.NewAthlete(userID, "Jo", "Rider").WithBody(70, 180).WithAge(28)
	if err := db.CreateAthlete(a); err != nil {
		t.Fatalf("CreateAthlete failed: %v", err)
	}
	return a
}

func seedSession(t *testing.T, db *DB, athleteID uuid.UUID) *models.Session {
	t.Helper()
	s := models.NewSession(athleteID, models.TestIncremental).WithBody(70, 180)
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return s
}

func TestCreateAndGetUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	u := models.NewUser("coach@example.com", "hashed").WithName("Ada", "Coach").WithUsername("ada")
	if err := db.CreateUser(u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := db.GetUser(u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Email != "coach@example.com" {
		t.Errorf("Email = %q, want coach@example.com", got.Email)
	}
	if got.FirstName == nil || *got.FirstName != "Ada" {
		t.Errorf("FirstName = %v, want Ada", got.FirstName)
	}
	if !got.IsActive || got.IsStaff {
		t.Errorf("flags = active:%v staff:%v, want active non-staff", got.IsActive, got.IsStaff)
	}

	byEmail, err := db.GetUserByEmail("coach@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("ID mismatch: got %v, want %v", byEmail.ID, u.ID)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	u1 := models.NewUser("dup@example.com", "h1")
	if err := db.CreateUser(u1); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	u2 := models.NewUser("dup@example.com", "h2")
	err := db.CreateUser(u2)
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetUser(uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAthleteCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := seedUser(t, db)
	a := models.NewAthlete(user.ID, "Marie", "Dupont").WithBody(58.5, 168).WithVO2Max(61)
	if err := db.CreateAthlete(a); err != nil {
		t.Fatalf("CreateAthlete failed: %v", err)
	}

	got, err := db.GetAthlete(a.ID)
	if err != nil {
		t.Fatalf("GetAthlete failed: %v", err)
	}
	if got.FirstName != "Marie" || got.Weight == nil || *got.Weight != 58.5 {
		t.Errorf("athlete roundtrip mismatch: %+v", got)
	}

	got.LastName = "Durand"
	if err := db.UpdateAthlete(got); err != nil {
		t.Fatalf("UpdateAthlete failed: %v", err)
	}
	updated, _ := db.GetAthlete(a.ID)
	if updated.LastName != "Durand" {
		t.Errorf("LastName = %q, want Durand", updated.LastName)
	}

	if err := db.DeleteAthlete(a.ID); err != nil {
		t.Fatalf("DeleteAthlete failed: %v", err)
	}
	if _, err := db.GetAthlete(a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
}

func TestListAthletesScopeAndFilter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	owner := seedUser(t, db)
	other := seedUser(t, db)

	a1 := models.NewAthlete(owner.ID, "Marie", "Dupont")
	a2 := models.NewAthlete(owner.ID, "Paul", "Moreau")
	a3 := models.NewAthlete(other.ID, "Zoe", "Dupont")
	for _, a := range []*models.Athlete{a1, a2, a3} {
		if err := db.CreateAthlete(a); err != nil {
			t.Fatalf("CreateAthlete failed: %v", err)
		}
	}

	all, err := db.ListAthletes(AthleteFilter{})
	if err != nil {
		t.Fatalf("ListAthletes failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d athletes, want 3", len(all))
	}

	mine, err := db.ListAthletes(AthleteFilter{UserID: &owner.ID})
	if err != nil {
		t.Fatalf("ListAthletes scoped failed: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("got %d owned athletes, want 2", len(mine))
	}

	duponts, err := db.ListAthletes(AthleteFilter{Name: "Dupont"})
	if err != nil {
		t.Fatalf("ListAthletes by name failed: %v", err)
	}
	if len(duponts) != 2 {
		t.Errorf("got %d Duponts, want 2", len(duponts))
	}

	limited, err := db.ListAthletes(AthleteFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("ListAthletes paged failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d athletes with limit 1, want 1", len(limited))
	}
}

func TestSessionCRUDAndMetrics(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := seedUser(t, db)
	athlete := seedAthlete(t, db, user.ID)

	s := models.NewSession(athlete.ID, models.TestWingate).
		WithDate(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)).
		WithBody(70, 180).
		WithNotes("30s all-out")
	if err := db.CreateSession(s); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	got, err := db.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got.Type != models.TestWingate || got.Notes == nil || *got.Notes != "30s all-out" {
		t.Errorf("session roundtrip mismatch: %+v", got)
	}
	if !got.Metrics.IsZero() {
		t.Error("fresh session should have no metrics")
	}

	maxP, avgP, work := 620.0, 455.5, 13665.0
	hr, dur := 182, 30
	m := models.Metrics{MaxPower: &maxP, AvgPower: &avgP, TotalWork: &work, MaxHeartRate: &hr, Duration: &dur}
	if err := db.UpdateSessionMetrics(s.ID, m); err != nil {
		t.Fatalf("UpdateSessionMetrics failed: %v", err)
	}

	got, _ = db.GetSession(s.ID)
	if got.MaxPower == nil || *got.MaxPower != 620 {
		t.Errorf("MaxPower = %v, want 620", got.MaxPower)
	}
	if got.MaxHeartRate == nil || *got.MaxHeartRate != 182 {
		t.Errorf("MaxHeartRate = %v, want 182", got.MaxHeartRate)
	}
	if got.Metrics.Duration == nil || *got.Metrics.Duration != 30 {
		t.Errorf("Duration = %v, want 30", got.Metrics.Duration)
	}

	// recompute with an empty metrics block clears stored values
	if err := db.UpdateSessionMetrics(s.ID, models.Metrics{}); err != nil {
		t.Fatalf("UpdateSessionMetrics clear failed: %v", err)
	}
	got, _ = db.GetSession(s.ID)
	if !got.Metrics.IsZero() {
		t.Errorf("metrics should be cleared, got %+v", got.Metrics)
	}
}

func TestListSessionsFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	owner := seedUser(t, db)
	other := seedUser(t, db)
	mine := seedAthlete(t, db, owner.ID)
	theirs := seedAthlete(t, db, other.ID)

	s1 := models.NewSession(mine.ID, models.TestIncremental).WithDate(time.Now().AddDate(0, 0, -2))
	s2 := models.NewSession(mine.ID, models.TestWingate).WithDate(time.Now().AddDate(0, 0, -1))
	s3 := models.NewSession(theirs.ID, models.TestIncremental).WithDate(time.Now())
	for _, s := range []*models.Session{s1, s2, s3} {
		if err := db.CreateSession(s); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	all, err := db.ListSessions(SessionFilter{})
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d sessions, want 3", len(all))
	}
	// most recent first
	if all[0].ID != s3.ID {
		t.Errorf("expected most recent session first, got %v", all[0].ID)
	}

	wingate := models.TestWingate
	byType, err := db.ListSessions(SessionFilter{Type: &wingate})
	if err != nil {
		t.Fatalf("ListSessions by type failed: %v", err)
	}
	if len(byType) != 1 || byType[0].ID != s2.ID {
		t.Errorf("type filter returned %d sessions", len(byType))
	}

	owned, err := db.ListSessions(SessionFilter{OwnerID: &owner.ID})
	if err != nil {
		t.Fatalf("ListSessions by owner failed: %v", err)
	}
	if len(owned) != 2 {
		t.Errorf("owner scope returned %d sessions, want 2", len(owned))
	}

	byAthlete, err := db.ListSessions(SessionFilter{AthleteID: &theirs.ID})
	if err != nil {
		t.Fatalf("ListSessions by athlete failed: %v", err)
	}
	if len(byAthlete) != 1 || byAthlete[0].ID != s3.ID {
		t.Errorf("athlete filter returned %d sessions", len(byAthlete))
	}
}

func TestInsertSamplesAndList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := seedUser(t, db)
	athlete := seedAthlete(t, db, user.ID)
	session := seedSession(t, db, athlete.ID)

	batch := []models.Sample{
		*models.NewSample(session.ID, 2, 110, 32, 82, 122, 22),
		*models.NewSample(session.ID, 0, 100, 30, 80, 120, 20),
		*models.NewSample(session.ID, 1, 105, 31, 81, 121, 21),
	}
	if err := db.InsertSamples(batch); err != nil {
		t.Fatalf("InsertSamples failed: %v", err)
	}

	samples, err := db.ListSamples(session.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListSamples failed: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(samples))
	}
	// ordered by elapsed time
	for i, want := range []int{0, 1, 2} {
		if samples[i].Time != want {
			t.Errorf("samples[%d].Time = %d, want %d", i, samples[i].Time, want)
		}
	}

	page, err := db.ListSamples(session.ID, 2, 1)
	if err != nil {
		t.Fatalf("ListSamples paged failed: %v", err)
	}
	if len(page) != 2 || page[0].Time != 1 {
		t.Errorf("paging broken: %+v", page)
	}
}

func TestInsertSamplesAtomicOnFailure(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := seedUser(t, db)
	athlete := seedAthlete(t, db, user.ID)
	session := seedSession(t, db, athlete.ID)

	// second row violates the session FK, whole batch must roll back
	batch := []models.Sample{
		*models.NewSample(session.ID, 0, 100, 30, 80, 120, 20),
		*models.NewSample(uuid.New(), 1, 105, 31, 81, 121, 21),
	}
	if err := db.InsertSamples(batch); err == nil {
		t.Fatal("expected FK violation")
	}

	samples, err := db.ListSamples(session.ID, 0, 0)
	if err != nil {
		t.Fatalf("ListSamples failed: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("partial commit: %d samples persisted, want 0", len(samples))
	}
}

func TestDeleteSessionCascadesToSamples(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := seedUser(t, db)
	athlete := seedAthlete(t, db, user.ID)
	session := seedSession(t, db, athlete.ID)

	sample := models.NewSample(session.ID, 0, 100, 30, 80, 120, 20)
	if err := db.AddSample(sample); err != nil {
		t.Fatalf("AddSample failed: %v", err)
	}

	if err := db.DeleteSession(session.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	if _, err := db.GetSample(sample.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after cascade", err)
	}
}

func TestDeleteAthleteCascadesToSessions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := seedUser(t, db)
	athlete := seedAthlete(t, db, user.ID)
	session := seedSession(t, db, athlete.ID)

	if err := db.DeleteAthlete(athlete.ID); err != nil {
		t.Fatalf("DeleteAthlete failed: %v", err)
	}
	if _, err := db.GetSession(session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after cascade", err)
	}
}

func TestGetAllData(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := seedUser(t, db)
	athlete := seedAthlete(t, db, user.ID)
	session := seedSession(t, db, athlete.ID)
	if err := db.AddSample(models.NewSample(session.ID, 0, 100, 30, 80, 120, 20)); err != nil {
		t.Fatalf("AddSample failed: %v", err)
	}

	data, err := db.GetAllData()
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}
	if len(data.Athletes) != 1 || len(data.Sessions) != 1 {
		t.Fatalf("export counts: %d athletes, %d sessions", len(data.Athletes), len(data.Sessions))
	}
	if len(data.Sessions[0].Samples) != 1 {
		t.Errorf("exported session has %d samples, want 1", len(data.Sessions[0].Samples))
	}
	if data.Tool != "velo" {
		t.Errorf("Tool = %q, want velo", data.Tool)
	}
}
