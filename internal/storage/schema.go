// ABOUTME: SQLite schema definition and initialization.
// ABOUTME: Defines tables for users, athletes, sessions and samples.
package storage

// initSchema creates or updates the database schema.
func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		hashed_password TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		username TEXT,
		is_staff INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS athletes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		age INTEGER,
		weight REAL,
		height REAL,
		vo2max REAL,
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		athlete_id TEXT NOT NULL,
		test_type TEXT NOT NULL,
		test_date DATETIME NOT NULL,
		weight REAL,
		height REAL,
		notes TEXT,
		max_power REAL,
		avg_power REAL,
		power_weight_ratio REAL,
		vo2max REAL,
		max_hr INTEGER,
		avg_hr INTEGER,
		total_work REAL,
		duration INTEGER,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (athlete_id) REFERENCES athletes(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS samples (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		time INTEGER NOT NULL,
		power REAL NOT NULL,
		oxygen REAL NOT NULL,
		cadence REAL NOT NULL,
		heart_rate REAL NOT NULL,
		respiration_rate REAL NOT NULL,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_athletes_user ON athletes(user_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_athlete ON sessions(athlete_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_type_date ON sessions(test_type, test_date DESC);
	CREATE INDEX IF NOT EXISTS idx_samples_session_time ON samples(session_id, time);
	`

	_, err := d.db.Exec(schema)
	return err
}
