package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per live run or analyzed video
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL CHECK(kind IN ('live', 'video')),
			source TEXT NOT NULL DEFAULT '',
			frames_analyzed INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME
		)`,

		// Analyses table - significant moments with their interpretation
		`CREATE TABLE IF NOT EXISTS analyses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			offset_seconds REAL NOT NULL DEFAULT 0,
			gestures TEXT NOT NULL DEFAULT '[]',
			score REAL NOT NULL DEFAULT 0,
			interpretation TEXT NOT NULL DEFAULT '',
			mode TEXT NOT NULL DEFAULT 'face',
			model TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Expression stats table - running per-gesture counters
		`CREATE TABLE IF NOT EXISTS expression_stats (
			gesture TEXT PRIMARY KEY,
			count INTEGER NOT NULL DEFAULT 0,
			last_seen DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_analyses_session_id ON analyses(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
