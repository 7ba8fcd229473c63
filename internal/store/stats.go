package store

import (
	"database/sql"
	"time"
)

// GestureCount is one row of the expression statistics.
type GestureCount struct {
	Gesture  string
	Count    int
	LastSeen time.Time
}

// StatsRepository maintains running per-gesture counters.
type StatsRepository struct {
	db *sql.DB
}

// Stats returns the statistics repository for this store.
func (s *Store) Stats() *StatsRepository {
	return &StatsRepository{db: s.db}
}

// Record bumps the counter for each given gesture name.
func (r *StatsRepository) Record(gestures ...string) error {
	if len(gestures) == 0 {
		return nil
	}

	now := time.Now()
	for _, g := range gestures {
		_, err := r.db.Exec(
			`INSERT INTO expression_stats (gesture, count, last_seen) VALUES (?, 1, ?)
			 ON CONFLICT(gesture) DO UPDATE SET count = count + 1, last_seen = excluded.last_seen`,
			g, now,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Top returns the most frequent gestures, highest count first.
func (r *StatsRepository) Top(limit int) ([]*GestureCount, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(
		`SELECT gesture, count, last_seen FROM expression_stats
		 ORDER BY count DESC, gesture ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*GestureCount
	for rows.Next() {
		c := &GestureCount{}
		if err := rows.Scan(&c.Gesture, &c.Count, &c.LastSeen); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// Totals summarizes the analysis history: how many analyses have been
// recorded and across how many distinct sessions.
type Totals struct {
	Analyses int
	Sessions int
}

// Totals returns the overall analysis counts.
func (r *StatsRepository) Totals() (*Totals, error) {
	t := &Totals{}
	err := r.db.QueryRow(
		`SELECT COUNT(*), COUNT(DISTINCT session_id) FROM analyses`,
	).Scan(&t.Analyses, &t.Sessions)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DailyCount is one day of analysis volume.
type DailyCount struct {
	Day   string
	Count int
}

// Trend returns per-day analysis counts for the last N days, oldest
// first. Days with no analyses are absent.
func (r *StatsRepository) Trend(days int) ([]*DailyCount, error) {
	if days <= 0 {
		days = 7
	}

	since := time.Now().AddDate(0, 0, -days)
	rows, err := r.db.Query(
		`SELECT date(created_at), COUNT(*) FROM analyses
		 WHERE created_at >= ? GROUP BY date(created_at) ORDER BY date(created_at)`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trend []*DailyCount
	for rows.Next() {
		d := &DailyCount{}
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, err
		}
		trend = append(trend, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return trend, nil
}

// Get returns the counter for one gesture.
func (r *StatsRepository) Get(gesture string) (*GestureCount, error) {
	c := &GestureCount{}

	err := r.db.QueryRow(
		`SELECT gesture, count, last_seen FROM expression_stats WHERE gesture = ?`,
		gesture,
	).Scan(&c.Gesture, &c.Count, &c.LastSeen)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return c, nil
}
