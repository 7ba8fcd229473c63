package store

import (
	"database/sql"
	"errors"
	"time"
)

// SessionKind distinguishes live camera runs from batch video analyses.
type SessionKind string

const (
	// SessionLive is a live camera session.
	SessionLive SessionKind = "live"
	// SessionVideo is a recorded video analysis.
	SessionVideo SessionKind = "video"
)

// Session represents one analysis run stored in the database.
type Session struct {
	ID             string
	Kind           SessionKind
	Source         string
	FramesAnalyzed int
	StartedAt      time.Time
	EndedAt        *time.Time
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session into the database.
func (r *SessionRepository) Create(sess *Session) error {
	sess.StartedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, kind, source, frames_analyzed, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.ID, string(sess.Kind), sess.Source, sess.FramesAnalyzed, sess.StartedAt,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}
	var kind string

	err := r.db.QueryRow(
		`SELECT id, kind, source, frames_analyzed, started_at, ended_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &kind, &sess.Source, &sess.FramesAnalyzed, &sess.StartedAt, &sess.EndedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.Kind = SessionKind(kind)
	return sess, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, kind, source, frames_analyzed, started_at, ended_at
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}
		var kind string

		if err := rows.Scan(&sess.ID, &kind, &sess.Source, &sess.FramesAnalyzed, &sess.StartedAt, &sess.EndedAt); err != nil {
			return nil, err
		}

		sess.Kind = SessionKind(kind)
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// End marks a session finished and records the final frame count.
func (r *SessionRepository) End(id string, framesAnalyzed int) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, frames_analyzed = ? WHERE id = ?`,
		time.Now(), framesAnalyzed, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a session and, via cascade, its analyses.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
