package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Analysis represents one significant moment and its interpretation.
type Analysis struct {
	ID             int64
	SessionID      string
	Offset         float64 // seconds from session start
	Gestures       []string
	Score          float64
	Interpretation string
	Mode           string
	Model          string
	CreatedAt      time.Time
}

// AnalysisRepository provides CRUD operations for analyses.
type AnalysisRepository struct {
	db *sql.DB
}

// Analyses returns the analysis repository for this store.
func (s *Store) Analyses() *AnalysisRepository {
	return &AnalysisRepository{db: s.db}
}

// Create inserts a new analysis into the database.
func (r *AnalysisRepository) Create(a *Analysis) error {
	gestures, err := json.Marshal(a.Gestures)
	if err != nil {
		return fmt.Errorf("encode gestures: %w", err)
	}

	a.CreatedAt = time.Now()

	result, err := r.db.Exec(
		`INSERT INTO analyses (session_id, offset_seconds, gestures, score, interpretation, mode, model, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.Offset, string(gestures), a.Score, a.Interpretation, a.Mode, a.Model, a.CreatedAt,
	)
	if err != nil {
		return err
	}

	a.ID, err = result.LastInsertId()
	return err
}

// GetByID retrieves an analysis by its ID.
func (r *AnalysisRepository) GetByID(id int64) (*Analysis, error) {
	row := r.db.QueryRow(
		`SELECT id, session_id, offset_seconds, gestures, score, interpretation, mode, model, created_at
		 FROM analyses WHERE id = ?`,
		id,
	)

	a, err := scanAnalysis(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListBySession retrieves all analyses for a session, oldest first.
func (r *AnalysisRepository) ListBySession(sessionID string) ([]*Analysis, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, offset_seconds, gestures, score, interpretation, mode, model, created_at
		 FROM analyses WHERE session_id = ? ORDER BY offset_seconds ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAnalyses(rows)
}

// Recent retrieves the most recent analyses across all sessions.
func (r *AnalysisRepository) Recent(limit int) ([]*Analysis, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, offset_seconds, gestures, score, interpretation, mode, model, created_at
		 FROM analyses ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAnalyses(rows)
}

func collectAnalyses(rows *sql.Rows) ([]*Analysis, error) {
	var analyses []*Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return analyses, nil
}

func scanAnalysis(scan func(dest ...any) error) (*Analysis, error) {
	a := &Analysis{}
	var gestures string

	if err := scan(&a.ID, &a.SessionID, &a.Offset, &gestures, &a.Score, &a.Interpretation, &a.Mode, &a.Model, &a.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(gestures), &a.Gestures); err != nil {
		return nil, fmt.Errorf("decode gestures: %w", err)
	}

	return a, nil
}
