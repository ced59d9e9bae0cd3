package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is the recorded outcome of one playground run.
type Session struct {
	ID        string     `json:"id"`
	Mode      string     `json:"mode"`
	Score     int        `json:"score"`
	Grabs     int        `json:"grabs"`
	Throws    int        `json:"throws"`
	Hits      int        `json:"hits"`
	Drops     int        `json:"drops"`
	Ticks     uint64     `json:"ticks"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// EventRecord is one scoring event within a session.
type EventRecord struct {
	Tick   uint64 `json:"tick"`
	Kind   string `json:"kind"`
	BallID uint64 `json:"ball_id"`
	Score  int    `json:"score"`
}

// SessionRepository provides access to session history.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

const sessionColumns = `id, mode, score, grabs, throws, hits, drops, ticks, started_at, ended_at`

// Create inserts a new session. An empty ID is filled with a UUID and a
// zero StartedAt with the current time.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Mode, sess.Score, sess.Grabs, sess.Throws, sess.Hits, sess.Drops,
		int64(sess.Ticks), sess.StartedAt, nullTime(sess.EndedAt),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// Update writes the counters and end time of an existing session.
func (r *SessionRepository) Update(sess *Session) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET score = ?, grabs = ?, throws = ?, hits = ?, drops = ?, ticks = ?, ended_at = ?
		 WHERE id = ?`,
		sess.Score, sess.Grabs, sess.Throws, sess.Hits, sess.Drops, int64(sess.Ticks),
		nullTime(sess.EndedAt), sess.ID,
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

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns the most recent sessions first. limit <= 0 returns all.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// BestScore returns the highest score recorded, 0 when there is none.
func (r *SessionRepository) BestScore() (int, error) {
	var best sql.NullInt64
	if err := r.db.QueryRow(`SELECT MAX(score) FROM sessions`).Scan(&best); err != nil {
		return 0, err
	}
	return int(best.Int64), nil
}

// Delete removes a session and its events.
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

// AddEvents appends events to a session in one transaction.
func (r *SessionRepository) AddEvents(sessionID string, events []EventRecord) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO session_events (session_id, tick, kind, ball_id, score) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(sessionID, int64(e.Tick), e.Kind, int64(e.BallID), e.Score); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit()
}

// Events returns a session's events in insertion order.
func (r *SessionRepository) Events(sessionID string) ([]EventRecord, error) {
	rows, err := r.db.Query(
		`SELECT tick, kind, ball_id, score FROM session_events WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		var e EventRecord
		var tick, ballID int64
		if err := rows.Scan(&tick, &e.Kind, &ballID, &e.Score); err != nil {
			return nil, err
		}
		e.Tick, e.BallID = uint64(tick), uint64(ballID)
		events = append(events, e)
	}

	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var ticks int64
	var ended sql.NullTime

	err := row.Scan(&sess.ID, &sess.Mode, &sess.Score, &sess.Grabs, &sess.Throws, &sess.Hits,
		&sess.Drops, &ticks, &sess.StartedAt, &ended)
	if err != nil {
		return nil, err
	}

	sess.Ticks = uint64(ticks)
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return sess, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
