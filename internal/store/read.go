package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/otioremap/internal/shotquery"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// ReadSessions returns all sessions.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if the ledger is empty.
func (s *Store) ReadSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, session_hash, source, timeline, settings, seq
		FROM sessions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadSession retrieves a single session by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSession(ctx context.Context, id string) (Session, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, session_hash, source, timeline, settings, seq
		FROM sessions
		WHERE id = ?
	`, id)
	return scanSession(row)
}

// FindSessionsByHash returns the sessions that collected the same source
// with the same settings, oldest first.
func (s *Store) FindSessionsByHash(ctx context.Context, hash string) ([]Session, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, session_hash, source, timeline, settings, seq
		FROM sessions
		WHERE session_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, hash)
	if err != nil {
		return nil, fmt.Errorf("query sessions by hash: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadShots returns the shots of a session in collection order.
//
// Returns an empty slice (not nil) if the session has no shots.
func (s *Store) ReadShots(ctx context.Context, sessionID string) ([]Shot, error) {
	return s.FindShots(ctx, sessionID, nil)
}

// FindShots returns the shots of a session whose data matches filter, in
// collection order. A nil filter matches every shot.
func (s *Store) FindShots(ctx context.Context, sessionID string, filter shotquery.Predicate) ([]Shot, error) {
	cond, params, err := shotquery.Compile("data", filter)
	if err != nil {
		return nil, fmt.Errorf("compile shot filter: %w", err)
	}

	rows, err := s.q.QueryContext(ctx, `
		SELECT id, session_id, name, track, instance_hash, data, seq
		FROM shots
		WHERE session_id = ? AND `+cond+`
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, append([]any{sessionID}, params...)...)
	if err != nil {
		return nil, fmt.Errorf("query shots: %w", err)
	}
	defer rows.Close()

	shots := []Shot{}
	for rows.Next() {
		var (
			shot Shot
			data string
		)
		if err := rows.Scan(&shot.ID, &shot.SessionID, &shot.Name, &shot.Track, &shot.InstanceHash, &data, &shot.Seq); err != nil {
			return nil, fmt.Errorf("scan shot: %w", err)
		}
		shot.Data, err = unmarshalData("shot data", data)
		if err != nil {
			return nil, err
		}
		shots = append(shots, shot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shots: %w", err)
	}
	return shots, nil
}

// ReadSkippedClips returns the clips skipped in a session in order.
func (s *Store) ReadSkippedClips(ctx context.Context, sessionID string) ([]SkippedClip, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, session_id, clip, track, code, message, seq
		FROM skipped_clips
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query skipped clips: %w", err)
	}
	defer rows.Close()

	skipped := []SkippedClip{}
	for rows.Next() {
		var sc SkippedClip
		if err := rows.Scan(&sc.ID, &sc.SessionID, &sc.Clip, &sc.Track, &sc.Code, &sc.Message, &sc.Seq); err != nil {
			return nil, fmt.Errorf("scan skipped clip: %w", err)
		}
		skipped = append(skipped, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skipped clips: %w", err)
	}
	return skipped, nil
}

func scanSession(row rowScanner) (Session, error) {
	var (
		sess     Session
		settings string
	)
	if err := row.Scan(&sess.ID, &sess.Hash, &sess.Source, &sess.Timeline, &settings, &sess.Seq); err != nil {
		if err == sql.ErrNoRows {
			return Session{}, err
		}
		return Session{}, fmt.Errorf("scan session: %w", err)
	}

	var err error
	sess.Settings, err = unmarshalData("settings", settings)
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}
