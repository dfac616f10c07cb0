package store

import (
	"context"
	"fmt"
)

// Session is one run of the collector over a source document.
type Session struct {
	ID string
	// Hash identifies the source and settings; re-collecting the same
	// document with the same settings yields the same hash.
	Hash     string
	Source   string
	Timeline string
	Settings map[string]any
	Seq      int64
}

// Shot is the instance data collected for one clip in a session.
type Shot struct {
	ID           string         `json:"id"`
	SessionID    string         `json:"sessionId"`
	Name         string         `json:"name"`
	Track        string         `json:"track"`
	InstanceHash string         `json:"instanceHash"`
	Data         map[string]any `json:"data"`
	Seq          int64          `json:"seq"`
}

// SkippedClip is a clip the collector could not resolve.
type SkippedClip struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionId"`
	Clip      string `json:"clip"`
	Track     string `json:"track"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Seq       int64  `json:"seq"`
}

// WriteSession inserts a session record.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) WriteSession(ctx context.Context, sess Session) error {
	settingsJSON, err := marshalData("settings", sess.Settings)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	_, err = s.q.ExecContext(ctx, `
		INSERT INTO sessions
		(id, session_hash, source, timeline, settings, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sess.ID,
		sess.Hash,
		sess.Source,
		sess.Timeline,
		settingsJSON,
		sess.Seq,
	)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	return nil
}

// WriteShot inserts a shot record and reports whether it was new.
//
// A shot whose instance hash is already recorded in the session is ignored:
// collecting the same clip twice in one session stores it once.
//
// Note: The session referenced by SessionID must exist (foreign key constraint).
func (s *Store) WriteShot(ctx context.Context, shot Shot) (bool, error) {
	dataJSON, err := marshalData("shot data", shot.Data)
	if err != nil {
		return false, fmt.Errorf("write shot: %w", err)
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO shots
		(id, session_id, name, track, instance_hash, data, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		shot.ID,
		shot.SessionID,
		shot.Name,
		shot.Track,
		shot.InstanceHash,
		dataJSON,
		shot.Seq,
	)
	if err != nil {
		return false, fmt.Errorf("write shot: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write shot: %w", err)
	}
	return n > 0, nil
}

// WriteSkippedClip records a clip the collector skipped.
func (s *Store) WriteSkippedClip(ctx context.Context, sc SkippedClip) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO skipped_clips
		(id, session_id, clip, track, code, message, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		sc.ID,
		sc.SessionID,
		sc.Clip,
		sc.Track,
		sc.Code,
		sc.Message,
		sc.Seq,
	)
	if err != nil {
		return fmt.Errorf("write skipped clip: %w", err)
	}
	return nil
}
