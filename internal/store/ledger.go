package store

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roach88/otioremap/internal/canon"
)

// Clock stamps ledger records with strictly increasing seq numbers.
// Implemented by SeqClock (production) and testutil.DeterministicClock.
type Clock interface {
	Next() int64
}

// IDGenerator generates record IDs.
// Implemented by UUIDv7Generator (production) and testutil.SequentialIDGenerator.
type IDGenerator interface {
	Generate() string
}

// SeqClock is a monotonic logical clock.
//
// Thread-safety: SeqClock is safe for concurrent use (atomic operations).
type SeqClock struct {
	seq atomic.Int64
}

// NewSeqClockAt creates a clock whose next value is start+1.
func NewSeqClockAt(start int64) *SeqClock {
	c := &SeqClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *SeqClock) Next() int64 {
	return c.seq.Add(1)
}

// UUIDv7Generator generates time-sortable UUIDv7 IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Ledger records collection sessions in a Store.
type Ledger struct {
	store *Store
	clock Clock
	ids   IDGenerator
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithClock sets the ledger clock. Default: a SeqClock resumed from the
// store's last seq.
func WithClock(c Clock) LedgerOption {
	return func(l *Ledger) {
		l.clock = c
	}
}

// WithIDGenerator sets the record ID generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) LedgerOption {
	return func(l *Ledger) {
		l.ids = g
	}
}

// NewLedger creates a ledger writing to s.
func NewLedger(ctx context.Context, s *Store, opts ...LedgerOption) (*Ledger, error) {
	l := &Ledger{store: s, ids: UUIDv7Generator{}}
	for _, opt := range opts {
		opt(l)
	}
	if l.clock == nil {
		last, err := s.LastSeq(ctx)
		if err != nil {
			return nil, err
		}
		l.clock = NewSeqClockAt(last)
	}
	return l, nil
}

// InTx runs fn with a ledger whose records are written in one transaction.
// Either every record fn writes is kept or none is.
func (l *Ledger) InTx(ctx context.Context, fn func(tx *Ledger) error) error {
	return l.store.InTx(ctx, func(tx *Store) error {
		return fn(&Ledger{store: tx, clock: l.clock, ids: l.ids})
	})
}

// BeginSession records a new session for collecting source with settings.
func (l *Ledger) BeginSession(ctx context.Context, source, timeline string, settings map[string]any) (Session, error) {
	hash, err := canon.SessionHash(source, settings)
	if err != nil {
		return Session{}, fmt.Errorf("begin session: %w", err)
	}

	sess := Session{
		ID:       l.ids.Generate(),
		Hash:     hash,
		Source:   source,
		Timeline: timeline,
		Settings: settings,
		Seq:      l.clock.Next(),
	}
	if err := l.store.WriteSession(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// RecordShot stores a shot's instance data in a session. It reports false
// when identical data was already recorded in the session.
func (l *Ledger) RecordShot(ctx context.Context, sessionID, name, track string, data map[string]any) (Shot, bool, error) {
	hash, err := canon.InstanceHash(data)
	if err != nil {
		return Shot{}, false, fmt.Errorf("record shot %q: %w", name, err)
	}

	shot := Shot{
		ID:           l.ids.Generate(),
		SessionID:    sessionID,
		Name:         name,
		Track:        track,
		InstanceHash: hash,
		Data:         data,
		Seq:          l.clock.Next(),
	}
	inserted, err := l.store.WriteShot(ctx, shot)
	if err != nil {
		return Shot{}, false, err
	}
	return shot, inserted, nil
}

// RecordSkipped stores a clip the collector could not resolve.
func (l *Ledger) RecordSkipped(ctx context.Context, sessionID, clip, track, code, message string) error {
	return l.store.WriteSkippedClip(ctx, SkippedClip{
		ID:        l.ids.Generate(),
		SessionID: sessionID,
		Clip:      clip,
		Track:     track,
		Code:      code,
		Message:   message,
		Seq:       l.clock.Next(),
	})
}
