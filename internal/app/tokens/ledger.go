// Package tokens owns the lifecycle of join tokens: minting, single-use
// redemption and expiry sweeping. The ledger is process-local and starts
// empty on every restart.
package tokens

import (
	"crypto/rand"
	"encoding/base64"
	"hash/maphash"
	"sync"
	"time"

	"github.com/dkeye/whowasi/internal/clock"
	"github.com/dkeye/whowasi/internal/domain"
)

const (
	// DefaultTTL is the lifetime of a freshly minted token.
	DefaultTTL = 10 * time.Minute

	tokenBytes = 32
	shardCount = 32
)

// Record is the ledger's view of one token.
type Record struct {
	RoomID    domain.RoomID
	IssuedAt  time.Time
	ExpiresAt time.Time
	Used      bool
}

// expired reports whether the record's expiry is strictly before now.
func (r *Record) expired(now time.Time) bool {
	return r.ExpiresAt.Before(now)
}

type shard struct {
	mu      sync.Mutex
	records map[string]*Record
}

// Ledger maps token strings to room bindings. All mutation of a record
// happens under its shard's mutex, so redeem is one atomic
// check-and-set per key.
type Ledger struct {
	clock  clock.Clock
	ttl    time.Duration
	seed   maphash.Seed
	shards [shardCount]shard
}

// NewLedger builds an empty ledger. A non-positive ttl falls back to
// DefaultTTL; a nil clock to clock.Real().
func NewLedger(ttl time.Duration, c clock.Clock) *Ledger {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if c == nil {
		c = clock.Real()
	}
	l := &Ledger{
		clock: c,
		ttl:   ttl,
		seed:  maphash.MakeSeed(),
	}
	for i := range l.shards {
		l.shards[i].records = make(map[string]*Record)
	}
	return l
}

func (l *Ledger) TTL() time.Duration { return l.ttl }

func (l *Ledger) shardFor(token string) *shard {
	return &l.shards[maphash.String(l.seed, token)%shardCount]
}

// Mint creates an unused token bound to room and returns it with its
// expiry.
func (l *Ledger) Mint(room domain.RoomID) (string, time.Time) {
	token := newToken()
	now := l.clock.Now()
	rec := &Record{
		RoomID:    room,
		IssuedAt:  now,
		ExpiresAt: now.Add(l.ttl),
	}

	s := l.shardFor(token)
	s.mu.Lock()
	s.records[token] = rec
	s.mu.Unlock()

	return token, rec.ExpiresAt
}

// Redeem consumes token. It returns domain.ErrTokenInvalid when the
// token is unknown, already used or expired; an expired record is
// evicted on the way out regardless of its used flag.
func (l *Ledger) Redeem(token string) (domain.RoomID, error) {
	s := l.shardFor(token)
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[token]
	if !ok {
		return "", domain.ErrTokenInvalid
	}
	if rec.expired(l.clock.Now()) {
		delete(s.records, token)
		return "", domain.ErrTokenInvalid
	}
	if rec.Used {
		return "", domain.ErrTokenInvalid
	}
	rec.Used = true
	return rec.RoomID, nil
}

// SweepExpired drops used and expired records and returns how many were
// removed.
func (l *Ledger) SweepExpired() int {
	now := l.clock.Now()
	removed := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		for token, rec := range s.records {
			if rec.Used || rec.expired(now) {
				delete(s.records, token)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Len returns the number of records currently held.
func (l *Ledger) Len() int {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		n += len(s.records)
		s.mu.Unlock()
	}
	return n
}

// newToken returns 256 random bits, base64url encoded without padding.
// crypto/rand.Read never fails on supported platforms.
func newToken() string {
	b := make([]byte, tokenBytes)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
