package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/core"
	"github.com/dkeye/whowasi/internal/domain"
)

type sessionEntry struct {
	ClientToken string
	RoomID      domain.RoomID
	Session     core.MemberSession
	Cancel      context.CancelFunc
}

// Registry tracks live websocket sessions and the room each one was
// admitted to. Bookkeeping only, no routing.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	draining bool
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

// Snapshot is a copy of one registry entry. User is copied so callers
// can read it without holding the registry lock.
type Snapshot struct {
	SID         core.SessionID
	ClientToken string
	RoomID      domain.RoomID
	User        domain.User
	Session     core.MemberSession
}

func (r *Registry) Bind(
	sid core.SessionID,
	clientToken string,
	roomID domain.RoomID,
	user *domain.User,
	conn core.SignalConnection,
	cancel context.CancelFunc,
) core.MemberSession {
	if user == nil {
		user = &domain.User{ID: domain.UserID(sid), Username: domain.DefaultUsername}
	}
	sess := core.NewMemberSession(domain.NewMember(user, roomID), conn)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{
		ClientToken: clientToken,
		RoomID:      roomID,
		Session:     sess,
		Cancel:      cancel,
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room_id", string(roomID)).Msg("bound session")
	return sess
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sid]; !ok {
		return
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

func (r *Registry) Get(sid core.SessionID) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return Snapshot{}, false
	}
	return snapshotOf(sid, e), true
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok {
		return "", false
	}
	return e.RoomID, true
}

// UpdateUsername validates name and applies it to the session's user.
// Returns false when sid is not bound.
func (r *Registry) UpdateUsername(sid core.SessionID, name string) (bool, error) {
	name, err := domain.ValidateUsername(name)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false, nil
	}
	e.Session.Meta().User.Username = name
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("username", name).Msg("updated username")
	return true, nil
}

func (r *Registry) MembersOfRoom(roomID domain.RoomID) []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Snapshot, 0, len(r.sessions))
	for sid, e := range r.sessions {
		if e.RoomID == roomID {
			out = append(out, snapshotOf(sid, e))
		}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}

// Accepting reports whether new sessions may be admitted. It turns
// false for good once CloseAll runs.
func (r *Registry) Accepting() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.draining
}

// CloseAll stops admitting sessions and cancels every live one.
// Sessions unbind themselves as their pumps exit.
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	r.draining = true
	cancels := make([]context.CancelFunc, 0, len(r.sessions))
	for _, e := range r.sessions {
		if e.Cancel != nil {
			cancels = append(cancels, e.Cancel)
		}
	}
	r.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	log.Info().Str("module", "app.registry").Int("sessions", len(cancels)).Msg("closed all sessions")
	return len(cancels)
}

func snapshotOf(sid core.SessionID, e *sessionEntry) Snapshot {
	s := Snapshot{
		SID:         sid,
		ClientToken: e.ClientToken,
		RoomID:      e.RoomID,
		Session:     e.Session,
	}
	if u := e.Session.Meta().User; u != nil {
		s.User = *u
	}
	return s
}
