// Package roomstore implements core.RoomStore on gorm and in memory.
package roomstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkeye/whowasi/internal/core"
	"github.com/dkeye/whowasi/internal/domain"
)

// Memory is a process-local RoomStore for development and tests.
type Memory struct {
	mu     sync.RWMutex
	byCode map[domain.RoomCode]domain.Room
	now    func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		byCode: make(map[domain.RoomCode]domain.Room),
		now:    time.Now,
	}
}

func (m *Memory) FindByCode(_ context.Context, code domain.RoomCode) (*domain.Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	room, ok := m.byCode[code]
	if !ok {
		return nil, core.ErrNoSuchRoom
	}
	return &room, nil
}

func (m *Memory) Insert(_ context.Context, room *domain.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.byCode[room.Code]; taken {
		return core.ErrDuplicateCode
	}
	if room.ID == "" {
		room.ID = domain.RoomID(uuid.NewString())
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = m.now().UTC()
	}
	m.byCode[room.Code] = *room
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

// Len returns the number of stored rooms.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byCode)
}
