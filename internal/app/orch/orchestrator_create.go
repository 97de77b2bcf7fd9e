package orch

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/core"
	"github.com/dkeye/whowasi/internal/domain"
)

// MaxCodeAttempts bounds how many codes CreateRoom tries before giving up.
const MaxCodeAttempts = 5

var (
	ErrCodeSpaceExhausted = errors.New("orch: could not allocate a unique room code")
	ErrInvalidRoomName    = errors.New("orch: room name must be 1 to 100 characters")
	ErrEmptyPassword      = errors.New("orch: password must not be empty")
)

// CreateRoom stores a new room with a generated code and the hashed
// password. On a code collision it retries with a fresh code, at most
// MaxCodeAttempts times in total.
func (o *Orchestrator) CreateRoom(ctx context.Context, name, password string, expiresAt *time.Time) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > domain.MaxRoomNameLen {
		return nil, ErrInvalidRoomName
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}

	hash, err := o.Credentials.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("orch: hash password: %w", err)
	}

	newCode := o.NewCode
	if newCode == nil {
		newCode = GenerateCode
	}

	for attempt := 1; attempt <= MaxCodeAttempts; attempt++ {
		code, err := newCode()
		if err != nil {
			return nil, fmt.Errorf("orch: generate room code: %w", err)
		}
		room := &domain.Room{
			Code:         domain.RoomCode(code),
			Name:         name,
			PasswordHash: hash,
			ExpiresAt:    expiresAt,
		}
		err = o.Rooms.Insert(ctx, room)
		if err == nil {
			log.Info().Str("module", "app.orch").Str("room_id", string(room.ID)).Str("room_code", code).Msg("room created")
			return room, nil
		}
		if !errors.Is(err, core.ErrDuplicateCode) {
			return nil, fmt.Errorf("orch: insert room: %w", err)
		}
		log.Warn().Str("module", "app.orch").Int("attempt", attempt).Msg("room code collision")
	}
	return nil, ErrCodeSpaceExhausted
}

// GenerateCode draws domain.RoomCodeLength symbols uniformly from
// domain.RoomCodeAlphabet using crypto/rand.
func GenerateCode() (string, error) {
	const alphabet = domain.RoomCodeAlphabet
	// largest multiple of len(alphabet) that fits in a byte
	limit := byte(256 - 256%len(alphabet))

	out := make([]byte, 0, domain.RoomCodeLength)
	buf := make([]byte, domain.RoomCodeLength*2)
	for len(out) < domain.RoomCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == domain.RoomCodeLength {
				break
			}
		}
	}
	return string(out), nil
}
