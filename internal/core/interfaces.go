package core

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/whowasi/internal/domain"
)

var (
	// ErrNoSuchRoom is returned by RoomStore.FindByCode when no room has
	// the requested code.
	ErrNoSuchRoom = errors.New("room store: no such room")
	// ErrDuplicateCode is returned by RoomStore.Insert when the code is
	// already taken.
	ErrDuplicateCode = errors.New("room store: duplicate room code")
)

// RoomStore is the durable record of rooms.
type RoomStore interface {
	FindByCode(ctx context.Context, code domain.RoomCode) (*domain.Room, error)
	// Insert assigns ID and CreatedAt on the passed room and persists it.
	Insert(ctx context.Context, room *domain.Room) error
	Ping(ctx context.Context) error
}

// CredentialVerifier hashes room passwords one-way and checks them in
// constant time. Verify returns an error only when the stored hash
// cannot be decoded.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(hash, password string) (bool, error)
}

// TokenLedger mints and redeems single-use join tokens.
type TokenLedger interface {
	Mint(room domain.RoomID) (token string, expiresAt time.Time)
	// Redeem returns domain.ErrTokenInvalid for unknown, used or expired
	// tokens, without saying which.
	Redeem(token string) (domain.RoomID, error)
}
