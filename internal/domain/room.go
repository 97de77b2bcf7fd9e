package domain

import "time"

type (
	RoomID   string
	RoomCode string
)

const (
	// RoomCodeLength is the length of generated codes.
	RoomCodeLength = 6
	// RoomCodeAlphabet is the symbol set of generated codes.
	RoomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	MinRoomCodeLen  = 4
	MaxRoomCodeLen  = 16
	MaxRoomNameLen  = 100
	MaxPasswordHash = 255
)

// Room is the durable room record. PasswordHash never leaves the server.
type Room struct {
	ID           RoomID
	Code         RoomCode
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	ExpiresAt    *time.Time
}

// ExpiredAt reports whether the room's expiry is strictly before now.
// Rooms without an expiry never expire.
func (r *Room) ExpiredAt(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// Valid reports whether c has the accepted code shape: 4 to 16 symbols
// from RoomCodeAlphabet.
func (c RoomCode) Valid() bool {
	if len(c) < MinRoomCodeLen || len(c) > MaxRoomCodeLen {
		return false
	}
	for i := 0; i < len(c); i++ {
		ch := c[i]
		if (ch < 'A' || ch > 'Z') && (ch < '0' || ch > '9') {
			return false
		}
	}
	return true
}
