package orch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/core"
	"github.com/dkeye/whowasi/internal/domain"
)

// JoinResult is what a successful join hands back to the caller.
type JoinResult struct {
	Room      *domain.Room
	Token     string
	ExpiresAt time.Time
}

// JoinRoom exchanges a room code and password for a single-use join
// token. Checks run in a fixed order: existence, expiry, password.
// Failures of those checks are *domain.Error; anything else is an
// internal error.
func (o *Orchestrator) JoinRoom(ctx context.Context, code domain.RoomCode, password string) (JoinResult, error) {
	room, err := o.Rooms.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, core.ErrNoSuchRoom) {
			o.burnVerify(password)
			o.logJoinFailure(code, domain.KindNotFound)
			return JoinResult{}, domain.ErrRoomNotFound
		}
		return JoinResult{}, fmt.Errorf("orch: find room: %w", err)
	}

	if room.ExpiredAt(o.now()) {
		o.logJoinFailure(code, domain.KindExpired)
		return JoinResult{}, domain.ErrRoomExpired
	}

	ok, err := o.Credentials.Verify(room.PasswordHash, password)
	if err != nil {
		return JoinResult{}, fmt.Errorf("orch: verify password: %w", err)
	}
	if !ok {
		o.logJoinFailure(code, domain.KindBadPassword)
		return JoinResult{}, domain.ErrBadPassword
	}

	// no token for a caller that already gave up
	if err := ctx.Err(); err != nil {
		return JoinResult{}, err
	}

	token, expiresAt := o.Tokens.Mint(room.ID)
	log.Info().Str("module", "app.orch").Str("room_id", string(room.ID)).Time("token_expires_at", expiresAt).Msg("join token minted")
	return JoinResult{Room: room, Token: token, ExpiresAt: expiresAt}, nil
}

func (o *Orchestrator) logJoinFailure(code domain.RoomCode, kind domain.ErrorKind) {
	log.Info().Str("module", "app.orch").Str("room_code", string(code)).Str("kind", kind.String()).Msg("join rejected")
}
