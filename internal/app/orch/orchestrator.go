// Package orch composes the room store, credential verifier, token
// ledger and connection registry into the room operations exposed over
// HTTP and websocket.
package orch

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/app"
	"github.com/dkeye/whowasi/internal/clock"
	"github.com/dkeye/whowasi/internal/core"
)

type Orchestrator struct {
	Rooms       core.RoomStore
	Credentials core.CredentialVerifier
	Tokens      core.TokenLedger
	Registry    *app.Registry
	Policy      app.Policy
	Clock       clock.Clock

	// NewCode generates room codes; nil means GenerateCode.
	NewCode func() (string, error)

	dummyOnce sync.Once
	dummyHash string
}

func (o *Orchestrator) now() time.Time {
	if o.Clock == nil {
		return time.Now()
	}
	return o.Clock.Now()
}

// burnVerify runs a password check against a throwaway hash so an
// unknown room code costs as much as a wrong password.
func (o *Orchestrator) burnVerify(password string) {
	o.dummyOnce.Do(func() {
		h, err := o.Credentials.Hash("whowasi-unknown-room")
		if err != nil {
			log.Error().Err(err).Str("module", "app.orch").Msg("dummy hash")
			return
		}
		o.dummyHash = h
	})
	if o.dummyHash == "" {
		return
	}
	_, _ = o.Credentials.Verify(o.dummyHash, password)
}

// OnFrame echoes data back to the sending session. When its send
// buffer is full the Policy decides what happens to the session.
func (o *Orchestrator) OnFrame(sid core.SessionID, data core.Frame) {
	snap, ok := o.Registry.Get(sid)
	if !ok {
		return
	}
	if err := snap.Session.Signal().TrySend(data); err == nil || o.Policy == nil {
		return
	}
	switch action := o.Policy.OnBackPressure(snap.Session); action {
	case app.KickMember:
		log.Warn().Str("module", "app.orch").Str("sid", string(sid)).Msg("kicking slow session")
		o.KickBySID(sid)
	case app.MarkSlow, app.DropFrame, app.NoAction:
		log.Debug().Str("module", "app.orch").Str("sid", string(sid)).Str("action", action.String()).Msg("backpressure")
	}
}

// KickBySID cancels the session; its pumps close the connection and
// unbind it.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	o.Registry.Cancel(sid)
}
