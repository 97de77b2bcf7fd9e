package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/core"
	"github.com/dkeye/whowasi/internal/domain"
)

func (ctl *SignalWSController) handleRename(
	sid core.SessionID,
	conn *WsSignalConn,
	data []byte,
) {
	type renamePayload struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}
	var p renamePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad rename payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	ok, err := ctl.Orch.Registry.UpdateUsername(sid, p.Name)
	if err != nil {
		ctl.sendError(conn, "invalid_name")
		return
	}
	if !ok {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("rename")
	ctl.handleWhoAmI(sid, conn)
}

func (ctl *SignalWSController) handleWhoAmI(
	sid core.SessionID,
	conn *WsSignalConn,
) {
	snap, ok := ctl.Orch.Registry.Get(sid)
	if !ok {
		return
	}
	resp := struct {
		Type      string         `json:"type"`
		SessionID core.SessionID `json:"session_id"`
		Username  string         `json:"username"`
		Room      domain.RoomID  `json:"room"`
	}{
		Type:      "whoami",
		SessionID: sid,
		Username:  snap.User.Username,
		Room:      snap.RoomID,
	}
	ctl.sendJSON(conn, resp)
}
