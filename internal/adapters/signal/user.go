package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/riftcall/riftcall/internal/core"
	"github.com/riftcall/riftcall/internal/domain"
)

func (ctl *SignalWSController) handleRegister(
	cid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	type registerPayload struct {
		Type   string `json:"type"`
		UserID string `json:"user_id"`
		Label  string `json:"label,omitempty"`
	}
	var p registerPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad register payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	user, err := domain.NewUser(domain.UserID(p.UserID), p.Label)
	if err != nil {
		ctl.sendError(conn, err.Error())
		return
	}

	// A re-register displaces the previous socket for this identity; the
	// displaced connection is ours to close.
	if displaced := ctl.Coord.Register(*user, cid, conn); displaced != nil {
		displaced.Close()
	}

	log.Info().Str("module", "signal").Str("conn", string(cid)).Str("user", p.UserID).Msg("register")
	ctl.sendJSON(conn, struct {
		Type string      `json:"type"`
		User domain.User `json:"user"`
	}{
		Type: "registered",
		User: *user,
	})
}

func (ctl *SignalWSController) handleWhoAmI(
	cid core.ConnID,
	conn *WsSignalConn,
) {
	p, ok := ctl.Coord.Registry.LookupByConn(cid)
	if !ok {
		ctl.sendError(conn, "not_registered")
		return
	}

	resp := struct {
		Type    string           `json:"type"`
		User    domain.User      `json:"user"`
		Channel domain.ChannelID `json:"channel,omitempty"`
	}{
		Type:    "whoami",
		User:    p.User,
		Channel: p.Channel,
	}
	ctl.sendJSON(conn, resp)
}
