package signal

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/riftcall/riftcall/internal/app"
	"github.com/riftcall/riftcall/internal/core"
	"github.com/riftcall/riftcall/internal/domain"
)

// identity resolves the caller: an explicit payload user id wins (identity
// is trusted as supplied), otherwise the identity registered on this socket.
func (ctl *SignalWSController) identity(cid core.ConnID, payloadID string) (domain.UserID, bool) {
	if payloadID != "" {
		return domain.UserID(payloadID), true
	}
	if p, ok := ctl.Coord.Registry.LookupByConn(cid); ok {
		return p.User.ID, true
	}
	return "", false
}

func (ctl *SignalWSController) handleResolve(
	ctx context.Context,
	cid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	type rosterEntry struct {
		ID    string `json:"id"`
		Label string `json:"label,omitempty"`
	}
	type resolvePayload struct {
		Type    string        `json:"type"`
		MatchID string        `json:"match_id"`
		TeamID  int           `json:"team_id"`
		UserID  string        `json:"user_id,omitempty"`
		Roster  []rosterEntry `json:"roster"`
	}
	var p resolvePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad resolve payload")
		ctl.sendError(conn, "bad_payload")
		return
	}
	if p.MatchID == "" {
		ctl.sendError(conn, "missing match_id")
		return
	}

	uid, ok := ctl.identity(cid, p.UserID)
	if !ok {
		ctl.sendError(conn, "not_registered")
		return
	}
	if !ctl.Limiter.Allow(uid) {
		ctl.sendError(conn, "rate_limited")
		return
	}

	roster := make([]domain.User, 0, len(p.Roster))
	for _, e := range p.Roster {
		roster = append(roster, domain.User{ID: domain.UserID(e.ID), Label: e.Label})
	}

	key := domain.MatchKey{Match: domain.MatchID(p.MatchID), Team: domain.TeamID(p.TeamID)}
	log.Info().Str("module", "signal").Str("user", string(uid)).Str("key", key.String()).Msg("resolve")

	res, err := ctl.Coord.Resolve(ctx, uid, key, roster)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("key", key.String()).Msg("resolve failed")
		if errors.Is(err, app.ErrCredentialProvider) {
			ctl.sendError(conn, "credential_provider_failure")
			return
		}
		ctl.sendError(conn, "resolve_failed")
		return
	}

	ctl.sendJSON(conn, struct {
		Type      string           `json:"type"`
		ChannelID domain.ChannelID `json:"channel_id"`
		AppID     string           `json:"app_id"`
		Token     string           `json:"token,omitempty"`
		Teammates int              `json:"teammates"`
	}{
		Type:      "channel_resolved",
		ChannelID: res.ChannelID,
		AppID:     res.AppID,
		Token:     res.Token,
		Teammates: res.DiscoverableTeammates,
	})
}

func (ctl *SignalWSController) handleJoin(
	cid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	type joinPayload struct {
		Type      string `json:"type"`
		ChannelID string `json:"channel_id"`
		UserID    string `json:"user_id,omitempty"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	uid, ok := ctl.identity(cid, p.UserID)
	if !ok {
		ctl.sendError(conn, "not_registered")
		return
	}

	ch := domain.ChannelID(p.ChannelID)
	log.Info().Str("module", "signal").Str("user", string(uid)).Str("channel", p.ChannelID).Msg("join")

	view, err := ctl.Coord.Join(ch, uid)
	if err != nil {
		if errors.Is(err, app.ErrChannelNotFound) {
			// Stale id, likely raced with eager cleanup. Client re-resolves.
			ctl.sendError(conn, "channel_not_found")
			return
		}
		ctl.sendError(conn, "join_failed")
		return
	}

	ctl.sendChannelState(conn, view)
}

func (ctl *SignalWSController) handleLeave(
	cid core.ConnID,
	conn *WsSignalConn,
	data []byte,
) {
	type leavePayload struct {
		Type      string `json:"type"`
		ChannelID string `json:"channel_id"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leave payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	// Leave is keyed by the caller's own registered identity.
	if pres, ok := ctl.Coord.Registry.LookupByConn(cid); ok {
		ch := domain.ChannelID(p.ChannelID)
		if ch == "" {
			ch = pres.Channel
		}
		if ch != "" {
			log.Info().Str("module", "signal").Str("user", string(pres.User.ID)).Str("channel", string(ch)).Msg("leave")
			ctl.Coord.Leave(ch, pres.User.ID)
		}
	}
	ctl.sendJSON(conn, map[string]any{
		"type": "left",
	})
}

func (ctl *SignalWSController) sendChannelState(conn *WsSignalConn, view core.ChannelView) {
	members := make([]domain.User, 0, len(view.Members))
	for _, uid := range view.Members {
		if p, ok := ctl.Coord.Registry.Lookup(uid); ok {
			members = append(members, p.User)
			continue
		}
		members = append(members, domain.User{ID: uid, Label: string(uid)})
	}

	ctl.sendJSON(conn, struct {
		Type      string           `json:"type"`
		ChannelID domain.ChannelID `json:"channel_id"`
		AppID     string           `json:"app_id"`
		Members   []domain.User    `json:"members"`
		Count     int              `json:"count"`
	}{
		Type:      "channel_state",
		ChannelID: view.ID,
		AppID:     view.Session.AppID,
		Members:   members,
		Count:     len(members),
	})
}
