package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/riftcall/riftcall/internal/app"
	"github.com/riftcall/riftcall/internal/core"
	"github.com/riftcall/riftcall/internal/domain"
)

// PushNotifier delivers coordinator events over the recipients' signaling
// sockets. Sends are best effort: a user who went offline or a full send
// buffer is logged and skipped, never surfaced to the triggering operation.
type PushNotifier struct {
	Registry *core.PresenceRegistry
}

func NewPushNotifier(reg *core.PresenceRegistry) *PushNotifier {
	return &PushNotifier{Registry: reg}
}

func (n *PushNotifier) ChannelAvailable(to domain.UserID, inv app.ChannelInvite) {
	n.push(to, struct {
		Type string           `json:"type"`
		app.ChannelInvite
	}{
		Type:          "channel_available",
		ChannelInvite: inv,
	})
}

func (n *PushNotifier) MemberJoined(to domain.UserID, ch domain.ChannelID, member domain.User) {
	n.push(to, struct {
		Type      string           `json:"type"`
		ChannelID domain.ChannelID `json:"channel_id"`
		User      domain.User      `json:"user"`
	}{
		Type:      "member_joined",
		ChannelID: ch,
		User:      member,
	})
}

func (n *PushNotifier) MemberLeft(to domain.UserID, ch domain.ChannelID, member domain.User) {
	n.push(to, struct {
		Type      string           `json:"type"`
		ChannelID domain.ChannelID `json:"channel_id"`
		User      domain.User      `json:"user"`
	}{
		Type:      "member_left",
		ChannelID: ch,
		User:      member,
	})
}

func (n *PushNotifier) push(to domain.UserID, v any) {
	p, ok := n.Registry.Lookup(to)
	if !ok {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("push marshal")
		return
	}
	if err := p.Conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("user", string(to)).Msg("push dropped")
	}
}
