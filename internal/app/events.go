package app

import "github.com/riftcall/riftcall/internal/domain"

// ChannelInvite is pushed to a discoverable teammate at resolution time.
// The token is minted for that teammate's identity; the channel id and app
// id are shared by everyone in the channel.
type ChannelInvite struct {
	ChannelID domain.ChannelID `json:"channel_id"`
	AppID     string           `json:"app_id"`
	Token     string           `json:"token,omitempty"`
}

// Notifier delivers push notifications to affected connections. Delivery is
// best effort: implementations log and swallow send failures so cleanup of
// the shared tables always completes.
type Notifier interface {
	ChannelAvailable(to domain.UserID, inv ChannelInvite)
	MemberJoined(to domain.UserID, ch domain.ChannelID, member domain.User)
	MemberLeft(to domain.UserID, ch domain.ChannelID, member domain.User)
}
