package app

import (
	"github.com/rs/zerolog/log"

	"github.com/riftcall/riftcall/internal/core"
	"github.com/riftcall/riftcall/internal/domain"
)

// Join adds the user to the channel's member set. Joining a channel the user
// is already in is a no-op; joining while a member of a different channel
// leaves that one, so a user is never in two member sets for long. The add
// happens first: a join against an already-deleted channel id fails with
// ErrChannelNotFound and the user's current membership is untouched, so the
// client can recover by re-resolving. The other current members are notified.
func (c *Coordinator) Join(ch domain.ChannelID, uid domain.UserID) (core.ChannelView, error) {
	view, added, ok := c.Directory.AddMember(ch, uid)
	if !ok {
		return core.ChannelView{}, ErrChannelNotFound
	}

	if p, ok := c.Registry.Lookup(uid); ok && p.Channel != "" && p.Channel != ch {
		c.Leave(p.Channel, uid)
	}
	c.Registry.SetChannel(uid, ch)

	if added {
		member := c.memberMeta(uid)
		for _, other := range view.Members {
			if other == uid {
				continue
			}
			c.Notifier.MemberJoined(other, ch, member)
		}
		log.Info().Str("module", "app.membership").Str("user", string(uid)).Str("channel", string(ch)).Msg("joined channel")
	}
	return view, nil
}

// Leave removes the user from the channel. Not being a member is a no-op.
// When the last member leaves, the channel is deleted right here rather than
// waiting for the sweeper.
func (c *Coordinator) Leave(ch domain.ChannelID, uid domain.UserID) {
	view, removed, deleted := c.Directory.RemoveMember(ch, uid)
	if !removed {
		return
	}
	if p, ok := c.Registry.Lookup(uid); ok && p.Channel == ch {
		c.Registry.SetChannel(uid, "")
	}

	member := c.memberMeta(uid)
	for _, other := range view.Members {
		c.Notifier.MemberLeft(other, ch, member)
	}

	ev := log.Info().Str("module", "app.membership").Str("user", string(uid)).Str("channel", string(ch))
	if deleted {
		ev.Msg("left channel, channel emptied and deleted")
		return
	}
	ev.Msg("left channel")
}

// HandleDisconnect performs the full cleanup for a lost connection: leave
// the current channel, then drop the presence entry. It never fails and is
// idempotent against repeated disconnect signals; a connection that was
// superseded by a reconnect resolves to nothing and nothing happens.
func (c *Coordinator) HandleDisconnect(cid core.ConnID) {
	p, ok := c.Registry.LookupByConn(cid)
	if !ok {
		return
	}
	if p.Channel != "" {
		c.Leave(p.Channel, p.User.ID)
	}
	c.Registry.Remove(p.User.ID)
	log.Info().Str("module", "app.membership").Str("conn", string(cid)).Str("user", string(p.User.ID)).Msg("disconnected")
}
