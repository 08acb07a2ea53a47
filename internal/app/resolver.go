package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/riftcall/riftcall/internal/core"
	"github.com/riftcall/riftcall/internal/domain"
)

// Resolution is what the requester gets back from Resolve.
type Resolution struct {
	ChannelID             domain.ChannelID
	AppID                 string
	Token                 string
	DiscoverableTeammates int
}

// Resolve maps a match/team key to its one live channel, creating it if
// absent, and notifies every roster member who currently has a presence
// entry. Repeated calls return the same channel id until it is deleted.
//
// The credential fetch for a new channel happens outside the directory lock,
// serialized per key, so a slow provider never blocks unrelated keys and
// concurrent resolvers never create two channels for one key. A failed fetch
// aborts creation with nothing inserted.
func (c *Coordinator) Resolve(ctx context.Context, uid domain.UserID, key domain.MatchKey, roster []domain.User) (*Resolution, error) {
	view, ok := c.Directory.FindByMatchTeam(key)
	if !ok {
		v, err, _ := c.creating.Do(key.String(), func() (any, error) {
			if view, ok := c.Directory.FindByMatchTeam(key); ok {
				return view, nil
			}
			return c.createChannel(ctx, key)
		})
		if err != nil {
			return nil, err
		}
		view = v.(core.ChannelView)
	}

	token, err := c.Tokens.JoinToken(view.ID, uid)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentialProvider, err)
	}

	teammates := 0
	for _, mate := range roster {
		if mate.ID == uid {
			continue
		}
		if _, online := c.Registry.Lookup(mate.ID); !online {
			continue
		}
		teammates++
		if contains(view.Members, mate.ID) {
			// Already in the channel; no point re-inviting.
			continue
		}
		c.invite(view, mate.ID)
	}

	log.Info().Str("module", "app.resolver").
		Str("user", string(uid)).
		Str("channel", string(view.ID)).
		Int("teammates", teammates).
		Msg("resolved channel")

	return &Resolution{
		ChannelID:             view.ID,
		AppID:                 view.Session.AppID,
		Token:                 token,
		DiscoverableTeammates: teammates,
	}, nil
}

func (c *Coordinator) createChannel(ctx context.Context, key domain.MatchKey) (core.ChannelView, error) {
	if c.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.ResolveTimeout)
		defer cancel()
	}

	id := domain.NewChannelID(key, time.Now())
	sess, err := c.Tokens.ChannelSession(ctx, id)
	if err != nil {
		return core.ChannelView{}, fmt.Errorf("%w: %w", ErrCredentialProvider, err)
	}

	view, created := c.Directory.Create(id, key, sess)
	if !created {
		// Lost a race with a creator outside this flight; the live channel
		// wins and the fetched session is discarded.
		log.Debug().Str("module", "app.resolver").Str("key", key.String()).Msg("channel existed after credential fetch")
	}
	return view, nil
}

func (c *Coordinator) invite(view core.ChannelView, uid domain.UserID) {
	token, err := c.Tokens.JoinToken(view.ID, uid)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.resolver").Str("user", string(uid)).Msg("join token failed, skipping invite")
		return
	}
	c.Notifier.ChannelAvailable(uid, ChannelInvite{
		ChannelID: view.ID,
		AppID:     view.Session.AppID,
		Token:     token,
	})
}
