package app

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/riftcall/riftcall/internal/core"
	"github.com/riftcall/riftcall/internal/domain"
)

// TokenProvider is the external voice credential collaborator. ChannelSession
// is called exactly once per channel creation; JoinToken mints a per-identity
// token and has no side effects visible to the coordinator.
type TokenProvider interface {
	ChannelSession(ctx context.Context, ch domain.ChannelID) (domain.ProviderSession, error)
	JoinToken(ch domain.ChannelID, uid domain.UserID) (string, error)
}

// Coordinator wires the two shared tables to the resolver and membership
// logic. All methods are safe for concurrent use from connection handlers.
type Coordinator struct {
	Registry  *core.PresenceRegistry
	Directory *core.ChannelDirectory
	Tokens    TokenProvider
	Notifier  Notifier

	// ResolveTimeout bounds the credential fetch during channel creation.
	// Zero means no timeout.
	ResolveTimeout time.Duration

	creating singleflight.Group
}

// Register records presence for the user. Re-registering is reconnect
// semantics: the prior connection is superseded, never duplicated, and the
// displaced handle is returned for the owning adapter to close. A current
// channel survives the reconnect only while it is still live and the user is
// still in its member set.
func (c *Coordinator) Register(user domain.User, cid core.ConnID, conn core.SignalConnection) core.SignalConnection {
	displaced := c.Registry.Register(user, cid, conn)

	if p, ok := c.Registry.Lookup(user.ID); ok && p.Channel != "" {
		if view, live := c.Directory.Get(p.Channel); !live || !contains(view.Members, user.ID) {
			c.Registry.SetChannel(user.ID, "")
		}
	}
	return displaced
}

func contains(ids []domain.UserID, uid domain.UserID) bool {
	for _, id := range ids {
		if id == uid {
			return true
		}
	}
	return false
}

// memberMeta returns the best-known identity for a user id: the registered
// presence when available, otherwise the bare id.
func (c *Coordinator) memberMeta(uid domain.UserID) domain.User {
	if p, ok := c.Registry.Lookup(uid); ok {
		return p.User
	}
	return domain.User{ID: uid, Label: string(uid)}
}
