package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/riftcall/riftcall/internal/domain"
)

// Presence is the live record for one registered user. Lookups return copies;
// the registry owns the stored entries exclusively.
type Presence struct {
	User         domain.User
	ConnID       ConnID
	Conn         SignalConnection
	Channel      domain.ChannelID // empty when not in a channel
	RegisteredAt time.Time
}

// PresenceRegistry maps user ids to their live connection and current channel
// membership. It never closes connections: a displaced handle is returned to
// the adapter that owns it.
type PresenceRegistry struct {
	mu     sync.RWMutex
	byUser map[domain.UserID]*Presence
	byConn map[ConnID]domain.UserID
	now    func() time.Time
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		byUser: make(map[domain.UserID]*Presence),
		byConn: make(map[ConnID]domain.UserID),
		now:    time.Now,
	}
}

// Register creates or replaces the entry for user.ID. A second registration
// for the same user supersedes the first (reconnect semantics, never an
// error); the displaced connection is returned so the caller can close it.
// The current channel is preserved across a reconnect.
func (r *PresenceRegistry) Register(user domain.User, cid ConnID, conn SignalConnection) SignalConnection {
	r.mu.Lock()
	defer r.mu.Unlock()

	var displaced SignalConnection
	if prev, ok := r.byUser[user.ID]; ok {
		if prev.ConnID != cid {
			displaced = prev.Conn
			delete(r.byConn, prev.ConnID)
		}
		prev.User = user
		prev.ConnID = cid
		prev.Conn = conn
		r.byConn[cid] = user.ID
		log.Info().Str("module", "core.presence").Str("user", string(user.ID)).Str("conn", string(cid)).Msg("re-registered")
		return displaced
	}

	r.byUser[user.ID] = &Presence{
		User:         user,
		ConnID:       cid,
		Conn:         conn,
		RegisteredAt: r.now(),
	}
	r.byConn[cid] = user.ID
	log.Info().Str("module", "core.presence").Str("user", string(user.ID)).Str("conn", string(cid)).Msg("registered")
	return nil
}

func (r *PresenceRegistry) Lookup(uid domain.UserID) (Presence, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byUser[uid]; ok {
		return *p, true
	}
	return Presence{}, false
}

func (r *PresenceRegistry) LookupByConn(cid ConnID) (Presence, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if uid, ok := r.byConn[cid]; ok {
		if p, ok := r.byUser[uid]; ok {
			return *p, true
		}
	}
	return Presence{}, false
}

// SetChannel records the user's current channel; empty id clears it.
// No-op for unknown users.
func (r *PresenceRegistry) SetChannel(uid domain.UserID, ch domain.ChannelID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byUser[uid]; ok {
		p.Channel = ch
	}
}

// Remove drops the user's entry and its reverse-index mapping. Channel
// cleanup is the caller's responsibility.
func (r *PresenceRegistry) Remove(uid domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byUser[uid]; ok {
		delete(r.byConn, p.ConnID)
		delete(r.byUser, uid)
		log.Info().Str("module", "core.presence").Str("user", string(uid)).Msg("removed")
	}
}

func (r *PresenceRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
