package core

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/riftcall/riftcall/internal/domain"
)

// ChannelView is a read-only snapshot of a channel. Member order is
// unspecified.
type ChannelView struct {
	ID        domain.ChannelID
	Key       domain.MatchKey
	Session   domain.ProviderSession
	CreatedAt time.Time
	Members   []domain.UserID
}

// ChannelDirectory owns all channel records. The primary table is keyed by
// the composite match/team key and holds the full record; byID is a lookup
// index over the same records, so the two can never disagree on what exists.
type ChannelDirectory struct {
	mu    sync.RWMutex
	byKey map[domain.MatchKey]*domain.Channel
	byID  map[domain.ChannelID]*domain.Channel
	now   func() time.Time
}

func NewChannelDirectory() *ChannelDirectory {
	return &ChannelDirectory{
		byKey: make(map[domain.MatchKey]*domain.Channel),
		byID:  make(map[domain.ChannelID]*domain.Channel),
		now:   time.Now,
	}
}

func (d *ChannelDirectory) FindByMatchTeam(key domain.MatchKey) (ChannelView, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if ch, ok := d.byKey[key]; ok {
		return snapshot(ch), true
	}
	return ChannelView{}, false
}

func (d *ChannelDirectory) Get(id domain.ChannelID) (ChannelView, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if ch, ok := d.byID[id]; ok {
		return snapshot(ch), true
	}
	return ChannelView{}, false
}

// Create inserts a channel for key with the given id and provider session,
// unless a live channel for that key already exists, in which case the
// existing one is returned and created is false. The session is fixed for
// the channel's lifetime.
func (d *ChannelDirectory) Create(id domain.ChannelID, key domain.MatchKey, sess domain.ProviderSession) (ChannelView, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ch, ok := d.byKey[key]; ok {
		return snapshot(ch), false
	}
	ch := &domain.Channel{
		ID:        id,
		Key:       key,
		Session:   sess,
		CreatedAt: d.now(),
		Members:   make(map[domain.UserID]struct{}),
	}
	d.byKey[key] = ch
	d.byID[id] = ch
	log.Info().Str("module", "core.directory").Str("channel", string(id)).Str("key", key.String()).Msg("channel created")
	return snapshot(ch), true
}

// Delete removes the channel and its key entry. The key entry is only
// removed if it still points at this id, so deleting a stale channel never
// clobbers a newer one for the same key.
func (d *ChannelDirectory) Delete(id domain.ChannelID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleteLocked(id)
}

func (d *ChannelDirectory) deleteLocked(id domain.ChannelID) bool {
	ch, ok := d.byID[id]
	if !ok {
		return false
	}
	delete(d.byID, id)
	if cur, ok := d.byKey[ch.Key]; ok && cur.ID == id {
		delete(d.byKey, ch.Key)
	}
	log.Info().Str("module", "core.directory").Str("channel", string(id)).Msg("channel deleted")
	return true
}

// AddMember adds the user to the channel's member set. Adding an existing
// member is a no-op with added=false. ok reports whether the channel exists.
func (d *ChannelDirectory) AddMember(id domain.ChannelID, uid domain.UserID) (view ChannelView, added, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch, found := d.byID[id]
	if !found {
		return ChannelView{}, false, false
	}
	if _, member := ch.Members[uid]; !member {
		ch.Members[uid] = struct{}{}
		added = true
	}
	return snapshot(ch), added, true
}

// RemoveMember removes the user from the member set and, when that empties
// the channel, deletes it in the same critical section. Two concurrent
// last-member removals therefore produce exactly one deletion.
func (d *ChannelDirectory) RemoveMember(id domain.ChannelID, uid domain.UserID) (view ChannelView, removed, deleted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ch, found := d.byID[id]
	if !found {
		return ChannelView{}, false, false
	}
	if _, member := ch.Members[uid]; !member {
		return snapshot(ch), false, false
	}
	delete(ch.Members, uid)
	if len(ch.Members) == 0 {
		d.deleteLocked(id)
		deleted = true
	}
	return snapshot(ch), true, deleted
}

// Sweep deletes channels older than maxAge that have no members left. It
// returns the reaped channels. Populated channels are never swept: an active
// session is not killed out from under its users, and a channel leaked by a
// lost leave notification is empty by definition.
func (d *ChannelDirectory) Sweep(maxAge time.Duration) []ChannelView {
	d.mu.Lock()
	defer d.mu.Unlock()
	cutoff := d.now().Add(-maxAge)
	var reaped []ChannelView
	for id, ch := range d.byID {
		if len(ch.Members) == 0 && ch.CreatedAt.Before(cutoff) {
			reaped = append(reaped, snapshot(ch))
			d.deleteLocked(id)
		}
	}
	return reaped
}

func (d *ChannelDirectory) List() []ChannelView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]ChannelView, 0, len(d.byID))
	for _, ch := range d.byID {
		out = append(out, snapshot(ch))
	}
	return out
}

func (d *ChannelDirectory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}

func snapshot(ch *domain.Channel) ChannelView {
	members := make([]domain.UserID, 0, len(ch.Members))
	for uid := range ch.Members {
		members = append(members, uid)
	}
	return ChannelView{
		ID:        ch.ID,
		Key:       ch.Key,
		Session:   ch.Session,
		CreatedAt: ch.CreatedAt,
		Members:   members,
	}
}
