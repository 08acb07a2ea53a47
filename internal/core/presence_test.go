package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riftcall/riftcall/internal/domain"
)

type fakeConn struct {
	frames []Frame
	closed bool
}

func (f *fakeConn) TrySend(b Frame) error {
	f.frames = append(f.frames, b)
	return nil
}

func (f *fakeConn) Close() { f.closed = true }

func TestPresenceRegistry_RegisterAndLookup(t *testing.T) {
	r := NewPresenceRegistry()
	conn := &fakeConn{}

	displaced := r.Register(domain.User{ID: "u1", Label: "Faker"}, "c1", conn)
	require.Nil(t, displaced)

	p, ok := r.Lookup("u1")
	require.True(t, ok)
	require.Equal(t, "Faker", p.User.Label)
	require.Equal(t, ConnID("c1"), p.ConnID)
	require.False(t, p.RegisteredAt.IsZero())

	byConn, ok := r.LookupByConn("c1")
	require.True(t, ok)
	require.Equal(t, domain.UserID("u1"), byConn.User.ID)
}

func TestPresenceRegistry_ReconnectSupersedes(t *testing.T) {
	r := NewPresenceRegistry()
	old := &fakeConn{}
	r.Register(domain.User{ID: "u1", Label: "Faker"}, "c1", old)
	r.SetChannel("u1", "ch1")

	fresh := &fakeConn{}
	displaced := r.Register(domain.User{ID: "u1", Label: "Faker"}, "c2", fresh)
	require.Same(t, old, displaced.(*fakeConn))

	require.Equal(t, 1, r.Count(), "exactly one entry per user id")

	p, ok := r.Lookup("u1")
	require.True(t, ok)
	require.Equal(t, ConnID("c2"), p.ConnID)
	require.Equal(t, domain.ChannelID("ch1"), p.Channel, "channel survives reconnect")

	// The stale connection no longer resolves to anyone.
	_, ok = r.LookupByConn("c1")
	require.False(t, ok)
	_, ok = r.LookupByConn("c2")
	require.True(t, ok)
}

func TestPresenceRegistry_SetChannelAndClear(t *testing.T) {
	r := NewPresenceRegistry()
	r.Register(domain.User{ID: "u1"}, "c1", &fakeConn{})

	r.SetChannel("u1", "ch1")
	p, _ := r.Lookup("u1")
	require.Equal(t, domain.ChannelID("ch1"), p.Channel)

	r.SetChannel("u1", "")
	p, _ = r.Lookup("u1")
	require.Empty(t, p.Channel)

	// Unknown user is a no-op, not a panic.
	r.SetChannel("ghost", "ch1")
}

func TestPresenceRegistry_Remove(t *testing.T) {
	r := NewPresenceRegistry()
	r.Register(domain.User{ID: "u1"}, "c1", &fakeConn{})

	r.Remove("u1")
	_, ok := r.Lookup("u1")
	require.False(t, ok)
	_, ok = r.LookupByConn("c1")
	require.False(t, ok)
	require.Zero(t, r.Count())

	// Second remove finds nothing and does nothing.
	r.Remove("u1")
}

func TestPresenceRegistry_LookupReturnsCopy(t *testing.T) {
	r := NewPresenceRegistry()
	r.Register(domain.User{ID: "u1", Label: "a"}, "c1", &fakeConn{})

	p, _ := r.Lookup("u1")
	p.User.Label = "mutated"
	p.Channel = "ch9"

	again, _ := r.Lookup("u1")
	require.Equal(t, "a", again.User.Label)
	require.Empty(t, again.Channel)
}
