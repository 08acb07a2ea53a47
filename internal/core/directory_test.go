package core

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riftcall/riftcall/internal/domain"
)

var testKey = domain.MatchKey{Match: "m1", Team: 100}

func testSession() domain.ProviderSession {
	return domain.ProviderSession{AppID: "test-app", Credential: "cred"}
}

func TestDirectory_CreateAndFind(t *testing.T) {
	d := NewChannelDirectory()

	view, created := d.Create("ch1", testKey, testSession())
	require.True(t, created)
	require.Equal(t, domain.ChannelID("ch1"), view.ID)
	require.Empty(t, view.Members)
	require.False(t, view.CreatedAt.IsZero())

	found, ok := d.FindByMatchTeam(testKey)
	require.True(t, ok)
	require.Equal(t, view.ID, found.ID)

	got, ok := d.Get("ch1")
	require.True(t, ok)
	require.Equal(t, "test-app", got.Session.AppID)
}

func TestDirectory_CreateIsGetOrCreatePerKey(t *testing.T) {
	d := NewChannelDirectory()
	first, created := d.Create("ch1", testKey, testSession())
	require.True(t, created)

	second, created := d.Create("ch2", testKey, testSession())
	require.False(t, created, "a live channel for the key wins")
	require.Equal(t, first.ID, second.ID)

	_, ok := d.Get("ch2")
	require.False(t, ok)
	require.Equal(t, 1, d.Count())
}

func TestDirectory_DeleteRemovesKeyEntry(t *testing.T) {
	d := NewChannelDirectory()
	d.Create("ch1", testKey, testSession())

	require.True(t, d.Delete("ch1"))
	_, ok := d.FindByMatchTeam(testKey)
	require.False(t, ok, "no dangling key entry after delete")
	_, ok = d.Get("ch1")
	require.False(t, ok)

	require.False(t, d.Delete("ch1"), "second delete is a no-op")
}

func TestDirectory_RecreateAfterDeleteGetsNewID(t *testing.T) {
	d := NewChannelDirectory()
	d.Create("ch1", testKey, testSession())
	d.Delete("ch1")

	view, created := d.Create("ch2", testKey, testSession())
	require.True(t, created)
	require.Equal(t, domain.ChannelID("ch2"), view.ID)

	// Deleting the dead id must not clobber the new key entry.
	require.False(t, d.Delete("ch1"))
	found, ok := d.FindByMatchTeam(testKey)
	require.True(t, ok)
	require.Equal(t, domain.ChannelID("ch2"), found.ID)
}

func TestDirectory_AddMemberIdempotent(t *testing.T) {
	d := NewChannelDirectory()
	d.Create("ch1", testKey, testSession())

	view, added, ok := d.AddMember("ch1", "u1")
	require.True(t, ok)
	require.True(t, added)
	require.Len(t, view.Members, 1)

	view, added, ok = d.AddMember("ch1", "u1")
	require.True(t, ok)
	require.False(t, added, "joining twice is a no-op")
	require.Len(t, view.Members, 1)

	_, _, ok = d.AddMember("gone", "u1")
	require.False(t, ok)
}

func TestDirectory_RemoveMemberEagerDelete(t *testing.T) {
	d := NewChannelDirectory()
	d.Create("ch1", testKey, testSession())
	d.AddMember("ch1", "u1")
	d.AddMember("ch1", "u2")

	view, removed, deleted := d.RemoveMember("ch1", "u1")
	require.True(t, removed)
	require.False(t, deleted)
	require.Equal(t, []domain.UserID{"u2"}, view.Members)

	_, removed, deleted = d.RemoveMember("ch1", "u1")
	require.False(t, removed, "removal is terminal for the pair")
	require.False(t, deleted)

	_, removed, deleted = d.RemoveMember("ch1", "u2")
	require.True(t, removed)
	require.True(t, deleted, "last member out deletes the channel")

	_, ok := d.FindByMatchTeam(testKey)
	require.False(t, ok)
	_, ok = d.Get("ch1")
	require.False(t, ok)
}

func TestDirectory_ConcurrentLastLeavesDeleteOnce(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := NewChannelDirectory()
		d.Create("ch1", testKey, testSession())
		d.AddMember("ch1", "u1")
		d.AddMember("ch1", "u2")

		var wg sync.WaitGroup
		deletions := make(chan bool, 2)
		for _, uid := range []domain.UserID{"u1", "u2"} {
			wg.Add(1)
			go func(uid domain.UserID) {
				defer wg.Done()
				_, _, deleted := d.RemoveMember("ch1", uid)
				deletions <- deleted
			}(uid)
		}
		wg.Wait()
		close(deletions)

		count := 0
		for deleted := range deletions {
			if deleted {
				count++
			}
		}
		require.Equal(t, 1, count, "exactly one deletion must occur")
		require.Zero(t, d.Count())
	}
}

func TestDirectory_SweepOnlyEmptyAndStale(t *testing.T) {
	d := NewChannelDirectory()
	base := time.Now()
	d.now = func() time.Time { return base }

	d.Create("stale-empty", domain.MatchKey{Match: "m1", Team: 100}, testSession())
	d.Create("stale-busy", domain.MatchKey{Match: "m1", Team: 200}, testSession())
	d.AddMember("stale-busy", "u1")

	d.now = func() time.Time { return base.Add(90 * time.Minute) }
	d.Create("fresh-empty", domain.MatchKey{Match: "m2", Team: 100}, testSession())

	d.now = func() time.Time { return base.Add(2 * time.Hour) }
	reaped := d.Sweep(time.Hour)

	require.Len(t, reaped, 1)
	require.Equal(t, domain.ChannelID("stale-empty"), reaped[0].ID)

	_, ok := d.Get("stale-busy")
	require.True(t, ok, "a populated channel is never swept")
	_, ok = d.Get("fresh-empty")
	require.True(t, ok, "a channel under the age threshold stays")
	_, ok = d.FindByMatchTeam(domain.MatchKey{Match: "m1", Team: 100})
	require.False(t, ok)
}

func TestDirectory_SnapshotIsDetached(t *testing.T) {
	d := NewChannelDirectory()
	d.Create("ch1", testKey, testSession())
	view, _, _ := d.AddMember("ch1", "u1")

	view.Members[0] = "tampered"

	again, _ := d.Get("ch1")
	require.Equal(t, []domain.UserID{"u1"}, again.Members)
}
