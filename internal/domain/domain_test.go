package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("puuid-1", "Faker")
	require.NoError(t, err)
	require.Equal(t, "Faker", u.Label)

	u, err = NewUser("puuid-1", "")
	require.NoError(t, err)
	require.Equal(t, "puuid-1", u.Label, "label defaults to the id")

	_, err = NewUser("", "x")
	require.ErrorIs(t, err, ErrUserIDEmpty)

	_, err = NewUser(UserID(strings.Repeat("a", MaxUserIDLen+1)), "x")
	require.ErrorIs(t, err, ErrUserIDTooLong)

	_, err = NewUser("puuid-1", strings.Repeat("a", MaxLabelLen+1))
	require.ErrorIs(t, err, ErrLabelTooLong)
}

func TestMatchKeyString(t *testing.T) {
	k := MatchKey{Match: "NA1_123", Team: 100}
	require.Equal(t, "NA1_123_100", k.String())
}

func TestNewChannelID(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	id := NewChannelID(MatchKey{Match: "NA1_123", Team: 200}, at)
	require.Equal(t, ChannelID("NA1_123_200_1700000000000"), id)

	// Same key at a later instant yields a fresh id.
	later := NewChannelID(MatchKey{Match: "NA1_123", Team: 200}, at.Add(time.Second))
	require.NotEqual(t, id, later)
}
