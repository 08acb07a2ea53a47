package domain

import (
	"fmt"
	"time"
)

type (
	MatchID   string
	TeamID    int
	ChannelID string
)

// MatchKey pairs a match with one of its teams. It is the identity a
// voice channel is resolved by: one live channel per key at a time.
type MatchKey struct {
	Match MatchID
	Team  TeamID
}

func (k MatchKey) String() string {
	return fmt.Sprintf("%s_%d", k.Match, k.Team)
}

// NewChannelID derives a channel id from the key and the creation instant,
// so a recreated channel for the same key never reuses an old id.
func NewChannelID(key MatchKey, at time.Time) ChannelID {
	return ChannelID(fmt.Sprintf("%s_%d_%d", key.Match, key.Team, at.UnixMilli()))
}

// ProviderSession is the opaque credential material for the external voice
// transport, obtained once when the channel is created and immutable after.
type ProviderSession struct {
	AppID      string `json:"app_id"`
	Credential string `json:"credential,omitempty"`
}

// Channel is the coordination record for one match/team voice session.
// Membership is owned and mutated by the directory, never by callers.
type Channel struct {
	ID        ChannelID
	Key       MatchKey
	Session   ProviderSession
	CreatedAt time.Time
	Members   map[UserID]struct{}
}
