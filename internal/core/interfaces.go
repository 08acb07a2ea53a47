package core

// Frame is a raw encoded payload pushed to one client.
type Frame []byte

// ConnID identifies a single signaling connection. Disconnect events arrive
// keyed by connection, not user, so presence keeps a reverse index on it.
type ConnID string

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
