package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riftcall/riftcall/internal/core"
)

func TestHandlePing(t *testing.T) {
	ctl := &SignalWSController{}
	conn := &WsSignalConn{send: make(chan core.Frame, 1)}

	before := time.Now().UnixMilli()
	ctl.handlePing(conn)

	msg := decodeFrame(t, <-conn.send)
	require.Equal(t, "pong", msg["type"])
	ts := int64(msg["ts"].(float64))
	require.GreaterOrEqual(t, ts, before)
	require.LessOrEqual(t, ts, time.Now().UnixMilli())
}
