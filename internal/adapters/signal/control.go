package signal

import "time"

// handlePing answers the client heartbeat. The reply carries the server time
// so clients can estimate signaling latency.
func (ctl *SignalWSController) handlePing(
	conn *WsSignalConn,
) {
	resp := struct {
		Type string `json:"type"`
		Ts   int64  `json:"ts"`
	}{
		Type: "pong",
		Ts:   time.Now().UnixMilli(),
	}
	ctl.sendJSON(conn, resp)
}
