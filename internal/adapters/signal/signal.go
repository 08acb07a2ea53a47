package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/riftcall/riftcall/internal/app"
	"github.com/riftcall/riftcall/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

type SignalWSController struct {
	Coord   *app.Coordinator
	Limiter *ResolveRateLimiter
}

func NewSignalWSController(coord *app.Coordinator, resolveLimit int, resolveWindow time.Duration) *SignalWSController {
	if resolveLimit <= 0 {
		resolveLimit = 5
	}
	if resolveWindow <= 0 {
		resolveWindow = 10 * time.Second
	}
	return &SignalWSController{
		Coord:   coord,
		Limiter: NewResolveRateLimiter(resolveLimit, resolveWindow),
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the connection pumps. The
// connection id is the client token issued by the router middleware; presence
// is only established once the client sends a register message.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	cid := core.ConnID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("conn", string(cid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cid, conn, cancel)
}
