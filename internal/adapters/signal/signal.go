// Package signal is the websocket transport. A connection is admitted
// by redeeming a join token, then runs an echo pipe with a few control
// envelopes.
package signal

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/app/orch"
	"github.com/dkeye/whowasi/internal/core"
	"github.com/dkeye/whowasi/internal/domain"
)

const (
	DefaultReadLimit  = 32 << 10
	DefaultPingPeriod = 54 * time.Second

	// DisplayNameKey is the cookie session key holding the display name.
	DisplayNameKey = "display_name"
	// ClientTokenKey is the gin context key set by the client token middleware.
	ClientTokenKey = "client_token"

	sendBuffer   = 32
	writeTimeout = 5 * time.Second
)

var (
	ErrBackpressure = errors.New("backpressure")
	ErrConnClosed   = errors.New("connection closed")
)

type SignalWSController struct {
	Orch *orch.Orchestrator

	ReadLimit      int64
	PingPeriod     time.Duration
	AllowedOrigins []string

	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, readLimit int64, pingPeriod time.Duration, allowedOrigins []string) *SignalWSController {
	if readLimit <= 0 {
		readLimit = DefaultReadLimit
	}
	if pingPeriod <= 0 {
		pingPeriod = DefaultPingPeriod
	}
	ctl := &SignalWSController{
		Orch:           o,
		ReadLimit:      readLimit,
		PingPeriod:     pingPeriod,
		AllowedOrigins: allowedOrigins,
	}
	ctl.upgrader = websocket.Upgrader{CheckOrigin: ctl.checkOrigin}
	return ctl
}

// checkOrigin accepts same-host requests (no Origin header) and the
// configured frontend origins.
func (ctl *SignalWSController) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(ctl.AllowedOrigins, "*") || slices.Contains(ctl.AllowedOrigins, origin)
}

// pongWait must exceed PingPeriod so one missed pong is tolerated.
func (ctl *SignalWSController) pongWait() time.Duration {
	return ctl.PingPeriod * 10 / 9
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn) *WsSignalConn {
	return &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, sendBuffer),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrConnClosed
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
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
}

// HandleSignal serves GET /ws?token=T. The token is redeemed before the
// upgrade, so a rejected client gets a plain 401.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	if !ctl.Orch.Registry.Accepting() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "server shutting down"})
		return
	}
	roomID, err := ctl.Orch.Tokens.Redeem(c.Query("token"))
	if err != nil {
		log.Info().Str("module", "signal").Str("kind", domain.KindOf(err).String()).Msg("ws rejected")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid join token"})
		return
	}

	sid := core.SessionID(uuid.NewString())
	clientToken := c.GetString(ClientTokenKey)
	user := &domain.User{ID: domain.UserID(sid), Username: displayName(c)}

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room_id", string(roomID)).Msg("new WS connection")

	conn := newWsSignalConn(ws)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Orch.Registry.Bind(sid, clientToken, roomID, user, conn, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, sid, conn)
}

func displayName(c *gin.Context) string {
	if name, ok := sessions.Default(c).Get(DisplayNameKey).(string); ok {
		if valid, err := domain.ValidateUsername(name); err == nil {
			return valid
		}
	}
	return domain.DefaultUsername
}
