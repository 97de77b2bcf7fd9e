package http

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/app"
	"github.com/dkeye/whowasi/internal/core"
)

const readyTimeout = 2 * time.Second

type Probes struct {
	Rooms    core.RoomStore
	Registry *app.Registry
}

func (p *Probes) Health(c *gin.Context) {
	c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
}

// Ready reports 503 unless the room store answers a ping and the
// connection registry still admits sessions.
func (p *Probes) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	dbOK := p.Rooms != nil
	if dbOK {
		if err := p.Rooms.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("module", "adapters.http").Msg("readiness: database ping failed")
			dbOK = false
		}
	}
	wsOK := p.Registry != nil && p.Registry.Accepting()

	status, code := "ready", nethttp.StatusOK
	if !dbOK || !wsOK {
		status, code = "not_ready", nethttp.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"checks": gin.H{"database": dbOK, "websocket": wsOK},
	})
}
