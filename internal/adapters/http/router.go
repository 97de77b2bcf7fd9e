package http

import (
	"context"
	"crypto/rand"
	"path/filepath"
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/whowasi/internal/adapters/signal"
	"github.com/dkeye/whowasi/internal/app/orch"
	"github.com/dkeye/whowasi/internal/config"
)

const (
	clientTokenCookie = "ct"
	sessionName       = "WhoWasISessions"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(clientTokenCookie)
		if token == "" {
			token = genClientToken()
			c.SetCookie(clientTokenCookie, token, 3600*24*7, "/", "", false, true)
		}
		c.Set(signal.ClientTokenKey, token)
		c.Next()
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// sessionSecret returns the configured cookie secret, or a random one
// that only lives as long as the process.
func sessionSecret(secret string) []byte {
	if secret != "" {
		return []byte(secret)
	}
	log.Warn().Str("module", "adapters.http").Msg("server.secret not set, using an ephemeral session secret")
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return b
}

// SetupRouter wires every HTTP and websocket route. Background work
// owned by the router stops when ctx is done.
func SetupRouter(ctx context.Context, cfg *config.Config, o *orch.Orchestrator) *gin.Engine {
	if cfg.App.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// X-Forwarded-For is honoured only from these peers.
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Strs("trusted_proxies", cfg.Server.TrustedProxies).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	if cfg.App.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(cfg.Server.AllowedOrigins))

	store := cookie.NewStore(sessionSecret(cfg.Server.Secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 3600 * 24 * 7, HttpOnly: true})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(ClientTokenMiddleware())

	if cfg.Server.StaticPath != "" {
		r.Static("/static", cfg.Server.StaticPath)
		r.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(cfg.Server.StaticPath, "index.html"))
		})
	}

	probes := &Probes{Rooms: o.Rooms, Registry: o.Registry}
	r.GET("/health", probes.Health)
	r.GET("/ready", probes.Ready)

	limiter := NewJoinRateLimiter(cfg.JoinLimit.Attempts, cfg.JoinLimit.Interval, o.Clock)
	go limiter.Run(ctx)

	rooms := NewRoomHandler(o)
	api := r.Group("/api")
	api.POST("/rooms/create", rooms.Create)
	api.POST("/rooms/join", limiter.Middleware(), rooms.Join)
	api.GET("/me", GetMe)
	api.PUT("/me/name", SetDisplayName)

	ctrl := signal.NewSignalWSController(o, cfg.Server.ReadLimit, cfg.Server.PingPeriod, cfg.Server.AllowedOrigins)
	r.GET("/ws", func(c *gin.Context) {
		ctrl.HandleSignal(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.Server.StaticPath).Msg("router setup")
	return r
}
