package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/riftcall/riftcall/internal/adapters/signal"
	"github.com/riftcall/riftcall/internal/app"
	"github.com/riftcall/riftcall/internal/config"
)

func genClientToken() string {
	idStr := uuid.NewString()
	return idStr
}

// ClientTokenMiddleware pins a stable connection token to each client via
// cookie; the signaling layer uses it as the connection id.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, coord *app.Coordinator) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("RiftcallSessions", store))
	r.Use(ClientTokenMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"timestamp":       time.Now().UTC().Format(time.RFC3339),
			"active_users":    coord.Registry.Count(),
			"active_channels": coord.Directory.Count(),
		})
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")

	api := r.Group("/api")

	// GET /api/channels — live channel list
	api.GET("/channels", func(c *gin.Context) {
		views := coord.Directory.List()
		out := make([]gin.H, 0, len(views))
		for _, v := range views {
			out = append(out, gin.H{
				"channel_id": v.ID,
				"match_id":   v.Key.Match,
				"team_id":    v.Key.Team,
				"members":    len(v.Members),
				"created_at": v.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		c.JSON(http.StatusOK, gin.H{"channels": out})
	})

	ctrl := signal.NewSignalWSController(coord, cfg.ResolveLimit, cfg.ResolveWindow)
	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("conn", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}
