// Package http exposes the operational probe endpoints. The bot's real
// surface is the Discord gateway; this server exists for orchestration
// health checks only.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"giveaway-bot-backend/internal/common/config"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

const serviceName = "giveaway-bot-backend"

// NewServer builds the probe server. Handlers never touch the engine; the
// readiness probe only pings the store.
func NewServer(cfg *config.Config, repo repository.GiveawayRepository, startedAt time.Time) *http.Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":         "ok",
			"service":        serviceName,
			"uptime_seconds": int64(time.Since(startedAt).Seconds()),
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := repo.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
}
