package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sri5hat/aptdetection/internal/feed"
	"github.com/sri5hat/aptdetection/internal/hub"
	"github.com/sri5hat/aptdetection/internal/middleware"
	"github.com/sri5hat/aptdetection/internal/narrative"
	"github.com/sri5hat/aptdetection/internal/report"
	"github.com/sri5hat/aptdetection/internal/scoring"
)

// Deps bundles everything the router needs. All services are constructed
// by the caller and injected; handlers never reach for ambient globals.
type Deps struct {
	Log         *zap.Logger
	Hub         *hub.Hub
	Feed        *feed.Generator
	IngestToken string
	Weights     scoring.Weights
	Narrator    narrative.Narrator
	Reports     *report.Builder
}

// NewRouter assembles the gin engine: middleware chain, health/stats, the
// ingestion endpoint and the two streaming endpoints.
func NewRouter(d Deps) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(
		middleware.Recovery(d.Log),
		middleware.RequestID(),
		middleware.Logging(d.Log),
		middleware.CORS(),
	)

	streams := NewStreamHandler(d.Hub, d.Feed, d.Log)
	ingest := NewIngestHandler(d.Hub, d.Log)
	score := NewScoreHandler(d.Narrator, d.Weights, d.Log)
	reports := NewReportHandler(d.Reports)
	intelH := NewIntelHandler()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
		})
	})

	api := r.Group("/api")
	{
		api.POST("/alerts/ingest", middleware.BearerAuth(d.IngestToken, d.Log), ingest.Handle)
		api.GET("/alerts/stream", streams.AlertStream)
		api.GET("/logs/stream", streams.LogStream)

		api.POST("/score", score.Handle)
		api.POST("/reports", reports.Handle)
		api.GET("/intel", intelH.Handle)

		api.GET("/stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"hub":            d.Hub.Stats(),
				"stream_clients": streams.Clients(),
				"feed_running":   d.Feed.Running(),
			})
		})
	}

	return r
}
