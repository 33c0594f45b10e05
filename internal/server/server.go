package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"procwatch/internal/detector"
	"procwatch/internal/logger"
	"procwatch/internal/output/alertring"
)

// Server exposes local introspection endpoints: prometheus metrics, the
// current rule set, and the ring of recent alerts. It is an observability
// surface, not an alert transport.
type Server struct {
	httpServer *http.Server
}

// New builds the introspection server.
func New(addr string, det *detector.Detector, ring *alertring.Ring) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/rules", func(c *gin.Context) {
		c.JSON(http.StatusOK, det.Rules())
	})
	router.GET("/alerts/recent", func(c *gin.Context) {
		c.JSON(http.StatusOK, ring.Recent())
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return &Server{
		httpServer: &http.Server{
			Addr:    addr,
			Handler: router,
		},
	}
}

// Start serves until Shutdown is called.
func (s *Server) Start() {
	go func() {
		logger.Infof("Introspection server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Introspection server error: %v", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
