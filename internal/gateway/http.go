// Package gateway exposes the blog pipeline over HTTP.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"blog-generator/internal/blog"
	"blog-generator/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Invoker runs one raw invocation payload through the pipeline.
type Invoker interface {
	HandleRaw(ctx context.Context, raw []byte) blog.Envelope
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter builds the gin engine. POST /api/v1/blogs carries the invocation
// payload as its body and answers with the envelope status and body.
func NewRouter(invoker Invoker, checks []ReadinessCheck, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	router.GET("/ready", readyHandler(checks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/blogs", generateHandler(invoker))
	}

	return router
}

func generateHandler(invoker Invoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": blog.MsgMissingBody})
			return
		}
		env := invoker.HandleRaw(c.Request.Context(), raw)
		c.Data(env.StatusCode, "application/json; charset=utf-8", []byte(env.Body))
	}
}

func readyHandler(checks []ReadinessCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		failed := gin.H{}
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				failed[check.Name] = err.Error()
			}
		}

		if len(failed) > 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"checks": failed,
				"time":   time.Now().Format(time.RFC3339),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn("HTTP request failed", fields)
			return
		}
		log.Debug("HTTP request", fields)
	}
}

// Server wraps http.Server around the router.
type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

func NewServer(addr string, handler http.Handler, log logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Start serves until Shutdown is called. It returns nil on graceful close.
func (s *Server) Start() error {
	s.logger.Info("HTTP gateway listening", map[string]interface{}{"address": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
