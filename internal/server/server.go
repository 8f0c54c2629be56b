// =============================================================================
// Fraksjonsoversikt - HTTP Server
// =============================================================================
//
// This module exposes the report pipeline over HTTP. A client uploads one
// export as multipart form field "file" and gets back either the report as
// JSON, the workbook, or the flat text.
//
// ROUTES:
//   GET  /healthz          - liveness check
//   POST /api/report       - JSON display table, stats and optional flat text
//   POST /api/report/xlsx  - fraksjonsoversikt.xlsx download
//   POST /api/report/text  - fraksjonsoversikt.txt|.csv download
//
// Uploads are handled in memory and never persisted.
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TeoCir/IsekkKran/internal/config"
	"github.com/TeoCir/IsekkKran/internal/converter"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop.
const shutdownTimeout = 30 * time.Second

// Server serves the report pipeline.
type Server struct {
	cfg    *config.Config
	conv   *converter.Converter
	logger *zap.Logger
	engine *gin.Engine
}

// New builds a Server and its routes.
func New(cfg *config.Config, conv *converter.Converter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:    cfg,
		conv:   conv,
		logger: logger,
		engine: gin.New(),
	}

	s.engine.MaxMultipartMemory = s.uploadLimit()
	s.engine.Use(gin.Recovery(), requestID(), requestLogger(logger), cors.New(corsConfig(cfg.Server.CORSOrigins)))

	s.engine.GET("/healthz", s.handleHealth)

	api := s.engine.Group("/api/report")
	api.POST("", s.handleReport)
	api.POST("/xlsx", s.handleWorkbook)
	api.POST("/text", s.handleFlatText)

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("server listening", zap.String("addr", srv.Addr))

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return <-errCh
}

func (s *Server) uploadLimit() int64 {
	return s.cfg.Server.MaxUploadMB << 20
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept", requestIDHeader}
	c.ExposeHeaders = []string{"Content-Disposition", "Content-Length", requestIDHeader}
	return c
}
