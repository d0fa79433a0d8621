// Package server exposes a read-only JSON view of a running bot.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rustyeddy/candlebot/live"
)

const (
	ServiceName         = "candlebot"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
	ShutdownTimeout     = 5 * time.Second
)

// SnapshotSource supplies immutable views of bot state. *live.Bot
// implements it.
type SnapshotSource interface {
	Snapshot() live.Snapshot
}

type Server struct {
	source  SnapshotSource
	logger  *slog.Logger
	version string
}

func New(source SnapshotSource, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{source: source, logger: logger, version: version}
}

// Routes builds the gin router.
func (s *Server) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(s.logger))
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/data", s.GetData)
	router.GET("/equity", s.GetEquity)
	router.GET("/candles", s.GetCandles)
	router.GET("/health", s.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
