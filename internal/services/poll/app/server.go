// Package server hosts the live poll session over WebSocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/livepoll/internal/platform/errors/i18n"
	platformgrpc "github.com/louisbranch/livepoll/internal/platform/grpc"
	"github.com/louisbranch/livepoll/internal/platform/timeouts"
)

// HealthService is the gRPC health service name reported for the session.
const HealthService = "livepoll.Session"

// Config defines the inputs for the poll transport boundary.
type Config struct {
	HTTPAddr          string
	AllowedOrigin     string
	HealthAddr        string
	DefaultLocale     string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the poll HTTP/WebSocket process and its session coordinator.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	coordinator     *Coordinator
	health          *platformgrpc.HealthServer
}

// NewHandler creates poll routes around a fresh session for tests and
// embedding. The caller must run the returned coordinator.
func NewHandler(cfg Config, opts ...Option) (http.Handler, *Coordinator) {
	hub := newConnectionHub()
	coordinator := NewCoordinator(hub, opts...)
	return newHandler(coordinator, hub, handlerConfigFrom(cfg)), coordinator
}

func handlerConfigFrom(cfg Config) handlerConfig {
	defaultLocale := strings.TrimSpace(cfg.DefaultLocale)
	if defaultLocale == "" {
		defaultLocale = i18n.BaseLocale
	}
	return handlerConfig{
		allowedOrigin: cfg.AllowedOrigin,
		defaultLocale: i18n.MatchLocale(i18n.BaseLocale, defaultLocale),
	}
}

// NewServer builds a configured poll server.
func NewServer(config Config, opts ...Option) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	var health *platformgrpc.HealthServer
	if healthAddr := strings.TrimSpace(config.HealthAddr); healthAddr != "" {
		var err error
		health, err = platformgrpc.NewHealthServer(healthAddr, HealthService)
		if err != nil {
			return nil, fmt.Errorf("init health server: %w", err)
		}
	}

	handler, coordinator := NewHandler(config, opts...)
	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: config.ReadHeaderTimeout,
		},
		coordinator: coordinator,
		health:      health,
	}, nil
}

// Run creates and serves a poll server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init poll server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve poll: %w", err)
	}
	return nil
}

// ListenAndServe runs the session loop, the HTTP server and the optional
// health server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("poll server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	loopDone := make(chan error, 1)
	go func() {
		loopDone <- s.coordinator.Run(loopCtx)
	}()

	healthDone := make(chan error, 1)
	if s.health != nil {
		go func() {
			healthDone <- s.health.Serve(loopCtx)
		}()
	} else {
		healthDone <- nil
	}

	serveErr := make(chan error, 1)
	log.Printf("poll server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	var result error
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			result = fmt.Errorf("shutdown http server: %w", err)
		}
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			result = fmt.Errorf("serve http: %w", err)
		}
	}

	stopLoop()
	if err := <-healthDone; err != nil && result == nil {
		result = err
	}
	<-loopDone
	return result
}

// HealthAddr returns the bound health address, or "" when disabled.
func (s *Server) HealthAddr() string {
	if s == nil || s.health == nil {
		return ""
	}
	return s.health.Addr()
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if err := s.httpServer.Close(); err != nil {
		log.Printf("close http server: %v", err)
	}
	if s.health != nil {
		s.health.Close()
	}
}
