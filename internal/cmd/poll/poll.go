// Package poll parses poll command flags and composes the session server.
package poll

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	entrypoint "github.com/louisbranch/livepoll/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/livepoll/internal/platform/grpc"
	"github.com/louisbranch/livepoll/internal/platform/timeouts"
	server "github.com/louisbranch/livepoll/internal/services/poll/app"
)

// Config holds poll command configuration.
type Config struct {
	HTTPAddr      string `env:"LIVEPOLL_HTTP_ADDR"      envDefault:":3000"`
	AllowedOrigin string `env:"LIVEPOLL_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
	HealthAddr    string `env:"LIVEPOLL_HEALTH_ADDR"`
	DefaultLocale string `env:"LIVEPOLL_DEFAULT_LOCALE" envDefault:"en-US"`

	// Probe checks a running server's health endpoint instead of serving.
	Probe bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "poll HTTP listen address")
	fs.StringVar(&cfg.AllowedOrigin, "allowed-origin", cfg.AllowedOrigin, "origin allowed to open websocket connections (empty allows any)")
	fs.StringVar(&cfg.HealthAddr, "health-addr", cfg.HealthAddr, "gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.DefaultLocale, "default-locale", cfg.DefaultLocale, "locale for error messages when the client sends none")
	fs.BoolVar(&cfg.Probe, "probe", false, "check the health endpoint of a running server and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the poll app and serves the live session.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Probe {
		return probe(ctx, cfg)
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePoll, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:      cfg.HTTPAddr,
			AllowedOrigin: cfg.AllowedOrigin,
			HealthAddr:    cfg.HealthAddr,
			DefaultLocale: cfg.DefaultLocale,
		}); err != nil {
			return fmt.Errorf("serve poll: %w", err)
		}
		return nil
	})
}

func probe(ctx context.Context, cfg Config) error {
	addr := strings.TrimSpace(cfg.HealthAddr)
	if addr == "" {
		return fmt.Errorf("probe requires -health-addr")
	}
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return platformgrpc.Probe(ctx, addr, server.HealthService, timeouts.GRPCDial, log.Printf)
}
