package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcncl/json2nest/internal/config"
	"github.com/mcncl/json2nest/internal/errors"
	"github.com/mcncl/json2nest/internal/server"
)

// ServeCmd runs the HTTP service
type ServeCmd struct {
	Addr      string  `help:"Listen address. Overrides server.addr."`
	RateLimit float64 `help:"Requests per second for /convert; 0 disables limiting. Overrides server.rate_limit." name:"rate-limit" default:"-1"`
	Burst     int     `help:"Burst size for the rate limiter. Overrides server.burst." default:"-1"`
}

// Run serves until interrupted
func (s *ServeCmd) Run(g *Globals) error {
	cfg, log, err := g.setup("", "")
	if err != nil {
		return err
	}
	if err := s.apply(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, log).ListenAndServe(ctx)
}

// apply layers the command-line overrides over the server section.
func (s *ServeCmd) apply(cfg *config.Config) error {
	if s.Addr != "" {
		cfg.Server.Addr = s.Addr
	}
	if s.RateLimit >= 0 {
		cfg.Server.RateLimit = s.RateLimit
	}
	if s.Burst >= 0 {
		cfg.Server.Burst = s.Burst
	}
	if err := cfg.Validate(); err != nil {
		return errors.NewConfigError(err.Error(), errors.ErrInvalidConfig)
	}
	return nil
}
