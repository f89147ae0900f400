package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lox/mendicot/internal/game"
	"github.com/lox/mendicot/internal/randutil"
	"github.com/lox/mendicot/internal/server"
)

// ServerCmd runs the game server. Flags override the HCL file.
type ServerCmd struct {
	Config       string        `short:"c" default:"mendicot-server.hcl" help:"Path to HCL configuration file"`
	Addr         string        `short:"a" help:"Address to listen on, host:port (overrides config)"`
	LogLevel     string        `short:"l" help:"Log level: debug, info, warn, error (overrides config)"`
	Seed         *int64        `help:"Deterministic RNG seed for deals and trump (overrides config)"`
	StartDelay   time.Duration `help:"Pause between the fourth join and the deal (overrides config)"`
	TensShortcut bool          `help:"End the match as soon as one team captures three tens"`
	LeavePolicy  string        `help:"What happens when a player leaves mid-match: abort or stall (overrides config)"`
}

func (c *ServerCmd) Run() error {
	cfg, err := c.load()
	if err != nil {
		return err
	}

	logger, err := setupLogger(os.Stderr, cfg.Server.LogLevel)
	if err != nil {
		return err
	}

	rng, seed := randutil.FromOptionalSeed(cfg.Game.Seed)
	rules := cfg.Rules()
	addr := cfg.GetServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}

	logger.Info("Starting Mendicot server",
		"addr", addr,
		"seed", seed,
		"start_delay", rules.StartDelay,
		"tens_shortcut", rules.TensShortcut,
		"leave_policy", rules.LeavePolicy)

	srv := server.NewServer(addr, logger, game.WithRules(rules), game.WithRNG(rng))

	ctx, stop := signalContext(logger)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-serverErr:
		if err == nil {
			return errors.New("server stopped unexpectedly")
		}
		return err
	}
}

// load reads the config file and applies flag overrides.
func (c *ServerCmd) load() (*server.ServerConfig, error) {
	cfg, err := server.LoadServerConfig(c.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if c.LogLevel != "" {
		cfg.Server.LogLevel = c.LogLevel
	}
	if c.Seed != nil {
		cfg.Game.Seed = c.Seed
	}
	if c.StartDelay > 0 {
		cfg.Game.StartDelayMS = int(c.StartDelay / time.Millisecond)
	}
	if c.TensShortcut {
		cfg.Game.TensShortcut = true
	}
	if c.LeavePolicy != "" {
		cfg.Game.LeavePolicy = c.LeavePolicy
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
