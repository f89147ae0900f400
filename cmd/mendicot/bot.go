package main

import (
	"os"
	"time"

	"github.com/lox/mendicot/internal/bot"
)

// BotCmd connects built-in bots to a running server and plays one match.
type BotCmd struct {
	URL      string        `short:"u" default:"http://localhost:8080" help:"Server URL"`
	Strategy string        `short:"s" default:"follow" enum:"random,follow" help:"Bot strategy (random|follow)"`
	Count    int           `short:"n" default:"1" help:"Number of bots to connect"`
	Seed     int64         `help:"Seed for bot strategies (0 for time based)"`
	Delay    time.Duration `help:"Pause before each card so humans can follow"`
	LogLevel string        `short:"l" default:"info" help:"Log level (debug|info|warn|error)"`
}

func (c *BotCmd) Run() error {
	logger, err := setupLogger(os.Stderr, c.LogLevel)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(logger)
	defer stop()

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	results, err := bot.RunMany(ctx, bot.RunConfig{
		ServerURL: c.URL,
		Count:     c.Count,
		Strategy:  c.Strategy,
		Seed:      seed,
		Delay:     c.Delay,
	}, logger)
	if err != nil {
		return err
	}

	r := results[0]
	logger.Info("Match finished",
		"winning_team", int(r.WinningTeam),
		"reason", r.WinReason,
		"tricks", r.TricksWon,
		"tens", r.TensWon)
	return nil
}
