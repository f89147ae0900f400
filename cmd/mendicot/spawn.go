package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/lox/mendicot/internal/bot"
	"github.com/lox/mendicot/internal/game"
	"github.com/lox/mendicot/internal/randutil"
	"github.com/lox/mendicot/internal/server"
	"golang.org/x/sync/errgroup"
)

// SpawnCmd runs a server and a set of in-process bots. With a full table
// of bots it plays one match and exits; otherwise the remaining seats
// wait for human clients.
type SpawnCmd struct {
	Addr         string        `default:"localhost:0" help:"Server address, defaults to random port on localhost"`
	Bots         int           `default:"4" help:"Number of bots to seat (0-4)"`
	Strategy     string        `default:"follow" enum:"random,follow" help:"Bot strategy (random|follow)"`
	Seed         int64         `help:"Seed for deterministic testing (0 for random)"`
	StartDelay   time.Duration `default:"200ms" help:"Pause between the fourth join and the deal"`
	BotDelay     time.Duration `help:"Pause before each bot card"`
	TensShortcut bool          `help:"End the match as soon as one team captures three tens"`
	LogLevel     string        `short:"l" default:"info" help:"Log level (debug|info|warn|error)"`
}

func (c *SpawnCmd) Run() error {
	if c.Bots < 0 || c.Bots > game.SeatCount {
		return fmt.Errorf("bots must be between 0 and %d, got %d", game.SeatCount, c.Bots)
	}

	logger, err := setupLogger(os.Stderr, c.LogLevel)
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rules := game.DefaultRules()
	rules.StartDelay = c.StartDelay
	rules.TensShortcut = c.TensShortcut

	ln, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", c.Addr, err)
	}
	url := "http://" + ln.Addr().String()

	srv := server.NewServer(ln.Addr().String(), logger, game.WithRules(rules), game.WithRNG(randutil.New(seed)))
	logger.Info("Spawned server", "url", url, "seed", seed, "bots", c.Bots, "strategy", c.Strategy)
	if c.Bots < game.SeatCount {
		logger.Info("Waiting for human players", "seats_free", game.SeatCount-c.Bots, "connect", "mendicot client --url "+url)
	}

	sigCtx, stop := signalContext(logger)
	defer stop()

	g, ctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		return srv.Serve(ln)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		if c.Bots == 0 {
			<-ctx.Done()
			return nil
		}
		results, err := bot.RunMany(ctx, bot.RunConfig{
			ServerURL: url,
			Count:     c.Bots,
			Strategy:  c.Strategy,
			Seed:      seed,
			Delay:     c.BotDelay,
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
		return errMatchFinished
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errMatchFinished) && sigCtx.Err() == nil {
		return err
	}
	return nil
}

// errMatchFinished stops the group once the bots are done.
var errMatchFinished = errors.New("match finished")
