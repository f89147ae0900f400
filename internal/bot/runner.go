package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/mendicot/internal/client"
	"github.com/lox/mendicot/internal/game"
	"github.com/lox/mendicot/internal/randutil"
	"golang.org/x/sync/errgroup"
)

// RunConfig describes a group of bots joining the same server.
type RunConfig struct {
	ServerURL string
	Count     int
	Strategy  string
	Seed      int64
	Delay     time.Duration
}

// RunMany connects Count bots and plays until each has seen a match end.
// The first failing bot cancels the rest. Results are indexed by bot.
func RunMany(ctx context.Context, cfg RunConfig, logger *log.Logger) ([]*game.GameOver, error) {
	if cfg.Count < 1 {
		return nil, fmt.Errorf("bot count must be positive, got %d", cfg.Count)
	}

	results := make([]*game.GameOver, cfg.Count)
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < cfg.Count; i++ {
		strategy, err := NewStrategy(cfg.Strategy, randutil.New(cfg.Seed+int64(i)))
		if err != nil {
			return nil, err
		}
		botLogger := logger.With("bot", i)
		b := New(client.NewClient(cfg.ServerURL, botLogger), strategy, botLogger, WithDelay(cfg.Delay))

		g.Go(func() error {
			result, err := b.Run(ctx)
			if err != nil {
				return fmt.Errorf("bot %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
