package opendota

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/derickschaefer/ezdota/internal/model"
)

// Dataset is everything needed to build a session: the profile, its
// win/loss totals, recent matches and the hero catalog.
type Dataset struct {
	Player  model.RawPlayer
	WinLoss model.WinLoss
	Matches []model.RawMatch
	Heroes  []model.RawHero
}

// LoadDataset fetches the four resources concurrently. The first failure
// cancels the remaining requests.
func (c *Client) LoadDataset(ctx context.Context, accountID int64, limit int) (*Dataset, error) {
	var ds Dataset
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := c.GetPlayer(gctx, accountID)
		ds.Player = p
		return err
	})
	g.Go(func() error {
		wl, err := c.GetWinLoss(gctx, accountID)
		ds.WinLoss = wl
		return err
	})
	g.Go(func() error {
		ms, err := c.GetMatches(gctx, accountID, limit)
		ds.Matches = ms
		return err
	})
	g.Go(func() error {
		hs, err := c.GetHeroStats(gctx)
		ds.Heroes = hs
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading dataset for %d: %w", accountID, err)
	}
	c.log.Info().
		Int64("account", accountID).
		Int("matches", len(ds.Matches)).
		Int("heroes", len(ds.Heroes)).
		Msg("dataset loaded")
	return &ds, nil
}
