package opendota

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/derickschaefer/ezdota/internal/model"
)

// DefaultMatchLimit is the number of recent matches fetched when no limit
// is given.
const DefaultMatchLimit = 100

// ─── Players ──────────────────────────────────────────────────────────────────

// GetPlayer fetches the profile for an account.
func (c *Client) GetPlayer(ctx context.Context, accountID int64) (model.RawPlayer, error) {
	var raw model.RawPlayer
	endpoint := fmt.Sprintf("players/%d", accountID)
	if err := c.fetch(ctx, endpoint, nil, fmt.Sprintf("player_%d", accountID), TTLPlayer, &raw); err != nil {
		return raw, fmt.Errorf("player %d: %w", accountID, err)
	}
	return raw, nil
}

// GetMatches fetches the account's most recent matches, newest first.
// limit <= 0 uses DefaultMatchLimit.
func (c *Client) GetMatches(ctx context.Context, accountID int64, limit int) ([]model.RawMatch, error) {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var raw []model.RawMatch
	endpoint := fmt.Sprintf("players/%d/matches", accountID)
	key := fmt.Sprintf("matches_%d_%d", accountID, limit)
	if err := c.fetch(ctx, endpoint, params, key, TTLMatches, &raw); err != nil {
		return nil, fmt.Errorf("matches for %d: %w", accountID, err)
	}
	return raw, nil
}

// GetWinLoss fetches the account's lifetime win/loss totals.
func (c *Client) GetWinLoss(ctx context.Context, accountID int64) (model.WinLoss, error) {
	var wl model.WinLoss
	endpoint := fmt.Sprintf("players/%d/wl", accountID)
	if err := c.fetch(ctx, endpoint, nil, fmt.Sprintf("wl_%d", accountID), TTLPlayer, &wl); err != nil {
		return wl, fmt.Errorf("win/loss for %d: %w", accountID, err)
	}
	return wl, nil
}

// GetTotals fetches the account's lifetime stat sums (kills, deaths, ...).
func (c *Client) GetTotals(ctx context.Context, accountID int64) ([]model.Total, error) {
	var totals []model.Total
	endpoint := fmt.Sprintf("players/%d/totals", accountID)
	if err := c.fetch(ctx, endpoint, nil, fmt.Sprintf("totals_%d", accountID), TTLPlayer, &totals); err != nil {
		return nil, fmt.Errorf("totals for %d: %w", accountID, err)
	}
	return totals, nil
}

// ─── Matches ──────────────────────────────────────────────────────────────────

// GetMatch fetches the full detail of one match. Finished matches never
// change, so the detail is cached for a day.
func (c *Client) GetMatch(ctx context.Context, matchID int64) (model.RawMatchDetail, error) {
	var raw model.RawMatchDetail
	endpoint := fmt.Sprintf("matches/%d", matchID)
	if err := c.fetch(ctx, endpoint, nil, fmt.Sprintf("match_%d", matchID), TTLMatchDetail, &raw); err != nil {
		return raw, fmt.Errorf("match %d: %w", matchID, err)
	}
	return raw, nil
}

// ─── Heroes & Constants ───────────────────────────────────────────────────────

// GetHeroStats fetches the hero catalog, including image paths.
func (c *Client) GetHeroStats(ctx context.Context) ([]model.RawHero, error) {
	var heroes []model.RawHero
	if err := c.fetch(ctx, "heroStats", nil, "heroStats", TTLHeroes, &heroes); err != nil {
		return nil, fmt.Errorf("hero stats: %w", err)
	}
	return heroes, nil
}

// GetHeroes fetches the lighter hero list without images.
func (c *Client) GetHeroes(ctx context.Context) ([]model.RawHero, error) {
	var heroes []model.RawHero
	if err := c.fetch(ctx, "heroes", nil, "heroes", TTLHeroes, &heroes); err != nil {
		return nil, fmt.Errorf("heroes: %w", err)
	}
	return heroes, nil
}

var constantsResource = regexp.MustCompile(`^[a-z_]+$`)

// GetConstants fetches a raw constants resource such as "game_mode" or
// "lobby_type". The payload shape depends on the resource.
func (c *Client) GetConstants(ctx context.Context, resource string) (map[string]interface{}, error) {
	if !constantsResource.MatchString(resource) {
		return nil, fmt.Errorf("invalid constants resource %q", resource)
	}
	var out map[string]interface{}
	key := "constants_" + resource
	if err := c.fetch(ctx, "constants/"+resource, nil, key, TTLConstants, &out); err != nil {
		return nil, fmt.Errorf("constants %s: %w", resource, err)
	}
	return out, nil
}
