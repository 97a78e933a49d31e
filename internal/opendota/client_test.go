package opendota_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derickschaefer/ezdota/internal/opendota"
	"github.com/derickschaefer/ezdota/internal/store"
)

// ─── Helpers ──────────────────────────────────────────────────────────────────

const account int64 = 425817633

// fakeAPI serves canned bodies by path and counts requests per path.
type fakeAPI struct {
	mu     sync.Mutex
	bodies map[string]string
	status map[string]int
	hits   map[string]int
	query  map[string]string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		bodies: map[string]string{
			"/players/425817633":         `{"profile":{"account_id":425817633,"personaname":"tester"},"rank_tier":54}`,
			"/players/425817633/wl":      `{"win":10,"lose":5}`,
			"/players/425817633/totals":  `[{"field":"kills","n":15,"sum":120}]`,
			"/players/425817633/matches": `[{"match_id":1,"hero_id":1,"player_slot":0,"radiant_win":true}]`,
			"/matches/7":                 `{"match_id":7,"radiant_win":false,"players":[]}`,
			"/heroStats":                 `[{"id":1,"localized_name":"Anti-Mage","img":"/apps/am.png"}]`,
			"/heroes":                    `[{"id":1,"localized_name":"Anti-Mage"}]`,
			"/constants/game_mode":       `{"23":{"id":23,"name":"game_mode_turbo"}}`,
		},
		status: map[string]int{},
		hits:   map[string]int{},
		query:  map[string]string{},
	}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	f.query[r.URL.Path] = r.URL.RawQuery
	status, body := f.status[r.URL.Path], f.bodies[r.URL.Path]
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		fmt.Fprint(w, `{"error":"boom"}`)
		return
	}
	if body == "" {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"Not Found"}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, body)
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func (f *fakeAPI) rawQuery(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query[path]
}

func newClient(t *testing.T, api http.Handler, key string) *opendota.Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return opendota.NewClient(key, srv.URL, 5*time.Second, 100, zerolog.Nop())
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// ─── Endpoints ────────────────────────────────────────────────────────────────

func TestEndpointsDecode(t *testing.T) {
	api := newFakeAPI()
	c := newClient(t, api, "")
	ctx := context.Background()

	p, err := c.GetPlayer(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, "tester", p.Profile.PersonaName)
	require.NotNil(t, p.RankTier)
	assert.Equal(t, 54, *p.RankTier)

	wl, err := c.GetWinLoss(ctx, account)
	require.NoError(t, err)
	assert.Equal(t, 10, wl.Win)

	totals, err := c.GetTotals(ctx, account)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 120.0, totals[0].Sum)

	ms, err := c.GetMatches(ctx, account, 0)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, int64(1), *ms[0].MatchID)
	assert.Equal(t, "limit=100", api.rawQuery("/players/425817633/matches"))

	d, err := c.GetMatch(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), *d.MatchID)

	heroes, err := c.GetHeroStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Anti-Mage", heroes[0].LocalizedName)

	list, err := c.GetHeroes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	consts, err := c.GetConstants(ctx, "game_mode")
	require.NoError(t, err)
	assert.Contains(t, consts, "23")
}

func TestGetConstantsRejectsPathTraversal(t *testing.T) {
	c := newClient(t, newFakeAPI(), "")
	_, err := c.GetConstants(context.Background(), "../players")
	assert.Error(t, err)
}

func TestAPIKeyIsSent(t *testing.T) {
	api := newFakeAPI()
	c := newClient(t, api, "secret")
	_, err := c.GetHeroStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "api_key=secret", api.rawQuery("/heroStats"))
}

// ─── Errors & retries ─────────────────────────────────────────────────────────

func TestNotFoundIsAPIError(t *testing.T) {
	c := newClient(t, newFakeAPI(), "")
	_, err := c.GetMatch(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, opendota.IsNotFound(err))

	var apiErr *opendota.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Not Found", apiErr.Message)
	assert.Equal(t, "matches/999", apiErr.Endpoint)
}

func TestClientErrorIsNotRetried(t *testing.T) {
	api := newFakeAPI()
	api.status["/heroStats"] = http.StatusBadRequest
	c := newClient(t, api, "")

	_, err := c.GetHeroStats(context.Background())
	require.Error(t, err)
	assert.False(t, opendota.IsNotFound(err))
	assert.Equal(t, 1, api.count("/heroStats"))
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"win":1,"lose":2}`)
	})
	c := newClient(t, h, "")

	wl, err := c.GetWinLoss(context.Background(), account)
	require.NoError(t, err)
	assert.Equal(t, 2, wl.Lose)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRetryRespectsContext(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	c := newClient(t, h, "")
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := c.GetWinLoss(ctx, account)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ─── Cache ────────────────────────────────────────────────────────────────────

func TestCacheServesRepeatRequests(t *testing.T) {
	api := newFakeAPI()
	c := newClient(t, api, "")
	c.UseCache(testStore(t), opendota.CacheDefault)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.GetHeroStats(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, api.count("/heroStats"))
	hits, misses := c.CacheStats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCacheKeysFollowRequest(t *testing.T) {
	s := testStore(t)
	c := newClient(t, newFakeAPI(), "")
	c.UseCache(s, opendota.CacheDefault)
	ctx := context.Background()

	_, _ = c.GetPlayer(ctx, account)
	_, _ = c.GetMatches(ctx, account, 20)
	_, _ = c.GetMatch(ctx, 7)
	_, _ = c.GetWinLoss(ctx, account)
	_, _ = c.GetTotals(ctx, account)
	_, _ = c.GetConstants(ctx, "game_mode")

	keys, err := s.Keys("")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"player_425817633",
		"matches_425817633_20",
		"match_7",
		"wl_425817633",
		"totals_425817633",
		"constants_game_mode",
	}, keys)

	e, err := s.Entry("match_7")
	require.NoError(t, err)
	assert.Equal(t, opendota.TTLMatchDetail, e.ExpiresAt.Sub(e.FetchedAt))
}

func TestCacheRefreshOverwrites(t *testing.T) {
	api := newFakeAPI()
	s := testStore(t)
	c := newClient(t, api, "")
	c.UseCache(s, opendota.CacheRefresh)
	ctx := context.Background()

	_, _ = c.GetWinLoss(ctx, account)
	_, _ = c.GetWinLoss(ctx, account)
	assert.Equal(t, 2, api.count("/players/425817633/wl"))

	body, err := s.Get("wl_425817633", time.Now())
	require.NoError(t, err)
	assert.JSONEq(t, `{"win":10,"lose":5}`, string(body))
}

func TestCacheOff(t *testing.T) {
	api := newFakeAPI()
	s := testStore(t)
	c := newClient(t, api, "")
	c.UseCache(s, opendota.CacheOff)

	_, _ = c.GetHeroStats(context.Background())
	keys, _ := s.Keys("")
	assert.Empty(t, keys)
}

func TestErrorsAreNotCached(t *testing.T) {
	s := testStore(t)
	c := newClient(t, newFakeAPI(), "")
	c.UseCache(s, opendota.CacheDefault)

	_, err := c.GetMatch(context.Background(), 404)
	require.Error(t, err)
	keys, _ := s.Keys("")
	assert.Empty(t, keys)
}

// ─── Dataset ──────────────────────────────────────────────────────────────────

func TestLoadDataset(t *testing.T) {
	api := newFakeAPI()
	c := newClient(t, api, "")

	ds, err := c.LoadDataset(context.Background(), account, 50)
	require.NoError(t, err)
	assert.Equal(t, "tester", ds.Player.Profile.PersonaName)
	assert.Equal(t, 5, ds.WinLoss.Lose)
	assert.Len(t, ds.Matches, 1)
	assert.Len(t, ds.Heroes, 1)
	assert.Equal(t, "limit=50", api.rawQuery("/players/425817633/matches"))
}

func TestLoadDatasetFailsFast(t *testing.T) {
	api := newFakeAPI()
	delete(api.bodies, "/heroStats")
	c := newClient(t, api, "")

	_, err := c.LoadDataset(context.Background(), account, 50)
	require.Error(t, err)
	assert.True(t, opendota.IsNotFound(err))
}
