// Package archive keeps a long-term SQLite history of normalized matches.
// The OpenDota match list only returns a bounded window, so saving each
// fetch here lets analysis run over months of games and offline.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/derickschaefer/ezdota/internal/model"
)

//go:embed schema.sql
var schemaSQL string

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// saveBatch bounds rows per INSERT so statements stay well under SQLite's
// host parameter limit.
const saveBatch = 200

var columns = []string{
	"account_id", "match_id", "hero_id", "hero_name", "outcome", "match_type", "lane",
	"started_at", "duration", "kills", "deaths", "assists", "payload", "saved_at",
}

// Archive wraps the SQLite database.
type Archive struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (or creates) the archive at path and applies the schema.
// path may be ":memory:" for tests.
func Open(path string, log zerolog.Logger) (*Archive, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// SQLite serializes writers anyway; one connection also keeps
	// ":memory:" databases from splitting across the pool.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Archive{db: db, log: log.With().Str("component", "archive").Logger()}, nil
}

// Close closes the underlying connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

// ─── Save ─────────────────────────────────────────────────────────────────────

// Save upserts matches for an account and returns how many rows were
// written. Re-saving a match replaces the stored copy.
func (a *Archive) Save(ctx context.Context, accountID int64, matches []model.Match) (int, error) {
	if len(matches) == 0 {
		return 0, nil
	}
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	savedAt := time.Now().UTC().UnixMilli()
	for start := 0; start < len(matches); start += saveBatch {
		end := start + saveBatch
		if end > len(matches) {
			end = len(matches)
		}
		q := sqlBuilder.Insert("matches").Columns(columns...)
		for _, m := range matches[start:end] {
			payload, err := json.Marshal(m)
			if err != nil {
				return 0, fmt.Errorf("encoding match %d: %w", m.ID, err)
			}
			q = q.Values(accountID, m.ID, m.Hero.ID, m.Hero.Name, string(m.Outcome), string(m.Type),
				int(m.Lane), m.Timestamp, m.Duration.Seconds, m.KDA.Kills, m.KDA.Deaths, m.KDA.Assists,
				string(payload), savedAt)
		}
		q = q.Suffix(`ON CONFLICT(account_id, match_id) DO UPDATE SET
    hero_id = excluded.hero_id,
    hero_name = excluded.hero_name,
    outcome = excluded.outcome,
    match_type = excluded.match_type,
    lane = excluded.lane,
    started_at = excluded.started_at,
    duration = excluded.duration,
    kills = excluded.kills,
    deaths = excluded.deaths,
    assists = excluded.assists,
    payload = excluded.payload,
    saved_at = excluded.saved_at`)

		query, args, err := q.ToSql()
		if err != nil {
			return 0, fmt.Errorf("building insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("saving matches: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	a.log.Debug().Int64("account", accountID).Int("matches", len(matches)).Msg("archive saved")
	return len(matches), nil
}

// ─── Queries ──────────────────────────────────────────────────────────────────

// Filter narrows List and Count. Zero-valued fields are ignored.
type Filter struct {
	AccountID int64
	HeroID    int
	Type      model.MatchType
	Outcome   model.Outcome
	Since     time.Time // inclusive
	Until     time.Time // exclusive
	Limit     int
}

func (f Filter) apply(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	if f.AccountID != 0 {
		q = q.Where(squirrel.Eq{"account_id": f.AccountID})
	}
	if f.HeroID != 0 {
		q = q.Where(squirrel.Eq{"hero_id": f.HeroID})
	}
	if f.Type != "" {
		q = q.Where(squirrel.Eq{"match_type": string(f.Type)})
	}
	if f.Outcome != "" {
		q = q.Where(squirrel.Eq{"outcome": string(f.Outcome)})
	}
	if !f.Since.IsZero() {
		q = q.Where(squirrel.GtOrEq{"started_at": f.Since.UnixMilli()})
	}
	if !f.Until.IsZero() {
		q = q.Where(squirrel.Lt{"started_at": f.Until.UnixMilli()})
	}
	return q
}

// List returns archived matches, newest first.
func (a *Archive) List(ctx context.Context, f Filter) ([]model.Match, error) {
	q := f.apply(sqlBuilder.Select("payload").From("matches")).
		OrderBy("started_at DESC", "match_id DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}
	defer rows.Close()

	out := []model.Match{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning match: %w", err)
		}
		var m model.Match
		if err := json.Unmarshal([]byte(payload), &m); err != nil {
			return nil, fmt.Errorf("decoding archived match: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Count returns the number of archived matches that pass f. Limit is
// ignored.
func (a *Archive) Count(ctx context.Context, f Filter) (int, error) {
	query, args, err := f.apply(sqlBuilder.Select("COUNT(*)").From("matches")).ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}
	var n int
	if err := a.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting matches: %w", err)
	}
	return n, nil
}

// AccountStats summarizes one account's archive.
type AccountStats struct {
	AccountID int64     `json:"account_id"`
	Matches   int       `json:"matches"`
	Oldest    time.Time `json:"oldest"`
	Newest    time.Time `json:"newest"`
}

// Stats returns per-account totals, ordered by account id.
func (a *Archive) Stats(ctx context.Context) ([]AccountStats, error) {
	query, args, err := sqlBuilder.
		Select("account_id", "COUNT(*)", "MIN(started_at)", "MAX(started_at)").
		From("matches").
		GroupBy("account_id").
		OrderBy("account_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("archive stats: %w", err)
	}
	defer rows.Close()

	var out []AccountStats
	for rows.Next() {
		var s AccountStats
		var oldest, newest int64
		if err := rows.Scan(&s.AccountID, &s.Matches, &oldest, &newest); err != nil {
			return nil, fmt.Errorf("scanning stats: %w", err)
		}
		s.Oldest = time.UnixMilli(oldest).UTC()
		s.Newest = time.UnixMilli(newest).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}
