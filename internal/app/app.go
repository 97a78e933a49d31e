// Package app wires together configuration, the API client, and other
// dependencies into a single Deps struct that commands receive at runtime.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/derickschaefer/ezdota/internal/archive"
	"github.com/derickschaefer/ezdota/internal/config"
	"github.com/derickschaefer/ezdota/internal/opendota"
	"github.com/derickschaefer/ezdota/internal/store"
)

// Deps holds all runtime dependencies injected into command Run functions.
// Store and Archive are opened on demand and released by Close.
type Deps struct {
	Config  *config.Config
	Client  *opendota.Client
	Logger  zerolog.Logger
	Store   *store.Store
	Archive *archive.Archive
}

// New builds a Deps from resolved config. The response cache is attached
// when it can be opened; otherwise requests simply go uncached.
func New(cfg *config.Config, log zerolog.Logger) *Deps {
	d := &Deps{
		Config: cfg,
		Logger: log,
		Client: opendota.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Timeout, cfg.Rate, log),
	}
	if cfg.NoCache {
		return d
	}
	if err := d.RequireStore(); err != nil {
		log.Warn().Err(err).Msg("response cache unavailable")
		return d
	}
	mode := opendota.CacheDefault
	if cfg.Refresh {
		mode = opendota.CacheRefresh
	}
	d.Client.UseCache(d.Store, mode)
	return d
}

// CacheMode reports how the client uses the response cache.
func (d *Deps) CacheMode() opendota.CacheMode {
	switch {
	case d.Config.NoCache || d.Store == nil:
		return opendota.CacheOff
	case d.Config.Refresh:
		return opendota.CacheRefresh
	default:
		return opendota.CacheDefault
	}
}

// Refreshing returns a copy of d whose client re-fetches every request and
// overwrites cached entries. Store and Archive are shared with d, so only
// d should be closed.
func (d *Deps) Refreshing() *Deps {
	c := *d
	c.Client = opendota.NewClient(d.Config.APIKey, d.Config.BaseURL, d.Config.Timeout, d.Config.Rate, d.Logger)
	if d.Store != nil {
		c.Client.UseCache(d.Store, opendota.CacheRefresh)
	}
	return &c
}

// RequireStore opens the bbolt cache if it is not open yet.
func (d *Deps) RequireStore() error {
	if d.Store != nil {
		return nil
	}
	if d.Config.DBPath == "" {
		return fmt.Errorf("no cache path configured (set db_path or %s)", config.EnvDBPath)
	}
	s, err := store.Open(d.Config.DBPath)
	if err != nil {
		return fmt.Errorf("opening cache %s: %w", d.Config.DBPath, err)
	}
	d.Store = s
	return nil
}

// RequireArchive opens the SQLite match archive if it is not open yet,
// creating its directory on first use.
func (d *Deps) RequireArchive() error {
	if d.Archive != nil {
		return nil
	}
	path := d.Config.ArchivePath
	if path == "" {
		return fmt.Errorf("no archive path configured (set archive_path or %s)", config.EnvArchivePath)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating archive directory: %w", err)
		}
	}
	a, err := archive.Open(path, d.Logger)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}
	d.Archive = a
	return nil
}

// Close releases whichever databases were opened.
func (d *Deps) Close() error {
	var firstErr error
	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			firstErr = err
		}
		d.Store = nil
	}
	if d.Archive != nil {
		if err := d.Archive.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		d.Archive = nil
	}
	return firstErr
}
