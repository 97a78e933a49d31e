// Package state holds the session's loaded data: normalized matches, the
// hero directory, the player profile and the active window policy. Every
// mutation publishes an immutable Snapshot to subscribers.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/derickschaefer/ezdota/internal/model"
	"github.com/derickschaefer/ezdota/internal/window"
)

// Snapshot is a point-in-time copy of the container. Matches holds every
// loaded match; Active is the subset selected by Mode and Policy.
type Snapshot struct {
	Version  uint64              `json:"version"`
	Matches  []model.Match       `json:"matches"`
	Active   []model.Match       `json:"active"`
	Heroes   model.HeroDirectory `json:"-"`
	Player   *model.Player       `json:"player,omitempty"`
	Policy   window.Policy       `json:"policy"`
	Mode     window.Mode         `json:"mode"`
	LoadedAt time.Time           `json:"loaded_at"`
}

// Subscriber receives the new snapshot after each change.
type Subscriber func(Snapshot)

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used to report subscriber panics.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Container) { c.log = l }
}

// WithClock overrides time.Now for LoadedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Container) { c.now = now }
}

type subscription struct {
	id string
	fn Subscriber
}

// Container is safe for concurrent use. Subscribers are invoked
// synchronously, in subscription order, after the lock is released.
type Container struct {
	mu       sync.RWMutex
	version  uint64
	matches  []model.Match
	heroes   model.HeroDirectory
	player   *model.Player
	policy   window.Policy
	mode     window.Mode
	loadedAt time.Time
	subs     []subscription

	log zerolog.Logger
	now func() time.Time
}

// New returns an empty container with the given policy and mode.
func New(policy window.Policy, mode window.Mode, opts ...Option) *Container {
	c := &Container{
		policy: policy,
		mode:   mode,
		heroes: model.HeroDirectory{},
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Load replaces the match list and hero directory.
func (c *Container) Load(matches []model.Match, heroes model.HeroDirectory) {
	ms := make([]model.Match, len(matches))
	copy(ms, matches)
	hd := make(model.HeroDirectory, len(heroes))
	for id, h := range heroes {
		hd[id] = h
	}
	c.update(func() {
		c.matches = ms
		c.heroes = hd
		c.loadedAt = c.now()
	})
}

// SetPlayer replaces the player profile. A nil player clears it.
func (c *Container) SetPlayer(p *model.Player) {
	var cp *model.Player
	if p != nil {
		v := *p
		cp = &v
	}
	c.update(func() { c.player = cp })
}

// SetMode switches between the workday and all-matches views.
func (c *Container) SetMode(m window.Mode) error {
	if m != window.ModeWorkday && m != window.ModeAll {
		return fmt.Errorf("state: unknown filter mode %q", m)
	}
	c.update(func() { c.mode = m })
	return nil
}

// ToggleMode flips the filter mode and returns the new one.
func (c *Container) ToggleMode() window.Mode {
	var next window.Mode
	c.update(func() {
		c.mode = c.mode.Toggle()
		next = c.mode
	})
	return next
}

// UpdatePolicy replaces the window policy after validating it.
func (c *Container) UpdatePolicy(p window.Policy) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	p.Weekdays = append([]time.Weekday(nil), p.Weekdays...)
	c.update(func() { c.policy = p })
	return nil
}

// Snapshot returns the current state with the active subset derived.
func (c *Container) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Container) snapshotLocked() Snapshot {
	// Stored slices and maps are replaced, never mutated, so sharing them
	// with snapshots is safe.
	return Snapshot{
		Version:  c.version,
		Matches:  c.matches,
		Active:   window.Active(c.matches, c.mode, c.policy),
		Heroes:   c.heroes,
		Player:   c.player,
		Policy:   c.policy,
		Mode:     c.mode,
		LoadedAt: c.loadedAt,
	}
}

// Subscribe registers fn and returns its id and a cancel func.
func (c *Container) Subscribe(fn Subscriber) (string, func()) {
	id := uuid.NewString()
	c.mu.Lock()
	c.subs = append(c.subs, subscription{id: id, fn: fn})
	c.mu.Unlock()
	return id, func() { c.Unsubscribe(id) }
}

// Unsubscribe removes a subscriber. It reports whether id was registered.
func (c *Container) Unsubscribe(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Subscribers returns the number of registered subscribers.
func (c *Container) Subscribers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

func (c *Container) update(mutate func()) {
	c.mu.Lock()
	mutate()
	c.version++
	snap := c.snapshotLocked()
	subs := append([]subscription(nil), c.subs...)
	c.mu.Unlock()

	for _, s := range subs {
		c.notify(s, snap)
	}
}

func (c *Container) notify(s subscription, snap Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().
				Str("subscriber", s.id).
				Interface("panic", r).
				Uint64("version", snap.Version).
				Msg("state subscriber panicked")
		}
	}()
	s.fn(snap)
}
