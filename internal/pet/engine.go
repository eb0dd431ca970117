package pet

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/theirongolddev/ascendia/internal/store"
)

// Store is the durable persistence the engine writes the profile to.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// LoadStatus reports where the profile came from during Init.
type LoadStatus int

const (
	LoadCreated LoadStatus = iota
	LoadRestored
	LoadMigrated
	LoadDefaulted
	// LoadUnavailable means the store could not be read. The engine serves
	// a default profile but never writes it, so the saved pet survives.
	LoadUnavailable
)

func (s LoadStatus) String() string {
	switch s {
	case LoadCreated:
		return "created"
	case LoadRestored:
		return "restored"
	case LoadMigrated:
		return "migrated"
	case LoadUnavailable:
		return "unavailable"
	default:
		return "defaulted"
	}
}

// Config configures an Engine.
type Config struct {
	Store  Store
	Sink   Sink
	Now    func() time.Time
	UserID string
}

// Engine owns the single pet profile. Every change goes through one
// serialized path: read the latest committed profile, compute the next one,
// commit, persist, then deliver notifications outside the lock.
type Engine struct {
	store  Store
	sink   Sink
	now    func() time.Time
	userID string

	mu      sync.Mutex
	profile Profile
	loaded  bool
	// readOnly is set when the stored record could not be read.
	readOnly bool
}

// NewEngine returns an engine that has not loaded its profile yet.
func NewEngine(cfg Config) *Engine {
	if cfg.Sink == nil {
		cfg.Sink = Discard
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.UserID == "" {
		cfg.UserID = DefaultUserID
	}
	return &Engine{
		store:  cfg.Store,
		sink:   cfg.Sink,
		now:    cfg.Now,
		userID: cfg.UserID,
	}
}

// Init loads the profile, grants the daily login bonus, charges any decay
// accrued while nothing was running and persists the result. Problems with
// the stored record fall back to a default profile.
func (e *Engine) Init(ctx context.Context) LoadStatus {
	now := e.now()
	p, status := e.load(ctx, now)

	var out outbox
	applyLogin(&p, now, &out)
	p, _ = ApplyDecay(p, now)
	if evolve(&p) {
		out.info("Evolution!", fmt.Sprintf("%s evolved into a %s!", p.Name, p.Stage))
	}

	e.mu.Lock()
	e.profile = p
	e.loaded = true
	e.readOnly = status == LoadUnavailable
	e.persistLocked(ctx)
	e.mu.Unlock()

	e.flush(out)
	return status
}

func (e *Engine) load(ctx context.Context, now time.Time) (Profile, LoadStatus) {
	if e.store == nil {
		return DefaultProfile(e.userID, now), LoadCreated
	}
	data, err := e.store.Get(ctx, StorageKey)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("pet: load profile: %v; changes will not be saved", err)
			return DefaultProfile(e.userID, now), LoadUnavailable
		}
		return DefaultProfile(e.userID, now), LoadCreated
	}

	p, st := Decode(data, e.userID, now)
	switch st {
	case Restored:
		return p, LoadRestored
	case Migrated:
		return p, LoadMigrated
	default:
		log.Printf("pet: stored profile unreadable, starting fresh")
		return p, LoadDefaulted
	}
}

// Profile returns a copy of the current profile and false while loading.
func (e *Engine) Profile() (Profile, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded {
		return Profile{}, false
	}
	return e.profile.Clone(), true
}

// IsLoading reports whether Init has not completed yet.
func (e *Engine) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.loaded
}

// update runs fn against the latest committed profile. fn reports whether it
// changed anything; only then is the result evolved, committed and persisted.
// Notifications fn queued are delivered either way.
func (e *Engine) update(ctx context.Context, fn func(p *Profile, now time.Time, out *outbox) bool) bool {
	var out outbox

	e.mu.Lock()
	if !e.loaded {
		e.mu.Unlock()
		log.Printf("pet: mutation before Init ignored")
		return false
	}
	next := e.profile.Clone()
	changed := fn(&next, e.now(), &out)
	if changed {
		if evolve(&next) {
			out.info("Evolution!", fmt.Sprintf("%s evolved into a %s!", next.Name, next.Stage))
		}
		e.profile = next
		e.persistLocked(ctx)
	}
	e.mu.Unlock()

	e.flush(out)
	return changed
}

func (e *Engine) persistLocked(ctx context.Context) {
	if e.store == nil || e.readOnly {
		return
	}
	data, err := Encode(e.profile)
	if err != nil {
		log.Printf("pet: %v", err)
		return
	}
	if err := e.store.Set(ctx, StorageKey, data); err != nil {
		log.Printf("pet: persist profile: %v", err)
	}
}

func (e *Engine) flush(out outbox) {
	for _, n := range out {
		e.sink.Notify(n)
	}
}

// GainXP adds XP and cheers the pet up a little.
func (e *Engine) GainXP(ctx context.Context, amount int, silent bool) {
	e.update(ctx, func(p *Profile, now time.Time, out *outbox) bool {
		p.XP += amount
		if p.XP < 0 {
			p.XP = 0
		}
		p.addStat(StatHappiness, 5)
		p.LastInteraction = now
		if !silent {
			out.info("XP Gained!", fmt.Sprintf("%s gained %d XP.", p.Name, amount))
		}
		return true
	})
}

// UpdateStat adds amount to a bounded stat. Unknown stats are ignored.
func (e *Engine) UpdateStat(ctx context.Context, stat Stat, amount int) {
	if !stat.IsValid() {
		return
	}
	e.update(ctx, func(p *Profile, now time.Time, _ *outbox) bool {
		p.addStat(stat, amount)
		p.LastInteraction = now
		return true
	})
}

// FeedPet spends cost treats to feed the pet. It reports false, changing
// nothing, when there are not enough treats.
func (e *Engine) FeedPet(ctx context.Context, cost int) bool {
	if cost < 1 {
		cost = 1
	}
	return e.update(ctx, func(p *Profile, now time.Time, out *outbox) bool {
		if p.Treats < cost {
			out.destructive("Not enough treats", fmt.Sprintf("You need %d treat(s) to feed %s.", cost, p.Name))
			return false
		}
		p.addStat(StatHunger, 20)
		p.addStat(StatHappiness, 5)
		p.Treats -= cost
		p.LastFed = now
		p.LastInteraction = now
		out.info("Yum!", fmt.Sprintf("%s enjoyed the treat.", p.Name))
		return true
	})
}

// MinPlayEnergy is the energy needed to play.
const MinPlayEnergy = 10

// Play trades energy for happiness. It reports false when the pet is too
// tired.
func (e *Engine) Play(ctx context.Context) bool {
	return e.update(ctx, func(p *Profile, now time.Time, out *outbox) bool {
		if p.Energy < MinPlayEnergy {
			out.destructive("Too Tired", fmt.Sprintf("%s is too tired to play right now.", p.Name))
			return false
		}
		p.addStat(StatHappiness, 15)
		p.addStat(StatEnergy, -10)
		p.LastInteraction = now
		out.info("Playtime!", fmt.Sprintf("%s had fun playing! +15 Happiness, -10 Energy.", p.Name))
		return true
	})
}

// RenamePet sets the display name. Blank names are ignored.
func (e *Engine) RenamePet(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	e.update(ctx, func(p *Profile, _ time.Time, _ *outbox) bool {
		p.Name = name
		return true
	})
}

// SetPetType changes the species. Unknown types are ignored.
func (e *Engine) SetPetType(ctx context.Context, t Type) {
	if !t.IsValid() {
		return
	}
	e.update(ctx, func(p *Profile, _ time.Time, _ *outbox) bool {
		p.Type = t
		return true
	})
}

// RewardTreats adds treats. The balance never drops below zero.
func (e *Engine) RewardTreats(ctx context.Context, amount int, reason string) {
	e.update(ctx, func(p *Profile, _ time.Time, out *outbox) bool {
		p.Treats += amount
		if p.Treats < 0 {
			p.Treats = 0
		}
		switch {
		case reason == "":
		case amount < 0:
			out.info("Treats Spent", fmt.Sprintf("%d treats: %s", amount, reason))
		default:
			out.info("Treats Earned!", fmt.Sprintf("+%d treats: %s", amount, reason))
		}
		return true
	})
}

// ProcessFinancialEvent applies the rule for ev. It reports false for
// unknown events and for an overdue debt already penalized today.
func (e *Engine) ProcessFinancialEvent(ctx context.Context, ev Event, data EventData) bool {
	return e.update(ctx, func(p *Profile, now time.Time, out *outbox) bool {
		return applyEvent(p, ev, data, now, out)
	})
}

// Decay charges any decay owed for inactivity and returns the steps applied.
func (e *Engine) Decay(ctx context.Context) int {
	var steps int
	e.update(ctx, func(p *Profile, now time.Time, _ *outbox) bool {
		*p, steps = ApplyDecay(*p, now)
		return steps > 0
	})
	return steps
}

// Reset replaces the pet with a fresh hatchling. The login date and streak
// carry over so a reset cannot be used to farm the daily bonus.
func (e *Engine) Reset(ctx context.Context) {
	e.update(ctx, func(p *Profile, now time.Time, out *outbox) bool {
		fresh := DefaultProfile(p.UserID, now)
		fresh.LastLoginDate = p.LastLoginDate
		fresh.ConsecutiveLoginDays = p.ConsecutiveLoginDays
		*p = fresh
		out.info("New Companion", fmt.Sprintf("A new %s hatched. Say hello to %s!", fresh.Type, fresh.Name))
		return true
	})
}
