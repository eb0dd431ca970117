package pet

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/ascendia/internal/store"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recorder struct {
	mu  sync.Mutex
	got []Notification
}

func (r *recorder) Notify(n Notification) {
	r.mu.Lock()
	r.got = append(r.got, n)
	r.mu.Unlock()
}

func (r *recorder) titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.got))
	for i, n := range r.got {
		out[i] = n.Title
	}
	return out
}

func (r *recorder) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.got) == 0 {
		return Notification{}
	}
	return r.got[len(r.got)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.got = nil
	r.mu.Unlock()
}

type harness struct {
	engine *Engine
	kv     *store.Memory
	clock  *fakeClock
	sink   *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		kv:    store.NewMemory(),
		clock: &fakeClock{t: testNow},
		sink:  &recorder{},
	}
	h.engine = h.newEngine()
	return h
}

func (h *harness) newEngine() *Engine {
	return NewEngine(Config{Store: h.kv, Sink: h.sink, Now: h.clock.Now})
}

// seed stores p as the persisted profile.
func (h *harness) seed(t *testing.T, p Profile) {
	t.Helper()
	data, err := Encode(p)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := h.kv.Set(context.Background(), StorageKey, data); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// seeded returns a profile that has already logged in today and was
// touched just now, so Init neither pays a bonus nor charges decay.
func seeded() Profile {
	p := DefaultProfile("tester", testNow)
	p.LastLoginDate = testNow.Format(DateLayout)
	p.ConsecutiveLoginDays = 1
	return p
}

func (h *harness) profile(t *testing.T) Profile {
	t.Helper()
	p, ok := h.engine.Profile()
	if !ok {
		t.Fatal("profile still loading")
	}
	return p
}

func TestInitCreatesDefaultAndGrantsDailyBonusOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if !h.engine.IsLoading() {
		t.Fatal("IsLoading = false before Init")
	}
	if _, ok := h.engine.Profile(); ok {
		t.Fatal("Profile available before Init")
	}

	if st := h.engine.Init(ctx); st != LoadCreated {
		t.Fatalf("Init status = %v, want created", st)
	}
	p := h.profile(t)
	if p.Treats != 10+DailyLoginTreats {
		t.Fatalf("Treats = %d, want %d", p.Treats, 10+DailyLoginTreats)
	}
	if p.ConsecutiveLoginDays != 1 {
		t.Fatalf("ConsecutiveLoginDays = %d, want 1", p.ConsecutiveLoginDays)
	}
	if p.LastLoginDate != "2026-03-10" {
		t.Fatalf("LastLoginDate = %q, want 2026-03-10", p.LastLoginDate)
	}
	if p.Name != DefaultName || p.Stage != StageHatchling || p.Type != TypeCat {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if !strings.HasPrefix(p.PetID, "pet-") {
		t.Fatalf("PetID = %q, want pet- prefix", p.PetID)
	}
	if got := h.sink.titles(); len(got) != 1 || got[0] != "Daily Login Bonus!" {
		t.Fatalf("notifications = %v, want [Daily Login Bonus!]", got)
	}

	// A second start on the same day must not pay again.
	h.engine = h.newEngine()
	if st := h.engine.Init(ctx); st != LoadRestored {
		t.Fatalf("second Init status = %v, want restored", st)
	}
	again := h.profile(t)
	if again.Treats != p.Treats {
		t.Fatalf("Treats after second Init = %d, want %d", again.Treats, p.Treats)
	}
	if again.PetID != p.PetID {
		t.Fatalf("PetID changed across restarts: %q -> %q", p.PetID, again.PetID)
	}
}

func TestLoginStreak(t *testing.T) {
	tests := []struct {
		name       string
		lastLogin  string
		streak     int
		wantStreak int
		wantTreats int
	}{
		{"continues from yesterday", "2026-03-09", 2, 3, DailyLoginTreats},
		{"reaches bonus threshold", "2026-03-09", 4, 5, DailyLoginTreats + StreakBonusTreats},
		{"bonus repeats while streak holds", "2026-03-09", 9, 10, DailyLoginTreats + StreakBonusTreats},
		{"gap resets streak", "2026-03-07", 9, 1, DailyLoginTreats},
		{"first ever login", "1970-01-01", 0, 1, DailyLoginTreats},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			p := seeded()
			p.Treats = 0
			p.LastLoginDate = tt.lastLogin
			p.ConsecutiveLoginDays = tt.streak
			h.seed(t, p)

			h.engine.Init(context.Background())
			got := h.profile(t)
			if got.ConsecutiveLoginDays != tt.wantStreak {
				t.Fatalf("ConsecutiveLoginDays = %d, want %d", got.ConsecutiveLoginDays, tt.wantStreak)
			}
			if got.Treats != tt.wantTreats {
				t.Fatalf("Treats = %d, want %d", got.Treats, tt.wantTreats)
			}
		})
	}
}

func TestStreakBonusOnConsecutiveDays(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := seeded()
	p.Treats = 0
	p.LastLoginDate = "2026-03-09"
	p.ConsecutiveLoginDays = 4
	h.seed(t, p)

	h.engine.Init(ctx)
	h.clock.Advance(24 * time.Hour)
	h.engine = h.newEngine()
	h.engine.Init(ctx)

	got := h.profile(t)
	if got.ConsecutiveLoginDays != 6 {
		t.Fatalf("ConsecutiveLoginDays = %d, want 6", got.ConsecutiveLoginDays)
	}
	want := 2 * (DailyLoginTreats + StreakBonusTreats)
	if got.Treats != want {
		t.Fatalf("Treats = %d, want %d", got.Treats, want)
	}
}

func TestUpdateStatClamps(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, seeded())
	h.engine.Init(ctx)

	deltas := []int{250, -1000, 37, 80, -5, 1 << 20, -(1 << 20), 64}
	for _, stat := range []Stat{StatHunger, StatHappiness, StatEnergy} {
		for _, d := range deltas {
			h.engine.UpdateStat(ctx, stat, d)
			v := h.profile(t).StatValue(stat)
			if v < MinStatValue || v > MaxStatValue {
				t.Fatalf("%s = %d after delta %d, outside [0,100]", stat, v, d)
			}
		}
	}

	before := h.profile(t)
	h.engine.UpdateStat(ctx, Stat("health"), 10)
	if after := h.profile(t); !reflect.DeepEqual(before, after) {
		t.Fatal("unknown stat changed the profile")
	}
}

func TestFeedPet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := seeded()
	p.Treats = 1
	p.Hunger = 90
	p.Happiness = 50
	h.seed(t, p)
	h.engine.Init(ctx)
	h.clock.Advance(time.Minute)

	if !h.engine.FeedPet(ctx, 1) {
		t.Fatal("FeedPet with enough treats returned false")
	}
	got := h.profile(t)
	if got.Treats != 0 || got.Hunger != 100 || got.Happiness != 55 {
		t.Fatalf("after feed treats=%d hunger=%d happiness=%d, want 0/100/55", got.Treats, got.Hunger, got.Happiness)
	}
	if !got.LastFed.Equal(h.clock.Now()) || !got.LastInteraction.Equal(h.clock.Now()) {
		t.Fatal("feeding did not update lastFed/lastInteraction")
	}
	if h.sink.last().Title != "Yum!" {
		t.Fatalf("last notification = %q, want Yum!", h.sink.last().Title)
	}

	before := h.profile(t)
	if h.engine.FeedPet(ctx, 1) {
		t.Fatal("FeedPet without treats returned true")
	}
	if after := h.profile(t); !reflect.DeepEqual(before, after) {
		t.Fatalf("failed feed changed profile:\n%+v\n%+v", before, after)
	}
	if n := h.sink.last(); n.Title != "Not enough treats" || n.Severity != SeverityDestructive {
		t.Fatalf("last notification = %+v, want destructive Not enough treats", n)
	}
}

func TestFeedPetCostAboveBalance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := seeded()
	p.Treats = 3
	h.seed(t, p)
	h.engine.Init(ctx)

	if h.engine.FeedPet(ctx, 5) {
		t.Fatal("FeedPet(5) with 3 treats returned true")
	}
	if got := h.profile(t).Treats; got != 3 {
		t.Fatalf("Treats = %d, want 3", got)
	}
}

func TestEvolutionThresholdBoundary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := seeded()
	p.XP = 90
	h.seed(t, p)
	h.engine.Init(ctx)

	h.engine.GainXP(ctx, 9, true)
	if got := h.profile(t); got.XP != 99 || got.Stage != StageHatchling {
		t.Fatalf("at 99 XP stage = %s (xp %d), want Hatchling", got.Stage, got.XP)
	}

	h.sink.reset()
	h.engine.GainXP(ctx, 1, true)
	if got := h.profile(t); got.Stage != StageJuvenile {
		t.Fatalf("at 100 XP stage = %s, want Juvenile", got.Stage)
	}
	if titles := h.sink.titles(); len(titles) != 1 || titles[0] != "Evolution!" {
		t.Fatalf("notifications = %v, want [Evolution!]", titles)
	}
}

func TestEvolutionAdvancesOneStagePerMutation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, seeded())
	h.engine.Init(ctx)

	h.engine.GainXP(ctx, 1000, true)
	want := []Stage{StageJuvenile, StageAdult, StageWiseElder, StageWiseElder}
	for i, stage := range want {
		if i > 0 {
			h.engine.UpdateStat(ctx, StatEnergy, 0)
		}
		if got := h.profile(t).Stage; got != stage {
			t.Fatalf("after mutation %d stage = %s, want %s", i+1, got, stage)
		}
	}
}

func TestStageNeverMovesBackward(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := seeded()
	p.Stage = StageAdult
	p.XP = 0
	h.seed(t, p)
	h.engine.Init(ctx)

	h.engine.UpdateStat(ctx, StatHappiness, -100)
	h.engine.GainXP(ctx, -50, true)
	h.engine.ProcessFinancialEvent(ctx, EventDebtOverdue, EventData{})
	h.engine.FeedPet(ctx, 1)
	if got := h.profile(t).Stage; got != StageAdult {
		t.Fatalf("stage = %s, want Adult", got)
	}
	if got := h.profile(t).XP; got < 0 {
		t.Fatalf("XP = %d, want >= 0", got)
	}
}

func TestGainXPNotifiesUnlessSilent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := seeded()
	p.Happiness = 98
	h.seed(t, p)
	h.engine.Init(ctx)

	h.engine.GainXP(ctx, 20, false)
	if h.sink.last().Title != "XP Gained!" {
		t.Fatalf("last notification = %q, want XP Gained!", h.sink.last().Title)
	}
	h.sink.reset()
	h.engine.GainXP(ctx, 20, true)
	if len(h.sink.titles()) != 0 {
		t.Fatalf("silent GainXP notified: %v", h.sink.titles())
	}
	got := h.profile(t)
	if got.XP != 40 || got.Happiness != 100 {
		t.Fatalf("xp=%d happiness=%d, want 40/100", got.XP, got.Happiness)
	}
}

func TestRenameAndType(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, seeded())
	h.engine.Init(ctx)

	h.engine.RenamePet(ctx, "  Penny  ")
	h.engine.RenamePet(ctx, "   ")
	h.engine.SetPetType(ctx, TypeDragon)
	h.engine.SetPetType(ctx, Type("Hamster"))

	got := h.profile(t)
	if got.Name != "Penny" {
		t.Fatalf("Name = %q, want Penny", got.Name)
	}
	if got.Type != TypeDragon {
		t.Fatalf("Type = %q, want Dragon", got.Type)
	}
}

func TestRewardTreats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := seeded()
	p.Treats = 4
	h.seed(t, p)
	h.engine.Init(ctx)

	h.engine.RewardTreats(ctx, 6, "")
	if len(h.sink.titles()) != 0 {
		t.Fatalf("reward without reason notified: %v", h.sink.titles())
	}
	h.engine.RewardTreats(ctx, 5, "paid off a card")
	n := h.sink.last()
	if n.Title != "Treats Earned!" || !strings.Contains(n.Description, "paid off a card") {
		t.Fatalf("notification = %+v, want reason in description", n)
	}
	h.engine.RewardTreats(ctx, -5, "bought a hat")
	n = h.sink.last()
	if n.Title != "Treats Spent" || !strings.HasPrefix(n.Description, "-5 treats: ") {
		t.Fatalf("deduction notification = %+v, want a plain -5", n)
	}
	h.engine.RewardTreats(ctx, -100, "")
	if got := h.profile(t).Treats; got != 0 {
		t.Fatalf("Treats = %d, want 0", got)
	}
}

func TestPlay(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := seeded()
	p.Energy = 15
	p.Happiness = 40
	h.seed(t, p)
	h.engine.Init(ctx)

	if !h.engine.Play(ctx) {
		t.Fatal("Play with 15 energy returned false")
	}
	got := h.profile(t)
	if got.Energy != 5 || got.Happiness != 55 {
		t.Fatalf("energy=%d happiness=%d, want 5/55", got.Energy, got.Happiness)
	}
	if h.engine.Play(ctx) {
		t.Fatal("Play with 5 energy returned true")
	}
	if n := h.sink.last(); n.Title != "Too Tired" {
		t.Fatalf("last notification = %q, want Too Tired", n.Title)
	}
}

func TestDecayThroughEngine(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := seeded()
	p.LastInteraction = testNow.Add(-10 * time.Minute)
	h.seed(t, p)
	h.engine.Init(ctx)

	if steps := h.engine.Decay(ctx); steps != 0 {
		t.Fatalf("Decay at 10m idle applied %d steps, want 0", steps)
	}

	h.clock.Advance(35 * time.Minute)
	if steps := h.engine.Decay(ctx); steps != 1 {
		t.Fatalf("Decay at 45m idle applied %d steps, want 1", steps)
	}
	got := h.profile(t)
	if got.Hunger != 78 || got.Energy != 89 {
		t.Fatalf("hunger=%d energy=%d, want 78/89", got.Hunger, got.Energy)
	}
	if !got.LastInteraction.Equal(p.LastInteraction) {
		t.Fatal("decay moved lastInteraction")
	}
	if steps := h.engine.Decay(ctx); steps != 0 {
		t.Fatalf("repeated Decay at same instant applied %d steps", steps)
	}
}

func TestInitCatchesUpDecay(t *testing.T) {
	h := newHarness(t)
	p := seeded()
	p.LastInteraction = testNow.Add(-60 * time.Minute)
	h.seed(t, p)
	h.engine.Init(context.Background())

	got := h.profile(t)
	if got.Hunger != 80-2*DecayHunger || got.Energy != 90-2*DecayEnergy {
		t.Fatalf("hunger=%d energy=%d after 60m idle, want %d/%d", got.Hunger, got.Energy, 80-2*DecayHunger, 90-2*DecayEnergy)
	}
}

func TestConcurrentMutationsSeeLatestState(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := seeded()
	p.Treats = 100
	h.seed(t, p)
	h.engine.Init(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 60; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.engine.FeedPet(ctx, 1)
		}()
		go func() {
			defer wg.Done()
			h.engine.GainXP(ctx, 1, true)
		}()
	}
	wg.Wait()

	got := h.profile(t)
	if got.Treats != 40 {
		t.Fatalf("Treats = %d, want 40", got.Treats)
	}
	if got.XP != 60 {
		t.Fatalf("XP = %d, want 60", got.XP)
	}

	reloaded := h.newEngine()
	reloaded.Init(ctx)
	rp, _ := reloaded.Profile()
	if rp.Treats != 40 || rp.XP != 60 {
		t.Fatalf("persisted treats=%d xp=%d, want 40/60", rp.Treats, rp.XP)
	}
}

func TestNotificationsDeliveredAfterCommit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, seeded())

	var seen []int
	var e *Engine
	e = NewEngine(Config{
		Store: h.kv,
		Now:   h.clock.Now,
		Sink: SinkFunc(func(n Notification) {
			// Reading back from inside the sink must not deadlock and must
			// already see the committed change.
			p, _ := e.Profile()
			seen = append(seen, p.Treats)
		}),
	})
	e.Init(ctx)
	e.RewardTreats(ctx, 7, "test")

	if len(seen) != 1 || seen[0] != 10+7 {
		t.Fatalf("sink saw treats %v, want [17]", seen)
	}
}

func TestPersistFailureKeepsState(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, seeded())
	h.engine.Init(ctx)

	h.kv.FailWrites = errors.New("disk full")
	h.engine.GainXP(ctx, 30, true)
	if got := h.profile(t).XP; got != 30 {
		t.Fatalf("XP = %d after failed write, want 30", got)
	}
}

func TestCorruptRecordFallsBack(t *testing.T) {
	h := newHarness(t)
	if err := h.kv.Set(context.Background(), StorageKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if st := h.engine.Init(context.Background()); st != LoadDefaulted {
		t.Fatalf("status = %v, want defaulted", st)
	}
	if got := h.profile(t); got.Name != DefaultName || got.Stage != StageHatchling {
		t.Fatalf("fallback profile = %+v", got)
	}
}

func TestReadErrorKeepsStoredPet(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, seeded())
	h.engine.Init(ctx)
	h.engine.GainXP(ctx, 450, true)
	saved := h.profile(t)

	h.kv.FailReads = errors.New("database is locked")
	e := h.newEngine()
	if st := e.Init(ctx); st != LoadUnavailable {
		t.Fatalf("status = %v, want unavailable", st)
	}
	e.FeedPet(ctx, 1)
	if p, ok := e.Profile(); !ok || p.Stage != StageHatchling {
		t.Fatalf("stand-in profile = %+v, want a default hatchling", p)
	}

	h.kv.FailReads = nil
	data, err := h.kv.Get(ctx, StorageKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	stored, st := Decode(data, "tester", testNow)
	if st != Restored || stored.PetID != saved.PetID || stored.XP != 450 || stored.Stage != StageJuvenile {
		t.Fatalf("stored pet = %s xp=%d stage=%s, want %s xp=450 Juvenile",
			stored.PetID, stored.XP, stored.Stage, saved.PetID)
	}
}

func TestInitEvolvesLoadedProfile(t *testing.T) {
	h := newHarness(t)
	p := seeded()
	p.XP = 150
	h.seed(t, p)

	h.engine.Init(context.Background())
	if got := h.profile(t).Stage; got != StageJuvenile {
		t.Fatalf("Stage = %s, want Juvenile", got)
	}
	if titles := h.sink.titles(); len(titles) != 1 || titles[0] != "Evolution!" {
		t.Fatalf("notifications = %v, want one evolution", titles)
	}
}

func TestMutationBeforeInitIgnored(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if h.engine.FeedPet(ctx, 1) {
		t.Fatal("FeedPet before Init returned true")
	}
	h.engine.GainXP(ctx, 10, false)
	if _, err := h.kv.Get(ctx, StorageKey); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("mutation before Init persisted something: %v", err)
	}
}

func TestReset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := seeded()
	p.Stage = StageAdult
	p.XP = 400
	p.ConsecutiveLoginDays = 7
	h.seed(t, p)
	h.engine.Init(ctx)

	h.engine.Reset(ctx)
	got := h.profile(t)
	if got.Stage != StageHatchling || got.XP != 0 {
		t.Fatalf("after reset stage=%s xp=%d", got.Stage, got.XP)
	}
	if got.PetID == p.PetID {
		t.Fatal("reset kept the old pet id")
	}
	if got.ConsecutiveLoginDays != 7 || got.LastLoginDate != p.LastLoginDate {
		t.Fatal("reset dropped login streak")
	}
	if got.UserID != "tester" {
		t.Fatalf("UserID = %q, want tester", got.UserID)
	}
}
