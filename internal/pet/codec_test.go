package pet

import (
	"reflect"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := DefaultProfile("u-1", testNow)
	p.Name = "Sprout"
	p.Type = TypeDragon
	p.Stage = StageAdult
	p.XP = 321
	p.Treats = 7
	p.LastDecay = testNow.Add(time.Minute)
	p.Accessories = []Accessory{{ID: "a1", Name: "Top Hat", Type: "hat", AssetURL: "/hat.png"}}
	p.ProcessedOverdueDebtsToday = map[string]string{"d1": "2026-03-10"}

	data, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, status := Decode(data, "ignored", testNow)
	if status != Restored {
		t.Fatalf("status = %v, want restored", status)
	}
	if !reflect.DeepEqual(normalize(got), normalize(p)) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, p)
	}
}

// normalize strips location and monotonic data so DeepEqual compares instants.
func normalize(p Profile) Profile {
	p.LastFed = p.LastFed.UTC()
	p.LastInteraction = p.LastInteraction.UTC()
	p.LastDecay = p.LastDecay.UTC()
	return p
}

func TestDecodeLegacyBrowserRecord(t *testing.T) {
	legacy := []byte(`{
		"userId": "defaultUser",
		"petId": "pet-1715000000000",
		"name": "Mochi",
		"type": "Dragon",
		"stage": "Juvenile",
		"xp": 150,
		"hunger": 140,
		"happiness": -3,
		"energy": 60,
		"lastFed": "2026-03-09T08:15:30.123Z",
		"lastInteraction": "2026-03-09T09:00:00.000Z",
		"treats": 14,
		"accessories": [],
		"lastLoginDate": "2026-03-09",
		"consecutiveLoginDays": 3,
		"goalsSet": 2,
		"goalsCompleted": 1,
		"processedOverdueDebtsToday": {"d9": "2026-03-09", "bad": "yesterday"}
	}`)

	p, status := Decode(legacy, "someone", testNow)
	if status != Migrated {
		t.Fatalf("status = %v, want migrated", status)
	}
	if p.PetID != "pet-1715000000000" || p.Name != "Mochi" || p.Type != TypeDragon || p.Stage != StageJuvenile {
		t.Fatalf("identity not carried over: %+v", p)
	}
	if p.XP != 150 || p.Treats != 14 || p.ConsecutiveLoginDays != 3 || p.GoalsSet != 2 || p.GoalsCompleted != 1 {
		t.Fatalf("counters not carried over: %+v", p)
	}
	if p.Hunger != 100 || p.Happiness != 0 || p.Energy != 60 {
		t.Fatalf("stats = %d/%d/%d, want clamped 100/0/60", p.Hunger, p.Happiness, p.Energy)
	}
	wantFed := time.Date(2026, 3, 9, 8, 15, 30, 123_000_000, time.UTC)
	if !p.LastFed.Equal(wantFed) {
		t.Fatalf("LastFed = %v, want %v", p.LastFed, wantFed)
	}
	if p.UserID != "defaultUser" {
		t.Fatalf("UserID = %q, want defaultUser", p.UserID)
	}
	if len(p.ProcessedOverdueDebtsToday) != 1 || p.ProcessedOverdueDebtsToday["d9"] != "2026-03-09" {
		t.Fatalf("overdue map = %v, want only d9", p.ProcessedOverdueDebtsToday)
	}
}

func TestDecodeFillsGapsWithDefaults(t *testing.T) {
	partial := []byte(`{"petId":"pet-x","type":"Cat","stage":"Hatchling","consecutiveLoginDays":0,"xp":"lots"}`)
	p, status := Decode(partial, "", testNow)
	if status != Migrated {
		t.Fatalf("status = %v, want migrated", status)
	}
	def := DefaultProfile("", testNow)
	if p.XP != 0 || p.Hunger != def.Hunger || p.Treats != def.Treats || p.Name != DefaultName {
		t.Fatalf("gaps not defaulted: %+v", p)
	}
	if p.LastLoginDate != "1970-01-01" {
		t.Fatalf("LastLoginDate = %q, want 1970-01-01", p.LastLoginDate)
	}
	if p.Accessories == nil || p.ProcessedOverdueDebtsToday == nil {
		t.Fatal("collections left nil")
	}
}

func TestDecodeInvalidRecordSalvagesName(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantName string
	}{
		{"missing pet id", `{"name":"  Biscuit ","type":"Cat","stage":"Adult","consecutiveLoginDays":1}`, "Biscuit"},
		{"unknown stage", `{"petId":"p","name":"Ziggy","type":"Cat","stage":"Titan","consecutiveLoginDays":1}`, "Ziggy"},
		{"unknown type", `{"petId":"p","name":"Ziggy","type":"Hamster","stage":"Adult","consecutiveLoginDays":1}`, "Ziggy"},
		{"missing streak", `{"petId":"p","name":"Ziggy","type":"Cat","stage":"Adult"}`, "Ziggy"},
		{"blank name", `{"name":"   "}`, DefaultName},
		{"not an object", `[1,2,3]`, DefaultName},
		{"garbage", `%%%`, DefaultName},
		{"broken envelope", `{"version":2,"profile":"nope"}`, DefaultName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, status := Decode([]byte(tt.data), "u", testNow)
			if status != Defaulted {
				t.Fatalf("status = %v, want defaulted", status)
			}
			if p.Name != tt.wantName {
				t.Fatalf("Name = %q, want %q", p.Name, tt.wantName)
			}
			if p.Stage != StageHatchling || p.PetID == "" || p.PetID == "p" {
				t.Fatalf("not a fresh profile: %+v", p)
			}
		})
	}
}

func TestStageProgress(t *testing.T) {
	tests := []struct {
		stage   Stage
		xp      int
		wantPct float64
		final   bool
	}{
		{StageHatchling, 50, 50, false},
		{StageJuvenile, 200, 50, false},
		{StageAdult, 300, 0, false},
		{StageWiseElder, 900, 100, true},
	}
	for _, tt := range tests {
		p := DefaultProfile("", testNow)
		p.Stage = tt.stage
		p.XP = tt.xp
		got := StageProgress(p)
		if got.Percent != tt.wantPct || got.Final != tt.final {
			t.Fatalf("%s@%d progress = %+v, want %.0f%% final=%v", tt.stage, tt.xp, got, tt.wantPct, tt.final)
		}
	}
}

func TestMood(t *testing.T) {
	p := DefaultProfile("", testNow)
	p.Hunger, p.Happiness, p.Energy = 80, 80, 80
	if got := Mood(p); got != "happy" {
		t.Fatalf("Mood = %q, want happy", got)
	}
	p.Hunger = 10
	if got := Mood(p); got != "hungry" {
		t.Fatalf("Mood = %q, want hungry", got)
	}
	p.Hunger, p.Energy = 80, 5
	if got := Mood(p); got != "sleepy" {
		t.Fatalf("Mood = %q, want sleepy", got)
	}
}
