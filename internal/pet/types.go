// Package pet implements the financial pet engagement engine: the pet
// profile, its stat and evolution rules, daily login streaks, reactions to
// financial events and inactivity decay.
package pet

import (
	"time"

	"github.com/google/uuid"
)

// Type is the pet's species.
type Type string

const (
	TypeCat    Type = "Cat"
	TypeDragon Type = "Dragon"
)

// IsValid reports whether t is a known species.
func (t Type) IsValid() bool {
	switch t {
	case TypeCat, TypeDragon:
		return true
	default:
		return false
	}
}

// Types lists all species in display order.
var Types = []Type{TypeCat, TypeDragon}

// Stage is the pet's lifecycle phase. Stages only move forward.
type Stage string

const (
	StageHatchling Stage = "Hatchling"
	StageJuvenile  Stage = "Juvenile"
	StageAdult     Stage = "Adult"
	StageWiseElder Stage = "Wise Elder"
)

// IsValid reports whether s is a known stage.
func (s Stage) IsValid() bool {
	return s.rank() >= 0
}

func (s Stage) rank() int {
	switch s {
	case StageHatchling:
		return 0
	case StageJuvenile:
		return 1
	case StageAdult:
		return 2
	case StageWiseElder:
		return 3
	default:
		return -1
	}
}

// Stat names one of the bounded stats.
type Stat string

const (
	StatHunger    Stat = "hunger"
	StatHappiness Stat = "happiness"
	StatEnergy    Stat = "energy"
)

// IsValid reports whether s names a bounded stat.
func (s Stat) IsValid() bool {
	switch s {
	case StatHunger, StatHappiness, StatEnergy:
		return true
	default:
		return false
	}
}

const (
	MinStatValue = 0
	MaxStatValue = 100

	// DateLayout is the calendar-date format used for login and overdue tracking.
	DateLayout = "2006-01-02"

	// StorageKey is the fixed key the profile is persisted under.
	StorageKey = "ascendiaLitePetProfile"

	DefaultUserID = "defaultUser"
	DefaultName   = "Buddy"
)

// Accessory is a cosmetic item owned by the pet.
type Accessory struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"` // "hat" or "background"
	AssetURL string `json:"assetUrl"`
}

// Profile is the full pet record. There is one per installation.
type Profile struct {
	UserID          string      `json:"userId"`
	PetID           string      `json:"petId"`
	Name            string      `json:"name"`
	Type            Type        `json:"type"`
	Stage           Stage       `json:"stage"`
	XP              int         `json:"xp"`
	Hunger          int         `json:"hunger"`
	Happiness       int         `json:"happiness"`
	Energy          int         `json:"energy"`
	LastFed         time.Time   `json:"lastFed"`
	LastInteraction time.Time   `json:"lastInteraction"`
	LastDecay       time.Time   `json:"lastDecay,omitzero"`
	Treats          int         `json:"treats"`
	Accessories     []Accessory `json:"accessories"`

	LastLoginDate        string `json:"lastLoginDate"`
	ConsecutiveLoginDays int    `json:"consecutiveLoginDays"`

	// Counted by the goalSet / goalAchieved rules.
	GoalsSet       int `json:"goalsSet"`
	GoalsCompleted int `json:"goalsCompleted"`

	// debt ID -> date the overdue penalty was last applied.
	ProcessedOverdueDebtsToday map[string]string `json:"processedOverdueDebtsToday"`
}

// DefaultProfile returns a fresh hatchling for userID created at now.
func DefaultProfile(userID string, now time.Time) Profile {
	if userID == "" {
		userID = DefaultUserID
	}
	return Profile{
		UserID:                     userID,
		PetID:                      newPetID(),
		Name:                       DefaultName,
		Type:                       TypeCat,
		Stage:                      StageHatchling,
		Hunger:                     80,
		Happiness:                  70,
		Energy:                     90,
		LastFed:                    now,
		LastInteraction:            now,
		Treats:                     10,
		Accessories:                []Accessory{},
		LastLoginDate:              "1970-01-01",
		ProcessedOverdueDebtsToday: map[string]string{},
	}
}

func newPetID() string {
	return "pet-" + uuid.NewString()
}

// Clone returns a deep copy so snapshots never alias engine state.
func (p Profile) Clone() Profile {
	cp := p
	cp.Accessories = make([]Accessory, len(p.Accessories))
	copy(cp.Accessories, p.Accessories)
	cp.ProcessedOverdueDebtsToday = make(map[string]string, len(p.ProcessedOverdueDebtsToday))
	for k, v := range p.ProcessedOverdueDebtsToday {
		cp.ProcessedOverdueDebtsToday[k] = v
	}
	return cp
}

// StatValue returns the current value of a bounded stat.
func (p Profile) StatValue(s Stat) int {
	switch s {
	case StatHunger:
		return p.Hunger
	case StatHappiness:
		return p.Happiness
	case StatEnergy:
		return p.Energy
	default:
		return 0
	}
}

func (p *Profile) addStat(s Stat, delta int) {
	switch s {
	case StatHunger:
		p.Hunger = clampStat(p.Hunger + delta)
	case StatHappiness:
		p.Happiness = clampStat(p.Happiness + delta)
	case StatEnergy:
		p.Energy = clampStat(p.Energy + delta)
	}
}

func clampStat(v int) int {
	if v < MinStatValue {
		return MinStatValue
	}
	if v > MaxStatValue {
		return MaxStatValue
	}
	return v
}
