package pet

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CodecVersion is the version written by Encode. Records without a version
// are bare profiles in the original browser format and are read as v1.
const CodecVersion = 2

// DecodeStatus reports how a stored record was interpreted.
type DecodeStatus int

const (
	// Restored means the record was current and read field by field.
	Restored DecodeStatus = iota
	// Migrated means a legacy record was upgraded onto defaults.
	Migrated
	// Defaulted means the record was unusable and a fresh profile was built.
	Defaulted
)

func (s DecodeStatus) String() string {
	switch s {
	case Restored:
		return "restored"
	case Migrated:
		return "migrated"
	default:
		return "defaulted"
	}
}

type envelope struct {
	Version int     `json:"version"`
	Profile Profile `json:"profile"`
}

// Encode serializes p in the current versioned format.
func Encode(p Profile) ([]byte, error) {
	data, err := json.Marshal(envelope{Version: CodecVersion, Profile: p})
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	return data, nil
}

type fields map[string]json.RawMessage

// Decode reads a stored record. It never fails: any field that is missing or
// malformed takes its default, and a record lacking the identifying fields
// is replaced by a fresh profile that keeps the user's chosen name.
func Decode(data []byte, userID string, now time.Time) (Profile, DecodeStatus) {
	def := DefaultProfile(userID, now)

	var top fields
	if err := json.Unmarshal(data, &top); err != nil || top == nil {
		return def, Defaulted
	}

	f := top
	status := Migrated
	if raw, ok := top["version"]; ok {
		var version int
		if err := json.Unmarshal(raw, &version); err != nil || version < CodecVersion {
			// A numbered record older than the envelope format never existed;
			// treat it as a bare legacy profile.
			f = top
		} else {
			f = nil
			if err := json.Unmarshal(top["profile"], &f); err != nil || f == nil {
				return def, Defaulted
			}
			status = Restored
		}
	}

	if !f.hasRequired() {
		if name := strings.TrimSpace(f.str("name")); name != "" {
			def.Name = name
		}
		return def, Defaulted
	}

	p := def
	p.PetID = f.str("petId")
	p.Type = Type(f.str("type"))
	p.Stage = Stage(f.str("stage"))
	p.ConsecutiveLoginDays, _ = f.integer("consecutiveLoginDays")
	if p.ConsecutiveLoginDays < 0 {
		p.ConsecutiveLoginDays = 0
	}

	if v := strings.TrimSpace(f.str("userId")); v != "" {
		p.UserID = v
	}
	if v := strings.TrimSpace(f.str("name")); v != "" {
		p.Name = v
	}
	if v, ok := f.integer("xp"); ok && v >= 0 {
		p.XP = v
	}
	if v, ok := f.integer("hunger"); ok {
		p.Hunger = clampStat(v)
	}
	if v, ok := f.integer("happiness"); ok {
		p.Happiness = clampStat(v)
	}
	if v, ok := f.integer("energy"); ok {
		p.Energy = clampStat(v)
	}
	if v, ok := f.integer("treats"); ok && v >= 0 {
		p.Treats = v
	}
	if v, ok := f.integer("goalsSet"); ok && v >= 0 {
		p.GoalsSet = v
	}
	if v, ok := f.integer("goalsCompleted"); ok && v >= 0 {
		p.GoalsCompleted = v
	}
	if v, ok := f.instant("lastFed"); ok {
		p.LastFed = v
	}
	if v, ok := f.instant("lastInteraction"); ok {
		p.LastInteraction = v
	}
	if v, ok := f.instant("lastDecay"); ok {
		p.LastDecay = v
	}
	if v := f.str("lastLoginDate"); validDate(v) {
		p.LastLoginDate = v
	}

	var acc []Accessory
	if raw, ok := f["accessories"]; ok && json.Unmarshal(raw, &acc) == nil && acc != nil {
		p.Accessories = acc
	}
	var overdue map[string]string
	if raw, ok := f["processedOverdueDebtsToday"]; ok && json.Unmarshal(raw, &overdue) == nil && overdue != nil {
		for id, day := range overdue {
			if validDate(day) {
				p.ProcessedOverdueDebtsToday[id] = day
			}
		}
	}

	return p, status
}

func (f fields) hasRequired() bool {
	if f == nil || strings.TrimSpace(f.str("petId")) == "" {
		return false
	}
	if _, ok := f.integer("consecutiveLoginDays"); !ok {
		return false
	}
	return Type(f.str("type")).IsValid() && Stage(f.str("stage")).IsValid()
}

func (f fields) str(key string) string {
	raw, ok := f[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func (f fields) integer(key string) (int, bool) {
	raw, ok := f[key]
	if !ok {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return int(n), true
}

func (f fields) instant(key string) (time.Time, bool) {
	raw, ok := f[key]
	if !ok {
		return time.Time{}, false
	}
	var t time.Time
	if err := json.Unmarshal(raw, &t); err != nil {
		return time.Time{}, false
	}
	return t, true
}

func validDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
