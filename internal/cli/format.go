// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/theirongolddev/ascendia/internal/pet"
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatSigned formats a delta with an explicit sign, "0" for no change.
// e.g., 5 -> "+5", -10 -> "-10"
func FormatSigned(n int) string {
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}

// FormatAgo formats t relative to now, e.g. "3 minutes ago".
// The zero time renders as "never".
func FormatAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	if now.Sub(t) < time.Second && t.Sub(now) < time.Second {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatDuration formats seconds into a human-readable duration.
// e.g., 3725 -> "1h 2m", 125 -> "2m", 45 -> "45s"
func FormatDuration(secs int64) string {
	if secs <= 0 {
		return "0s"
	}

	hours := secs / 3600
	mins := (secs % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if mins > 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatStreak describes a login streak, e.g. "3 days".
func FormatStreak(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

var stageEmoji = map[pet.Type]map[pet.Stage]string{
	pet.TypeCat: {
		pet.StageHatchling: "🐱",
		pet.StageJuvenile:  "🐈",
		pet.StageAdult:     "😼",
		pet.StageWiseElder: "👑🐱",
	},
	pet.TypeDragon: {
		pet.StageHatchling: "🥚",
		pet.StageJuvenile:  "🐲",
		pet.StageAdult:     "🐉",
		pet.StageWiseElder: "🔥🐲🔥",
	},
}

var moodEmoji = map[string]string{
	"hungry": "😩",
	"sad":    "😟",
	"sleepy": "😴",
	"happy":  "😊",
}

// Avatar returns the emoji for the pet's species and stage, followed by a
// mood marker when the pet is not simply content.
func Avatar(p pet.Profile) string {
	face := stageEmoji[p.Type][p.Stage]
	if face == "" {
		face = "🐾"
	}
	if m, ok := moodEmoji[pet.Mood(p)]; ok {
		return face + " " + m
	}
	return face
}

// FormatEventName turns an event identifier into words.
// e.g., "unplannedExpense" -> "Unplanned expense"
func FormatEventName(ev pet.Event) string {
	s := string(ev)
	if s == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
