package pet

import (
	"fmt"
	"time"
)

const (
	DailyLoginTreats  = 2
	StreakBonusTreats = 10
	// StreakBonusDays is the streak length from which the bonus is paid.
	// The bonus is paid again on every day the streak holds.
	StreakBonusDays = 5
)

// applyLogin grants the daily login bonus and advances the streak when the
// last recorded login was not today. It reports whether anything changed.
func applyLogin(p *Profile, now time.Time, out *outbox) bool {
	today := now.Format(DateLayout)
	if p.LastLoginDate == today {
		return false
	}
	yesterday := now.AddDate(0, 0, -1).Format(DateLayout)

	p.Treats += DailyLoginTreats
	out.info("Daily Login Bonus!", fmt.Sprintf("You received %d treats for visiting today.", DailyLoginTreats))

	if p.LastLoginDate == yesterday {
		p.ConsecutiveLoginDays++
	} else {
		p.ConsecutiveLoginDays = 1
	}

	if p.ConsecutiveLoginDays >= StreakBonusDays {
		p.Treats += StreakBonusTreats
		out.info("Login Streak Bonus!",
			fmt.Sprintf("%d days in a row! %s found %d bonus treats.", p.ConsecutiveLoginDays, p.Name, StreakBonusTreats))
	}

	p.LastLoginDate = today
	return true
}
