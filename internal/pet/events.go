package pet

import (
	"fmt"
	"strings"
	"time"
)

// Event is a financial occurrence reported by the rest of the application.
type Event string

const (
	EventGoalSet          Event = "goalSet"
	EventGoalAchieved     Event = "goalAchieved"
	EventBudgetSaved      Event = "budgetSaved"
	EventUnplannedExpense Event = "unplannedExpense"
	EventDebtOverdue      Event = "debtOverdue"
)

// Events lists the known events in rule-table order.
var Events = []Event{EventGoalSet, EventGoalAchieved, EventBudgetSaved, EventUnplannedExpense, EventDebtOverdue}

// EventData carries optional details about an event.
type EventData struct {
	DebtID   string  `json:"debtId,omitempty"`
	DebtName string  `json:"debtName,omitempty"`
	Amount   float64 `json:"amount,omitempty"`
	Category string  `json:"category,omitempty"`
}

// Rule is the fixed reaction to one event.
type Rule struct {
	Event     Event
	Treats    int
	XP        int
	Happiness int
	Energy    int
	Severity  Severity
	Title     string
}

// Rules is the reaction table, one rule per event.
var Rules = map[Event]Rule{
	EventGoalSet:          {Event: EventGoalSet, Treats: 5, XP: 10, Severity: SeverityInfo, Title: "New Goal Set!"},
	EventGoalAchieved:     {Event: EventGoalAchieved, Treats: 20, XP: 50, Happiness: 20, Severity: SeverityInfo, Title: "Goal Achieved!"},
	EventBudgetSaved:      {Event: EventBudgetSaved, Treats: 10, XP: 5, Severity: SeverityInfo, Title: "Budget Saved"},
	EventUnplannedExpense: {Event: EventUnplannedExpense, Happiness: -10, Severity: SeverityInfo, Title: "Expense Noted"},
	EventDebtOverdue:      {Event: EventDebtOverdue, Happiness: -15, Energy: -10, Severity: SeverityDestructive, Title: "Debt Overdue"},
}

// ParseEvent matches an event name case-insensitively.
func ParseEvent(s string) (Event, bool) {
	for _, ev := range Events {
		if strings.EqualFold(string(ev), strings.TrimSpace(s)) {
			return ev, true
		}
	}
	return "", false
}

// applyEvent applies the rule for ev to p. It reports false for unknown
// events and for an overdue penalty already charged today for the same debt.
func applyEvent(p *Profile, ev Event, data EventData, now time.Time, out *outbox) bool {
	r, ok := Rules[ev]
	if !ok {
		return false
	}

	today := now.Format(DateLayout)
	if ev == EventDebtOverdue {
		pruneOverdue(p, today)
		if data.DebtID != "" {
			if p.ProcessedOverdueDebtsToday[data.DebtID] == today {
				return false
			}
			p.ProcessedOverdueDebtsToday[data.DebtID] = today
		}
	}

	p.Treats += r.Treats
	p.XP += r.XP
	p.addStat(StatHappiness, r.Happiness)
	p.addStat(StatEnergy, r.Energy)
	p.LastInteraction = now

	switch ev {
	case EventGoalSet:
		p.GoalsSet++
	case EventGoalAchieved:
		p.GoalsCompleted++
	}

	desc := describeEvent(*p, r, data)
	if r.Severity == SeverityDestructive {
		out.destructive(r.Title, desc)
	} else {
		out.info(r.Title, desc)
	}
	return true
}

func describeEvent(p Profile, r Rule, data EventData) string {
	switch r.Event {
	case EventGoalSet:
		return fmt.Sprintf("%s is cheering you on! +%d treats, +%d XP.", p.Name, r.Treats, r.XP)
	case EventGoalAchieved:
		return fmt.Sprintf("You did it! %s is overjoyed. +%d treats, +%d XP.", p.Name, r.Treats, r.XP)
	case EventBudgetSaved:
		if data.Amount > 0 {
			return fmt.Sprintf("You saved %.2f%s. %s likes a good plan. +%d treats, +%d XP.",
				data.Amount, categorySuffix(data, "on"), p.Name, r.Treats, r.XP)
		}
		return fmt.Sprintf("%s likes a good plan. +%d treats, +%d XP.", p.Name, r.Treats, r.XP)
	case EventUnplannedExpense:
		what := "an unplanned expense"
		if data.Amount > 0 {
			what = fmt.Sprintf("an unplanned expense of %.2f", data.Amount)
		}
		return fmt.Sprintf("%s noticed %s%s. Keep an eye on the budget.", p.Name, what, categorySuffix(data, "for"))
	case EventDebtOverdue:
		if data.DebtName != "" {
			return fmt.Sprintf("Your debt %q is overdue. %s is worried.", data.DebtName, p.Name)
		}
		return fmt.Sprintf("A debt is overdue. %s is worried.", p.Name)
	default:
		return ""
	}
}

// categorySuffix returns " <prep> <category>" or "" when no category is set.
func categorySuffix(data EventData, prep string) string {
	c := strings.TrimSpace(data.Category)
	if c == "" {
		return ""
	}
	return " " + prep + " " + c
}

// pruneOverdue drops overdue markers from previous days.
func pruneOverdue(p *Profile, today string) {
	if p.ProcessedOverdueDebtsToday == nil {
		p.ProcessedOverdueDebtsToday = map[string]string{}
		return
	}
	for id, day := range p.ProcessedOverdueDebtsToday {
		if day != today {
			delete(p.ProcessedOverdueDebtsToday, id)
		}
	}
}
