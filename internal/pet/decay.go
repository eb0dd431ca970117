package pet

import "time"

const (
	// DecayIdle is how long the pet must be left alone before decay starts.
	DecayIdle = 30 * time.Minute
	// DecayInterval is the time between decay steps once idle.
	DecayInterval = 15 * time.Minute

	DecayHunger = 2
	DecayEnergy = 1
)

// decayStepsAt returns how many decay steps are due at time at for a pet
// last touched at lastInteraction. The first step is due as soon as the idle
// period has passed and another every DecayInterval after that.
func decayStepsAt(lastInteraction, at time.Time) int {
	elapsed := at.Sub(lastInteraction)
	if elapsed <= DecayIdle {
		return 0
	}
	over := elapsed - DecayIdle
	steps := int(over / DecayInterval)
	if over%DecayInterval != 0 {
		steps++
	}
	return steps
}

// ApplyDecay returns p with the decay owed at now applied and the number of
// steps that were applied. Decay is derived from elapsed time rather than
// from how often it is called: steps already charged at p.LastDecay are not
// charged again, and a late call catches up on every missed step.
// LastInteraction is left untouched so decay keeps accruing while idle.
func ApplyDecay(p Profile, now time.Time) (Profile, int) {
	due := decayStepsAt(p.LastInteraction, now)
	if p.LastDecay.After(p.LastInteraction) {
		due -= decayStepsAt(p.LastInteraction, p.LastDecay)
	}
	if due <= 0 {
		return p, 0
	}
	p.Hunger = clampStat(p.Hunger - due*DecayHunger)
	p.Energy = clampStat(p.Energy - due*DecayEnergy)
	p.LastDecay = now
	return p, due
}
