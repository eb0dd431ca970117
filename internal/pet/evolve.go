package pet

// XP thresholds for reaching each stage.
const (
	JuvenileXP  = 100
	AdultXP     = 300
	WiseElderXP = 600
)

// ThresholdFor returns the XP needed to reach stage s. Hatchling needs 0.
func ThresholdFor(s Stage) int {
	switch s {
	case StageJuvenile:
		return JuvenileXP
	case StageAdult:
		return AdultXP
	case StageWiseElder:
		return WiseElderXP
	default:
		return 0
	}
}

// NextStage returns the stage after s and false when s is terminal.
func NextStage(s Stage) (Stage, bool) {
	switch s {
	case StageHatchling:
		return StageJuvenile, true
	case StageJuvenile:
		return StageAdult, true
	case StageAdult:
		return StageWiseElder, true
	default:
		return s, false
	}
}

// evolve advances p by at most one stage. It reports whether a transition
// happened.
func evolve(p *Profile) bool {
	next, ok := NextStage(p.Stage)
	if !ok || p.XP < ThresholdFor(next) {
		return false
	}
	p.Stage = next
	return true
}

// Progress describes how far the pet is toward its next stage.
type Progress struct {
	Base    int // XP at which the current stage began
	Next    int // XP needed for the next stage; equals XP at the terminal stage
	Percent float64
	Final   bool
}

// StageProgress computes the XP progress toward the next stage.
func StageProgress(p Profile) Progress {
	base := ThresholdFor(p.Stage)
	next, ok := NextStage(p.Stage)
	if !ok {
		return Progress{Base: base, Next: p.XP, Percent: 100, Final: true}
	}
	target := ThresholdFor(next)
	span := target - base
	pct := 0.0
	if span > 0 {
		pct = float64(p.XP-base) / float64(span) * 100
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return Progress{Base: base, Next: target, Percent: pct}
}

// Mood summarizes the pet's condition the way the dashboard shows it.
func Mood(p Profile) string {
	switch {
	case p.Hunger < 30:
		return "hungry"
	case p.Happiness < 30:
		return "sad"
	case p.Energy < 20:
		return "sleepy"
	case p.Happiness > 70 && p.Hunger > 70:
		return "happy"
	default:
		return "content"
	}
}
