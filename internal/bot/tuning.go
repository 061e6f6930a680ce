package bot

// Tuning holds the weights the hunter applies to its scoring rules.
type Tuning struct {
	LootWeight     float64
	ApproachWeight float64
	SafetyWeight   float64
}

// DefaultTuning prefers loot within reach, then closing in on opponents.
var DefaultTuning = Tuning{
	LootWeight:     3.0,
	ApproachWeight: 1.0,
	SafetyWeight:   2.0,
}

func (t Tuning) rules() []weightedRule {
	return []weightedRule{
		{rule: &LootRule{}, weight: t.LootWeight},
		{rule: &ApproachRule{}, weight: t.ApproachWeight},
		{rule: &SafetyRule{}, weight: t.SafetyWeight},
	}
}
