package bot

import "chessarena/internal/domain"

// ScoringRule rates one candidate destination. Higher is better.
type ScoringRule interface {
	Name() string
	Score(v View, dest domain.Position) float64
}

// LootRule rewards stepping onto loot.
type LootRule struct{}

func (r *LootRule) Name() string { return "Loot" }

func (r *LootRule) Score(v View, dest domain.Position) float64 {
	for _, item := range v.Loot {
		if item.Position == dest {
			return 1
		}
	}
	return 0
}

// ApproachRule rewards closing the distance to the nearest opponent.
type ApproachRule struct{}

func (r *ApproachRule) Name() string { return "Approach" }

func (r *ApproachRule) Score(v View, dest domain.Position) float64 {
	targets := opponents(v)
	if len(targets) == 0 {
		return 0
	}
	nearest := domain.BoardSize
	for _, pc := range targets {
		if d := distance(dest, pc.Position); d < nearest {
			nearest = d
		}
	}
	return -float64(nearest)
}

// SafetyRule penalizes squares a wounded piece shares with opponents.
type SafetyRule struct{}

func (r *SafetyRule) Name() string { return "Safety" }

func (r *SafetyRule) Score(v View, dest domain.Position) float64 {
	if v.Self.MaxHP == 0 || v.Self.HP*2 > v.Self.MaxHP {
		return 0
	}
	penalty := 0.0
	for _, pc := range opponents(v) {
		if distance(dest, pc.Position) <= 1 {
			penalty--
		}
	}
	return penalty
}

// weightedRule pairs a rule with its tuning weight.
type weightedRule struct {
	rule   ScoringRule
	weight float64
}

func scoreDestination(rules []weightedRule, v View, dest domain.Position) float64 {
	total := 0.0
	for _, wr := range rules {
		total += wr.weight * wr.rule.Score(v, dest)
	}
	return total
}
