package bot

import (
	"math/rand"
	"sort"

	"chessarena/internal/app"
	"chessarena/internal/domain"
)

// Wanderer moves to a random legal square and fires its ability at a random opponent
// whenever it is ready.
type Wanderer struct {
	rng *rand.Rand
}

func (w *Wanderer) Name() string { return "wanderer" }

func (w *Wanderer) Decide(v View) Intent {
	if in, ok := abilityIntent(v, func(targets []app.PieceView) app.PieceView {
		return targets[w.rng.Intn(len(targets))]
	}); ok {
		return in
	}
	if len(v.Destinations) == 0 {
		return Intent{Kind: IntentIdle}
	}
	return Intent{Kind: IntentMove, Target: v.Destinations[w.rng.Intn(len(v.Destinations))]}
}

// abilityIntent returns an ability use when the piece is ready. Kings heal when an ally is
// hurt; everyone else strikes the target chosen by pick.
func abilityIntent(v View, pick func([]app.PieceView) app.PieceView) (Intent, bool) {
	if v.Self.Cooldown > 0 {
		return Intent{}, false
	}
	if v.Self.Type == domain.King {
		if v.Self.HP < v.Self.MaxHP {
			return Intent{Kind: IntentAbility, Target: v.Self.Position}, true
		}
		for _, pc := range allies(v) {
			if pc.HP < pc.MaxHP {
				return Intent{Kind: IntentAbility, Target: v.Self.Position}, true
			}
		}
		return Intent{}, false
	}
	if v.AbilityDamage <= 0 {
		return Intent{}, false
	}
	targets := opponents(v)
	if len(targets) == 0 {
		return Intent{}, false
	}
	target := pick(targets)
	return Intent{Kind: IntentAbility, Target: target.Position, Damage: v.AbilityDamage}, true
}

func opponents(v View) []app.PieceView {
	var out []app.PieceView
	for _, pc := range v.Others {
		if pc.Team != v.Self.Team {
			out = append(out, pc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func allies(v View) []app.PieceView {
	var out []app.PieceView
	for _, pc := range v.Others {
		if pc.Team == v.Self.Team {
			out = append(out, pc)
		}
	}
	return out
}

func distance(a, b domain.Position) int {
	dx, dz := a.X-b.X, a.Z-b.Z
	if dx < 0 {
		dx = -dx
	}
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}
