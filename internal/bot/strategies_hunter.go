package bot

import "chessarena/internal/app"

// Hunter strikes the weakest opponent when its ability is ready and otherwise moves to the
// best-scoring destination under its tuning.
type Hunter struct {
	Tuning Tuning
}

func (h *Hunter) Name() string { return "hunter" }

func (h *Hunter) Decide(v View) Intent {
	if in, ok := abilityIntent(v, weakest); ok {
		return in
	}
	if len(v.Destinations) == 0 {
		return Intent{Kind: IntentIdle}
	}

	rules := h.Tuning.rules()
	best := v.Destinations[0]
	bestScore := scoreDestination(rules, v, best)
	for _, dest := range v.Destinations[1:] {
		if s := scoreDestination(rules, v, dest); s > bestScore {
			best, bestScore = dest, s
		}
	}
	return Intent{Kind: IntentMove, Target: best}
}

// weakest returns the opponent with the least health, ties broken by id.
func weakest(targets []app.PieceView) app.PieceView {
	best := targets[0]
	for _, pc := range targets[1:] {
		if pc.HP < best.HP {
			best = pc
		}
	}
	return best
}
