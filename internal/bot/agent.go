package bot

import (
	"chessarena/internal/app"
	"chessarena/internal/domain"
)

// Agent represents an autonomous bot player.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// Observe builds the agent's view of the match. It reports false when the agent's piece
// is not on the board.
func (a *Agent) Observe(p Planner) (View, bool) {
	snap := p.Snapshot()
	v := View{FriendlyFire: snap.Settings.FriendlyFire}
	found := false
	for _, pc := range snap.Pieces {
		if pc.ID == a.ID {
			v.Self = pc
			found = true
			continue
		}
		if pc.State == domain.StateActive {
			v.Others = append(v.Others, pc)
		}
	}
	if !found || v.Self.State != domain.StateActive {
		return View{}, false
	}
	v.Destinations = p.LegalDestinations(a.ID)
	v.Loot = snap.Loot
	v.AbilityDamage = snap.Settings.Abilities[v.Self.Type].Damage
	return v, true
}

// Play asks the agent to decide its next intent.
func (a *Agent) Play(p Planner) Intent {
	v, ok := a.Observe(p)
	if !ok {
		return Intent{Kind: IntentIdle}
	}
	return a.Strategy.Decide(v)
}

// Act decides and applies one intent, returning the match events it produced.
func (a *Agent) Act(m Actor) ([]app.Event, error) {
	in := a.Play(m)
	switch in.Kind {
	case IntentMove:
		return m.Move(a.ID, in.Target)
	case IntentAbility:
		return m.UseAbility(a.ID, in.Target, in.Damage)
	default:
		return nil, nil
	}
}
