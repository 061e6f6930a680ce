package app

import (
	"fmt"

	"chessarena/internal/domain"
)

// UseAbility resolves an ability intent. Damage comes from the ability table; the client's
// declared damage is only echoed back. Kings start a heal aura instead of dealing damage.
func (m *Match) UseAbility(id string, target domain.Position, declaredDamage int) ([]Event, error) {
	p, ok := m.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("ability %s: %w", id, domain.ErrPieceNotFound)
	}
	if !p.Active() {
		return nil, fmt.Errorf("ability %s: %w", id, domain.ErrNotActive)
	}
	if p.Cooldown() > 0 {
		return nil, fmt.Errorf("ability %s (%.1fs left): %w", id, p.Cooldown(), ErrOnCooldown)
	}
	if !domain.IsValidPosition(target) {
		return nil, fmt.Errorf("ability %s at %s: %w", id, target, domain.ErrInvalidPosition)
	}

	ability := m.cfg.AbilityOf(p.Type())
	p.SetCooldown(ability.CooldownSeconds * m.cooldownScale)
	used := AbilityUsedPayload{
		ID:             id,
		Type:           p.Type(),
		Target:         target,
		Damage:         ability.Damage,
		DeclaredDamage: declaredDamage,
		Cooldown:       p.Cooldown(),
	}

	if p.Type() == domain.King {
		m.auras[id] = &healAura{team: p.Team(), remaining: m.cfg.HealAuraSeconds}
		m.log.add(m.elapsed, "%s raised a healing aura", id)
		return []Event{{Kind: EventAbilityUsed, Payload: used}, m.updateEvent()}, nil
	}

	var trapped bool
	if ability.Damage > 0 {
		trapped = p.ConsumeVineTrap()
	}
	used.VineTrap = trapped

	var defeats []Event
	for _, victim := range m.registry.PiecesAt(target) {
		// The attacker never hits itself, friendly fire or not.
		if victim.ID() == id {
			continue
		}
		if victim.Team() == p.Team() && !m.cfg.FriendlyFire {
			continue
		}
		res, err := m.registry.ApplyDamage(victim.ID(), ability.Damage)
		if err != nil || res.Ignored {
			continue
		}
		used.Hits = append(used.Hits, Hit{
			ID:       victim.ID(),
			Health:   res.Health,
			Absorbed: res.Absorbed,
			Defeated: res.Defeated,
		})
		if res.Defeated {
			defeats = append(defeats, m.defeat(victim.ID(), id, CauseAbility))
			continue
		}
		if trapped && !res.Absorbed {
			victim.Immobilize(m.cfg.EffectSeconds)
		}
	}

	for _, nid := range sortedKeys(m.neutrals) {
		n := m.neutrals[nid]
		if n.Position != target || ability.Damage <= 0 {
			continue
		}
		n.Health -= ability.Damage
		if n.Health < 0 {
			n.Health = 0
		}
		used.Hits = append(used.Hits, Hit{ID: nid, Health: n.Health, Defeated: n.Health == 0, Neutral: true})
		if n.Health == 0 {
			delete(m.neutrals, nid)
			m.log.add(m.elapsed, "%s felled a vine beast", id)
		}
	}

	m.log.add(m.elapsed, "%s used %s ability on %s (%d hit)", id, p.Type(), target, len(used.Hits))
	events := []Event{{Kind: EventAbilityUsed, Payload: used}}
	events = append(events, defeats...)
	return append(events, m.updateEvent()), nil
}

// defeat runs the defeat flow for a piece that just dropped to zero health: schedule a
// respawn when enabled, otherwise turn it into a spectator.
func (m *Match) defeat(victimID, attackerID, cause string) Event {
	delete(m.auras, victimID)
	payload := DefeatPayload{ID: victimID, AttackerID: attackerID, Cause: cause}

	if m.cfg.RespawnEnabled {
		if err := m.registry.MarkRespawning(victimID); err == nil {
			m.respawns[victimID] = respawnTimer{due: m.elapsed + m.cfg.RespawnDelaySeconds}
			payload.Respawning = true
			payload.RespawnIn = m.cfg.RespawnDelaySeconds
		}
	} else {
		_ = m.registry.MarkSpectator(victimID)
	}

	m.log.add(m.elapsed, "%s was defeated by %s", victimID, attackerID)
	m.dirty = true
	return Event{Kind: EventDefeat, Payload: payload}
}

// applyAuras heals every active ally of each aura's king once per whole second.
func (m *Match) applyAuras(dt float64) {
	for _, kingID := range sortedKeys(m.auras) {
		aura := m.auras[kingID]
		king, ok := m.registry.Get(kingID)
		if !ok || !king.Active() {
			delete(m.auras, kingID)
			continue
		}

		step := dt
		if step > aura.remaining {
			step = aura.remaining
		}
		aura.remaining -= step
		aura.carry += step
		for aura.carry >= 1-epsilon {
			aura.carry--
			m.healTeam(aura.team)
		}
		if aura.remaining <= epsilon {
			delete(m.auras, kingID)
		}
	}
}

func (m *Match) healTeam(team domain.Team) {
	for _, p := range m.registry.Pieces() {
		if p.Team() != team || !p.Active() {
			continue
		}
		before := p.Health()
		hp, _ := m.registry.Heal(p.ID(), m.cfg.HealPerSecond, m.registry.BaseHealth(p.Type()))
		if hp != before {
			m.dirty = true
		}
	}
}
