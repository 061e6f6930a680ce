package app

import (
	"chessarena/internal/domain"
)

// Tick advances the match clock by dt seconds and runs every timed system in a fixed order:
// piece timers, heal auras, due respawns, neutral entities, loot pickup, the loot scheduler
// and the event scheduler. An update is appended when anything visible changed.
func (m *Match) Tick(dt float64) []Event {
	if dt <= 0 {
		return nil
	}
	m.elapsed += dt
	var events []Event

	m.advancePieces(dt)
	m.applyAuras(dt)
	events = append(events, m.fireRespawns()...)
	events = append(events, m.moveNeutrals(dt)...)
	events = append(events, m.collectLoot()...)

	if m.elapsed >= m.nextLootAt-epsilon {
		m.nextLootAt = nextDeadline(m.nextLootAt, m.cfg.LootIntervalSeconds, m.elapsed)
		if ev, ok := m.spawnLoot(); ok {
			events = append(events, ev)
		}
	}

	surged := false
	if !m.late && m.elapsed > m.cfg.LateGameSeconds {
		m.late = true
		surged = true
		events = append(events, m.surge())
	}
	if m.elapsed >= m.nextEventAt-epsilon {
		m.nextEventAt = nextDeadline(m.nextEventAt, m.cfg.EventIntervalSeconds, m.elapsed)
		switch {
		case m.late && !surged:
			events = append(events, m.surge())
		case !m.late:
			events = append(events, m.randomEvent()...)
		}
	}

	if m.dirty {
		events = append(events, m.updateEvent())
	}
	return events
}

func nextDeadline(prev, interval, now float64) float64 {
	next := prev + interval
	if next <= now {
		next = now + interval
	}
	return next
}

func (m *Match) advancePieces(dt float64) {
	for _, p := range m.registry.Pieces() {
		if !p.Active() {
			continue
		}
		before := p.Effects()
		hadCooldown := p.Cooldown() > 0
		p.Advance(dt)
		if expired(before, p.Effects()) || (hadCooldown && p.Cooldown() == 0) {
			m.dirty = true
		}
	}
}

// expired reports whether any timed effect ran out between before and after.
func expired(before, after domain.StatusEffects) bool {
	return (before.Shield > 0 && after.Shield == 0) ||
		(before.DoubleMove > 0 && after.DoubleMove == 0) ||
		(before.Immobilized > 0 && after.Immobilized == 0)
}

// fireRespawns revives pieces whose delay elapsed. A timer whose piece disappeared or is no
// longer respawning is dropped; one that finds no free square waits for the next tick.
func (m *Match) fireRespawns() []Event {
	var events []Event
	for _, id := range sortedKeys(m.respawns) {
		timer := m.respawns[id]
		if m.elapsed < timer.due-epsilon {
			continue
		}
		p, ok := m.registry.Get(id)
		if !ok || p.State() != domain.StateRespawning {
			delete(m.respawns, id)
			continue
		}
		pos, ok := m.randomSquare(m.spawnFree)
		if !ok {
			continue
		}
		if _, err := m.registry.Revive(id, pos); err != nil {
			delete(m.respawns, id)
			continue
		}
		delete(m.respawns, id)
		m.log.add(m.elapsed, "%s respawned at %s", id, pos)
		m.dirty = true
		events = append(events, Event{
			Kind:    EventPlayerRespawn,
			Payload: PlayerRespawnPayload{ID: id, Position: pos, HP: p.Health()},
		})
	}
	return events
}

// PendingRespawn reports whether a respawn timer is outstanding for id.
func (m *Match) PendingRespawn(id string) bool {
	_, ok := m.respawns[id]
	return ok
}

func (m *Match) randomEvent() []Event {
	kinds := []GameEventType{GameEventLootShower, GameEventKingsBlessing, GameEventWildSprout}
	kind := kinds[m.rng.Intn(len(kinds))]
	return m.TriggerEvent(kind)
}

// TriggerEvent applies a scheduled event immediately.
func (m *Match) TriggerEvent(kind GameEventType) []Event {
	events := []Event{{Kind: EventGameEvent, Payload: GameEventPayload{Type: kind, Time: m.elapsed}}}
	switch kind {
	case GameEventLootShower:
		for i := 0; i < m.cfg.ExtraLootCount; i++ {
			if ev, ok := m.spawnLoot(); ok {
				events = append(events, ev)
			}
		}
	case GameEventKingsBlessing:
		for _, p := range m.registry.Pieces() {
			if p.Type() != domain.King || !p.Active() {
				continue
			}
			before := p.Health()
			if hp, _ := m.registry.Heal(p.ID(), m.cfg.KingEventBonus, m.cfg.KingHealthCap); hp != before {
				m.dirty = true
			}
		}
	case GameEventWildSprout:
		m.spawnNeutral()
	case GameEventSurge:
		return []Event{m.surge()}
	}
	m.log.add(m.elapsed, "event: %s", kind)
	return events
}

// surge scales the cooldown multiplier and every running cooldown by the surge factor.
// It is re-applied on each event interval once the late game begins.
func (m *Match) surge() Event {
	m.cooldownScale *= m.cfg.SurgeFactor
	for _, p := range m.registry.Pieces() {
		p.ScaleCooldown(m.cfg.SurgeFactor)
	}
	m.log.add(m.elapsed, "surge: cooldowns x%.3g", m.cooldownScale)
	m.dirty = true
	return Event{Kind: EventGameEvent, Payload: GameEventPayload{Type: GameEventSurge, Time: m.elapsed}}
}
