package app

import "chessarena/internal/domain"

// randomSquare picks a uniformly random square accepted by free. It probes a fixed number of
// random squares first, then falls back to scanning the whole board.
func (m *Match) randomSquare(free func(domain.Position) bool) (domain.Position, bool) {
	for i := 0; i < m.cfg.LootProbes; i++ {
		p := domain.Position{X: m.rng.Intn(domain.BoardSize), Z: m.rng.Intn(domain.BoardSize)}
		if free(p) {
			return p, true
		}
	}
	var candidates []domain.Position
	for z := 0; z < domain.BoardSize; z++ {
		for x := 0; x < domain.BoardSize; x++ {
			p := domain.Position{X: x, Z: z}
			if free(p) {
				candidates = append(candidates, p)
			}
		}
	}
	if len(candidates) == 0 {
		return domain.Position{}, false
	}
	return candidates[m.rng.Intn(len(candidates))], true
}

func (m *Match) lootAt(p domain.Position) bool {
	for _, item := range m.loot {
		if item.Position == p {
			return true
		}
	}
	return false
}

func (m *Match) neutralAt(p domain.Position) bool {
	for _, n := range m.neutrals {
		if n.Position == p {
			return true
		}
	}
	return false
}

// lootFree accepts squares with no active piece and no loot.
func (m *Match) lootFree(p domain.Position) bool {
	return !domain.IsOccupied(m.registry, p) && !m.lootAt(p)
}

// spawnFree accepts squares with no active piece and no neutral entity.
func (m *Match) spawnFree(p domain.Position) bool {
	return !domain.IsOccupied(m.registry, p) && !m.neutralAt(p)
}

// spawnLoot places one random loot item. Nothing happens when the board is full.
func (m *Match) spawnLoot() (Event, bool) {
	pos, ok := m.randomSquare(m.lootFree)
	if !ok {
		return Event{}, false
	}
	kind := domain.AllLootTypes[m.rng.Intn(len(domain.AllLootTypes))]
	duration := m.cfg.EffectSeconds
	if kind == domain.LootPetalShield {
		duration = m.cfg.ShieldSeconds
	}
	item := &domain.LootItem{
		ID:       lootIDPrefix + m.newID(),
		Type:     kind,
		Position: pos,
		Duration: duration,
	}
	m.loot[item.ID] = item
	m.log.add(m.elapsed, "%s appeared at %s", kind, pos)
	m.dirty = true
	return Event{Kind: EventLootSpawn, Payload: LootSpawnPayload{Item: *item}}, true
}

// Loot returns the loot currently on the board, sorted by id.
func (m *Match) Loot() []domain.LootItem { return m.lootList() }

// collectLoot hands each loot item to the lowest-id active piece standing on it.
func (m *Match) collectLoot() []Event {
	var events []Event
	for _, lid := range sortedKeys(m.loot) {
		item := m.loot[lid]
		holder := domain.PieceAt(m.registry, item.Position)
		if holder == nil {
			continue
		}
		switch item.Type {
		case domain.LootDoubleMove:
			holder.GrantDoubleMove(item.Duration)
		case domain.LootPetalShield:
			holder.GrantShield(item.Duration)
		case domain.LootVineTrap:
			holder.HoldVineTrap()
		}
		delete(m.loot, lid)
		m.log.add(m.elapsed, "%s picked up %s", holder.ID(), item.Type)
		m.dirty = true
		events = append(events, Event{
			Kind:    EventLootCollect,
			Payload: LootCollectPayload{LootID: lid, PieceID: holder.ID(), Type: item.Type},
		})
	}
	return events
}

// Neutrals returns the neutral entities on the board, sorted by id.
func (m *Match) Neutrals() []domain.NeutralEntity { return m.neutralList() }

func (m *Match) spawnNeutral() (*domain.NeutralEntity, bool) {
	pos, ok := m.randomSquare(m.spawnFree)
	if !ok {
		return nil, false
	}
	n := &domain.NeutralEntity{
		ID:         neutralIDPrefix + m.newID(),
		Kind:       domain.VineBeastKind,
		Position:   pos,
		Health:     m.cfg.NeutralHealth,
		NextMoveIn: m.cfg.NeutralMoveIntervalSeconds,
	}
	m.neutrals[n.ID] = n
	m.log.add(m.elapsed, "a vine beast sprouted at %s", pos)
	m.dirty = true
	return n, true
}

var orthogonalSteps = []domain.Position{{X: 1}, {X: -1}, {Z: 1}, {Z: -1}}

// moveNeutrals steps each neutral entity to a random orthogonal neighbour when its move
// timer runs out and damages every active piece on the new square.
func (m *Match) moveNeutrals(dt float64) []Event {
	var events []Event
	for _, nid := range sortedKeys(m.neutrals) {
		n := m.neutrals[nid]
		n.NextMoveIn -= dt
		if n.NextMoveIn > epsilon {
			continue
		}
		n.NextMoveIn += m.cfg.NeutralMoveIntervalSeconds

		var options []domain.Position
		for _, s := range orthogonalSteps {
			p := n.Position.Offset(s.X, s.Z)
			if domain.IsValidPosition(p) {
				options = append(options, p)
			}
		}
		n.Position = options[m.rng.Intn(len(options))]
		m.dirty = true

		for _, victim := range m.registry.PiecesAt(n.Position) {
			res, err := m.registry.ApplyDamage(victim.ID(), m.cfg.NeutralDamage)
			if err != nil || !res.Defeated {
				continue
			}
			events = append(events, m.defeat(victim.ID(), nid, CauseNeutral))
		}
	}
	return events
}
