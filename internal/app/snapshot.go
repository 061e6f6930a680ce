package app

import (
	"sort"

	"chessarena/internal/config"
	"chessarena/internal/domain"
)

// PieceView is the wire view of a piece.
type PieceView struct {
	ID       string               `json:"id"`
	Type     domain.PieceType     `json:"type"`
	Team     domain.Team          `json:"team"`
	Position domain.Position      `json:"position"`
	HP       int                  `json:"hp"`
	MaxHP    int                  `json:"maxHp"`
	Cooldown float64              `json:"cooldown"`
	Effects  domain.StatusEffects `json:"effects"`
	State    domain.LifeState     `json:"state"`
}

// Settings is the subset of configuration clients need to render the match.
type Settings struct {
	FriendlyFire   bool                                `json:"friendlyFire"`
	RespawnEnabled bool                                `json:"respawnEnabled"`
	RespawnDelay   float64                             `json:"respawnDelay"`
	MaxPlayers     int                                 `json:"maxPlayers"`
	EventInterval  float64                             `json:"eventInterval"`
	LootInterval   float64                             `json:"lootInterval"`
	LateGameAt     float64                             `json:"lateGameAt"`
	Health         map[domain.PieceType]int            `json:"health"`
	Abilities      map[domain.PieceType]config.Ability `json:"abilities"`
}

// Snapshot is the full match state sent to a joining player.
type Snapshot struct {
	Pieces        []PieceView            `json:"pieces"`
	Loot          []domain.LootItem      `json:"loot"`
	Neutrals      []domain.NeutralEntity `json:"neutrals"`
	Log           []LogEntry             `json:"log"`
	Settings      Settings               `json:"settings"`
	Elapsed       float64                `json:"elapsed"`
	LateGame      bool                   `json:"lateGame"`
	CooldownScale float64                `json:"cooldownScale"`
}

func (m *Match) viewOf(p *domain.Piece) PieceView {
	return PieceView{
		ID:       p.ID(),
		Type:     p.Type(),
		Team:     p.Team(),
		Position: p.Position(),
		HP:       p.Health(),
		MaxHP:    m.registry.BaseHealth(p.Type()),
		Cooldown: p.Cooldown(),
		Effects:  p.Effects(),
		State:    p.State(),
	}
}

// Pieces returns a view of every registered piece sorted by id.
func (m *Match) Pieces() []PieceView {
	pieces := m.registry.Pieces()
	out := make([]PieceView, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, m.viewOf(p))
	}
	return out
}

// Piece returns the view of one piece.
func (m *Match) Piece(id string) (PieceView, bool) {
	p, ok := m.registry.Get(id)
	if !ok {
		return PieceView{}, false
	}
	return m.viewOf(p), true
}

func (m *Match) lootList() []domain.LootItem {
	out := make([]domain.LootItem, 0, len(m.loot))
	for _, item := range m.loot {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Match) neutralList() []domain.NeutralEntity {
	out := make([]domain.NeutralEntity, 0, len(m.neutrals))
	for _, n := range m.neutrals {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Match) settings() Settings {
	health := make(map[domain.PieceType]int, len(domain.AllPieceTypes))
	abilities := make(map[domain.PieceType]config.Ability, len(domain.AllPieceTypes))
	for _, t := range domain.AllPieceTypes {
		health[t] = m.registry.BaseHealth(t)
		abilities[t] = m.cfg.AbilityOf(t)
	}
	return Settings{
		FriendlyFire:   m.cfg.FriendlyFire,
		RespawnEnabled: m.cfg.RespawnEnabled,
		RespawnDelay:   m.cfg.RespawnDelaySeconds,
		MaxPlayers:     m.cfg.MaxPlayers,
		EventInterval:  m.cfg.EventIntervalSeconds,
		LootInterval:   m.cfg.LootIntervalSeconds,
		LateGameAt:     m.cfg.LateGameSeconds,
		Health:         health,
		Abilities:      abilities,
	}
}

// Snapshot returns the full match state.
func (m *Match) Snapshot() Snapshot {
	return Snapshot{
		Pieces:        m.Pieces(),
		Loot:          m.lootList(),
		Neutrals:      m.neutralList(),
		Log:           m.log.Tail(),
		Settings:      m.settings(),
		Elapsed:       m.elapsed,
		LateGame:      m.late,
		CooldownScale: m.cooldownScale,
	}
}

func (m *Match) updateEvent() Event {
	m.dirty = false
	return Event{
		Kind: EventUpdate,
		Payload: UpdatePayload{
			Players:  m.Pieces(),
			Loot:     m.lootList(),
			Neutrals: m.neutralList(),
			Elapsed:  m.elapsed,
		},
	}
}

// Flush returns a pending update, if any state changed since the last one.
func (m *Match) Flush() []Event {
	if !m.dirty {
		return nil
	}
	return []Event{m.updateEvent()}
}
