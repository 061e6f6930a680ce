package app

import "chessarena/internal/domain"

// EventKind identifies emitted match events for transport dispatch.
type EventKind string

const (
	EventAssignment    EventKind = "assignment"
	EventSnapshot      EventKind = "snapshot"
	EventUpdate        EventKind = "update"
	EventMoveRejected  EventKind = "move_rejected"
	EventGameEvent     EventKind = "game_event"
	EventPlayerRespawn EventKind = "player_respawn"
	EventLootSpawn     EventKind = "loot_spawn"
	EventLootCollect   EventKind = "loot_collect"
	EventDefeat        EventKind = "defeat"
	EventAbilityUsed   EventKind = "ability_used"
)

// Event is a match event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // piece IDs; empty means broadcast
}

// Assignment is the server's choice of piece for a registering player.
type Assignment struct {
	ID       string           `json:"id"`
	Type     domain.PieceType `json:"type"`
	Team     domain.Team      `json:"team"`
	Position domain.Position  `json:"position"`
	HP       int              `json:"hp"`
	// FromPool is false when the team's starting layout was exhausted.
	FromPool bool `json:"fromPool"`
}

// Claim is what a client believes it was assigned. Zero fields are not checked.
type Claim struct {
	Type     domain.PieceType `json:"type,omitempty"`
	Team     domain.Team      `json:"team,omitempty"`
	Position *domain.Position `json:"position,omitempty"`
	HP       int              `json:"hp,omitempty"`
}

// WelcomePayload is sent to a player once registration completes.
type WelcomePayload struct {
	Self PieceView `json:"self"`
	// Corrected lists claim fields the server overrode.
	Corrected []string `json:"corrected,omitempty"`
	Snapshot  Snapshot `json:"snapshot"`
}

// UpdatePayload is the broadcast state after every state-changing step.
type UpdatePayload struct {
	Players  []PieceView            `json:"players"`
	Loot     []domain.LootItem      `json:"loot"`
	Neutrals []domain.NeutralEntity `json:"neutrals"`
	Elapsed  float64                `json:"elapsed"`
}

type MoveRejectedPayload struct {
	ID              string          `json:"id"`
	CorrectPosition domain.Position `json:"correctPosition"`
	Reason          string          `json:"reason"`
}

// GameEventType names scheduled events.
type GameEventType string

const (
	GameEventLootShower    GameEventType = "lootShower"
	GameEventKingsBlessing GameEventType = "kingsBlessing"
	GameEventWildSprout    GameEventType = "wildSprout"
	GameEventSurge         GameEventType = "surge"
)

type GameEventPayload struct {
	Type GameEventType `json:"type"`
	Time float64       `json:"time"`
}

type PlayerRespawnPayload struct {
	ID       string          `json:"id"`
	Position domain.Position `json:"position"`
	HP       int             `json:"hp"`
}

type LootSpawnPayload struct {
	Item domain.LootItem `json:"item"`
}

type LootCollectPayload struct {
	LootID  string          `json:"lootId"`
	PieceID string          `json:"pieceId"`
	Type    domain.LootType `json:"type"`
}

type DefeatPayload struct {
	ID         string `json:"id"`
	AttackerID string `json:"attackerId,omitempty"`
	// Cause is "ability" or "neutral".
	Cause      string  `json:"cause"`
	Respawning bool    `json:"respawning"`
	RespawnIn  float64 `json:"respawnIn,omitempty"`
}

// Hit is one target struck by an ability.
type Hit struct {
	ID       string `json:"id"`
	Health   int    `json:"hp"`
	Absorbed bool   `json:"absorbed,omitempty"`
	Defeated bool   `json:"defeated,omitempty"`
	Neutral  bool   `json:"neutral,omitempty"`
}

type AbilityUsedPayload struct {
	ID             string           `json:"id"`
	Type           domain.PieceType `json:"type"`
	Target         domain.Position  `json:"target"`
	Damage         int              `json:"damage"`
	DeclaredDamage int              `json:"declaredDamage"`
	Cooldown       float64          `json:"cooldown"`
	VineTrap       bool             `json:"vineTrap,omitempty"`
	Hits           []Hit            `json:"hits,omitempty"`
}
