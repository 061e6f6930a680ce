package domain

// LootType names a collectible effect.
type LootType string

const (
	LootDoubleMove  LootType = "doubleMove"
	LootPetalShield LootType = "petalShield"
	LootVineTrap    LootType = "vineTrap"
)

// AllLootTypes lists loot types in spawn-table order.
var AllLootTypes = []LootType{LootDoubleMove, LootPetalShield, LootVineTrap}

// LootItem is a tile-bound collectible.
type LootItem struct {
	ID       string   `json:"id"`
	Type     LootType `json:"type"`
	Position Position `json:"position"`
	Duration float64  `json:"duration"`
}

// NeutralEntity is a team-less hazard that wanders the board.
type NeutralEntity struct {
	ID       string   `json:"id"`
	Kind     string   `json:"kind"`
	Position Position `json:"position"`
	Health   int      `json:"health"`
	// NextMoveIn counts down to the entity's next step.
	NextMoveIn float64 `json:"-"`
}

// VineBeastKind is the Kind of neutral entities spawned by the wild sprout event.
const VineBeastKind = "vineBeast"
