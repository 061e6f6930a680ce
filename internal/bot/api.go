package bot

import (
	"chessarena/internal/app"
	"chessarena/internal/domain"
)

// IntentKind is what a bot decided to do this turn.
type IntentKind int

const (
	IntentIdle IntentKind = iota
	IntentMove
	IntentAbility
)

// Intent represents the decision made by the AI.
type Intent struct {
	Kind   IntentKind
	Target domain.Position
	Damage int
}

// View is what a brain sees when deciding: its own piece, where it may go, and the rest
// of the board.
type View struct {
	Self          app.PieceView
	Destinations  []domain.Position
	Others        []app.PieceView // active pieces except Self
	Loot          []domain.LootItem
	AbilityDamage int
	FriendlyFire  bool
}

// Brain is the interface that all bot strategies must implement.
type Brain interface {
	Name() string
	Decide(v View) Intent
}

// Planner exposes the read side of a match to bots.
type Planner interface {
	LegalDestinations(id string) []domain.Position
	Snapshot() app.Snapshot
}

// Actor is a match a bot can act on.
type Actor interface {
	Planner
	Move(id string, dest domain.Position) ([]app.Event, error)
	UseAbility(id string, target domain.Position, damage int) ([]app.Event, error)
}
