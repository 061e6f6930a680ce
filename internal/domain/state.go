package domain

import "fmt"

// BoardSize is the number of squares along each edge of the arena board.
const BoardSize = 8

// Position is a board square. X is the file and Z the row; white advances toward Z=0.
type Position struct {
	X int `json:"x"`
	Z int `json:"z"`
}

// Offset returns the position shifted by (dx, dz). The result may be off-board.
func (p Position) Offset(dx, dz int) Position {
	return Position{X: p.X + dx, Z: p.Z + dz}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Z)
}

// IsValidPosition reports whether p lies on the board.
func IsValidPosition(p Position) bool {
	return p.X >= 0 && p.X < BoardSize && p.Z >= 0 && p.Z < BoardSize
}

// PieceType is the chess kind a player controls.
type PieceType string

const (
	Pawn   PieceType = "pawn"
	Rook   PieceType = "rook"
	Knight PieceType = "knight"
	Bishop PieceType = "bishop"
	Queen  PieceType = "queen"
	King   PieceType = "king"
)

// AllPieceTypes lists every piece type in layout order.
var AllPieceTypes = []PieceType{Pawn, Rook, Knight, Bishop, Queen, King}

// ParsePieceType converts a wire string to a PieceType.
func ParsePieceType(s string) (PieceType, bool) {
	for _, t := range AllPieceTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Team is the side a piece fights for.
type Team string

const (
	White Team = "white"
	Black Team = "black"
)

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == White {
		return Black
	}
	return White
}

// ParseTeam converts a wire string to a Team.
func ParseTeam(s string) (Team, bool) {
	switch Team(s) {
	case White, Black:
		return Team(s), true
	default:
		return "", false
	}
}

// HealthTable maps each piece type to its base health.
type HealthTable map[PieceType]int

// DefaultHealth is the stock base health per piece type.
var DefaultHealth = HealthTable{
	Pawn:   5,
	Rook:   7,
	Knight: 7,
	Bishop: 7,
	Queen:  10,
	King:   15,
}

// Of returns the base health for t, falling back to DefaultHealth.
func (h HealthTable) Of(t PieceType) int {
	if hp, ok := h[t]; ok && hp > 0 {
		return hp
	}
	return DefaultHealth[t]
}
