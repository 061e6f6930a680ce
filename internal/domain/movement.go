package domain

import "sort"

// moveRule yields the raw destinations for a piece standing on from.
type moveRule func(b Occupancy, from Position, team Team) []Position

type offset struct{ dx, dz int }

var (
	orthogonal = []offset{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagonal   = []offset{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	allAround  = append(append([]offset{}, orthogonal...), diagonal...)
	knightJump = []offset{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
)

var moveRules = map[PieceType]moveRule{
	Pawn:   pawnMoves,
	Rook:   rays(orthogonal),
	Bishop: rays(diagonal),
	Queen:  rays(allAround),
	Knight: steps(knightJump),
	King:   steps(allAround),
}

// PawnDirection is the row delta of a forward pawn step for team.
func PawnDirection(team Team) int {
	if team == White {
		return -1
	}
	return 1
}

// PawnHomeRow is the row from which a pawn of team may advance two squares.
func PawnHomeRow(team Team) int {
	if team == White {
		return BoardSize - 2
	}
	return 1
}

func pawnMoves(b Occupancy, from Position, team Team) []Position {
	dir := PawnDirection(team)
	var out []Position

	one := from.Offset(0, dir)
	if IsValidPosition(one) && !IsOccupied(b, one) {
		out = append(out, one)
		two := from.Offset(0, 2*dir)
		if from.Z == PawnHomeRow(team) && IsValidPosition(two) && !IsOccupied(b, two) {
			out = append(out, two)
		}
	}

	for _, dx := range []int{-1, 1} {
		diag := from.Offset(dx, dir)
		if IsValidPosition(diag) && capturable(b, diag, team) {
			out = append(out, diag)
		}
	}
	return out
}

// rays casts each direction until the edge or the first occupied square, which is kept
// only when it can be captured.
func rays(dirs []offset) moveRule {
	return func(b Occupancy, from Position, team Team) []Position {
		var out []Position
		for _, d := range dirs {
			for p := from.Offset(d.dx, d.dz); IsValidPosition(p); p = p.Offset(d.dx, d.dz) {
				if !IsOccupied(b, p) {
					out = append(out, p)
					continue
				}
				if capturable(b, p, team) {
					out = append(out, p)
				}
				break
			}
		}
		return out
	}
}

func steps(offsets []offset) moveRule {
	return func(b Occupancy, from Position, team Team) []Position {
		var out []Position
		for _, d := range offsets {
			p := from.Offset(d.dx, d.dz)
			if !IsValidPosition(p) {
				continue
			}
			if !IsOccupied(b, p) || capturable(b, p, team) {
				out = append(out, p)
			}
		}
		return out
	}
}

func singleStep(b Occupancy, kind PieceType, from Position, team Team) []Position {
	rule, ok := moveRules[kind]
	if !ok {
		return nil
	}
	return rule(b, from, team)
}

// LegalDestinations returns the squares piece may move to, sorted by (z, x).
// A pending double move adds every square reachable by a second hop from a first one.
func LegalDestinations(b Occupancy, piece *Piece) []Position {
	if piece == nil {
		return nil
	}
	first := singleStep(b, piece.Type(), piece.Position(), piece.Team())
	set := make(map[Position]struct{}, len(first))
	for _, p := range first {
		set[p] = struct{}{}
	}

	if piece.Effects().DoubleMove > 0 {
		for _, mid := range first {
			// Stop after a capture; the hop ends on the captured square.
			if IsOpponentAt(b, mid, piece.Team()) {
				continue
			}
			view := shiftedView{base: b, piece: piece, at: mid}
			for _, p := range singleStep(view, piece.Type(), mid, piece.Team()) {
				if p != piece.Position() {
					set[p] = struct{}{}
				}
			}
		}
	}

	out := make([]Position, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sortPositions(out)
	return out
}

// IsLegalMove reports whether dest is among the legal destinations of piece.
func IsLegalMove(b Occupancy, piece *Piece, dest Position) bool {
	if piece == nil || !IsValidPosition(dest) {
		return false
	}
	for _, p := range LegalDestinations(b, piece) {
		if p == dest {
			return true
		}
	}
	return false
}

func sortPositions(ps []Position) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].Z != ps[j].Z {
			return ps[i].Z < ps[j].Z
		}
		return ps[i].X < ps[j].X
	})
}
