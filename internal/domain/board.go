package domain

// Occupancy exposes the active pieces standing on each square.
// Several pieces may share a square; implementations return them sorted by id.
type Occupancy interface {
	PiecesAt(p Position) []*Piece
}

// IsOccupied reports whether any active piece stands on p.
func IsOccupied(b Occupancy, p Position) bool {
	return len(b.PiecesAt(p)) > 0
}

// PieceAt returns the first piece on p (lowest id), or nil.
func PieceAt(b Occupancy, p Position) *Piece {
	pieces := b.PiecesAt(p)
	if len(pieces) == 0 {
		return nil
	}
	return pieces[0]
}

// IsOpponentAt reports whether a piece of the other team stands on p.
func IsOpponentAt(b Occupancy, p Position, team Team) bool {
	for _, pc := range b.PiecesAt(p) {
		if pc.Team() != team {
			return true
		}
	}
	return false
}

func isTeammateAt(b Occupancy, p Position, team Team) bool {
	for _, pc := range b.PiecesAt(p) {
		if pc.Team() == team {
			return true
		}
	}
	return false
}

// capturable is an occupied square that a piece of team may land on.
func capturable(b Occupancy, p Position, team Team) bool {
	return IsOpponentAt(b, p, team) && !isTeammateAt(b, p, team)
}

// shiftedView presents b as if piece stood on at instead of its current square.
type shiftedView struct {
	base  Occupancy
	piece *Piece
	at    Position
}

func (v shiftedView) PiecesAt(p Position) []*Piece {
	pieces := v.base.PiecesAt(p)
	out := make([]*Piece, 0, len(pieces)+1)
	for _, pc := range pieces {
		if pc != v.piece {
			out = append(out, pc)
		}
	}
	if p == v.at {
		out = append(out, v.piece)
	}
	return out
}
