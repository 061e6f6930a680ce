package domain

import "sort"

// Slot is a starting square in the traditional layout.
type Slot struct {
	Team     Team
	Type     PieceType
	Position Position
}

var backRank = []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// StartingLayout returns the 32 traditional starting squares. White holds rows 7 and 6,
// black rows 0 and 1.
func StartingLayout() []Slot {
	slots := make([]Slot, 0, 4*BoardSize)
	for _, team := range []Team{White, Black} {
		back, pawns := 0, 1
		if team == White {
			back, pawns = BoardSize-1, BoardSize-2
		}
		for x, kind := range backRank {
			slots = append(slots, Slot{Team: team, Type: kind, Position: Position{X: x, Z: back}})
		}
		for x := 0; x < BoardSize; x++ {
			slots = append(slots, Slot{Team: team, Type: Pawn, Position: Position{X: x, Z: pawns}})
		}
	}
	return slots
}

// SlotPool hands out starting squares to joining players and takes them back on disconnect.
type SlotPool struct {
	slots []Slot
	owner map[int]string
	held  map[string]int
}

// NewSlotPool returns a pool over StartingLayout.
func NewSlotPool() *SlotPool {
	return &SlotPool{
		slots: StartingLayout(),
		owner: make(map[int]string),
		held:  make(map[string]int),
	}
}

// Free returns the number of unreserved slots per piece type for team.
func (s *SlotPool) Free(team Team) map[PieceType]int {
	out := make(map[PieceType]int)
	for i, slot := range s.slots {
		if slot.Team != team {
			continue
		}
		if _, taken := s.owner[i]; !taken {
			out[slot.Type]++
		}
	}
	return out
}

// Remaining returns the total number of unreserved slots for team.
func (s *SlotPool) Remaining(team Team) int {
	n := 0
	for _, c := range s.Free(team) {
		n += c
	}
	return n
}

// Reserve claims the first free slot matching team and kind for id.
// A holder that already owns a slot keeps it and gets it back.
func (s *SlotPool) Reserve(id string, team Team, kind PieceType) (Slot, bool) {
	if i, ok := s.held[id]; ok {
		return s.slots[i], true
	}
	for i, slot := range s.slots {
		if slot.Team != team || slot.Type != kind {
			continue
		}
		if _, taken := s.owner[i]; taken {
			continue
		}
		s.owner[i] = id
		s.held[id] = i
		return slot, true
	}
	return Slot{}, false
}

// Release frees the slot held by id, if any.
func (s *SlotPool) Release(id string) {
	i, ok := s.held[id]
	if !ok {
		return
	}
	delete(s.held, id)
	delete(s.owner, i)
}

// Holders returns the ids currently holding a slot, sorted.
func (s *SlotPool) Holders() []string {
	out := make([]string, 0, len(s.held))
	for id := range s.held {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
